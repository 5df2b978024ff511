package terminal

import (
	"log"
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier is the user-facing side of the terminal. Implementations must be
// safe for concurrent use.
type Notifier interface {
	Notify(level Level, msg string)
	// SessionExpired is called once per 401; the caller decides how to log out.
	SessionExpired()
}

type Message struct {
	Level Level     `json:"level"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

// LogNotifier logs every notification and keeps the most recent ones.
type LogNotifier struct {
	Keep int

	mu      sync.Mutex
	recent  []Message
	expired int
}

func NewLogNotifier() *LogNotifier { return &LogNotifier{Keep: 5} }

func (n *LogNotifier) Notify(level Level, msg string) {
	log.Printf("[terminal] %s: %s", level, msg)
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recent = append([]Message{{Level: level, Text: msg, At: time.Now()}}, n.recent...)
	if n.Keep > 0 && len(n.recent) > n.Keep {
		n.recent = n.recent[:n.Keep]
	}
}

func (n *LogNotifier) SessionExpired() {
	log.Printf("[terminal] session expired, login required")
	n.mu.Lock()
	n.expired++
	n.mu.Unlock()
}

// Recent returns the kept messages, newest first.
func (n *LogNotifier) Recent() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Message(nil), n.recent...)
}

func (n *LogNotifier) Expired() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.expired
}

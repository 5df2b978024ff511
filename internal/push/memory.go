package push

import (
	"context"
	"sync"
)

// Memory is an in-process Source. Publish fans out to every live subscriber.
type Memory struct {
	mu   sync.Mutex
	next int
	subs map[int]*memSub
}

type memSub struct {
	ch   chan Event
	done chan struct{}
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[int]*memSub)}
}

func (m *Memory) Subscribe(ctx context.Context, h Handler) error {
	sub := &memSub{ch: make(chan Event, 64), done: make(chan struct{})}
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = sub
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
		close(sub.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-sub.ch:
			h(ev)
		}
	}
}

// Publish blocks until every subscriber has queued ev or gone away.
func (m *Memory) Publish(ev Event) {
	m.mu.Lock()
	subs := make([]*memSub, 0, len(m.subs))
	for _, s := range m.subs {
		subs = append(subs, s)
	}
	m.mu.Unlock()

	for _, s := range subs {
		select {
		case s.ch <- ev:
		case <-s.done:
		}
	}
}

func (m *Memory) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

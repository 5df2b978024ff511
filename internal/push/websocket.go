package push

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/MikeMC777/ordenes-pos/internal/order"
)

// WebSocketSource reads update envelopes from a websocket, one per text frame.
type WebSocketSource struct {
	URL    string
	Tokens order.TokenSource
	Dialer *websocket.Dialer
}

func NewWebSocketSource(url string, tokens order.TokenSource) *WebSocketSource {
	return &WebSocketSource{URL: url, Tokens: tokens, Dialer: websocket.DefaultDialer}
}

func (s *WebSocketSource) Subscribe(ctx context.Context, h Handler) error {
	header := http.Header{}
	if s.Tokens != nil {
		tok, err := s.Tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("push: token: %w", err)
		}
		if tok != "" {
			header.Set("Authorization", "Bearer "+tok)
		}
	}

	conn, resp, err := s.Dialer.DialContext(ctx, s.URL, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return order.ErrUnauthorized
		}
		return fmt.Errorf("push: dial %s: %w", s.URL, err)
	}
	defer conn.Close()
	log.Printf("[push] websocket connected to %s", s.URL)

	// unblock ReadMessage on cancel
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("push: read: %w", err)
		}
		ev, err := Decode(msg)
		if err != nil {
			log.Printf("[push] dropping frame: %v", err)
			continue
		}
		h(ev)
	}
}

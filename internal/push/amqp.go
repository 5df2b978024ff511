package push

import (
	"context"
	"errors"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPSource consumes update envelopes from a fanout exchange. An empty Queue
// declares a server-named, exclusive, auto-delete queue per terminal.
type AMQPSource struct {
	URL      string
	Exchange string
	Queue    string
}

func NewAMQPSource(url, exchange, queue string) *AMQPSource {
	return &AMQPSource{URL: url, Exchange: exchange, Queue: queue}
}

func (s *AMQPSource) Subscribe(ctx context.Context, h Handler) error {
	conn, err := amqp.Dial(s.URL)
	if err != nil {
		return fmt.Errorf("push: amqp dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("push: amqp channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(s.Exchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("push: declare exchange %s: %w", s.Exchange, err)
	}
	temp := s.Queue == ""
	q, err := ch.QueueDeclare(s.Queue, !temp, temp, temp, false, nil)
	if err != nil {
		return fmt.Errorf("push: declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", s.Exchange, false, nil); err != nil {
		return fmt.Errorf("push: bind %s: %w", q.Name, err)
	}
	deliveries, err := ch.Consume(q.Name, "pos-terminal", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("push: consume %s: %w", q.Name, err)
	}
	log.Printf("[push] amqp consuming %s bound to %s", q.Name, s.Exchange)
	return consume(ctx, deliveries, h)
}

func consume(ctx context.Context, deliveries <-chan amqp.Delivery, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("push: amqp deliveries closed")
			}
			ev, err := Decode(d.Body)
			if err != nil {
				log.Printf("[push] dropping delivery %s: %v", d.MessageId, err)
				continue
			}
			h(ev)
		}
	}
}

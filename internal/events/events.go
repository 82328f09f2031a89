// Package events publishes ledger notifications after a change is committed.
// Publishing is best effort: a broker failure never undoes a ledger write.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/finsave/internal/rabbitmq"
)

// Routing keys.
const (
	ExpenseCreated    = "expense.created"
	ExpenseDeleted    = "expense.deleted"
	SettlementCreated = "settlement.created"
	SettlementUpdated = "settlement.updated"
)

// Envelope is the message body on the wire.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Publisher sends one event.
type Publisher interface {
	Publish(ctx context.Context, key string, data any) error
}

// AMQP publishes to a topic exchange over a single channel.
type AMQP struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewAMQP connects and declares the exchange.
func NewAMQP(url, exchange string, retries int, delay time.Duration) (*AMQP, error) {
	conn, err := rabbitmq.Connect(url, retries, delay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, exchange)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &AMQP{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQP) Publish(ctx context.Context, key string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return rabbitmq.PublishMessage(p.ch, p.exchange, key, Envelope{
		Type:       key,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
}

func (p *AMQP) Close() error {
	p.ch.Close()
	return p.conn.Close()
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

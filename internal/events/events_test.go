package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), ExpenseCreated, map[string]int64{"id": 1}))
}

func TestEnvelopeJSON(t *testing.T) {
	at := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	b, err := json.Marshal(Envelope{Type: SettlementCreated, OccurredAt: at, Data: map[string]int64{"id": 3}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"settlement.created","occurred_at":"2025-01-10T12:00:00Z","data":{"id":3}}`, string(b))
}

func TestAMQPPublish(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping broker test in short mode")
	}
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		t.Skip("RABBITMQ_URL is not set")
	}

	p, err := NewAMQP(url, "ledger_test", 1, time.Second)
	require.NoError(t, err)
	defer p.Close()

	assert.NoError(t, p.Publish(context.Background(), ExpenseDeleted, map[string]int64{"id": 1}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, ExpenseDeleted, nil), context.Canceled)
}

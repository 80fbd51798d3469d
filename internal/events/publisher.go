package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/buildledger/buildledger-backend/internal/log"
)

// Event types published on the dashboard channel.
const (
	ProjectCreated      = "project.created"
	ProjectDeleted      = "project.deleted"
	TransactionRecorded = "transaction.recorded"
	TransactionDeleted  = "transaction.deleted"
	ChangeOrderCreated  = "change_order.created"
)

const Channel = "dashboard:events"

type Event struct {
	Type      string                 `json:"event"`
	ProjectID string                 `json:"project_id,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	At        time.Time              `json:"at"`
}

// Publisher fans domain events out over Redis Pub/Sub so connected dashboard
// views can refresh without polling. A nil client disables publishing.
type Publisher struct {
	client *redis.Client
	logger *log.Logger
}

func NewPublisher(client *redis.Client, logger *log.Logger) *Publisher {
	return &Publisher{client: client, logger: logger.WithComponent("events")}
}

// Publish is fire-and-forget: a publish failure is logged, never surfaced to
// the request that triggered it.
func (p *Publisher) Publish(ctx context.Context, ev Event) {
	if p == nil || p.client == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn("marshal event", "type", ev.Type, "err", err)
		return
	}

	if err := p.client.Publish(ctx, Channel, payload).Err(); err != nil {
		p.logger.Warn("publish event", "type", ev.Type, "err", err)
	}
}

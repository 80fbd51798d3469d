package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildledger/buildledger-backend/internal/log"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, Channel)
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	p := NewPublisher(client, log.New(log.DefaultConfig()))
	p.Publish(ctx, Event{
		Type:      ProjectCreated,
		ProjectID: "p-1",
		UserID:    "u-1",
		Data:      map[string]interface{}{"budget_id": "b-1"},
	})

	select {
	case msg := <-sub.Channel():
		var got Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, ProjectCreated, got.Type)
		assert.Equal(t, "p-1", got.ProjectID)
		assert.False(t, got.At.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestPublishWithoutClientIsNoop(t *testing.T) {
	p := NewPublisher(nil, log.New(log.DefaultConfig()))
	// must not panic
	p.Publish(context.Background(), Event{Type: ProjectDeleted})

	var nilPublisher *Publisher
	nilPublisher.Publish(context.Background(), Event{Type: ProjectDeleted})
}

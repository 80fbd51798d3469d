package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound  = errors.New("wizard session not found")
	ErrFinalizeInFlight = errors.New("finalize already in progress for this session")
)

// Store keeps wizard sessions in Redis so drafts survive across requests and
// no in-process state is shared between handlers. Sessions expire after the
// configured TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

func sessionKey(id string) string  { return "wizard:" + id }
func finalizeKey(id string) string { return "wizard:" + id + ":finalizing" }

// Open creates a fresh session at step 1 and persists it.
func (s *Store) Open(ctx context.Context, uid string) (*State, error) {
	state := NewState(uuid.New().String())
	state.UID = uid
	if err := s.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *Store) Get(ctx context.Context, sessionID string) (*State, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load wizard session: %w", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode wizard session: %w", err)
	}
	return &state, nil
}

func (s *Store) Save(ctx context.Context, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode wizard session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(state.SessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save wizard session: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID), finalizeKey(sessionID)).Err()
}

// BeginFinalize takes the per-session in-flight lock. A second finalize on
// the same session (a double click) is rejected until the first resolves.
func (s *Store) BeginFinalize(ctx context.Context, sessionID string) error {
	ok, err := s.client.SetNX(ctx, finalizeKey(sessionID), "1", time.Minute).Result()
	if err != nil {
		return fmt.Errorf("acquire finalize lock: %w", err)
	}
	if !ok {
		return ErrFinalizeInFlight
	}
	return nil
}

// EndFinalize releases the in-flight lock after a failed finalize so the user
// can retry. A successful finalize deletes the whole session instead.
func (s *Store) EndFinalize(ctx context.Context, sessionID string) {
	_ = s.client.Del(ctx, finalizeKey(sessionID)).Err()
}

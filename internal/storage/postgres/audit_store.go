package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditEntry records a user action (wizard finalize, deletes) for later review.
type AuditEntry struct {
	LogID     string                 `json:"log_id"`
	UserID    string                 `json:"user_id,omitempty"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

type AuditStore struct {
	db *sql.DB
}

func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

// Insert writes one audit row. A nil store is a no-op so callers can run
// without the secondary connection configured.
func (s *AuditStore) Insert(ctx context.Context, entry AuditEntry) error {
	if s == nil || s.db == nil {
		return nil
	}
	if entry.Action == "" {
		return fmt.Errorf("action required")
	}
	if entry.LogID == "" {
		entry.LogID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (log_id, user_id, action, details, timestamp)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.LogID, nullable(entry.UserID), entry.Action, detailsJSON, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	return nil
}

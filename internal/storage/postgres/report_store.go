package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Report is a stored snapshot, typically the nightly financial summary of a
// project. Content is arbitrary JSON owned by the producer.
type Report struct {
	ReportID    string          `json:"report_id"`
	ProjectID   string          `json:"project_id"`
	Type        string          `json:"type"`
	Content     json.RawMessage `json:"content"`
	DateCreated time.Time       `json:"date_created"`
	CreatedBy   string          `json:"created_by,omitempty"`
}

type ReportStore struct {
	db *sql.DB
}

func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

// InsertBatch writes a set of reports in a single transaction. Used by the
// nightly worker so a partial run does not leave half a snapshot behind.
func (s *ReportStore) InsertBatch(ctx context.Context, reports []Report) error {
	if len(reports) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reports (report_id, project_id, type, content, date_created, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, report := range reports {
		if report.ReportID == "" {
			report.ReportID = uuid.New().String()
		}
		if report.DateCreated.IsZero() {
			report.DateCreated = time.Now().UTC()
		}
		content := report.Content
		if len(content) == 0 {
			content = json.RawMessage("{}")
		}

		_, err = stmt.ExecContext(ctx,
			report.ReportID,
			report.ProjectID,
			report.Type,
			content,
			report.DateCreated,
			nullable(report.CreatedBy),
		)
		if err != nil {
			return fmt.Errorf("failed to insert report: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByProject returns reports for a project, newest first, optionally
// filtered by type.
func (s *ReportStore) ListByProject(ctx context.Context, projectID, reportType string) ([]Report, error) {
	query := `
		SELECT report_id, project_id, type, content, date_created, COALESCE(created_by, '')
		FROM reports
		WHERE project_id = $1
	`
	args := []interface{}{projectID}
	if reportType != "" {
		query += ` AND type = $2`
		args = append(args, reportType)
	}
	query += ` ORDER BY date_created DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	out := make([]Report, 0, 8)
	for rows.Next() {
		var r Report
		if err := rows.Scan(&r.ReportID, &r.ProjectID, &r.Type, &r.Content, &r.DateCreated, &r.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

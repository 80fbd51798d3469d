// Package reports produces nightly financial snapshots: one JSON summary per
// active project, written to the reports table and mirrored to object storage.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/buildledger/buildledger-backend/internal/finance"
	"github.com/buildledger/buildledger-backend/internal/log"
	"github.com/buildledger/buildledger-backend/internal/projects"
	"github.com/buildledger/buildledger-backend/internal/storage/postgres"
	"github.com/buildledger/buildledger-backend/internal/storage/s3"
)

const TypeFinancialSummary = "financial_summary"

// Service builds and stores snapshot reports. The S3 exporter is optional;
// without a configured bucket the snapshots still land in the database.
type Service struct {
	projects *projects.Repo
	finance  *finance.Service
	store    *postgres.ReportStore
	exporter *s3.Exporter
	logger   *log.Logger
}

func NewService(p *projects.Repo, f *finance.Service, store *postgres.ReportStore, exporter *s3.Exporter, logger *log.Logger) *Service {
	return &Service{
		projects: p,
		finance:  f,
		store:    store,
		exporter: exporter,
		logger:   logger.WithComponent("reports"),
	}
}

// RunSnapshot aggregates every active project and writes the batch. A project
// whose aggregation fails is skipped and logged; one bad ledger must not sink
// the whole run.
func (s *Service) RunSnapshot(ctx context.Context) error {
	ids, err := s.projects.ActiveIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing active projects: %w", err)
	}

	now := time.Now().UTC()
	batch := make([]postgres.Report, 0, len(ids))
	failed := 0

	for _, projectID := range ids {
		dashboard, err := s.finance.Dashboard(ctx, projectID)
		if err != nil {
			failed++
			s.logger.Error("snapshot aggregation failed", "project_id", projectID, "error", err)
			continue
		}

		content, err := json.Marshal(dashboard)
		if err != nil {
			failed++
			s.logger.Error("snapshot encode failed", "project_id", projectID, "error", err)
			continue
		}

		batch = append(batch, postgres.Report{
			ProjectID:   projectID,
			Type:        TypeFinancialSummary,
			Content:     content,
			DateCreated: now,
			CreatedBy:   "system",
		})
	}

	if err := s.store.InsertBatch(ctx, batch); err != nil {
		return fmt.Errorf("storing snapshots: %w", err)
	}

	if s.exporter != nil {
		day := now.Format("2006-01-02")
		for _, r := range batch {
			key := fmt.Sprintf("snapshots/%s/%s.json", day, r.ProjectID)
			if err := s.exporter.PutJSON(ctx, key, r.Content); err != nil {
				s.logger.Error("snapshot export failed", "project_id", r.ProjectID, "key", key, "error", err)
			}
		}
	}

	s.logger.Info("snapshot run complete", "projects", len(ids), "written", len(batch), "failed", failed)
	return nil
}

// List returns stored reports for a project, newest first.
func (s *Service) List(ctx context.Context, projectID, reportType string) ([]postgres.Report, error) {
	return s.store.ListByProject(ctx, projectID, reportType)
}

package wizard

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/buildledger/buildledger-backend/internal/budgets"
	"github.com/buildledger/buildledger-backend/internal/clients"
	"github.com/buildledger/buildledger-backend/internal/events"
	"github.com/buildledger/buildledger-backend/internal/log"
	"github.com/buildledger/buildledger-backend/internal/projects"
	"github.com/buildledger/buildledger-backend/internal/storage/postgres"
)

// PersistenceError marks a rejected store write during finalize. The write
// sequence stops at the failing stage; rows written by earlier stages stay
// committed (the store offers no cross-table transaction, and no compensating
// deletes are issued).
type PersistenceError struct {
	Stage string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s insert failed: %v", e.Stage, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Result summarizes what finalize created.
type Result struct {
	ClientID      string  `json:"client_id"`
	ProjectID     string  `json:"project_id"`
	BudgetID      string  `json:"budget_id"`
	InitialBudget float64 `json:"initial_budget"`
	DetailRows    int     `json:"detail_rows"`
}

type clientStore interface {
	Exists(ctx context.Context, companyID, clientID string) (bool, error)
	Insert(ctx context.Context, cl clients.Client) error
}

type projectStore interface {
	Insert(ctx context.Context, p projects.Project) error
}

type budgetStore interface {
	InsertBudget(ctx context.Context, b budgets.Budget) error
	InsertDetails(ctx context.Context, details []budgets.Detail) error
}

// Finalizer performs the terminal wizard operation: three ordered writes
// (client, project, budget with its details) against the store.
type Finalizer struct {
	clients   clientStore
	projects  projectStore
	budgets   budgetStore
	publisher *events.Publisher
	audit     *postgres.AuditStore
	logger    *log.Logger
}

func NewFinalizer(
	clientRepo clientStore,
	projectRepo projectStore,
	budgetRepo budgetStore,
	publisher *events.Publisher,
	audit *postgres.AuditStore,
	logger *log.Logger,
) *Finalizer {
	return &Finalizer{
		clients:   clientRepo,
		projects:  projectRepo,
		budgets:   budgetRepo,
		publisher: publisher,
		audit:     audit,
		logger:    logger.WithComponent("wizard"),
	}
}

// Finalize validates the accumulated drafts one last time, then executes the
// write sequence in strict order:
//
//  1. client row (skipped when an existing client was selected)
//  2. project row referencing the client
//  3. budget row with initial_budget = sum of all allocations, then one
//     batched budget_details insert per section
//
// The first PersistenceError aborts the rest of the sequence.
func (f *Finalizer) Finalize(ctx context.Context, companyID, userID string, state *State) (*Result, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}

	clientID, err := f.submitClient(ctx, companyID, *state.Client)
	if err != nil {
		return nil, err
	}

	projectID, err := f.submitProject(ctx, companyID, clientID, *state.Project)
	if err != nil {
		return nil, err
	}

	budgetID, initial, err := f.submitBudget(ctx, projectID, state)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ClientID:      clientID,
		ProjectID:     projectID,
		BudgetID:      budgetID,
		InitialBudget: initial,
		DetailRows:    state.DetailCount(),
	}

	f.logger.Info("project created",
		"project_id", projectID, "client_id", clientID, "budget_id", budgetID,
		"initial_budget", initial, "detail_rows", result.DetailRows)

	f.publisher.Publish(ctx, events.Event{
		Type:      events.ProjectCreated,
		ProjectID: projectID,
		UserID:    userID,
		Data:      map[string]interface{}{"client_id": clientID, "budget_id": budgetID},
	})

	if f.audit != nil {
		if err := f.audit.Insert(ctx, postgres.AuditEntry{
			UserID: userID,
			Action: "project.finalize",
			Details: map[string]interface{}{
				"project_id":     projectID,
				"client_id":      clientID,
				"budget_id":      budgetID,
				"initial_budget": initial,
			},
		}); err != nil {
			f.logger.Warn("audit insert failed", "err", err)
		}
	}

	return result, nil
}

func (f *Finalizer) submitClient(ctx context.Context, companyID string, draft ClientDraft) (string, error) {
	if draft.IsExisting() {
		ok, err := f.clients.Exists(ctx, companyID, *draft.ExistingID)
		if err != nil {
			return "", &PersistenceError{Stage: "client", Err: err}
		}
		if !ok {
			return "", &ValidationError{Field: "client.existing_id", Message: "unknown client for this company"}
		}
		return *draft.ExistingID, nil
	}

	clientID := uuid.New().String()
	err := f.clients.Insert(ctx, clients.Client{
		ClientID:    clientID,
		CompanyID:   &companyID,
		Name:        draft.Name,
		Address:     draft.Address,
		ContactInfo: draft.ContactInfo,
	})
	if err != nil {
		return "", &PersistenceError{Stage: "client", Err: err}
	}
	return clientID, nil
}

func (f *Finalizer) submitProject(ctx context.Context, companyID, clientID string, draft ProjectDraft) (string, error) {
	projectID := uuid.New().String()
	err := f.projects.Insert(ctx, projects.Project{
		ProjectID:   projectID,
		CompanyID:   &companyID,
		ClientID:    &clientID,
		Name:        draft.Name,
		Description: &draft.Description,
		StartDate:   &draft.StartDate,
		EndDate:     draft.EndDate,
		Status:      &draft.Status,
	})
	if err != nil {
		return "", &PersistenceError{Stage: "project", Err: err}
	}
	return projectID, nil
}

func (f *Finalizer) submitBudget(ctx context.Context, projectID string, state *State) (string, float64, error) {
	budgetID := uuid.New().String()
	initial := state.InitialBudget()

	err := f.budgets.InsertBudget(ctx, budgets.Budget{
		BudgetID:      budgetID,
		ProjectID:     &projectID,
		InitialBudget: &initial,
	})
	if err != nil {
		return "", 0, &PersistenceError{Stage: "budget", Err: err}
	}

	for _, section := range state.Sections {
		sectionName := section.SectionName
		rows := make([]budgets.Detail, 0, len(section.Details))
		for _, d := range section.Details {
			desc := d.Description
			rows = append(rows, budgets.Detail{
				DetailID:        uuid.New().String(),
				BudgetID:        &budgetID,
				ProjectID:       &projectID,
				SectionName:     &sectionName,
				AllocatedAmount: d.AllocatedAmount,
				Description:     &desc,
			})
		}
		if err := f.budgets.InsertDetails(ctx, rows); err != nil {
			return "", 0, &PersistenceError{Stage: "budget_details", Err: err}
		}
	}

	return budgetID, initial, nil
}

package budgets

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("budget not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type Budget struct {
	BudgetID       string   `json:"budget_id"`
	ProjectID      *string  `json:"project_id,omitempty"`
	InitialBudget  *float64 `json:"initial_budget,omitempty"`
	RevisedBudget  *float64 `json:"revised_budget,omitempty"`
	DateOfRevision *string  `json:"date_of_revision,omitempty"`
}

type Detail struct {
	DetailID          string   `json:"detail_id"`
	BudgetID          *string  `json:"budget_id,omitempty"`
	ProjectID         *string  `json:"project_id,omitempty"`
	SectionName       *string  `json:"section_name,omitempty"`
	AllocatedAmount   *float64 `json:"allocated_amount,omitempty"`
	Description       *string  `json:"description,omitempty"`
	ChangeOrderImpact *string  `json:"change_order_impact,omitempty"`
}

// InsertBudget writes the budget row with a caller-supplied identifier.
func (r *Repo) InsertBudget(ctx context.Context, b Budget) error {
	if b.BudgetID == "" {
		return fmt.Errorf("budget_id required")
	}

	const q = `
insert into budgets (budget_id, project_id, initial_budget, revised_budget, date_of_revision)
values ($1::uuid, $2::uuid, $3, $4, $5::date);
`
	_, err := r.db.Exec(ctx, q, b.BudgetID, b.ProjectID, b.InitialBudget, b.RevisedBudget, b.DateOfRevision)
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

// InsertDetails writes a set of detail rows in one round trip. The wizard
// calls this once per section.
func (r *Repo) InsertDetails(ctx context.Context, details []Detail) error {
	if len(details) == 0 {
		return nil
	}

	const q = `
insert into budget_details (detail_id, budget_id, project_id, section_name, allocated_amount, description, change_order_impact)
values ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6, $7::uuid);
`
	batch := &pgx.Batch{}
	for _, d := range details {
		if d.DetailID == "" {
			return fmt.Errorf("detail_id required")
		}
		batch.Queue(q, d.DetailID, d.BudgetID, d.ProjectID, d.SectionName, d.AllocatedAmount, d.Description, d.ChangeOrderImpact)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for range details {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert budget details: %w", err)
		}
	}
	return nil
}

// GetByProject returns the budget row for a project.
func (r *Repo) GetByProject(ctx context.Context, projectID string) (*Budget, error) {
	const q = `
select budget_id::text, project_id::text, initial_budget, revised_budget, date_of_revision::text
from budgets
where project_id = $1::uuid;
`
	var b Budget
	err := r.db.QueryRow(ctx, q, projectID).
		Scan(&b.BudgetID, &b.ProjectID, &b.InitialBudget, &b.RevisedBudget, &b.DateOfRevision)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repo) DetailsByBudget(ctx context.Context, budgetID string) ([]Detail, error) {
	const q = `
select detail_id::text, budget_id::text, project_id::text, section_name, allocated_amount, description, change_order_impact::text
from budget_details
where budget_id = $1::uuid;
`
	rows, err := r.db.Query(ctx, q, budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Detail, 0, 16)
	for rows.Next() {
		var d Detail
		if err := rows.Scan(&d.DetailID, &d.BudgetID, &d.ProjectID, &d.SectionName, &d.AllocatedAmount, &d.Description, &d.ChangeOrderImpact); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// AddToRevised folds an additional cost into the revised total in a single
// statement. Concurrent change order approvals each land their own delta.
func (r *Repo) AddToRevised(ctx context.Context, budgetID string, delta float64, date string) error {
	const q = `
update budgets
set revised_budget = coalesce(revised_budget, initial_budget, 0) + $2,
    date_of_revision = $3::date
where budget_id = $1::uuid;
`
	ct, err := r.db.Exec(ctx, q, budgetID, delta, date)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

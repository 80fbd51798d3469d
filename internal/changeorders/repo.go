package changeorders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("change order not found")

// Change order statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type ChangeOrder struct {
	ChangeOrderID  string   `json:"change_order_id"`
	ProjectID      string   `json:"project_id"`
	BudgetID       *string  `json:"budget_id,omitempty"`
	AdditionalCost *float64 `json:"additional_cost,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Date           *string  `json:"date,omitempty"`
	Status         string   `json:"status"`
	ApprovedBy     *string  `json:"approved_by,omitempty"`
}

// Create inserts a change order in pending state.
func (r *Repo) Create(ctx context.Context, co ChangeOrder) (*ChangeOrder, error) {
	if co.ProjectID == "" {
		return nil, fmt.Errorf("project_id required")
	}
	co.ChangeOrderID = uuid.New().String()
	co.Status = StatusPending

	const q = `
insert into change_orders (change_order_id, project_id, budget_id, additional_cost, description, date, status)
values ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6::date, $7);
`
	_, err := r.db.Exec(ctx, q, co.ChangeOrderID, co.ProjectID, co.BudgetID, co.AdditionalCost, co.Description, co.Date, co.Status)
	if err != nil {
		return nil, fmt.Errorf("insert change order: %w", err)
	}
	return &co, nil
}

func (r *Repo) ListByProject(ctx context.Context, projectID string) ([]ChangeOrder, error) {
	const q = `
select change_order_id::text, project_id::text, budget_id::text, additional_cost, description, date::text, status, approved_by
from change_orders
where project_id = $1::uuid
order by date desc nulls last;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ChangeOrder, 0, 8)
	for rows.Next() {
		var co ChangeOrder
		if err := rows.Scan(&co.ChangeOrderID, &co.ProjectID, &co.BudgetID, &co.AdditionalCost,
			&co.Description, &co.Date, &co.Status, &co.ApprovedBy); err != nil {
			return nil, err
		}
		out = append(out, co)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, changeOrderID string) (*ChangeOrder, error) {
	const q = `
select change_order_id::text, project_id::text, budget_id::text, additional_cost, description, date::text, status, approved_by
from change_orders
where change_order_id = $1::uuid;
`
	var co ChangeOrder
	err := r.db.QueryRow(ctx, q, changeOrderID).
		Scan(&co.ChangeOrderID, &co.ProjectID, &co.BudgetID, &co.AdditionalCost,
			&co.Description, &co.Date, &co.Status, &co.ApprovedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &co, nil
}

// SetStatus moves a pending change order to approved or rejected.
func (r *Repo) SetStatus(ctx context.Context, changeOrderID, status, approvedBy string) error {
	const q = `
update change_orders
set status = $2, approved_by = $3
where change_order_id = $1::uuid and status = $4;
`
	ct, err := r.db.Exec(ctx, q, changeOrderID, status, approvedBy, StatusPending)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

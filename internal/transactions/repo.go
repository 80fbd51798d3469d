package transactions

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Transaction types recognized by the financial aggregation.
const (
	TypeRevenue = "Revenue"
	TypeExpense = "Expense"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// Transaction mirrors the ledger row. Amount, date and type are nullable at
// the store level; the aggregator's parse step filters malformed rows.
type Transaction struct {
	TransactionID   int64    `json:"transaction_id"`
	ProjectID       string   `json:"project_id"`
	Amount          *float64 `json:"amount"`
	Date            *string  `json:"date"`
	TransactionType *string  `json:"transaction_type"`
	Categories      *string  `json:"categories,omitempty"`
	ClientID        *string  `json:"client_id,omitempty"`
	SubcontractorID *string  `json:"subcontractor_id,omitempty"`
	Description     *string  `json:"description,omitempty"`
	InvoiceNumber   *string  `json:"invoice_number,omitempty"`
	Status          *string  `json:"status,omitempty"`
}

func (r *Repo) Insert(ctx context.Context, t Transaction) (*Transaction, error) {
	if t.ProjectID == "" {
		return nil, fmt.Errorf("project_id required")
	}

	const q = `
insert into transactions (project_id, amount, date, transaction_type, categories, client_id, subcontractor_id, description, invoice_number, status)
values ($1::uuid, $2, $3, $4, $5, $6::uuid, $7::uuid, $8, $9, $10)
returning transaction_id;
`
	err := r.db.QueryRow(ctx, q,
		t.ProjectID, t.Amount, t.Date, t.TransactionType, t.Categories,
		t.ClientID, t.SubcontractorID, t.Description, t.InvoiceNumber, t.Status,
	).Scan(&t.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return &t, nil
}

func (r *Repo) ListByProject(ctx context.Context, projectID string) ([]Transaction, error) {
	const q = `
select transaction_id, project_id::text, amount, date, transaction_type, categories,
       client_id::text, subcontractor_id::text, description, invoice_number, status
from transactions
where project_id = $1::uuid
order by transaction_id;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Transaction, 0, 32)
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.TransactionID, &t.ProjectID, &t.Amount, &t.Date, &t.TransactionType,
			&t.Categories, &t.ClientID, &t.SubcontractorID, &t.Description, &t.InvoiceNumber, &t.Status); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes a transaction only when its project belongs to the company.
func (r *Repo) Delete(ctx context.Context, transactionID int64, companyID string) (bool, error) {
	const q = `
delete from transactions t
using projects p
where t.project_id = p.project_id
  and t.transaction_id = $1
  and p.company_id = $2::uuid;
`
	ct, err := r.db.Exec(ctx, q, transactionID, companyID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

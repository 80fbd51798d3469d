package subcontractors

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type Subcontractor struct {
	SubcontractorID string  `json:"subcontractor_id"`
	CompanyID       *string `json:"company_id,omitempty"`
	Name            string  `json:"name"`
	Details         *string `json:"details,omitempty"`
}

func (r *Repo) Create(ctx context.Context, companyID, name string, details *string) (*Subcontractor, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}

	sub := Subcontractor{
		SubcontractorID: uuid.New().String(),
		CompanyID:       &companyID,
		Name:            name,
		Details:         details,
	}

	const q = `
insert into subcontractors (subcontractor_id, company_id, name, details)
values ($1::uuid, $2::uuid, $3, $4);
`
	if _, err := r.db.Exec(ctx, q, sub.SubcontractorID, companyID, name, details); err != nil {
		return nil, fmt.Errorf("insert subcontractor: %w", err)
	}
	return &sub, nil
}

func (r *Repo) ListByCompany(ctx context.Context, companyID string) ([]Subcontractor, error) {
	const q = `
select subcontractor_id::text, company_id::text, name, details
from subcontractors
where company_id = $1::uuid
order by name;
`
	rows, err := r.db.Query(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Subcontractor, 0, 16)
	for rows.Next() {
		var s Subcontractor
		if err := rows.Scan(&s.SubcontractorID, &s.CompanyID, &s.Name, &s.Details); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// NamesByID resolves subcontractor names for the transaction history view.
func (r *Repo) NamesByID(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	const q = `
select subcontractor_id::text, name
from subcontractors
where subcontractor_id = any($1::uuid[]);
`
	rows, err := r.db.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(ids))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("project not found")

// Project statuses
const (
	StatusPlanning   = "planning"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPlanning, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type Project struct {
	ProjectID   string     `json:"project_id"`
	CompanyID   *string    `json:"company_id,omitempty"`
	ClientID    *string    `json:"client_id,omitempty"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	StartDate   *string    `json:"start_date,omitempty"`
	EndDate     *string    `json:"end_date,omitempty"`
	Status      *string    `json:"status,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Insert writes a project row with a caller-supplied identifier (the wizard
// generates it before inserting).
func (r *Repo) Insert(ctx context.Context, p Project) error {
	if p.ProjectID == "" {
		return fmt.Errorf("project_id required")
	}
	if p.Name == "" {
		return fmt.Errorf("name required")
	}

	const q = `
insert into projects (project_id, company_id, client_id, name, description, start_date, end_date, status, updated_at)
values ($1::uuid, $2::uuid, $3::uuid, $4, $5, $6::date, $7::date, $8, now());
`
	_, err := r.db.Exec(ctx, q, p.ProjectID, p.CompanyID, p.ClientID, p.Name, p.Description, p.StartDate, p.EndDate, p.Status)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *Repo) ListByCompany(ctx context.Context, companyID string) ([]Project, error) {
	const q = `
select project_id::text, company_id::text, client_id::text, name, description,
       start_date::text, end_date::text, status, updated_at
from projects
where company_id = $1::uuid
order by updated_at desc;
`
	rows, err := r.db.Query(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Project, 0, 16)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ProjectID, &p.CompanyID, &p.ClientID, &p.Name, &p.Description,
			&p.StartDate, &p.EndDate, &p.Status, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns a single project scoped to the company.
func (r *Repo) Get(ctx context.Context, companyID, projectID string) (*Project, error) {
	const q = `
select project_id::text, company_id::text, client_id::text, name, description,
       start_date::text, end_date::text, status, updated_at
from projects
where project_id = $1::uuid and company_id = $2::uuid;
`
	var p Project
	err := r.db.QueryRow(ctx, q, projectID, companyID).
		Scan(&p.ProjectID, &p.CompanyID, &p.ClientID, &p.Name, &p.Description,
			&p.StartDate, &p.EndDate, &p.Status, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ActiveIDs lists every project not yet completed. The nightly report worker
// walks this set.
func (r *Repo) ActiveIDs(ctx context.Context) ([]string, error) {
	const q = `
select project_id::text
from projects
where status is null or status <> $1;
`
	rows, err := r.db.Query(ctx, q, StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0, 32)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, companyID, projectID string) (bool, error) {
	const q = `
delete from projects
where project_id = $1::uuid and company_id = $2::uuid;
`
	ct, err := r.db.Exec(ctx, q, projectID, companyID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

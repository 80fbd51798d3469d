package companies

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("company not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type Company struct {
	CompanyID string  `json:"company_id"`
	Name      string  `json:"name"`
	Address   *string `json:"address,omitempty"`
	Industry  *string `json:"industry,omitempty"`
	Size      *int    `json:"size,omitempty"`
	JoinCode  string  `json:"credentials,omitempty"`
}

func (r *Repo) Create(ctx context.Context, name string, address, industry *string, size *int) (*Company, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}

	for i := 0; i < 5; i++ {
		code, err := NewJoinCode()
		if err != nil {
			return nil, err
		}

		const q = `
insert into companies (company_id, name, address, industry, size, credentials)
values ($1::uuid, $2, $3, $4, $5, $6)
returning company_id::text, name, address, industry, size, credentials;
`
		var co Company
		err = r.db.QueryRow(ctx, q, uuid.New().String(), name, address, industry, size, code).
			Scan(&co.CompanyID, &co.Name, &co.Address, &co.Industry, &co.Size, &co.JoinCode)

		if err == nil {
			return &co, nil
		}

		// unique violation on credentials → retry with a fresh code
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to generate unique join code")
}

func (r *Repo) Get(ctx context.Context, companyID string) (*Company, error) {
	const q = `
select company_id::text, name, address, industry, size, credentials
from companies
where company_id = $1::uuid;
`
	var co Company
	err := r.db.QueryRow(ctx, q, companyID).
		Scan(&co.CompanyID, &co.Name, &co.Address, &co.Industry, &co.Size, &co.JoinCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &co, nil
}

// FindByJoinCode looks a company up by its credentials code.
func (r *Repo) FindByJoinCode(ctx context.Context, code string) (*Company, error) {
	const q = `
select company_id::text, name, address, industry, size, credentials
from companies
where credentials = $1;
`
	var co Company
	err := r.db.QueryRow(ctx, q, code).
		Scan(&co.CompanyID, &co.Name, &co.Address, &co.Industry, &co.Size, &co.JoinCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &co, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepo(db *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{db: db}
}

type Profile struct {
	ID        string  `json:"id"`
	CompanyID *string `json:"company_id,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Country   *string `json:"country,omitempty"`
	JobTitle  *string `json:"job_title,omitempty"`
}

// EnsureProfile creates the profile row for a new auth uid if it does not
// exist yet and returns the current company association (empty until the
// signup flow attaches one).
func (r *ProfileRepo) EnsureProfile(ctx context.Context, uid string) (*Profile, error) {
	if uid == "" {
		return nil, fmt.Errorf("auth uid required")
	}

	const q = `
insert into profiles (id)
values ($1)
on conflict (id) do nothing;
`
	if _, err := r.db.Exec(ctx, q, uid); err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	return r.Get(ctx, uid)
}

func (r *ProfileRepo) Get(ctx context.Context, uid string) (*Profile, error) {
	const q = `
select id, company_id::text, first_name, last_name, phone, country, job_title
from profiles
where id = $1;
`
	var p Profile
	err := r.db.QueryRow(ctx, q, uid).
		Scan(&p.ID, &p.CompanyID, &p.FirstName, &p.LastName, &p.Phone, &p.Country, &p.JobTitle)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("profile %s not found", uid)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update writes the editable profile fields from the signup form.
func (r *ProfileRepo) Update(ctx context.Context, p Profile) error {
	const q = `
update profiles
set first_name = coalesce($2, first_name),
    last_name  = coalesce($3, last_name),
    phone      = coalesce($4, phone),
    country    = coalesce($5, country),
    job_title  = coalesce($6, job_title)
where id = $1;
`
	_, err := r.db.Exec(ctx, q, p.ID, p.FirstName, p.LastName, p.Phone, p.Country, p.JobTitle)
	return err
}

// SetCompany attaches the profile to a company (create-company and
// join-company flows).
func (r *ProfileRepo) SetCompany(ctx context.Context, uid, companyID string) error {
	const q = `
update profiles
set company_id = $2::uuid
where id = $1;
`
	ct, err := r.db.Exec(ctx, q, uid, companyID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("profile %s not found", uid)
	}
	return nil
}

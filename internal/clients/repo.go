package clients

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

type Client struct {
	ClientID    string  `json:"client_id"`
	CompanyID   *string `json:"company_id,omitempty"`
	Name        string  `json:"name"`
	Address     *string `json:"address,omitempty"`
	ContactInfo *string `json:"contact_info,omitempty"`
}

// Insert writes a client row with a caller-supplied identifier. The wizard
// generates the id before inserting so later rows can reference it.
func (r *Repo) Insert(ctx context.Context, cl Client) error {
	if cl.ClientID == "" {
		return fmt.Errorf("client_id required")
	}
	if cl.Name == "" {
		return fmt.Errorf("name required")
	}

	const q = `
insert into clients (client_id, company_id, name, address, contact_info)
values ($1::uuid, $2::uuid, $3, $4, $5);
`
	_, err := r.db.Exec(ctx, q, cl.ClientID, cl.CompanyID, cl.Name, cl.Address, cl.ContactInfo)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// Create inserts a client with a fresh identifier.
func (r *Repo) Create(ctx context.Context, companyID, name string, address, contactInfo *string) (*Client, error) {
	cl := Client{
		ClientID:    uuid.New().String(),
		CompanyID:   &companyID,
		Name:        name,
		Address:     address,
		ContactInfo: contactInfo,
	}
	if err := r.Insert(ctx, cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

func (r *Repo) ListByCompany(ctx context.Context, companyID string) ([]Client, error) {
	const q = `
select client_id::text, company_id::text, name, address, contact_info
from clients
where company_id = $1::uuid
order by name;
`
	rows, err := r.db.Query(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Client, 0, 16)
	for rows.Next() {
		var cl Client
		if err := rows.Scan(&cl.ClientID, &cl.CompanyID, &cl.Name, &cl.Address, &cl.ContactInfo); err != nil {
			return nil, err
		}
		out = append(out, cl)
	}
	return out, rows.Err()
}

// Exists reports whether a client id belongs to the given company. Used by
// the wizard when an existing client is selected instead of a new draft.
func (r *Repo) Exists(ctx context.Context, companyID, clientID string) (bool, error) {
	const q = `
select count(1)
from clients
where client_id = $1::uuid and company_id = $2::uuid;
`
	var n int
	if err := r.db.QueryRow(ctx, q, clientID, companyID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/USSTM/facility-portal/generated/db"
	"github.com/USSTM/facility-portal/internal/rbac"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrNotFound   = errors.New("account not found")
	ErrEmailTaken = errors.New("email already registered")
	ErrInvalid    = errors.New("invalid account")
)

// Account is a person who can sign in to exactly one portal. Permissions is
// the stored per-user record, nil when the role template applies.
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         rbac.Role
	VendorID     string
	Permissions  json.RawMessage
	CreatedAt    time.Time
}

type NewAccount struct {
	Email        string
	PasswordHash string
	Role         rbac.Role
	VendorID     string
	Permissions  json.RawMessage
}

func (n NewAccount) validate() error {
	if strings.TrimSpace(n.Email) == "" || n.PasswordHash == "" {
		return fmt.Errorf("%w: email and password are required", ErrInvalid)
	}
	if !n.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalid, n.Role)
	}
	vendorRole := n.Role == rbac.RoleVendorAdmin || n.Role == rbac.RoleVendorStaff
	if vendorRole != (strings.TrimSpace(n.VendorID) != "") {
		return fmt.Errorf("%w: vendor id must be set exactly for vendor roles", ErrInvalid)
	}
	return nil
}

type Repository struct {
	queries *db.Queries
}

func NewRepository(queries *db.Queries) *Repository {
	return &Repository{queries: queries}
}

func (r *Repository) Create(ctx context.Context, n NewAccount) (*Account, error) {
	if err := n.validate(); err != nil {
		return nil, err
	}

	row, err := r.queries.CreateAccount(ctx, db.CreateAccountParams{
		Email:        normalizeEmail(n.Email),
		PasswordHash: n.PasswordHash,
		Role:         string(n.Role),
		VendorID:     nullable(n.VendorID),
		Permissions:  nullableJSON(n.Permissions),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating account: %w", err)
	}
	return fromRow(row), nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return lookup(r.queries.GetAccountByEmail(ctx, normalizeEmail(email)))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return lookup(r.queries.GetAccountByID(ctx, id))
}

// UpdatePermissions replaces the stored permission record. A nil record
// reverts the account to its role template.
func (r *Repository) UpdatePermissions(ctx context.Context, id uuid.UUID, perms json.RawMessage) error {
	rows, err := r.queries.UpdateAccountPermissions(ctx, db.UpdateAccountPermissionsParams{
		ID:          id,
		Permissions: nullableJSON(perms),
	})
	if err != nil {
		return fmt.Errorf("updating permissions: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func lookup(row db.Account, err error) (*Account, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading account: %w", err)
	}
	return fromRow(row), nil
}

func fromRow(row db.Account) *Account {
	acc := &Account{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         rbac.Role(row.Role),
		CreatedAt:    row.CreatedAt.Time,
	}
	if row.VendorID.Valid {
		acc.VendorID = row.VendorID.String
	}
	if len(row.Permissions) > 0 {
		acc.Permissions = json.RawMessage(row.Permissions)
	}
	return acc
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nullable(s string) pgtype.Text {
	if strings.TrimSpace(s) == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func nullableJSON(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

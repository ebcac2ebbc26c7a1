package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/USSTM/facility-portal/internal/accounts"
	"github.com/USSTM/facility-portal/internal/rbac"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const DefaultPassword = "correct-horse-battery"

// AccountBuilder provides a fluent interface for creating test accounts
type AccountBuilder struct {
	email       string
	password    string
	role        rbac.Role
	vendorID    string
	permissions json.RawMessage
	testDB      *TestDatabase
	t           *testing.T
}

// NewAccount creates a new account builder, a colleague requester by default
func (tdb *TestDatabase) NewAccount(t *testing.T) *AccountBuilder {
	return &AccountBuilder{
		email:    "test@example.com",
		password: DefaultPassword,
		role:     rbac.RoleColleagueRequester,
		testDB:   tdb,
		t:        t,
	}
}

func (ab *AccountBuilder) WithEmail(email string) *AccountBuilder {
	ab.email = email
	return ab
}

func (ab *AccountBuilder) WithPassword(password string) *AccountBuilder {
	ab.password = password
	return ab
}

// WithPermissions stores a per-user permission record instead of the role template
func (ab *AccountBuilder) WithPermissions(raw string) *AccountBuilder {
	ab.permissions = json.RawMessage(raw)
	return ab
}

func (ab *AccountBuilder) AsMainAdmin() *AccountBuilder {
	ab.role = rbac.RoleMainAdmin
	ab.vendorID = ""
	return ab
}

func (ab *AccountBuilder) AsFacilityManager() *AccountBuilder {
	ab.role = rbac.RoleFacilityManager
	ab.vendorID = ""
	return ab
}

func (ab *AccountBuilder) AsVendorAdmin(vendorID string) *AccountBuilder {
	ab.role = rbac.RoleVendorAdmin
	ab.vendorID = vendorID
	return ab
}

// Create creates the account in the database
func (ab *AccountBuilder) Create() *accounts.Account {
	hash, err := bcrypt.GenerateFromPassword([]byte(ab.password), bcrypt.MinCost)
	require.NoError(ab.t, err, "Failed to hash password")

	acc, err := ab.testDB.Accounts().Create(context.Background(), accounts.NewAccount{
		Email:        ab.email,
		PasswordHash: string(hash),
		Role:         ab.role,
		VendorID:     ab.vendorID,
		Permissions:  ab.permissions,
	})
	require.NoError(ab.t, err, "Failed to create account")
	return acc
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/USSTM/facility-portal/internal/accounts"
	"github.com/USSTM/facility-portal/internal/config"
	"github.com/USSTM/facility-portal/internal/database"
	"github.com/USSTM/facility-portal/internal/rbac"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) != 4 && len(os.Args) != 5 {
		fmt.Fprintf(os.Stderr, "Usage: %s <email> <password> <role> [vendor-id]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Example: %s admin@example.com mypassword main-admin\n", os.Args[0])
		os.Exit(1)
	}

	email := os.Args[1]
	password := os.Args[2]
	role := rbac.Role(os.Args[3])
	var vendorID string
	if len(os.Args) == 5 {
		vendorID = os.Args[4]
	}

	// Generate bcrypt hash
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating hash: %v\n", err)
		os.Exit(1)
	}

	// Connect to database
	cfg := config.Load()
	db, err := database.New(&cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to migrate database: %v\n", err)
		os.Exit(1)
	}

	acc, err := accounts.NewRepository(db.Queries()).Create(ctx, accounts.NewAccount{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		VendorID:     vendorID,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create account: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Account created successfully: %s (%s)\n", acc.Email, acc.Role)
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/USSTM/facility-portal/internal/accounts"
	"github.com/USSTM/facility-portal/internal/config"
	"github.com/USSTM/facility-portal/internal/database"
	"github.com/USSTM/facility-portal/internal/permissions"
	"github.com/USSTM/facility-portal/internal/rbac"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type SeedData struct {
	Accounts []Account `yaml:"accounts"`
}

// Account is one seeded sign-in. Pages and Actions, when present, become
// the stored permission record; otherwise the role template applies.
type Account struct {
	Email    string                     `yaml:"email"`
	Password string                     `yaml:"password"`
	Role     string                     `yaml:"role"`
	VendorID string                     `yaml:"vendor_id"`
	Pages    map[string]bool            `yaml:"pages"`
	Actions  map[string]map[string]bool `yaml:"actions"`
	Menu     []string                   `yaml:"menu_items"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return errors.New("command required")
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "seed":
		return seedCommand(args)
	case "nuke":
		return nukeCommand(args)
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func seedCommand(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "", "YAML file to seed from")
	dir := fs.String("dir", "", "Directory of YAML files to seed from")
	dryRun := fs.Bool("dry-run", false, "Validate files without making database changes")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	files, err := resolveFiles(*file, *dir)
	if err != nil {
		return err
	}

	seedData, err := loadSeedData(files)
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}

	if err := validateSeedData(seedData); err != nil {
		return err
	}
	if *dryRun {
		fmt.Println("dry run: data structure is valid")
		return nil
	}

	cfg := config.Load()
	seedDB, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer seedDB.Close()

	ctx := context.Background()
	if err := seedDB.Migrate(ctx); err != nil {
		return err
	}

	fmt.Printf("seeding database from %d file(s)\n", len(files))
	return applySeedData(ctx, accounts.NewRepository(seedDB.Queries()), seedData)
}

func nukeCommand(args []string) error {
	fs := flag.NewFlagSet("nuke", flag.ExitOnError)
	force := fs.Bool("force", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if !*force && !confirmNuke() {
		fmt.Println("operation cancelled")
		return nil
	}

	cfg := config.Load()
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	fmt.Println("resetting database with goose...")
	if err := db.Reset(context.Background()); err != nil {
		return err
	}
	fmt.Println("database reset complete - ready for seeding")
	return nil
}

func resolveFiles(file, dir string) ([]string, error) {
	if file == "" && dir == "" {
		return nil, errors.New("must specify either --file or --dir")
	}

	if file != "" && dir != "" {
		return nil, errors.New("cannot specify both --file and --dir")
	}

	if file != "" {
		return []string{file}, nil
	}

	return findYAMLFiles(dir)
}

func findYAMLFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && isYAMLFile(path) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", dir, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no YAML files found in directory: %s", dir)
	}

	return files, nil
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func loadSeedData(files []string) (*SeedData, error) {
	combined := &SeedData{}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}

		var fileData SeedData
		if err := yaml.Unmarshal(data, &fileData); err != nil {
			return nil, fmt.Errorf("failed to parse YAML in %s: %w", file, err)
		}

		combined.Accounts = append(combined.Accounts, fileData.Accounts...)
	}

	return combined, nil
}

func validateSeedData(data *SeedData) error {
	seen := make(map[string]bool, len(data.Accounts))
	for _, a := range data.Accounts {
		email := strings.ToLower(strings.TrimSpace(a.Email))
		if email == "" || a.Password == "" {
			return fmt.Errorf("account %q: email and password are required", a.Email)
		}
		if seen[email] {
			return fmt.Errorf("account %q listed twice", a.Email)
		}
		seen[email] = true
		if !rbac.Role(a.Role).Valid() {
			return fmt.Errorf("account %q: unknown role %q", a.Email, a.Role)
		}
	}
	fmt.Printf("  Accounts: %d\n", len(data.Accounts))
	return nil
}

// storedPermissions returns nil when the account should use its role template.
func (a Account) storedPermissions() (json.RawMessage, error) {
	if a.Pages == nil && a.Actions == nil && a.Menu == nil {
		return nil, nil
	}
	raw, err := json.Marshal(map[string]any{
		"pages":     a.Pages,
		"actions":   a.Actions,
		"menuItems": a.Menu,
	})
	if err != nil {
		return nil, err
	}
	return permissions.Normalize(raw).JSON(), nil
}

func applySeedData(ctx context.Context, repo *accounts.Repository, data *SeedData) error {
	for _, a := range data.Accounts {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", a.Email, err)
		}

		perms, err := a.storedPermissions()
		if err != nil {
			return fmt.Errorf("failed to encode permissions for %s: %w", a.Email, err)
		}

		created, err := repo.Create(ctx, accounts.NewAccount{
			Email:        a.Email,
			PasswordHash: string(hashedPassword),
			Role:         rbac.Role(a.Role),
			VendorID:     a.VendorID,
			Permissions:  perms,
		})
		if errors.Is(err, accounts.ErrEmailTaken) {
			fmt.Printf("skipped existing account: %s\n", a.Email)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create account %s: %w", a.Email, err)
		}
		fmt.Printf("created account: %s (%s)\n", created.Email, created.Role)
	}

	fmt.Println("seeding completed")
	return nil
}

func confirmNuke() bool {
	fmt.Print("warning: this will delete all data from the database. are you sure? (yes/no): ")

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false
	}

	return strings.ToLower(strings.TrimSpace(response)) == "yes"
}

func printUsage() {
	fmt.Println("Seeder Tool - Account seeding utility for the facility portal")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  seeder <command> [flags]")
	fmt.Println()
	fmt.Println("COMMANDS:")
	fmt.Println("  seed        Seed accounts from YAML files")
	fmt.Println("  nuke        Delete all data from database")
	fmt.Println("  help        Show this help message")
	fmt.Println()
	fmt.Println("SEED FLAGS:")
	fmt.Println("  --file      Path to a single YAML file")
	fmt.Println("  --dir       Path to directory containing YAML files")
	fmt.Println("  --dry-run   Validate files without making database changes")
	fmt.Println()
	fmt.Println("NUKE FLAGS:")
	fmt.Println("  --force     Skip confirmation prompt")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  seeder seed --file dev-accounts.yaml")
	fmt.Println("  seeder seed --dir ./seed-data/ --dry-run")
	fmt.Println("  seeder nuke --force")
}

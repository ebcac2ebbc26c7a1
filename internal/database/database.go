package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/USSTM/facility-portal/generated/db"
	"github.com/USSTM/facility-portal/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:generate go tool sqlc generate -f ../../sqlc.yaml

//go:embed migrations/*.sql
var migrations embed.FS

type Database struct {
	pool    *pgxpool.Pool
	queries *db.Queries
}

func New(cfg *config.DatabaseConfig) (*Database, error) {
	return Connect(context.Background(), cfg.ConnectionString())
}

func Connect(ctx context.Context, connStr string) (*Database, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Activate and test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		pool:    pool,
		queries: db.New(pool),
	}, nil
}

// Migrate applies the embedded goose migrations.
func (d *Database) Migrate(ctx context.Context) error {
	return d.withGoose(func(sqlDB *sql.DB) error {
		if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		return nil
	})
}

// Reset rolls every migration back and applies them again, dropping all data.
func (d *Database) Reset(ctx context.Context) error {
	return d.withGoose(func(sqlDB *sql.DB) error {
		if err := goose.ResetContext(ctx, sqlDB, "migrations"); err != nil {
			return fmt.Errorf("resetting migrations: %w", err)
		}
		if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		return nil
	})
}

func (d *Database) withGoose(fn func(*sql.DB) error) error {
	sqlDB := stdlib.OpenDBFromPool(d.pool)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return fn(sqlDB)
}

func (d *Database) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

func (d *Database) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

func (d *Database) Queries() *db.Queries {
	return d.queries
}

func (d *Database) Pool() *pgxpool.Pool {
	return d.pool
}

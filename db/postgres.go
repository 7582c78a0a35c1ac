package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/polarclim/analysis_launcher/endpoints/health"
)

type Repository interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
	health.HealthService
}

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects a pgx pool against the given URL and
// verifies the connection with a ping.
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func (r *PostgresRepository) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return r.pool.Exec(ctx, sql, args...)
}

func (r *PostgresRepository) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return r.pool.Query(ctx, sql, args...)
}

func (r *PostgresRepository) ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) Ok() (bool, string) {
	if err := r.ping(context.Background()); err != nil {
		return false, fmt.Sprintf("Database ping failed: %v", err)
	}
	return true, "Database connection is healthy"
}

func (r *PostgresRepository) ServiceName() string {
	return "PostgresConnection"
}

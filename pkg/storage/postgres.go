package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/loadcart/http-load-runner/pkg/models"
)

//go:embed migrations/*.sql
var postgresFS embed.FS

// PostgresStore implements Store interface using PostgreSQL
type PostgresStore struct {
	db  *sql.DB
	dsn string
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{
		db:  db,
		dsn: dsn,
	}

	// Run migrations
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// migrate runs database migrations
func (s *PostgresStore) migrate() error {
	schema, err := postgresFS.ReadFile("migrations/001_postgres_schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// SaveRun persists a run and its violations in one transaction
func (s *PostgresStore) SaveRun(ctx context.Context, record *models.RunRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	runQuery := `
		INSERT INTO runs (
			id, scenario, profile, shape, base_url,
			started_at, finished_at, duration_seconds,
			peak_users, total_requests, total_failures, error_rate_pct,
			worst_p95_ms, violation_count, passed, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = tx.ExecContext(ctx, runQuery,
		record.ID, record.Scenario, record.Profile, record.ShapeName, record.BaseURL,
		record.StartedAt, record.FinishedAt, record.DurationSeconds,
		record.PeakUsers, record.TotalRequests, record.TotalFailures, record.ErrorRatePct,
		record.WorstP95Ms, record.ViolationCount, record.Passed, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	violationQuery := `
		INSERT INTO run_violations (
			id, run_id, position, endpoint, metric, observed, limit_value, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for i := range record.Violations {
		v := &record.Violations[i]
		if v.ID == "" {
			v.ID = uuid.New().String()
		}
		v.RunID = record.ID
		if v.CreatedAt.IsZero() {
			v.CreatedAt = record.CreatedAt
		}

		_, err = tx.ExecContext(ctx, violationQuery,
			v.ID, v.RunID, i, v.Endpoint, v.Metric, v.Observed, v.LimitValue, v.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert violation: %w", err)
		}
	}

	return tx.Commit()
}

const runColumns = `
	id, scenario, profile, shape, base_url,
	started_at, finished_at, duration_seconds,
	peak_users, total_requests, total_failures, error_rate_pct,
	worst_p95_ms, violation_count, passed, created_at
`

func scanRun(row interface{ Scan(...interface{}) error }) (*models.RunRecord, error) {
	var record models.RunRecord

	err := row.Scan(
		&record.ID, &record.Scenario, &record.Profile, &record.ShapeName, &record.BaseURL,
		&record.StartedAt, &record.FinishedAt, &record.DurationSeconds,
		&record.PeakUsers, &record.TotalRequests, &record.TotalFailures, &record.ErrorRatePct,
		&record.WorstP95Ms, &record.ViolationCount, &record.Passed, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// GetRun retrieves a run by ID
func (s *PostgresStore) GetRun(ctx context.Context, id string) (*models.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = $1`

	record, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	return record, nil
}

// ListRuns retrieves recent runs, newest first. An empty scenario matches
// all scenarios.
func (s *PostgresStore) ListRuns(ctx context.Context, scenario string, limit int) ([]*models.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC LIMIT $1`
	args := []interface{}{limit}

	if scenario != "" {
		query = `SELECT ` + runColumns + ` FROM runs WHERE scenario = $1 ORDER BY started_at DESC LIMIT $2`
		args = []interface{}{scenario, limit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// GetRunViolations retrieves the violations of a run in the order the
// threshold check reported them
func (s *PostgresStore) GetRunViolations(ctx context.Context, runID string) ([]*models.StoredViolation, error) {
	query := `
		SELECT id, run_id, endpoint, metric, observed, limit_value, created_at
		FROM run_violations
		WHERE run_id = $1
		ORDER BY position
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var violations []*models.StoredViolation
	for rows.Next() {
		var v models.StoredViolation

		err := rows.Scan(
			&v.ID, &v.RunID, &v.Endpoint, &v.Metric, &v.Observed, &v.LimitValue, &v.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		violations = append(violations, &v)
	}

	return violations, rows.Err()
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

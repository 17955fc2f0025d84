package records

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresSink persists call records, promises to pay, and disputes to
// PostgreSQL.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink creates a sink over the given database handle.
func NewPostgresSink(db *sql.DB) *PostgresSink {
	if db == nil {
		return nil
	}
	return &PostgresSink{db: db}
}

// OpenPostgresSink opens a connection to the given DSN and wraps it in a sink.
func OpenPostgresSink(dsn string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("records: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &PostgresSink{db: db}, nil
}

// Close releases the underlying database handle.
func (s *PostgresSink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveCallRecord inserts a call summary row.
func (s *PostgresSink) SaveCallRecord(ctx context.Context, record CallRecord) error {
	if s == nil || s.db == nil {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO call_records (
			id, customer_id, outcome, payment_status, summary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), record.CustomerID, record.Outcome, record.PaymentStatus, record.Summary, time.Now())

	if err != nil {
		return fmt.Errorf("records: failed to insert call record: %w", err)
	}
	return nil
}

// SavePTP inserts a promise-to-pay row and returns its reference id.
func (s *PostgresSink) SavePTP(ctx context.Context, customerID string, amount float64, date, planType string) (string, error) {
	if s == nil || s.db == nil {
		return "", fmt.Errorf("records: sink not configured")
	}

	id := newReferenceID("PTP")
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO promises_to_pay (
			id, customer_id, amount, due_date, plan_type, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`, id, customerID, amount, date, planType, time.Now())

	if err != nil {
		return "", fmt.Errorf("records: failed to insert ptp: %w", err)
	}
	return id, nil
}

// SaveDispute inserts a dispute row and returns its reference id.
func (s *PostgresSink) SaveDispute(ctx context.Context, customerID, reason string) (string, error) {
	if s == nil || s.db == nil {
		return "", fmt.Errorf("records: sink not configured")
	}

	id := newReferenceID("DSP")
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO disputes (
			id, customer_id, reason, status, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`, id, customerID, reason, "open", time.Now())

	if err != nil {
		return "", fmt.Errorf("records: failed to insert dispute: %w", err)
	}
	return id, nil
}

// newReferenceID builds short human-readable ids like PTP-1A2B3C4D. These go
// into chat messages, so full UUIDs are too noisy.
func newReferenceID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(raw[:8]))
}

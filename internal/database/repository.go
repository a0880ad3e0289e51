package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository handles share audit log operations.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// ErrShareNotFound is returned when no share matches the given token.
var ErrShareNotFound = errors.New("share not found")

// InsertShare records one shared recommendation.
func (r *Repository) InsertShare(ctx context.Context, rec *ShareRecord) error {
	stmt, err := r.db.GetPreparedStatement("insert_share")
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx,
		rec.ID, rec.TokenID, rec.EmployeeRef, rec.SharedWith,
		rec.ReadinessTier, rec.IncrementBand, rec.Payload,
		rec.ExpiresAt, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert share: %w", err)
	}

	return nil
}

// GetShareByToken returns the share for the given token ID.
func (r *Repository) GetShareByToken(ctx context.Context, tokenID string) (*ShareRecord, error) {
	stmt, err := r.db.GetPreparedStatement("get_share_by_token")
	if err != nil {
		return nil, err
	}

	var rec ShareRecord
	err = stmt.QueryRowContext(ctx, tokenID).Scan(
		&rec.ID, &rec.TokenID, &rec.EmployeeRef, &rec.SharedWith,
		&rec.ReadinessTier, &rec.IncrementBand, &rec.Payload,
		&rec.ExpiresAt, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share: %w", err)
	}

	return &rec, nil
}

// ListSharesByEmployee returns the most recent shares for an employee.
func (r *Repository) ListSharesByEmployee(ctx context.Context, employeeRef string, limit int) ([]*ShareRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	stmt, err := r.db.GetPreparedStatement("list_shares_by_employee")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, employeeRef, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	defer rows.Close()

	var out []*ShareRecord
	for rows.Next() {
		var rec ShareRecord
		if err := rows.Scan(
			&rec.ID, &rec.TokenID, &rec.EmployeeRef, &rec.SharedWith,
			&rec.ReadinessTier, &rec.IncrementBand, &rec.Payload,
			&rec.ExpiresAt, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		out = append(out, &rec)
	}

	return out, rows.Err()
}

// LogAccess records one read of a shared recommendation.
func (r *Repository) LogAccess(ctx context.Context, shareID, remoteAddr string) error {
	stmt, err := r.db.GetPreparedStatement("insert_access")
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx, uuid.New().String(), shareID, remoteAddr, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to log share access: %w", err)
	}

	return nil
}

// CountAccess returns how many times a share has been read.
func (r *Repository) CountAccess(ctx context.Context, shareID string) (int, error) {
	stmt, err := r.db.GetPreparedStatement("count_access")
	if err != nil {
		return 0, err
	}

	var n int
	if err := stmt.QueryRowContext(ctx, shareID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count share access: %w", err)
	}

	return n, nil
}

// PurgeExpired removes shares past their lifetime. Access log rows are
// kept for audit.
func (r *Repository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	stmt, err := r.db.GetPreparedStatement("purge_expired")
	if err != nil {
		return 0, err
	}

	res, err := stmt.ExecContext(ctx, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired shares: %w", err)
	}

	return res.RowsAffected()
}

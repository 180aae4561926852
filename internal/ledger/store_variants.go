package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Moving-average weights for variant timing. The heavy weight on the previous
// average smooths transient spikes while staying responsive to sustained
// slowdowns.
const (
	emaPreviousWeight = 0.8
	emaSampleWeight   = 0.2
)

// ListEnabledVariants returns the variants that may accept new generations:
// enabled and not blacklisted, cheapest first.
func (s *Store) ListEnabledVariants(ctx context.Context) ([]*Variant, error) {
	return s.listVariants(ctx, `WHERE is_enabled = 1 AND is_blacklisted = 0`)
}

// ListVariants returns every registry entry, including disabled and
// blacklisted ones, for operator tooling.
func (s *Store) ListVariants(ctx context.Context) ([]*Variant, error) {
	return s.listVariants(ctx, "")
}

func (s *Store) listVariants(ctx context.Context, whereClause string) ([]*Variant, error) {
	query := `SELECT ` + variantColumns + ` FROM variants`
	if whereClause != "" {
		query += " " + whereClause
	}
	query += ` ORDER BY is_paid, cost_per_generation, name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	var variants []*Variant
	for rows.Next() {
		variant, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		variants = append(variants, variant)
	}
	return variants, rows.Err()
}

// GetVariant fetches a registry entry by name.
func (s *Store) GetVariant(ctx context.Context, name string) (*Variant, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+variantColumns+` FROM variants WHERE name = ?`, name)
	variant, err := scanVariant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: variant %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return variant, nil
}

// RecordTiming folds an observed generation time into the variant's moving
// average and evaluates the blacklist policy in the same transaction.
// MarkCompleted calls this automatically; it exists separately for
// maintenance tooling.
func (s *Store) RecordTiming(ctx context.Context, name string, elapsedSeconds float64) error {
	if elapsedSeconds < 0 {
		return fmt.Errorf("elapsed seconds must not be negative, got %f", elapsedSeconds)
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	return s.withTxRetry(ctx, func(tx *sql.Tx) error {
		return s.recordTimingTx(ctx, tx, name, elapsedSeconds, timestamp)
	})
}

// recordTimingTx applies the moving-average update and blacklist evaluation
// inside an existing transaction. A stored average of zero means no samples
// yet, so the first observation sets the average directly. Once a variant is
// blacklisted only the average keeps tracking; the flags never clear here.
func (s *Store) recordTimingTx(ctx context.Context, tx *sql.Tx, name string, elapsedSeconds float64, timestamp string) error {
	row := tx.QueryRowContext(ctx, `SELECT avg_time_seconds, max_time_seconds, is_blacklisted FROM variants WHERE name = ?`, name)
	var (
		avg         float64
		maxTime     float64
		blacklisted int64
	)
	if err := row.Scan(&avg, &maxTime, &blacklisted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: variant %q", ErrNotFound, name)
		}
		return fmt.Errorf("load variant timing: %w", err)
	}

	newAvg := elapsedSeconds
	if avg > 0 {
		newAvg = emaPreviousWeight*avg + emaSampleWeight*elapsedSeconds
	}

	if blacklisted != 0 || newAvg <= maxTime {
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE variants SET avg_time_seconds = ?, updated_at = ? WHERE name = ?`,
			newAvg,
			timestamp,
			name,
		); err != nil {
			return fmt.Errorf("update variant timing: %w", err)
		}
		return nil
	}

	reason := fmt.Sprintf("average generation time %.1fs exceeded the %.0fs limit by %.1fs", newAvg, maxTime, newAvg-maxTime)
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE variants
         SET avg_time_seconds = ?, is_blacklisted = 1, is_enabled = 0, blacklist_reason = ?, updated_at = ?
         WHERE name = ?`,
		newAvg,
		reason,
		timestamp,
		name,
	); err != nil {
		return fmt.Errorf("blacklist variant: %w", err)
	}
	return nil
}

// SetVariantEnabled toggles whether a variant is offered for new generations.
// Enabling a blacklisted variant is rejected; reset the blacklist first.
func (s *Store) SetVariantEnabled(ctx context.Context, name string, enabled bool) error {
	return s.withTxRetry(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT is_blacklisted FROM variants WHERE name = ?`, name)
		var blacklisted int64
		if err := row.Scan(&blacklisted); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: variant %q", ErrNotFound, name)
			}
			return fmt.Errorf("load variant: %w", err)
		}
		if enabled && blacklisted != 0 {
			return fmt.Errorf("%w: variant %q is blacklisted, reset it before enabling", ErrVariantUnavailable, name)
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE variants SET is_enabled = ?, updated_at = ? WHERE name = ?`,
			boolToInt(enabled),
			time.Now().UTC().Format(time.RFC3339Nano),
			name,
		); err != nil {
			return fmt.Errorf("set variant enabled: %w", err)
		}
		return nil
	})
}

// ResetBlacklist clears a variant's blacklist state, re-enables it, and zeroes
// the timing average so the next observation starts fresh. This is the
// explicit administrative escape hatch; nothing in the generation flow ever
// un-blacklists a variant.
func (s *Store) ResetBlacklist(ctx context.Context, name string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE variants
         SET is_blacklisted = 0, blacklist_reason = NULL, is_enabled = 1, avg_time_seconds = 0, updated_at = ?
         WHERE name = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		name,
	)
	if err != nil {
		return fmt.Errorf("reset blacklist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: variant %q", ErrNotFound, name)
	}
	return nil
}

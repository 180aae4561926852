package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// transitionError explains why a guarded transition update matched no rows.
func (s *Store) transitionError(ctx context.Context, id int64, from, to Status) error {
	gen, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if gen == nil {
		return fmt.Errorf("%w: generation %d", ErrNotFound, id)
	}
	return fmt.Errorf("%w: generation %d is %s, cannot move %s -> %s", ErrInvalidTransition, id, gen.Status, from, to)
}

// MarkProcessing transitions a pending generation to processing.
func (s *Store) MarkProcessing(ctx context.Context, id int64) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE generations SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		StatusProcessing,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusPending,
	)
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return s.transitionError(ctx, id, StatusPending, StatusProcessing)
	}
	return nil
}

// ClaimNextPending atomically selects the oldest pending generation and
// transitions it to processing. It returns nil when the queue is empty.
func (s *Store) ClaimNextPending(ctx context.Context) (*Generation, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	var claimed *Generation
	err := s.withTxRetry(ctx, func(tx *sql.Tx) error {
		claimed = nil
		row := tx.QueryRowContext(
			ctx,
			`SELECT `+generationColumns+` FROM generations WHERE status = ? ORDER BY created_at, id LIMIT 1`,
			StatusPending,
		)
		gen, err := scanGeneration(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("select pending generation: %w", err)
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE generations SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			StatusProcessing,
			timestamp,
			gen.ID,
			StatusPending,
		); err != nil {
			return fmt.Errorf("claim generation: %w", err)
		}

		gen.Status = StatusProcessing
		gen.UpdatedAt = now
		claimed = gen
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// MarkCompleted transitions a processing generation to completed, records the
// result path and elapsed time, and updates the variant's moving average and
// blacklist state in the same transaction.
func (s *Store) MarkCompleted(ctx context.Context, id int64, resultPath string, elapsedSeconds float64) error {
	if elapsedSeconds < 0 {
		return fmt.Errorf("elapsed seconds must not be negative, got %f", elapsedSeconds)
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	err := s.withTxRetry(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+generationColumns+` FROM generations WHERE id = ?`, id)
		gen, err := scanGeneration(row)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: generation %d", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("load generation: %w", err)
		}
		if gen.Status != StatusProcessing {
			return fmt.Errorf("%w: generation %d is %s, cannot move %s -> %s",
				ErrInvalidTransition, id, gen.Status, StatusProcessing, StatusCompleted)
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE generations
             SET status = ?, result_image_path = ?, generation_time_seconds = ?, error_message = NULL, updated_at = ?
             WHERE id = ? AND status = ?`,
			StatusCompleted,
			nullableString(resultPath),
			elapsedSeconds,
			timestamp,
			id,
			StatusProcessing,
		); err != nil {
			return fmt.Errorf("mark completed: %w", err)
		}

		return s.recordTimingTx(ctx, tx, gen.Variant, elapsedSeconds, timestamp)
	})
	if err != nil {
		return err
	}
	return nil
}

// MarkFailed transitions a processing generation to failed with a reason. It
// never touches variant timing: a failure carries no valid elapsed time.
func (s *Store) MarkFailed(ctx context.Context, id int64, reason string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE generations SET status = ?, error_message = ?, updated_at = ? WHERE id = ? AND status = ?`,
		StatusFailed,
		nullableString(reason),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return s.transitionError(ctx, id, StatusProcessing, StatusFailed)
	}
	return nil
}

// SetRating stores a rating on a completed generation. Repeated calls may
// overwrite the rating any number of times.
func (s *Store) SetRating(ctx context.Context, id int64, rating int) error {
	if !ValidRating(rating) {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE generations SET rating = ?, updated_at = ? WHERE id = ? AND status = ?`,
		rating,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusCompleted,
	)
	if err != nil {
		return fmt.Errorf("set rating: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		gen, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if gen == nil {
			return fmt.Errorf("%w: generation %d", ErrNotFound, id)
		}
		return fmt.Errorf("%w: generation %d is %s, rating requires %s", ErrInvalidTransition, id, gen.Status, StatusCompleted)
	}
	return nil
}

// FailStaleProcessing marks every processing generation failed with the given
// reason. The daemon runs it at startup: a restart cannot resume an in-flight
// inference call.
func (s *Store) FailStaleProcessing(ctx context.Context, reason string) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE generations SET status = ?, error_message = ?, updated_at = ? WHERE status = ?`,
		StatusFailed,
		nullableString(reason),
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("fail stale processing: %w", err)
	}
	return res.RowsAffected()
}

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

func (g NewGeneration) validate() error {
	if strings.TrimSpace(g.PersonImagePath) == "" {
		return errors.New("person image path is required")
	}
	if strings.TrimSpace(g.GarmentImagePath) == "" {
		return errors.New("garment image path is required")
	}
	if strings.TrimSpace(g.Variant) == "" {
		return fmt.Errorf("%w: variant name is required", ErrVariantUnavailable)
	}
	return nil
}

// Create inserts a pending generation. The variant must exist, be enabled,
// and not be blacklisted; the record snapshots the variant's current price so
// later price changes never rewrite history.
func (s *Store) Create(ctx context.Context, req NewGeneration) (*Generation, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	var created *Generation
	err := s.withTxRetry(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+variantColumns+` FROM variants WHERE name = ?`, req.Variant)
		variant, err := scanVariant(row)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: unknown variant %q", ErrVariantUnavailable, req.Variant)
		}
		if err != nil {
			return fmt.Errorf("load variant: %w", err)
		}
		if variant.IsBlacklisted {
			return fmt.Errorf("%w: variant %q is blacklisted: %s", ErrVariantUnavailable, variant.Name, variant.BlacklistReason)
		}
		if !variant.IsEnabled {
			return fmt.Errorf("%w: variant %q is disabled", ErrVariantUnavailable, variant.Name)
		}

		res, err := tx.ExecContext(
			ctx,
			`INSERT INTO generations (
                person_name, person_image_path, garment_name, garment_image_path,
                variant, cost, status, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			strings.TrimSpace(req.PersonName),
			req.PersonImagePath,
			strings.TrimSpace(req.GarmentName),
			req.GarmentImagePath,
			variant.Name,
			variant.CostPerGeneration,
			StatusPending,
			timestamp,
			timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert generation: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}

		row = tx.QueryRowContext(ctx, `SELECT `+generationColumns+` FROM generations WHERE id = ?`, id)
		created, err = scanGeneration(row)
		if err != nil {
			return fmt.Errorf("read back generation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID fetches a generation by identifier. It returns nil without error
// when the id is unknown.
func (s *Store) GetByID(ctx context.Context, id int64) (*Generation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+generationColumns+` FROM generations WHERE id = ?`, id)
	gen, err := scanGeneration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get generation: %w", err)
	}
	return gen, nil
}

// List returns generations newest first, filtered by status set (or all
// records when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Generation, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + generationColumns + ` FROM generations`
	orderClause := ` ORDER BY created_at DESC, id DESC`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	var generations []*Generation
	for rows.Next() {
		gen, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		generations = append(generations, gen)
	}
	return generations, rows.Err()
}

// Remove deletes a generation row by identifier and reports whether a row was
// removed. The caller is responsible for deleting the owned image files after
// the row is gone.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM generations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete generation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

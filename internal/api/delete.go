package api

import (
	"context"
	"fmt"

	"fitroom/internal/fileutil"
	"fitroom/internal/ledger"
	"fitroom/internal/logging"
)

// DeleteGeneration removes the record and then its owned image files. The
// row goes first so no reader can ever observe a record whose files are
// already gone; file removal afterwards is best-effort and logged.
func (s *Service) DeleteGeneration(ctx context.Context, id int64) error {
	gen, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if gen == nil {
		return fmt.Errorf("%w: generation %d", ledger.ErrNotFound, id)
	}

	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: generation %d", ledger.ErrNotFound, id)
	}

	for _, path := range gen.OwnedFiles() {
		if _, err := fileutil.RemoveIfExists(path); err != nil {
			s.logger.WarnContext(ctx, "failed to delete owned image",
				logging.Int64("generation_id", id),
				logging.String("path", path),
				logging.Error(err))
		}
	}

	s.logger.InfoContext(ctx, "generation deleted", logging.Int64("generation_id", id))
	return nil
}

package api

import (
	"context"
	"fmt"
	"strings"

	"fitroom/internal/ledger"
	"fitroom/internal/services"
)

// Image kinds accepted by ImagePath and the corresponding HTTP route.
const (
	ImageKindPerson  = "person"
	ImageKindGarment = "garment"
	ImageKindResult  = "result"
)

// ImagePath resolves the on-disk location of one of a record's owned images.
// Unknown records and records without the requested image map to
// ledger.ErrNotFound; an unrecognized kind is a validation error.
func (s *Service) ImagePath(ctx context.Context, id int64, kind string) (string, error) {
	gen, err := s.store.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if gen == nil {
		return "", fmt.Errorf("%w: generation %d", ledger.ErrNotFound, id)
	}

	var path string
	switch kind {
	case ImageKindPerson:
		path = gen.PersonImagePath
	case ImageKindGarment:
		path = gen.GarmentImagePath
	case ImageKindResult:
		path = gen.ResultImagePath
	default:
		return "", services.Wrap(services.ErrValidation, "api", "image",
			fmt.Sprintf("unknown image kind %q", kind), nil)
	}

	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: generation %d has no %s image", ledger.ErrNotFound, id, kind)
	}
	return path, nil
}

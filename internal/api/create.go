package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"fitroom/internal/fileutil"
	"fitroom/internal/imaging"
	"fitroom/internal/ledger"
	"fitroom/internal/logging"
	"fitroom/internal/services"
	"fitroom/internal/textutil"
)

const (
	maxGarmentDownload = 20 << 20

	defaultPersonName  = "Unnamed Person"
	defaultGarmentName = "Unnamed Garment"
)

// UploadedImage carries one raw upload through normalization.
type UploadedImage struct {
	Data        []byte
	Filename    string
	ContentType string
}

// CreateRequest describes a new generation submission. Garment can arrive as
// an upload or as a URL the service downloads on the caller's behalf.
type CreateRequest struct {
	PersonName  string
	GarmentName string
	Person      UploadedImage
	Garment     UploadedImage
	GarmentURL  string
	Variant     string
}

// CreateGeneration normalizes the uploads, writes them under the uploads
// directory, and inserts a pending ledger record. Files written before a
// failed insert are removed again so rejected submissions leave no orphans.
func (s *Service) CreateGeneration(ctx context.Context, req CreateRequest) (*Generation, error) {
	if strings.TrimSpace(req.Variant) == "" {
		return nil, fmt.Errorf("%w: variant name is required", ledger.ErrVariantUnavailable)
	}
	if len(req.Person.Data) == 0 {
		return nil, services.Wrap(services.ErrValidation, "api", "create", "person image is required", nil)
	}

	garment := req.Garment
	if len(garment.Data) == 0 {
		if strings.TrimSpace(req.GarmentURL) == "" {
			return nil, services.Wrap(services.ErrValidation, "api", "create", "garment image or garment url is required", nil)
		}
		downloaded, err := s.fetchGarment(ctx, req.GarmentURL)
		if err != nil {
			return nil, err
		}
		garment = downloaded
	}

	person, err := imaging.Normalize(req.Person.Data, req.Person.ContentType)
	if err != nil {
		return nil, fmt.Errorf("person image: %w", err)
	}
	garmentImg, err := imaging.Normalize(garment.Data, garment.ContentType)
	if err != nil {
		return nil, fmt.Errorf("garment image: %w", err)
	}

	personPath, err := s.saveUpload(person, req.Person.Filename, "person")
	if err != nil {
		return nil, err
	}
	garmentPath, err := s.saveUpload(garmentImg, garment.Filename, "garment")
	if err != nil {
		s.removeFileQuiet(ctx, personPath)
		return nil, err
	}

	rec, err := s.store.Create(ctx, ledger.NewGeneration{
		PersonName:       displayName(req.PersonName, req.Person.Filename, defaultPersonName),
		GarmentName:      displayName(req.GarmentName, garment.Filename, defaultGarmentName),
		PersonImagePath:  personPath,
		GarmentImagePath: garmentPath,
		Variant:          strings.TrimSpace(req.Variant),
	})
	if err != nil {
		s.removeFileQuiet(ctx, personPath)
		s.removeFileQuiet(ctx, garmentPath)
		return nil, err
	}

	s.logger.InfoContext(ctx, "generation queued",
		logging.Int64("generation_id", rec.ID),
		logging.String("variant", rec.Variant),
		logging.String("person", rec.PersonName),
		logging.String("garment", rec.GarmentName))

	dto := FromGeneration(rec)
	return &dto, nil
}

// fetchGarment downloads a garment image from a user-supplied URL so the
// normalizer can treat it like any other upload.
func (s *Service) fetchGarment(ctx context.Context, rawURL string) (UploadedImage, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return UploadedImage{}, services.Wrap(services.ErrValidation, "api", "fetch garment",
			fmt.Sprintf("invalid garment url %q", rawURL), nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return UploadedImage{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.fetch.Do(req)
	if err != nil {
		return UploadedImage{}, services.Wrap(services.ErrExternalService, "api", "fetch garment", "download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return UploadedImage{}, services.Wrap(services.ErrExternalService, "api", "fetch garment",
			fmt.Sprintf("source returned %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxGarmentDownload+1))
	if err != nil {
		return UploadedImage{}, services.Wrap(services.ErrExternalService, "api", "fetch garment", "read download", err)
	}
	if len(data) == 0 {
		return UploadedImage{}, services.Wrap(services.ErrExternalService, "api", "fetch garment", "source returned an empty body", nil)
	}
	if len(data) > maxGarmentDownload {
		return UploadedImage{}, services.Wrap(services.ErrValidation, "api", "fetch garment", "garment image exceeds the 20MB limit", nil)
	}

	return UploadedImage{
		Data:        data,
		Filename:    path.Base(parsed.Path),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (s *Service) saveUpload(img imaging.Image, originalName, role string) (string, error) {
	if err := os.MkdirAll(s.cfg.Paths.UploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads directory: %w", err)
	}
	dest := filepath.Join(s.cfg.Paths.UploadsDir, buildUploadName(originalName, role, img.Ext))
	if err := fileutil.WriteFileAtomic(dest, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s image: %w", role, err)
	}
	return dest, nil
}

// buildUploadName produces "{uuid}_{stem}{ext}" so concurrent submissions of
// identically named files never collide.
func buildUploadName(originalName, role, ext string) string {
	stem := filepath.Base(originalName)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	stem = textutil.SanitizeToken(stem)
	if stem == "image" {
		stem = role
	}
	return fmt.Sprintf("%s_%s%s", uuid.NewString(), stem, ext)
}

// displayName prefers the caller-supplied label and otherwise derives one
// from the upload filename, so "red-dress.jpg" lists as "Red Dress".
func displayName(explicit, filename, fallback string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	return textutil.DisplayTitle(filename, fallback)
}

func (s *Service) removeFileQuiet(ctx context.Context, path string) {
	if _, err := fileutil.RemoveIfExists(path); err != nil {
		s.logger.WarnContext(ctx, "failed to remove upload",
			logging.String("path", path),
			logging.Error(err))
	}
}

package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"fitroom/internal/api"
	"fitroom/internal/ledger"
)

// maxUploadBytes caps multipart submissions (two images plus form fields).
const maxUploadBytes = 50 << 20

func (s *apiServer) handleGenerations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listGenerations(w, r)
	case http.MethodPost:
		s.createGeneration(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) listGenerations(w http.ResponseWriter, r *http.Request) {
	var statuses []ledger.Status
	for _, value := range r.URL.Query()["status"] {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		status, ok := ledger.ParseStatus(trimmed)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", trimmed))
			return
		}
		statuses = append(statuses, status)
	}

	items, err := s.svc.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.GenerationListResponse{Items: items})
}

func (s *apiServer) createGeneration(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("parse multipart form: %v", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	person, _, err := readFormImage(r, "person_image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	garment, _, err := readFormImage(r, "garment_image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.svc.CreateGeneration(r.Context(), api.CreateRequest{
		PersonName:  r.FormValue("person_name"),
		GarmentName: r.FormValue("garment_name"),
		Person:      person,
		Garment:     garment,
		GarmentURL:  r.FormValue("garment_url"),
		Variant:     r.FormValue("variant"),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.CreateAccepted{ID: created.ID, Status: created.Status})
}

func (s *apiServer) handleGenerationSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/generations/"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) == 0 || parts[0] == "" {
		s.writeError(w, http.StatusNotFound, "generation not found")
		return
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid generation id")
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			s.getGeneration(w, r, id)
		case http.MethodDelete:
			s.deleteGeneration(w, r, id)
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	case len(parts) == 2 && parts[1] == "rating":
		if r.Method != http.MethodPatch {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.patchRating(w, r, id)
	case len(parts) == 3 && parts[1] == "images":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.serveImage(w, r, id, parts[2])
	default:
		s.writeError(w, http.StatusNotFound, "unknown generation resource")
	}
}

func (s *apiServer) getGeneration(w http.ResponseWriter, r *http.Request, id int64) {
	item, err := s.svc.Describe(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		s.writeError(w, http.StatusNotFound, "generation not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.GenerationResponse{Item: *item})
}

func (s *apiServer) deleteGeneration(w http.ResponseWriter, r *http.Request, id int64) {
	if err := s.svc.DeleteGeneration(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

func (s *apiServer) patchRating(w http.ResponseWriter, r *http.Request, id int64) {
	var payload struct {
		Rating *int `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Rating == nil {
		s.writeError(w, http.StatusBadRequest, `body must be {"rating": n}`)
		return
	}

	if err := s.svc.SetRating(r.Context(), id, *payload.Rating); err != nil {
		s.writeServiceError(w, err)
		return
	}

	item, err := s.svc.Describe(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		s.writeError(w, http.StatusNotFound, "generation not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.GenerationResponse{Item: *item})
}

func (s *apiServer) serveImage(w http.ResponseWriter, r *http.Request, id int64, kind string) {
	path, err := s.svc.ImagePath(r.Context(), id, kind)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	http.ServeFile(w, r, path)
}

// readFormImage pulls one optional image part out of the multipart form.
func readFormImage(r *http.Request, field string) (api.UploadedImage, bool, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return api.UploadedImage{}, false, nil
	}
	if err != nil {
		return api.UploadedImage{}, false, fmt.Errorf("read %s: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return api.UploadedImage{}, false, fmt.Errorf("read %s: %w", field, err)
	}
	return api.UploadedImage{
		Data:        data,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, true, nil
}

package daemon

import (
	"fmt"
	"net/http"
	"strings"

	"fitroom/internal/api"
)

func (s *apiServer) handleVariants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	all := r.URL.Query().Get("all")
	includeUnavailable := all == "1" || strings.EqualFold(all, "true")

	variants, err := s.svc.ListVariants(r.Context(), includeUnavailable)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.VariantListResponse{Variants: variants})
}

func (s *apiServer) handleVariantAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/variants/"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		s.writeError(w, http.StatusNotFound, "unknown variant action")
		return
	}
	name, action := parts[0], parts[1]

	var err error
	switch action {
	case "enable":
		err = s.svc.EnableVariant(r.Context(), name, true)
	case "disable":
		err = s.svc.EnableVariant(r.Context(), name, false)
	case "reset":
		err = s.svc.ResetVariant(r.Context(), name)
	default:
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown variant action %q", action))
		return
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	variant, err := s.svc.DescribeVariant(r.Context(), name)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.VariantResponse{Variant: *variant})
}

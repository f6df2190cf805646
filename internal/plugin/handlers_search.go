package plugin

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("query"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if len(q) > 200 {
		writeError(w, http.StatusBadRequest, "query is too long")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 && v <= 25 {
			limit = v
		}
	}

	items, err := s.handler.Query(r.Context(), q, limit)
	if err != nil {
		if errors.Is(err, ErrLookupFailed) {
			writeError(w, http.StatusBadGateway, "failed to query youtube")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if items == nil {
		items = []Item{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Items: items})
}

package api

import (
	"fmt"
	"net/http"
	"strconv"

	service "github.com/okian/magicboard/internal/app"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /leaderboard?sort=&q=&page=&page_size= requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := service.Query{
		Sort:   params.Get("sort"),
		Search: params.Get("q"),
	}

	var err error
	if q.Page, err = positiveParam(params.Get("page"), "page"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if q.PageSize, err = positiveParam(params.Get("page_size"), "page_size"); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	page, err := h.deps.Leaderboard(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// positiveParam parses an optional positive integer; absent yields 0.
func positiveParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrBadRequest, name)
	}
	return n, nil
}

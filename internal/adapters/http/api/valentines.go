package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	service "github.com/okian/magicboard/internal/app"
)

// ValentineHandler handles valentine note requests.
type ValentineHandler struct {
	deps ValentineDependencies
}

// NewValentineHandler creates a new valentine handler.
func NewValentineHandler(deps ValentineDependencies) *ValentineHandler {
	return &ValentineHandler{deps: deps}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	NoteID    string `json:"note_id"`
}

// HandlePostValentine handles POST /valentines requests.
func (h *ValentineHandler) HandlePostValentine(w http.ResponseWriter, r *http.Request) {
	var req service.SendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	note, dup, err := h.deps.SendValentine(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if dup {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, NoteID: note.NoteID})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", NoteID: note.NoteID})
}

// HandleGetValentines handles GET /valentines/{handle} requests.
func (h *ValentineHandler) HandleGetValentines(w http.ResponseWriter, r *http.Request) {
	notes, err := h.deps.Valentines(r.Context(), r.PathValue("handle"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

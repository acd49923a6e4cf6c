package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/magicboard/internal/domain/model"
)

const maxBodyBytes = 1 << 16

// MemberHandler handles member card and upsert requests.
type MemberHandler struct {
	deps MemberDependencies
}

// NewMemberHandler creates a new member handler.
func NewMemberHandler(deps MemberDependencies) *MemberHandler {
	return &MemberHandler{deps: deps}
}

// HandleGetMember handles GET /members/{handle} requests.
func (h *MemberHandler) HandleGetMember(w http.ResponseWriter, r *http.Request) {
	card, err := h.deps.Member(r.Context(), r.PathValue("handle"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// HandlePutMember handles PUT /members requests carrying an activity record.
func (h *MemberHandler) HandlePutMember(w http.ResponseWriter, r *http.Request) {
	var rec model.ActivityRecord
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := h.deps.UpsertMember(r.Context(), rec); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// internal/app/features/quickmatch/status.go
package quickmatch

import (
	"net/http"

	"github.com/dalemusser/quickmatch/internal/app/system/inputval"
	"github.com/dalemusser/quickmatch/internal/app/system/timeouts"
	"github.com/dalemusser/quickmatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type statusRequest struct {
	Status string `json:"status" validate:"notblank,status"`
}

// HandleChangeStatus handles POST /quickmatch/{id}/status (organizer only).
func (h *Handler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := inputval.DecodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "change status")
	defer cancel()

	m, err := h.Meetings.ChangeStatus(ctx, identity(r), chi.URLParam(r, "id"), models.Status(req.Status))
	if err != nil {
		h.fail(w, routeMembership, err)
		return
	}
	writeOK(w, "status changed", payload{"meeting": m})
}

// internal/app/features/quickmatch/create.go
package quickmatch

import (
	"net/http"

	"github.com/dalemusser/quickmatch/internal/app/meetings"
	"github.com/dalemusser/quickmatch/internal/app/system/htmlsanitize"
	"github.com/dalemusser/quickmatch/internal/app/system/inputval"
	"github.com/dalemusser/quickmatch/internal/app/system/timeouts"
	"github.com/dalemusser/quickmatch/internal/domain/models"
)

// createRequest is the body of POST /quickmatch/. Omitted enums and a zero
// max_participants take their defaults.
type createRequest struct {
	Title           string `json:"title" validate:"notblank,max=100"`
	Location        string `json:"location" validate:"notblank,max=100"`
	Category        string `json:"category" validate:"category"`
	GenderLimit     string `json:"gender_limit" validate:"gender_limit"`
	Status          string `json:"status" validate:"status"`
	MaxParticipants int    `json:"max_participants" validate:"min=0,max=1000"`
}

// HandleCreate handles POST /quickmatch/.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := inputval.DecodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create meeting")
	defer cancel()

	m, err := h.Meetings.Create(ctx, identity(r), meetings.CreateInput{
		Title:           htmlsanitize.PlainText(req.Title),
		Location:        htmlsanitize.PlainText(req.Location),
		Category:        models.Category(req.Category),
		GenderLimit:     models.GenderLimit(req.GenderLimit),
		Status:          models.Status(req.Status),
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		h.fail(w, routeCreate, err)
		return
	}
	writeOK(w, "meeting created", payload{"meeting": m})
}

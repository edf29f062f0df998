// internal/app/features/quickmatch/delete.go
package quickmatch

import (
	"net/http"

	"github.com/dalemusser/quickmatch/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// HandleDelete handles POST /quickmatch/{id}/delete (organizer only).
// Callers who do not organize the meeting get the same 404 as for a
// missing one.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete meeting")
	defer cancel()

	snap, err := h.Meetings.Delete(ctx, identity(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, routeDelete, err)
		return
	}
	writeOK(w, "meeting deleted", payload{"deleted": snap})
}

// internal/app/features/quickmatch/membership.go
package quickmatch

import (
	"net/http"

	"github.com/dalemusser/quickmatch/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// HandleJoin handles POST /quickmatch/{id}/join. Joining a meeting one
// already belongs to succeeds with "already joined".
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "join meeting")
	defer cancel()

	res, err := h.Meetings.Join(ctx, identity(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, routeMembership, err)
		return
	}

	msg := "joined meeting"
	if res.AlreadyJoined {
		msg = "already joined"
	}
	writeOK(w, msg, payload{"meeting": res.Meeting, "already_joined": res.AlreadyJoined})
}

// HandleLeave handles POST /quickmatch/{id}/leave.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "leave meeting")
	defer cancel()

	m, err := h.Meetings.Leave(ctx, identity(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, routeMembership, err)
		return
	}
	writeOK(w, "left meeting", payload{"meeting": m})
}

// ServeIsMember handles GET /quickmatch/{id}/is-member for the caller.
func (h *Handler) ServeIsMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "is member")
	defer cancel()

	ok, err := h.Meetings.IsMember(ctx, chi.URLParam(r, "id"), identity(r).UserID)
	if err != nil {
		h.fail(w, routeRead, err)
		return
	}
	writeOK(w, "ok", payload{"is_member": ok})
}

// internal/app/features/quickmatch/room.go
package quickmatch

import (
	"net/http"

	"github.com/dalemusser/quickmatch/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// HandleJoinRoom handles POST /quickmatch/{id}/room/join.
func (h *Handler) HandleJoinRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "join chat room")
	defer cancel()

	snap, err := h.Meetings.JoinRoom(ctx, identity(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, routeRoom, err)
		return
	}
	msg := "joined chat room"
	if !snap.Changed {
		msg = "already in chat room"
	}
	writeOK(w, msg, payload{"room": snap})
}

// HandleLeaveRoom handles POST /quickmatch/{id}/room/leave.
func (h *Handler) HandleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "leave chat room")
	defer cancel()

	snap, err := h.Meetings.LeaveRoom(ctx, identity(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, routeRoom, err)
		return
	}
	msg := "left chat room"
	if !snap.Changed {
		msg = "not in chat room"
	}
	writeOK(w, msg, payload{"room": snap})
}

// internal/app/features/quickmatch/routes.go
package quickmatch

import (
	"net/http"

	"github.com/dalemusser/quickmatch/internal/app/system/auth"
	"github.com/dalemusser/quickmatch/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /quickmatch. Reads are open; every
// mutation and the is-member check require a signed-in caller. A non-nil
// limiter throttles the mutating routes per caller.
func Routes(h *Handler, sm *auth.SessionManager, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	// Open reads
	r.Get("/", h.ServeList)
	r.Get("/search", h.ServeSearch)
	r.Get("/{id}", h.ServeDetail)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/{id}/is-member", h.ServeIsMember)

		pr.Group(func(mr chi.Router) {
			if limiter != nil {
				mr.Use(limiter.Middleware)
			}

			// CREATE / DELETE
			mr.Post("/", h.HandleCreate)
			mr.Post("/{id}/delete", h.HandleDelete)

			// MEMBERSHIP
			mr.Post("/{id}/join", h.HandleJoin)
			mr.Post("/{id}/leave", h.HandleLeave)

			// LIFECYCLE
			mr.Post("/{id}/status", h.HandleChangeStatus)

			// EVALUATION
			mr.Post("/{id}/evaluate/{memberID}", h.HandleEvaluate)

			// CHAT ROOM
			mr.Post("/{id}/room/join", h.HandleJoinRoom)
			mr.Post("/{id}/room/leave", h.HandleLeaveRoom)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed on this route")
	})
	return r
}

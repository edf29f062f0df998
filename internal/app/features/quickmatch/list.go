// internal/app/features/quickmatch/list.go
package quickmatch

import (
	"net/http"

	"github.com/dalemusser/quickmatch/internal/app/meetings"
	"github.com/dalemusser/quickmatch/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ServeList handles GET /quickmatch/.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list meetings")
	defer cancel()

	list, err := h.Meetings.List(ctx)
	if err != nil {
		h.fail(w, routeRead, err)
		return
	}
	writeOK(w, "ok", payload{"meetings": list})
}

// ServeSearch handles GET /quickmatch/search?category=&status=&search=.
// The search terms are OR'd over title and location.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "search meetings")
	defer cancel()

	q := r.URL.Query()
	list, err := h.Meetings.Search(ctx, meetings.SearchInput{
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Query:    q.Get("search"),
	})
	if err != nil {
		h.fail(w, routeRead, err)
		return
	}
	writeOK(w, "ok", payload{"meetings": list})
}

// ServeDetail handles GET /quickmatch/{id}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "meeting detail")
	defer cancel()

	detail, err := h.Meetings.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, routeRead, err)
		return
	}
	writeOK(w, "ok", payload{"meeting": detail})
}

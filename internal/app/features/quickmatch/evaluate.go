// internal/app/features/quickmatch/evaluate.go
package quickmatch

import (
	"net/http"

	"github.com/dalemusser/quickmatch/internal/app/meetings"
	"github.com/dalemusser/quickmatch/internal/app/system/inputval"
	"github.com/dalemusser/quickmatch/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// evaluateRequest is the optional body of the evaluate route. An omitted
// is_positive counts as a positive evaluation.
type evaluateRequest struct {
	IsPositive *bool `json:"is_positive"`
}

// HandleEvaluate handles POST /quickmatch/{id}/evaluate/{memberID}.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := inputval.DecodeJSON(w, r, &req); err != nil {
		writeInvalid(w, err)
		return
	}
	positive := true
	if req.IsPositive != nil {
		positive = *req.IsPositive
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "evaluate member")
	defer cancel()

	e, err := h.Meetings.Evaluate(ctx, identity(r), chi.URLParam(r, "id"), meetings.EvaluateInput{
		EvaluatedID: chi.URLParam(r, "memberID"),
		IsPositive:  positive,
	})
	if err != nil {
		h.fail(w, routeEvaluate, err)
		return
	}
	writeOK(w, "evaluation recorded", payload{"evaluation": e, "award": meetings.EvaluationAward})
}

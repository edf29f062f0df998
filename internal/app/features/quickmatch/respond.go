// internal/app/features/quickmatch/respond.go
package quickmatch

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/quickmatch/internal/app/meetings"
	"github.com/dalemusser/quickmatch/internal/app/system/inputval"
)

// payload is the body of a successful response alongside "message".
type payload map[string]any

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, message string, p payload) {
	body := payload{"message": message}
	for k, v := range p {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]string{"error": kind, "message": message})
}

// writeInvalid reports a request body that failed decoding or validation.
func writeInvalid(w http.ResponseWriter, err error) {
	body := map[string]any{
		"error":   meetings.KindInvalidArgument.String(),
		"message": err.Error(),
	}
	var fields inputval.Errors
	if errors.As(err, &fields) {
		body["fields"] = fields
	}
	writeJSON(w, http.StatusBadRequest, body)
}

// route names the status table a failure is mapped through. The same
// coordinator kind means different statuses on different routes.
type route int

const (
	routeRead route = iota
	routeCreate
	routeDelete
	routeMembership // join, leave, change status
	routeEvaluate
	routeRoom
)

// statusFor maps a coordinator failure to the HTTP status of rt.
func statusFor(rt route, err error) int {
	switch meetings.KindOf(err) {
	case meetings.KindUnauthenticated:
		return http.StatusUnauthorized
	case meetings.KindTransient:
		return http.StatusServiceUnavailable
	case meetings.KindInternal:
		return http.StatusInternalServerError

	case meetings.KindNotFound:
		if rt == routeRoom && errors.Is(err, meetings.ErrRoomNotFound) {
			return http.StatusBadRequest
		}
		return http.StatusNotFound

	case meetings.KindForbidden:
		switch rt {
		case routeDelete:
			// Do not reveal meetings the caller does not organize.
			return http.StatusNotFound
		case routeEvaluate:
			return http.StatusForbidden
		}
		return http.StatusBadRequest

	case meetings.KindInvalidArgument:
		if rt == routeEvaluate {
			// Self-evaluation is refused, not malformed.
			return http.StatusForbidden
		}
		return http.StatusBadRequest
	}
	// CapacityExceeded, InvalidState, AlreadyEvaluated
	return http.StatusBadRequest
}

// fail writes err as a JSON error for rt. Internal failures were already
// logged by the coordinator; their detail is not exposed.
func (h *Handler) fail(w http.ResponseWriter, rt route, err error) {
	status := statusFor(rt, err)
	kind := meetings.KindOf(err)

	msg := "internal error"
	var e *meetings.Error
	if errors.As(err, &e) && kind != meetings.KindInternal {
		msg = e.Message
	}
	// A non-organizer's delete looks exactly like a missing meeting.
	if rt == routeDelete && (kind == meetings.KindForbidden || kind == meetings.KindNotFound) {
		kind, msg = meetings.KindNotFound, "meeting not found"
	}
	writeError(w, status, kind.String(), msg)
}

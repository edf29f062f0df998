package meetings

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	"github.com/dalemusser/quickmatch/internal/app/system/keylock"
)

// Kind classifies a coordinator failure. Callers branch on the kind, never
// on the message.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindInvalidArgument
	KindCapacityExceeded
	KindInvalidState
	KindAlreadyEvaluated
	KindTransient
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindInvalidState:
		return "invalid_state"
	case KindAlreadyEvaluated:
		return "already_evaluated"
	case KindTransient:
		return "transient"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// Sentinels distinguishing what was not found.
var (
	ErrMeetingNotFound = errors.New("meeting not found")
	ErrRoomNotFound    = errors.New("chat room not found")
	ErrUserNotFound    = errors.New("user not found")
)

// Error is the only error type returned by Coordinator methods.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf classifies err. Errors that did not come from the coordinator are
// Transient when they signal contention or a deadline, Internal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if isTransient(err) {
		return KindTransient
	}
	return KindInternal
}

func isTransient(err error) bool {
	return errors.Is(err, storage.ErrTransient) ||
		errors.Is(err, keylock.ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded)
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func meetingNotFound(id string) *Error {
	return newError(KindNotFound, fmt.Sprintf("meeting %q does not exist", id), ErrMeetingNotFound)
}

func forbidden(msg string) *Error { return newError(KindForbidden, msg, nil) }

func invalidArgument(msg string, err error) *Error { return newError(KindInvalidArgument, msg, err) }

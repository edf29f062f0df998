package meetings

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	"github.com/dalemusser/quickmatch/internal/app/system/keylock"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"coordinator error", forbidden("no"), KindForbidden},
		{"wrapped coordinator error", fmt.Errorf("outer: %w", meetingNotFound("x")), KindNotFound},
		{"storage transient", fmt.Errorf("commit: %w", storage.ErrTransient), KindTransient},
		{"lock timeout", fmt.Errorf("%w: m1", keylock.ErrTimeout), KindTransient},
		{"deadline", context.DeadlineExceeded, KindTransient},
		{"anything else", errors.New("boom"), KindInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Errorf("KindOf = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestErrorUnwrapsSentinel(t *testing.T) {
	err := meetingNotFound("m1")
	if !errors.Is(err, ErrMeetingNotFound) {
		t.Error("expected ErrMeetingNotFound in chain")
	}
	if err.Error() != `not_found: meeting "m1" does not exist: meeting not found` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestKindString(t *testing.T) {
	for k := KindInternal; k <= KindUnauthenticated; k++ {
		if k.String() == "" {
			t.Errorf("kind %d has no name", k)
		}
	}
	if Kind(99).String() != "internal" {
		t.Error("unknown kinds should read as internal")
	}
}

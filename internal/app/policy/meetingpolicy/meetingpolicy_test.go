package meetingpolicy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/quickmatch/internal/app/policy/meetingpolicy"
	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	"github.com/dalemusser/quickmatch/internal/domain/models"
)

// memberReader answers IsMember from a fixed set; other Reader methods are
// not used by the policy.
type memberReader struct {
	storage.Reader
	members map[string]bool
	err     error
}

func (r memberReader) IsMember(_ context.Context, _, userID string) (bool, error) {
	return r.members[userID], r.err
}

func TestCanManageMeeting(t *testing.T) {
	m := models.Meeting{ID: "m1", OrganizerID: "org"}

	tests := []struct {
		user string
		want bool
	}{
		{"org", true},
		{"member", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := meetingpolicy.CanManageMeeting(m, tc.user); got != tc.want {
			t.Errorf("CanManageMeeting(%q) = %v, want %v", tc.user, got, tc.want)
		}
	}
}

func TestCanEvaluate(t *testing.T) {
	ctx := context.Background()
	m := models.Meeting{ID: "m1", OrganizerID: "org"}
	r := memberReader{members: map[string]bool{"org": true, "a": true}}

	tests := []struct {
		name                 string
		evaluator, evaluated string
		want                 bool
	}{
		{"member rates member", "a", "org", true},
		{"self", "a", "a", false},
		{"non-member", "x", "a", false},
		{"anonymous", "", "a", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := meetingpolicy.CanEvaluate(ctx, r, m, tc.evaluator, tc.evaluated)
			if err != nil {
				t.Fatalf("CanEvaluate: %v", err)
			}
			if got != tc.want {
				t.Errorf("CanEvaluate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanEvaluate_PropagatesStoreError(t *testing.T) {
	boom := errors.New("boom")
	r := memberReader{err: boom}
	_, err := meetingpolicy.CanEvaluate(context.Background(), r, models.Meeting{ID: "m1"}, "a", "b")
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

// internal/app/policy/meetingpolicy/meetingpolicy.go
package meetingpolicy

import (
	"context"

	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	"github.com/dalemusser/quickmatch/internal/domain/models"
)

// IsMember returns true if userID belongs to the meeting according to the
// authoritative meeting_members records.
func IsMember(ctx context.Context, r storage.Reader, meetingID, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return r.IsMember(ctx, meetingID, userID)
}

// CanManageMeeting reports whether userID may delete the meeting or change
// its status. Only the organizer can.
func CanManageMeeting(m models.Meeting, userID string) bool {
	return m.IsOrganizer(userID)
}

// CanEvaluate reports whether evaluatorID may rate evaluatedID in the meeting:
// the evaluator must be a member and must not rate themselves. It does not
// look at the evaluation gate.
// Returns an error if the membership check fails, allowing callers to
// distinguish between "not authorized" (false, nil) and "store error" (false, err).
func CanEvaluate(ctx context.Context, r storage.Reader, m models.Meeting, evaluatorID, evaluatedID string) (bool, error) {
	if evaluatorID == "" || evaluatorID == evaluatedID {
		return false, nil
	}
	return IsMember(ctx, r, m.ID, evaluatorID)
}

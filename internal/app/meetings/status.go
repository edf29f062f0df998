package meetings

import (
	"context"
	"fmt"

	"github.com/dalemusser/quickmatch/internal/app/policy/meetingpolicy"
	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	"github.com/dalemusser/quickmatch/internal/domain/models"
)

// ChangeStatus moves a meeting to status. Only the organizer may change it,
// and status must be one of models.Statuses; otherwise nothing changes.
func (c *Coordinator) ChangeStatus(ctx context.Context, who Identity, meetingID string, status models.Status) (models.Meeting, error) {
	const op = "change_status"
	if err := requireIdentity(who); err != nil {
		return models.Meeting{}, c.finish(op, err)
	}

	var (
		out  models.Meeting
		prev models.Status
	)
	err := c.onMeeting(ctx, meetingID, func(ctx context.Context, tx storage.Tx, m models.Meeting) error {
		if !meetingpolicy.CanManageMeeting(m, who.UserID) {
			return forbidden("only the organizer can change the status")
		}
		if !status.Valid() {
			return invalidArgument(fmt.Sprintf("unknown status %q", status), nil)
		}
		if err := tx.SetStatus(ctx, m.ID, status); err != nil {
			return err
		}
		prev = m.Status
		m.Status = status
		m.UpdatedAt = c.now().UTC()
		out = m
		return nil
	})
	if err != nil {
		return models.Meeting{}, c.finish(op, err)
	}

	c.audit.StatusChanged(ctx, who.UserID, out.ID, prev, out.Status)
	return out, c.finish(op, nil)
}

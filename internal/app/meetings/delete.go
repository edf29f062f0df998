package meetings

import (
	"context"
	"errors"

	"github.com/dalemusser/quickmatch/internal/app/policy/meetingpolicy"
	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	"github.com/dalemusser/quickmatch/internal/domain/models"
)

// MeetingSnapshot is what a delete removed, returned for confirmation.
type MeetingSnapshot struct {
	Meeting     models.Meeting         `json:"meeting"`
	Members     []models.MeetingMember `json:"members"`
	Room        *models.ChatRoom       `json:"room,omitempty"`
	Evaluations int64                  `json:"evaluations"`
}

// Delete removes a meeting and everything hanging off it: memberships, the
// chat room and evaluation records, in that order, in one transaction.
// Only the organizer may delete.
func (c *Coordinator) Delete(ctx context.Context, who Identity, meetingID string) (MeetingSnapshot, error) {
	const op = "delete"
	if err := requireIdentity(who); err != nil {
		return MeetingSnapshot{}, c.finish(op, err)
	}

	var snap MeetingSnapshot
	err := c.onMeeting(ctx, meetingID, func(ctx context.Context, tx storage.Tx, m models.Meeting) error {
		if !meetingpolicy.CanManageMeeting(m, who.UserID) {
			return forbidden("only the organizer can delete this meeting")
		}
		snap = MeetingSnapshot{Meeting: m}

		members, err := tx.ListMembers(ctx, m.ID)
		if err != nil {
			return err
		}
		snap.Members = members

		room, err := tx.GetRoom(ctx, m.ID)
		switch {
		case err == nil:
			snap.Room = &room
		case !errors.Is(err, storage.ErrNotFound):
			return err
		}

		if _, err := tx.DeleteMembersByMeeting(ctx, m.ID); err != nil {
			return err
		}
		if _, err := tx.DeleteRoomByMeeting(ctx, m.ID); err != nil {
			return err
		}
		n, err := tx.DeleteEvaluationsByMeeting(ctx, m.ID)
		if err != nil {
			return err
		}
		snap.Evaluations = n
		return tx.DeleteMeeting(ctx, m.ID)
	})
	if err != nil {
		return MeetingSnapshot{}, c.finish(op, err)
	}

	c.audit.MeetingDeleted(ctx, who.UserID, snap.Meeting, len(snap.Members), snap.Evaluations)
	return snap, c.finish(op, nil)
}

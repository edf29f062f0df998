package meetings

import (
	"context"
	"fmt"

	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	"github.com/dalemusser/quickmatch/internal/domain/models"
	"github.com/google/uuid"
)

// JoinResult reports the meeting after a join. AlreadyJoined is set when the
// caller was a member before the call; nothing changed in that case.
type JoinResult struct {
	Meeting       models.Meeting `json:"meeting"`
	AlreadyJoined bool           `json:"already_joined"`
}

// Join adds who to the meeting. The organizer cannot join (they are a member
// from creation) and a full meeting rejects with CapacityExceeded. Capacity
// is checked before membership, so an existing member of a full meeting is
// also rejected.
func (c *Coordinator) Join(ctx context.Context, who Identity, meetingID string) (JoinResult, error) {
	const op = "join"
	if err := requireIdentity(who); err != nil {
		return JoinResult{}, c.finish(op, err)
	}

	var res JoinResult
	err := c.onMeeting(ctx, meetingID, func(ctx context.Context, tx storage.Tx, m models.Meeting) error {
		if m.IsOrganizer(who.UserID) {
			return forbidden("the organizer is already a member of this meeting")
		}
		if m.IsFull() {
			return newError(KindCapacityExceeded,
				fmt.Sprintf("meeting is full (%d/%d)", m.CurrentParticipants, m.MaxParticipants), nil)
		}

		member, err := tx.IsMember(ctx, m.ID, who.UserID)
		if err != nil {
			return err
		}
		if member {
			res = JoinResult{Meeting: m, AlreadyJoined: true}
			return nil
		}

		if err := tx.EnsureUser(ctx, models.User{ID: who.UserID, Name: who.Name}); err != nil {
			return err
		}
		if err := tx.InsertMember(ctx, models.MeetingMember{
			ID:        uuid.NewString(),
			MeetingID: m.ID,
			UserID:    who.UserID,
			CreatedAt: c.now(),
		}); err != nil {
			return err
		}
		m.CurrentParticipants++
		if err := tx.SetParticipants(ctx, m.ID, m.CurrentParticipants); err != nil {
			return err
		}
		res = JoinResult{Meeting: m}
		return nil
	})
	if err != nil {
		return JoinResult{}, c.finish(op, err)
	}
	return res, c.finish(op, nil)
}

// Leave removes who from the meeting. The organizer must delete the meeting
// instead; a caller without a membership gets InvalidState.
func (c *Coordinator) Leave(ctx context.Context, who Identity, meetingID string) (models.Meeting, error) {
	const op = "leave"
	if err := requireIdentity(who); err != nil {
		return models.Meeting{}, c.finish(op, err)
	}

	var out models.Meeting
	err := c.onMeeting(ctx, meetingID, func(ctx context.Context, tx storage.Tx, m models.Meeting) error {
		if m.IsOrganizer(who.UserID) {
			return forbidden("the organizer cannot leave; delete the meeting instead")
		}
		removed, err := tx.DeleteMember(ctx, m.ID, who.UserID)
		if err != nil {
			return err
		}
		if !removed {
			return newError(KindInvalidState, "you are not a member of this meeting", nil)
		}
		if m.CurrentParticipants > 0 {
			m.CurrentParticipants--
		}
		if err := tx.SetParticipants(ctx, m.ID, m.CurrentParticipants); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return models.Meeting{}, c.finish(op, err)
	}
	return out, c.finish(op, nil)
}

// IsMember reports whether userID belongs to the meeting.
func (c *Coordinator) IsMember(ctx context.Context, meetingID, userID string) (bool, error) {
	const op = "is_member"
	if _, err := c.getMeeting(ctx, meetingID); err != nil {
		return false, c.finish(op, err)
	}
	ok, err := c.store.IsMember(ctx, meetingID, userID)
	if err != nil {
		return false, c.finish(op, err)
	}
	return ok, c.finish(op, nil)
}

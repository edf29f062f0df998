package meetings

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	"github.com/dalemusser/quickmatch/internal/domain/models"
)

// RosterSnapshot is the chat roster after a join-room or leave-room.
// Changed is false when the call was a no-op.
type RosterSnapshot struct {
	MeetingID    string   `json:"meeting_id"`
	Name         string   `json:"name"`
	HostID       string   `json:"host"`
	CurrentUsers []string `json:"current_users"`
	Changed      bool     `json:"changed"`
}

// JoinRoom marks who as present in the meeting's chat room. Presence is
// independent of membership: non-members may join the room.
func (c *Coordinator) JoinRoom(ctx context.Context, who Identity, meetingID string) (RosterSnapshot, error) {
	return c.updateRoster(ctx, "join_room", who, meetingID, storage.Tx.AddRoomUser)
}

// LeaveRoom removes who from the meeting's chat room. Leaving a room one is
// not in succeeds without change.
func (c *Coordinator) LeaveRoom(ctx context.Context, who Identity, meetingID string) (RosterSnapshot, error) {
	return c.updateRoster(ctx, "leave_room", who, meetingID, storage.Tx.RemoveRoomUser)
}

type rosterUpdate func(tx storage.Tx, ctx context.Context, meetingID, userID string) (bool, error)

func (c *Coordinator) updateRoster(ctx context.Context, op string, who Identity, meetingID string, update rosterUpdate) (RosterSnapshot, error) {
	if err := requireIdentity(who); err != nil {
		return RosterSnapshot{}, c.finish(op, err)
	}

	var snap RosterSnapshot
	err := c.store.WithTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if _, err := tx.GetMeeting(ctx, meetingID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return meetingNotFound(meetingID)
			}
			return err
		}

		changed, err := update(tx, ctx, meetingID, who.UserID)
		if errors.Is(err, storage.ErrNotFound) {
			return newError(KindNotFound, fmt.Sprintf("meeting %q has no chat room", meetingID), ErrRoomNotFound)
		}
		if err != nil {
			return err
		}

		room, err := tx.GetRoom(ctx, meetingID)
		if err != nil {
			return err
		}
		snap = snapshotOf(room, changed)
		return nil
	})
	if err != nil {
		return RosterSnapshot{}, c.finish(op, err)
	}
	return snap, c.finish(op, nil)
}

func snapshotOf(r models.ChatRoom, changed bool) RosterSnapshot {
	users := r.CurrentUsers
	if users == nil {
		users = []string{}
	}
	return RosterSnapshot{
		MeetingID:    r.MeetingID,
		Name:         r.Name,
		HostID:       r.HostID,
		CurrentUsers: users,
		Changed:      changed,
	}
}

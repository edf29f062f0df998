package meetings

import (
	"context"

	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	"github.com/dalemusser/quickmatch/internal/domain/models"
	"github.com/google/uuid"
)

// CreateInput carries the caller-supplied fields of a new meeting. Empty
// enum fields and a zero MaxParticipants take their defaults.
type CreateInput struct {
	Title           string
	Location        string
	Category        models.Category
	GenderLimit     models.GenderLimit
	Status          models.Status
	MaxParticipants int
}

// Create registers a meeting organized by who. The meeting, the organizer's
// membership and the chat room are written in one transaction, so the
// returned meeting already counts the organizer.
func (c *Coordinator) Create(ctx context.Context, who Identity, in CreateInput) (models.Meeting, error) {
	const op = "create"
	if err := requireIdentity(who); err != nil {
		return models.Meeting{}, c.finish(op, err)
	}

	now := c.now()
	m, err := models.NewMeeting(models.MeetingParams{
		OrganizerID:     who.UserID,
		Title:           in.Title,
		Location:        in.Location,
		Category:        in.Category,
		GenderLimit:     in.GenderLimit,
		Status:          in.Status,
		MaxParticipants: in.MaxParticipants,
	}, now)
	if err != nil {
		return models.Meeting{}, c.finish(op, invalidArgument(err.Error(), err))
	}

	err = c.store.WithTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := tx.EnsureUser(ctx, models.User{ID: who.UserID, Name: who.Name}); err != nil {
			return err
		}
		if err := tx.InsertMeeting(ctx, m); err != nil {
			return err
		}
		if err := tx.InsertMember(ctx, models.MeetingMember{
			ID:        uuid.NewString(),
			MeetingID: m.ID,
			UserID:    who.UserID,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		if err := tx.SetParticipants(ctx, m.ID, 1); err != nil {
			return err
		}
		return tx.InsertRoom(ctx, models.ChatRoom{
			ID:           uuid.NewString(),
			MeetingID:    m.ID,
			Name:         m.RoomName(),
			HostID:       who.UserID,
			CurrentUsers: []string{},
			CreatedAt:    now,
		})
	})
	if err != nil {
		return models.Meeting{}, c.finish(op, err)
	}
	m.CurrentParticipants = 1

	c.audit.MeetingCreated(ctx, who.UserID, m)
	return m, c.finish(op, nil)
}

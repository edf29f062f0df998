package meetings

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	"github.com/dalemusser/quickmatch/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// SearchInput holds the optional search filters. Query is split on
// whitespace; a meeting matches when ANY token is a case-insensitive
// substring of its title or location.
type SearchInput struct {
	Category string
	Status   string
	Query    string
}

// Search returns matching meetings in creation order.
func (c *Coordinator) Search(ctx context.Context, in SearchInput) ([]models.Meeting, error) {
	const op = "search"
	var f storage.SearchFilter

	if s := strings.TrimSpace(in.Category); s != "" {
		cat, err := models.ParseCategory(s)
		if err != nil {
			return nil, c.finish(op, invalidArgument(err.Error(), err))
		}
		f.Category = cat
	}
	if s := strings.TrimSpace(in.Status); s != "" {
		st, err := models.ParseStatus(s)
		if err != nil {
			return nil, c.finish(op, invalidArgument(err.Error(), err))
		}
		f.Status = st
	}
	for _, tok := range strings.Fields(in.Query) {
		if folded := text.Fold(tok); folded != "" {
			f.Terms = append(f.Terms, folded)
		}
	}

	out, err := c.store.SearchMeetings(ctx, f)
	if err != nil {
		return nil, c.finish(op, err)
	}
	return out, c.finish(op, nil)
}

// List returns every meeting in creation order.
func (c *Coordinator) List(ctx context.Context) ([]models.Meeting, error) {
	const op = "list"
	out, err := c.store.ListMeetings(ctx)
	if err != nil {
		return nil, c.finish(op, err)
	}
	return out, c.finish(op, nil)
}

// MeetingDetail is a meeting with its member ids and chat roster.
type MeetingDetail struct {
	models.Meeting
	Members []string         `json:"members"`
	Room    *models.ChatRoom `json:"room,omitempty"`
}

// Get returns one meeting with its members and room.
func (c *Coordinator) Get(ctx context.Context, meetingID string) (MeetingDetail, error) {
	const op = "get"
	m, err := c.getMeeting(ctx, meetingID)
	if err != nil {
		return MeetingDetail{}, c.finish(op, err)
	}

	members, err := c.store.ListMembers(ctx, meetingID)
	if err != nil {
		return MeetingDetail{}, c.finish(op, err)
	}
	d := MeetingDetail{Meeting: m, Members: make([]string, 0, len(members))}
	for _, mm := range members {
		d.Members = append(d.Members, mm.UserID)
	}

	room, err := c.store.GetRoom(ctx, meetingID)
	switch {
	case err == nil:
		d.Room = &room
	case !errors.Is(err, storage.ErrNotFound):
		return MeetingDetail{}, c.finish(op, err)
	}
	return d, c.finish(op, nil)
}

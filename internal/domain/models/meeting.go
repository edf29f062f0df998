// internal/domain/models/meeting.go
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
)

// DefaultMaxParticipants is the capacity of a meeting created without one.
const DefaultMaxParticipants = 10

// Meeting is a quick match: a capacity-bounded group activity with an organizer.
//
// NOTE:
//   - The organizer is always a member; CurrentParticipants counts the organizer.
//   - Membership lives in the meeting_members collection, never embedded here.
//   - CanEvaluate is a one-shot gate: it only ever goes from true to false.
type Meeting struct {
	ID                  string      `bson:"_id" json:"id"`
	Title               string      `bson:"title" json:"title"`
	TitleCI             string      `bson:"title_ci" json:"-"`
	Location            string      `bson:"location" json:"location"`
	LocationCI          string      `bson:"location_ci" json:"-"`
	Category            Category    `bson:"category" json:"category"`
	GenderLimit         GenderLimit `bson:"gender_limit" json:"gender_limit"`
	Status              Status      `bson:"status" json:"status"`
	MaxParticipants     int         `bson:"max_participants" json:"max_participants"`
	CurrentParticipants int         `bson:"current_participants" json:"current_participants"`
	OrganizerID         string      `bson:"organizer_id" json:"organizer"`
	CanEvaluate         bool        `bson:"can_evaluate" json:"can_evaluate"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsFull reports whether no further participant can be admitted.
func (m Meeting) IsFull() bool {
	return m.CurrentParticipants >= m.MaxParticipants
}

// IsOrganizer reports whether userID created the meeting.
func (m Meeting) IsOrganizer(userID string) bool {
	return userID != "" && m.OrganizerID == userID
}

// RoomName is the chat room name derived from the meeting title.
func (m Meeting) RoomName() string {
	return m.Title + "_chatroom"
}

// MeetingParams carries the caller-supplied fields of a new meeting.
// Zero values mean "not supplied" and are replaced by defaults.
type MeetingParams struct {
	OrganizerID     string
	Title           string
	Location        string
	Category        Category
	GenderLimit     GenderLimit
	Status          Status
	MaxParticipants int
}

// ErrInvalidMeeting is wrapped by every NewMeeting validation failure.
var ErrInvalidMeeting = errors.New("invalid meeting")

// NewMeeting validates p, applies defaults and returns the meeting to persist.
// CurrentParticipants starts at zero; seeding the organizer membership raises it.
func NewMeeting(p MeetingParams, now time.Time) (Meeting, error) {
	title := strings.TrimSpace(p.Title)
	location := strings.TrimSpace(p.Location)

	switch {
	case strings.TrimSpace(p.OrganizerID) == "":
		return Meeting{}, fmt.Errorf("%w: organizer is required", ErrInvalidMeeting)
	case title == "":
		return Meeting{}, fmt.Errorf("%w: title is required", ErrInvalidMeeting)
	case location == "":
		return Meeting{}, fmt.Errorf("%w: location is required", ErrInvalidMeeting)
	case p.MaxParticipants < 0:
		return Meeting{}, fmt.Errorf("%w: max_participants must not be negative", ErrInvalidMeeting)
	}

	category := p.Category
	if category == "" {
		category = CategoryDefault
	} else if !category.Valid() {
		return Meeting{}, fmt.Errorf("%w: unknown category %q", ErrInvalidMeeting, category)
	}

	gender := p.GenderLimit
	if gender == "" {
		gender = GenderLimitDefault
	} else if !gender.Valid() {
		return Meeting{}, fmt.Errorf("%w: unknown gender limit %q", ErrInvalidMeeting, gender)
	}

	status := p.Status
	if status == "" {
		status = StatusDefault
	} else if !status.Valid() {
		return Meeting{}, fmt.Errorf("%w: unknown status %q", ErrInvalidMeeting, status)
	}

	maxP := p.MaxParticipants
	if maxP == 0 {
		maxP = DefaultMaxParticipants
	}

	now = now.UTC()
	return Meeting{
		ID:                  uuid.NewString(),
		Title:               title,
		TitleCI:             text.Fold(title),
		Location:            location,
		LocationCI:          text.Fold(location),
		Category:            category,
		GenderLimit:         gender,
		Status:              status,
		MaxParticipants:     maxP,
		CurrentParticipants: 0,
		OrganizerID:         p.OrganizerID,
		CanEvaluate:         true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

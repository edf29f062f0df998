package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/quickmatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data directly in Mongo,
// bypassing the coordinator.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a profile with zero activity points.
func (f *Fixtures) CreateUser(ctx context.Context, id, name string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateMeeting creates a meeting organized by organizerID with the given
// capacity (0 for the default), its organizer membership and its chat room.
func (f *Fixtures) CreateMeeting(ctx context.Context, organizerID, title string, maxParticipants int) models.Meeting {
	f.t.Helper()

	now := time.Now().UTC()
	m, err := models.NewMeeting(models.MeetingParams{
		OrganizerID:     organizerID,
		Title:           title,
		Location:        "Test Field",
		MaxParticipants: maxParticipants,
	}, now)
	if err != nil {
		f.t.Fatalf("invalid test meeting: %v", err)
	}
	m.CurrentParticipants = 1

	if _, err := f.db.Collection("meetings").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test meeting: %v", err)
	}
	f.AddMember(ctx, m.ID, organizerID)

	room := models.ChatRoom{
		ID:           uuid.NewString(),
		MeetingID:    m.ID,
		Name:         m.RoomName(),
		HostID:       organizerID,
		CurrentUsers: []string{},
		CreatedAt:    now,
	}
	if _, err := f.db.Collection("chat_rooms").InsertOne(ctx, room); err != nil {
		f.t.Fatalf("failed to create test chat room: %v", err)
	}
	return m
}

// AddMember inserts a membership row without touching the meeting counter.
func (f *Fixtures) AddMember(ctx context.Context, meetingID, userID string) models.MeetingMember {
	f.t.Helper()

	mm := models.MeetingMember{
		ID:        uuid.NewString(),
		MeetingID: meetingID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("meeting_members").InsertOne(ctx, mm); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return mm
}

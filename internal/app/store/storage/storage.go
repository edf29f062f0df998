// Package storage defines the persistence contract of the meeting coordinator.
//
// Backends (MongoDB, SQLite) implement Store. Every multi-step mutation runs
// inside WithTx; LockMeeting must be the first call on a meeting inside a
// transaction so that concurrent mutations of the same meeting serialize in
// the backend as well as in process.
package storage

import (
	"context"
	"errors"

	"github.com/dalemusser/quickmatch/internal/domain/models"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("storage: not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("storage: duplicate")
	// ErrTransient marks contention or timeouts that are safe to retry.
	ErrTransient = errors.New("storage: transient failure")
)

// SearchFilter narrows SearchMeetings. Empty fields do not filter.
// Terms are already case-folded; a meeting matches when ANY term is a
// substring of its folded title or location.
type SearchFilter struct {
	Category models.Category
	Status   models.Status
	Terms    []string
}

// Reader holds the read-only queries. Reads outside a transaction see the
// latest committed state.
type Reader interface {
	GetMeeting(ctx context.Context, id string) (models.Meeting, error)
	ListMeetings(ctx context.Context) ([]models.Meeting, error)
	SearchMeetings(ctx context.Context, f SearchFilter) ([]models.Meeting, error)

	IsMember(ctx context.Context, meetingID, userID string) (bool, error)
	ListMembers(ctx context.Context, meetingID string) ([]models.MeetingMember, error)
	CountMembers(ctx context.Context, meetingID string) (int64, error)

	GetRoom(ctx context.Context, meetingID string) (models.ChatRoom, error)
	GetUser(ctx context.Context, id string) (models.User, error)

	EvaluationExists(ctx context.Context, evaluatorID, evaluatedID, meetingID string) (bool, error)
}

// Tx is the write side, only reachable through Store.WithTx.
type Tx interface {
	Reader

	// LockMeeting loads the meeting and claims its write lock for the rest
	// of the transaction.
	LockMeeting(ctx context.Context, id string) (models.Meeting, error)
	InsertMeeting(ctx context.Context, m models.Meeting) error
	SetParticipants(ctx context.Context, id string, n int) error
	SetStatus(ctx context.Context, id string, s models.Status) error
	DisableEvaluation(ctx context.Context, id string) error
	DeleteMeeting(ctx context.Context, id string) error

	InsertMember(ctx context.Context, mm models.MeetingMember) error
	DeleteMember(ctx context.Context, meetingID, userID string) (bool, error)
	DeleteMembersByMeeting(ctx context.Context, meetingID string) (int64, error)

	InsertRoom(ctx context.Context, r models.ChatRoom) error
	// AddRoomUser and RemoveRoomUser are idempotent; the bool reports
	// whether the roster changed.
	AddRoomUser(ctx context.Context, meetingID, userID string) (bool, error)
	RemoveRoomUser(ctx context.Context, meetingID, userID string) (bool, error)
	DeleteRoomByMeeting(ctx context.Context, meetingID string) (bool, error)

	InsertEvaluation(ctx context.Context, e models.Evaluation) error
	DeleteEvaluationsByMeeting(ctx context.Context, meetingID string) (int64, error)

	// EnsureUser creates the profile if it does not exist; existing
	// profiles are left untouched.
	EnsureUser(ctx context.Context, u models.User) error
	AddActivityPoints(ctx context.Context, userID string, delta int) error
}

// Store is a complete backend.
type Store interface {
	Reader

	// WithTx runs fn atomically. If fn returns an error nothing it wrote is
	// kept.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

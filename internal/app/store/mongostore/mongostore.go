// Package mongostore implements storage.Store on top of the per-collection
// MongoDB stores, running every WithTx body through txn.Run.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	chatroomstore "github.com/dalemusser/quickmatch/internal/app/store/chatrooms"
	evaluationstore "github.com/dalemusser/quickmatch/internal/app/store/evaluations"
	meetingmemberstore "github.com/dalemusser/quickmatch/internal/app/store/meetingmembers"
	meetingstore "github.com/dalemusser/quickmatch/internal/app/store/meetings"
	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	userstore "github.com/dalemusser/quickmatch/internal/app/store/users"
	"github.com/dalemusser/quickmatch/internal/app/system/txn"
	"github.com/dalemusser/quickmatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Store is the MongoDB backend.
type Store struct {
	db  *mongo.Database
	log *zap.Logger

	meetings    *meetingstore.Store
	members     *meetingmemberstore.Store
	rooms       *chatroomstore.Store
	evaluations *evaluationstore.Store
	users       *userstore.Store
}

var _ storage.Store = (*Store)(nil)
var _ storage.Tx = (*Store)(nil)

// New wires the collection stores of db.
func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{
		db:          db,
		log:         logger,
		meetings:    meetingstore.New(db),
		members:     meetingmemberstore.New(db),
		rooms:       chatroomstore.New(db),
		evaluations: evaluationstore.New(db),
		users:       userstore.New(db),
	}
}

// WithTx runs fn in a MongoDB transaction. The Tx handed to fn is the store
// itself; atomicity comes from the session carried by ctx.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		return fn(ctx, s)
	})
	return translate(err)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

// translate maps driver errors onto the storage sentinels, keeping the
// driver error in the chain.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrDuplicate), errors.Is(err, storage.ErrTransient):
		return err
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%w: %v", storage.ErrNotFound, err)
	case errors.Is(err, meetingstore.ErrDuplicateMeeting),
		errors.Is(err, meetingmemberstore.ErrDuplicateMembership),
		errors.Is(err, chatroomstore.ErrDuplicateRoom),
		errors.Is(err, evaluationstore.ErrDuplicateEvaluation):
		return fmt.Errorf("%w: %w", storage.ErrDuplicate, err)
	case txn.IsTransient(err):
		return fmt.Errorf("%w: %w", storage.ErrTransient, err)
	}
	return err
}

// ---- Reader ----

func (s *Store) GetMeeting(ctx context.Context, id string) (models.Meeting, error) {
	m, err := s.meetings.GetByID(ctx, id)
	return m, translate(err)
}

func (s *Store) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	out, err := s.meetings.List(ctx)
	return out, translate(err)
}

func (s *Store) SearchMeetings(ctx context.Context, f storage.SearchFilter) ([]models.Meeting, error) {
	out, err := s.meetings.Search(ctx, f)
	return out, translate(err)
}

func (s *Store) IsMember(ctx context.Context, meetingID, userID string) (bool, error) {
	ok, err := s.members.Exists(ctx, meetingID, userID)
	return ok, translate(err)
}

func (s *Store) ListMembers(ctx context.Context, meetingID string) ([]models.MeetingMember, error) {
	out, err := s.members.ListByMeeting(ctx, meetingID)
	return out, translate(err)
}

func (s *Store) CountMembers(ctx context.Context, meetingID string) (int64, error) {
	n, err := s.members.CountByMeeting(ctx, meetingID)
	return n, translate(err)
}

func (s *Store) GetRoom(ctx context.Context, meetingID string) (models.ChatRoom, error) {
	r, err := s.rooms.GetByMeeting(ctx, meetingID)
	return r, translate(err)
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	return u, translate(err)
}

func (s *Store) EvaluationExists(ctx context.Context, evaluatorID, evaluatedID, meetingID string) (bool, error) {
	ok, err := s.evaluations.Exists(ctx, evaluatorID, evaluatedID, meetingID)
	return ok, translate(err)
}

// ---- Tx ----

func (s *Store) LockMeeting(ctx context.Context, id string) (models.Meeting, error) {
	m, err := s.meetings.Claim(ctx, id)
	return m, translate(err)
}

func (s *Store) InsertMeeting(ctx context.Context, m models.Meeting) error {
	return translate(s.meetings.Create(ctx, m))
}

func (s *Store) SetParticipants(ctx context.Context, id string, n int) error {
	return translate(s.meetings.SetParticipants(ctx, id, n))
}

func (s *Store) SetStatus(ctx context.Context, id string, st models.Status) error {
	return translate(s.meetings.SetStatus(ctx, id, st))
}

func (s *Store) DisableEvaluation(ctx context.Context, id string) error {
	return translate(s.meetings.DisableEvaluation(ctx, id))
}

func (s *Store) DeleteMeeting(ctx context.Context, id string) error {
	n, err := s.meetings.Delete(ctx, id)
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) InsertMember(ctx context.Context, mm models.MeetingMember) error {
	return translate(s.members.Add(ctx, mm))
}

func (s *Store) DeleteMember(ctx context.Context, meetingID, userID string) (bool, error) {
	ok, err := s.members.Remove(ctx, meetingID, userID)
	return ok, translate(err)
}

func (s *Store) DeleteMembersByMeeting(ctx context.Context, meetingID string) (int64, error) {
	n, err := s.members.DeleteByMeeting(ctx, meetingID)
	return n, translate(err)
}

func (s *Store) InsertRoom(ctx context.Context, r models.ChatRoom) error {
	return translate(s.rooms.Create(ctx, r))
}

func (s *Store) AddRoomUser(ctx context.Context, meetingID, userID string) (bool, error) {
	ok, err := s.rooms.AddUser(ctx, meetingID, userID)
	return ok, translate(err)
}

func (s *Store) RemoveRoomUser(ctx context.Context, meetingID, userID string) (bool, error) {
	ok, err := s.rooms.RemoveUser(ctx, meetingID, userID)
	return ok, translate(err)
}

func (s *Store) DeleteRoomByMeeting(ctx context.Context, meetingID string) (bool, error) {
	ok, err := s.rooms.DeleteByMeeting(ctx, meetingID)
	return ok, translate(err)
}

func (s *Store) InsertEvaluation(ctx context.Context, e models.Evaluation) error {
	return translate(s.evaluations.Create(ctx, e))
}

func (s *Store) DeleteEvaluationsByMeeting(ctx context.Context, meetingID string) (int64, error) {
	n, err := s.evaluations.DeleteByMeeting(ctx, meetingID)
	return n, translate(err)
}

func (s *Store) EnsureUser(ctx context.Context, u models.User) error {
	return translate(s.users.Ensure(ctx, u))
}

func (s *Store) AddActivityPoints(ctx context.Context, userID string, delta int) error {
	return translate(s.users.AddActivityPoints(ctx, userID, delta))
}

// internal/app/store/chatrooms/roomstore.go
package chatroomstore

import (
	"context"
	"errors"

	"github.com/dalemusser/quickmatch/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection is the MongoDB collection holding chat rooms, one per meeting.
const Collection = "chat_rooms"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

var ErrDuplicateRoom = errors.New("meeting already has a chat room")

// Create inserts the room of a meeting.
func (s *Store) Create(ctx context.Context, r models.ChatRoom) error {
	if r.CurrentUsers == nil {
		r.CurrentUsers = []string{}
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateRoom
		}
		return err
	}
	return nil
}

// GetByMeeting loads the room. Returns mongo.ErrNoDocuments when absent.
func (s *Store) GetByMeeting(ctx context.Context, meetingID string) (models.ChatRoom, error) {
	var r models.ChatRoom
	err := s.c.FindOne(ctx, bson.M{"meeting_id": meetingID}).Decode(&r)
	if r.CurrentUsers == nil {
		r.CurrentUsers = []string{}
	}
	return r, err
}

// AddUser puts userID on the roster. Adding a present user is a no-op;
// the bool reports whether the roster changed.
func (s *Store) AddUser(ctx context.Context, meetingID, userID string) (bool, error) {
	return s.update(ctx, meetingID, bson.M{"$addToSet": bson.M{"current_users": userID}})
}

// RemoveUser takes userID off the roster. Removing an absent user is a no-op.
func (s *Store) RemoveUser(ctx context.Context, meetingID, userID string) (bool, error) {
	return s.update(ctx, meetingID, bson.M{"$pull": bson.M{"current_users": userID}})
}

func (s *Store) update(ctx context.Context, meetingID string, upd bson.M) (bool, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"meeting_id": meetingID}, upd)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, mongo.ErrNoDocuments
	}
	return res.ModifiedCount > 0, nil
}

// DeleteByMeeting removes the room of a meeting and reports whether it existed.
func (s *Store) DeleteByMeeting(ctx context.Context, meetingID string) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"meeting_id": meetingID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

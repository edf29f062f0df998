// internal/app/store/meetingmembers/memberstore.go
package meetingmemberstore

import (
	"context"
	"errors"

	"github.com/dalemusser/quickmatch/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB collection holding membership facts.
const Collection = "meeting_members"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

var ErrDuplicateMembership = errors.New("user is already a member of this meeting")

// Add inserts a membership. The unique (meeting_id, user_id) index turns a
// second insert into ErrDuplicateMembership.
func (s *Store) Add(ctx context.Context, mm models.MeetingMember) error {
	if _, err := s.c.InsertOne(ctx, mm); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// Remove deletes the membership for (meetingID, userID) and reports whether
// one existed.
func (s *Store) Remove(ctx context.Context, meetingID, userID string) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"meeting_id": meetingID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// DeleteByMeeting removes all memberships of a meeting.
// Returns the number of documents deleted.
func (s *Store) DeleteByMeeting(ctx context.Context, meetingID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"meeting_id": meetingID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Exists checks if a membership exists for the given meeting and user.
func (s *Store) Exists(ctx context.Context, meetingID, userID string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"meeting_id": meetingID, "user_id": userID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountByMeeting returns the number of members of a meeting.
func (s *Store) CountByMeeting(ctx context.Context, meetingID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"meeting_id": meetingID})
}

// ListByMeeting returns the memberships of a meeting, oldest first.
func (s *Store) ListByMeeting(ctx context.Context, meetingID string) ([]models.MeetingMember, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"meeting_id": meetingID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	members := []models.MeetingMember{}
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

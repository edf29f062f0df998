// internal/app/store/evaluations/evaluationstore.go
package evaluationstore

import (
	"context"
	"errors"

	"github.com/dalemusser/quickmatch/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB collection holding evaluation records.
const Collection = "user_evaluations"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

var ErrDuplicateEvaluation = errors.New("evaluation already recorded for this member and meeting")

// Create inserts an evaluation record.
func (s *Store) Create(ctx context.Context, e models.Evaluation) error {
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEvaluation
		}
		return err
	}
	return nil
}

// Exists reports whether evaluatorID already evaluated evaluatedID in meetingID.
func (s *Store) Exists(ctx context.Context, evaluatorID, evaluatedID, meetingID string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"evaluator_id": evaluatorID,
		"evaluated_id": evaluatedID,
		"meeting_id":   meetingID,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByMeeting returns the evaluations recorded for a meeting.
func (s *Store) ListByMeeting(ctx context.Context, meetingID string) ([]models.Evaluation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"meeting_id": meetingID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Evaluation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByMeeting removes the evaluations of a deleted meeting.
func (s *Store) DeleteByMeeting(ctx context.Context, meetingID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"meeting_id": meetingID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

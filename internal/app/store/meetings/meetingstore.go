// internal/app/store/meetings/meetingstore.go
package meetingstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/quickmatch/internal/app/store/storage"
	"github.com/dalemusser/quickmatch/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB collection holding meetings.
const Collection = "meetings"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

var ErrDuplicateMeeting = errors.New("meeting id already exists")

// Create inserts a fully built meeting (see models.NewMeeting).
func (s *Store) Create(ctx context.Context, m models.Meeting) error {
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMeeting
		}
		return err
	}
	return nil
}

// GetByID loads one meeting. Returns mongo.ErrNoDocuments when absent.
func (s *Store) GetByID(ctx context.Context, id string) (models.Meeting, error) {
	var m models.Meeting
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	return m, err
}

// Claim loads the meeting while writing to it, so that inside a transaction
// the document stays write-locked until commit and any concurrent
// transaction touching it conflicts and is retried by the driver.
func (s *Store) Claim(ctx context.Context, id string) (models.Meeting, error) {
	var m models.Meeting
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"lock_seq": 1}},
		opts,
	).Decode(&m)
	return m, err
}

func (s *Store) set(ctx context.Context, id string, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetParticipants stores the participant counter.
func (s *Store) SetParticipants(ctx context.Context, id string, n int) error {
	return s.set(ctx, id, bson.M{"current_participants": n})
}

// SetStatus updates the lifecycle status.
func (s *Store) SetStatus(ctx context.Context, id string, st models.Status) error {
	return s.set(ctx, id, bson.M{"status": st})
}

// DisableEvaluation closes the evaluation gate. It never reopens.
func (s *Store) DisableEvaluation(ctx context.Context, id string) error {
	return s.set(ctx, id, bson.M{"can_evaluate": false})
}

// Delete removes the meeting document. Returns the number deleted.
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// List returns every meeting in creation order.
func (s *Store) List(ctx context.Context) ([]models.Meeting, error) {
	return s.find(ctx, bson.M{})
}

// Search applies the exact category/status filters and OR's the text terms
// over the folded title and location.
func (s *Store) Search(ctx context.Context, f storage.SearchFilter) ([]models.Meeting, error) {
	return s.find(ctx, searchFilter(f))
}

func searchFilter(f storage.SearchFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if len(f.Terms) > 0 {
		or := make([]bson.M, 0, 2*len(f.Terms))
		for _, term := range f.Terms {
			rx := primitive.Regex{Pattern: regexp.QuoteMeta(term)}
			or = append(or, bson.M{"title_ci": rx}, bson.M{"location_ci": rx})
		}
		filter["$or"] = or
	}
	return filter
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Meeting, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	meetings := []models.Meeting{}
	if err := cur.All(ctx, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

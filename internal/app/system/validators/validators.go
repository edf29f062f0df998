// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/quickmatch/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the quickmatch collections and attaches their JSON-Schema
// validators. Deployments without collMod (some DocumentDB versions) keep the
// collections and skip the validators.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	return EnsureAllWithLogger(ctx, db, zap.L())
}

// EnsureAllWithLogger is EnsureAll with an explicit logger.
func EnsureAllWithLogger(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		// Fall through to CreateCollection and treat "exists" as success.
		log.Warn("list collections failed", zap.Error(err))
	}
	have := make(map[string]bool, len(existing))
	for _, n := range existing {
		have[n] = true
	}

	specs := []struct {
		coll   string
		schema bson.M
	}{
		{"meetings", meetingsSchema()},
		{"meeting_members", meetingMembersSchema()},
		{"chat_rooms", chatRoomsSchema()},
		{"user_evaluations", evaluationsSchema()},
		{"users", usersSchema()},
		{"audit_events", nil}, // written only by the audit logger
	}

	var problems []string
	for _, sp := range specs {
		if !have[sp.coll] {
			if err := db.CreateCollection(ctx, sp.coll); err != nil && !commandFailed(err, []int32{48}, "already exists", "namespace exists") {
				problems = append(problems, sp.coll+": "+err.Error())
				continue
			}
			log.Info("created collection", zap.String("collection", sp.coll))
		}
		if sp.schema == nil {
			continue
		}

		cmd := bson.D{
			{Key: "collMod", Value: sp.coll},
			{Key: "validator", Value: sp.schema},
			{Key: "validationLevel", Value: "moderate"},
			{Key: "validationAction", Value: "error"},
		}
		err := db.RunCommand(ctx, cmd).Err()
		switch {
		case err == nil:
			log.Info("validator ensured", zap.String("collection", sp.coll))
		case commandFailed(err, []int32{59, 115}, "no such command", "not implemented", "not supported"):
			log.Info("validator skipped (unsupported)", zap.String("collection", sp.coll))
		default:
			problems = append(problems, sp.coll+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// commandFailed reports whether err is a server command error with one of
// codes, or mentions one of phrases.
func commandFailed(err error, codes []int32, phrases ...string) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		for _, c := range codes {
			if ce.Code == c {
				return true
			}
		}
	}
	msg := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// enumOf lists the string values of a closed set for a schema "enum".
func enumOf[T ~string](vals []T) bson.A {
	out := make(bson.A, 0, len(vals))
	for _, v := range vals {
		out = append(out, string(v))
	}
	return out
}

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func meetingsSchema() bson.M {
	return bson.M{
		"$and": bson.A{
			bson.M{"$jsonSchema": bson.M{
				"bsonType": "object",
				"required": bson.A{
					"title", "title_ci", "location", "location_ci", "category", "gender_limit",
					"status", "max_participants", "current_participants", "organizer_id", "can_evaluate",
				},
				"properties": bson.M{
					"title":                nonBlank,
					"title_ci":             nonBlank,
					"location":             nonBlank,
					"location_ci":          nonBlank,
					"category":             bson.M{"enum": enumOf(models.Categories())},
					"gender_limit":         bson.M{"enum": enumOf(models.GenderLimits())},
					"status":               bson.M{"enum": enumOf(models.Statuses())},
					"max_participants":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
					"current_participants": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
					"organizer_id":         nonBlank,
					"can_evaluate":         bson.M{"bsonType": "bool"},
					"created_at":           bson.M{"bsonType": "date"},
					"updated_at":           bson.M{"bsonType": "date"},
				},
			}},
			// Capacity invariant.
			bson.M{"$expr": bson.M{"$lte": bson.A{"$current_participants", "$max_participants"}}},
		},
	}
}

func meetingMembersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"meeting_id", "user_id"},
			"properties": bson.M{
				"meeting_id": nonBlank,
				"user_id":    nonBlank,
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func chatRoomsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"meeting_id", "name", "host_id", "current_users"},
			"properties": bson.M{
				"meeting_id":    nonBlank,
				"name":          nonBlank,
				"host_id":       nonBlank,
				"current_users": bson.M{"bsonType": "array", "uniqueItems": true, "items": bson.M{"bsonType": "string"}},
				"created_at":    bson.M{"bsonType": "date"},
			},
		},
	}
}

func evaluationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"evaluator_id", "evaluated_id", "meeting_id", "is_positive"},
			"properties": bson.M{
				"evaluator_id": nonBlank,
				"evaluated_id": nonBlank,
				"meeting_id":   nonBlank,
				"is_positive":  bson.M{"bsonType": "bool"},
				"created_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"activity_point"},
			"properties": bson.M{
				"name":           bson.M{"bsonType": "string"},
				"activity_point": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"created_at":     bson.M{"bsonType": "date"},
				"updated_at":     bson.M{"bsonType": "date"},
			},
		},
	}
}

// internal/domain/models/evaluation.go
package models

import "time"

// Evaluation records one member rating another after a meeting.
// Unique per (evaluator_id, evaluated_id, meeting_id).
type Evaluation struct {
	ID          string    `bson:"_id" json:"id"`
	EvaluatorID string    `bson:"evaluator_id" json:"evaluator"`
	EvaluatedID string    `bson:"evaluated_id" json:"evaluated"`
	MeetingID   string    `bson:"meeting_id" json:"meeting"`
	IsPositive  bool      `bson:"is_positive" json:"is_positive"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

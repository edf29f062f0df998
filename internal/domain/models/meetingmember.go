// internal/domain/models/meetingmember.go
package models

import "time"

// MeetingMember is the authoritative join between users and meetings.
// Exactly one document per (meeting_id, user_id).
type MeetingMember struct {
	ID        string    `bson:"_id" json:"id"`
	MeetingID string    `bson:"meeting_id" json:"meeting_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

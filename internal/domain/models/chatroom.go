// internal/domain/models/chatroom.go
package models

import "time"

// ChatRoom is the presence roster of a meeting's chat room.
// CurrentUsers is not kept in sync with membership.
type ChatRoom struct {
	ID           string    `bson:"_id" json:"id"`
	MeetingID    string    `bson:"meeting_id" json:"meeting_id"`
	Name         string    `bson:"name" json:"name"`
	HostID       string    `bson:"host_id" json:"host"`
	CurrentUsers []string  `bson:"current_users" json:"current_users"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

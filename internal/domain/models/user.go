// internal/domain/models/user.go
package models

import "time"

// User is the local profile of an authenticated identity.
//
// NOTE:
//   - Identities are issued elsewhere; a profile is created the first time
//     an identity organizes or joins a meeting.
//   - ActivityPoint is the reputation counter raised by peer evaluations.
type User struct {
	ID            string `bson:"_id" json:"id"`
	Name          string `bson:"name" json:"name"`
	ActivityPoint int    `bson:"activity_point" json:"activity_point"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

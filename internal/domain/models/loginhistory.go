// internal/domain/models/loginhistory.go
package models

import "time"

// LoginRecord captures a single successful login event.
// Phone numbers are never stored in the clear; PhoneHash is a keyed digest.
// CreatedAt is indexed for recent-activity views.
type LoginRecord struct {
	UserID    string    `bson:"user_id"`
	Role      string    `bson:"role"`
	PhoneHash string    `bson:"phone_hash"`
	CreatedAt time.Time `bson:"created_at"`
	IP        string    `bson:"ip"`
	UserAgent string    `bson:"user_agent,omitempty"`
	Provider  string    `bson:"provider"`
}

package model

import "time"

// UsageLock is an advisory lock serializing the conflict-check-then-write
// sequence for one asset's calendar. The unique _id makes a second
// concurrent acquisition fail with a duplicate key error.
type UsageLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

package models

import "time"

// HouseholdMembership binds a user to a household.
//
// Invariant: a user holds at most one membership, ever, at any instant.
// The "household_memberships" collection carries a unique index on user_id
// alone (plus the usual (household_id, user_id) pair index), so the binding
// is enforced by the storage layer rather than by application locks.
type HouseholdMembership struct {
	ID          string    `bson:"_id"`
	HouseholdID string    `bson:"household_id"`
	UserID      string    `bson:"user_id"`
	IsAdmin     bool      `bson:"is_admin"`
	JoinedAt    time.Time `bson:"joined_at"`
}

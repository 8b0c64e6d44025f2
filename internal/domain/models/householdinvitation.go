package models

import "time"

// HouseholdInvitation is a pending offer for a specific user to join a
// specific household. AcceptedAt is absent while the invitation is pending;
// setting it is the single, terminal state transition. A partial unique
// index on invited_user_id over pending documents guarantees a user has at
// most one open invitation at a time.
type HouseholdInvitation struct {
	ID              string     `bson:"_id"`
	HouseholdID     string     `bson:"household_id"`
	InvitedUserID   string     `bson:"invited_user_id"`
	InvitedByUserID string     `bson:"invited_by_user_id"`
	CreatedAt       time.Time  `bson:"created_at"`
	AcceptedAt      *time.Time `bson:"accepted_at,omitempty"`
}

// Pending reports whether the invitation has not been accepted yet.
func (i *HouseholdInvitation) Pending() bool {
	return i.AcceptedAt == nil
}

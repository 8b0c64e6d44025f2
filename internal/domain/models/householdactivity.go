package models

import "time"

// HouseholdActivity is one append-only entry in a household's activity feed.
type HouseholdActivity struct {
	ID          string    `bson:"_id"`
	HouseholdID string    `bson:"household_id"`
	Message     string    `bson:"message"`
	OccurredAt  time.Time `bson:"occurred_at"`
}

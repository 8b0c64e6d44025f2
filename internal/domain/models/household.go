package models

import "time"

// Household is a tenant scope: members, chores, expenses, and the activity
// feed all hang off a household. Households are never deleted.
type Household struct {
	ID              string    `bson:"_id"`
	Name            string    `bson:"name"`
	CreatedByUserID string    `bson:"created_by_user_id"`
	ChoreLocked     bool      `bson:"chore_mutations_locked"`
	CreatedAt       time.Time `bson:"created_at"`
}

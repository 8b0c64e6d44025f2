package models

import "time"

// User is an account document in the "users" collection.
//
// Username and Email are stored as typed plus case-folded (_ci) pairs; the
// _ci fields carry the unique indexes so lookups and uniqueness are
// case-insensitive while the typed value is preserved for display.
//
// FailedAttempts and LockedUntil belong to the login lockout state machine
// and are only ever mutated by the owning user's login path.
type User struct {
	ID           string `bson:"_id"`
	Username     string `bson:"username"`
	UsernameCI   string `bson:"username_ci"`
	Email        string `bson:"email"`
	EmailCI      string `bson:"email_ci"`
	DisplayName  string `bson:"display_name"`
	PasswordHash string `bson:"password_hash"`

	FailedAttempts int        `bson:"failed_attempts"`
	LockedUntil    *time.Time `bson:"locked_until,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
}

// Locked reports whether the account is locked out at the given instant.
// Lock expiry is lazy: nothing clears LockedUntil on a timer, the next
// login attempt compares it against the clock.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

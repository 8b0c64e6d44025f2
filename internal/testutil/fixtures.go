package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/housekeeper/internal/app/system/authutil"
	"github.com/dalemusser/housekeeper/internal/app/system/normalize"
	"github.com/dalemusser/housekeeper/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a test user with the given username and email.
// The account has no usable password; use CreateUserWithPassword for
// login-path tests.
func (f *Fixtures) CreateUser(ctx context.Context, username, email string) models.User {
	f.t.Helper()

	username = normalize.Username(username)
	email = normalize.Email(email)
	user := models.User{
		ID:          uuid.NewString(),
		Username:    username,
		UsernameCI:  text.Fold(username),
		Email:       email,
		EmailCI:     text.Fold(email),
		DisplayName: username,
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateUserWithPassword inserts a test user with a bcrypt password hash.
func (f *Fixtures) CreateUserWithPassword(ctx context.Context, username, email, password string) models.User {
	f.t.Helper()

	hash, err := authutil.HashPassword(password)
	if err != nil {
		f.t.Fatalf("failed to hash test password: %v", err)
	}

	username = normalize.Username(username)
	email = normalize.Email(email)
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		UsernameCI:   text.Fold(username),
		Email:        email,
		EmailCI:      text.Fold(email),
		DisplayName:  username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateHousehold inserts a test household created by the given user.
func (f *Fixtures) CreateHousehold(ctx context.Context, name, creatorID string) models.Household {
	f.t.Helper()

	household := models.Household{
		ID:              uuid.NewString(),
		Name:            name,
		CreatedByUserID: creatorID,
		ChoreLocked:     true,
		CreatedAt:       time.Now().UTC(),
	}

	if _, err := f.db.Collection("households").InsertOne(ctx, household); err != nil {
		f.t.Fatalf("failed to create test household: %v", err)
	}
	return household
}

// CreateMembership inserts a membership binding the user to the household.
func (f *Fixtures) CreateMembership(ctx context.Context, householdID, userID string, isAdmin bool) models.HouseholdMembership {
	f.t.Helper()

	membership := models.HouseholdMembership{
		ID:          uuid.NewString(),
		HouseholdID: householdID,
		UserID:      userID,
		IsAdmin:     isAdmin,
		JoinedAt:    time.Now().UTC(),
	}

	if _, err := f.db.Collection("household_memberships").InsertOne(ctx, membership); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return membership
}

// CreateInvitation inserts a pending invitation for the given user.
func (f *Fixtures) CreateInvitation(ctx context.Context, householdID, invitedUserID, invitedByUserID string) models.HouseholdInvitation {
	f.t.Helper()

	invite := models.HouseholdInvitation{
		ID:              uuid.NewString(),
		HouseholdID:     householdID,
		InvitedUserID:   invitedUserID,
		InvitedByUserID: invitedByUserID,
		CreatedAt:       time.Now().UTC(),
	}

	if _, err := f.db.Collection("household_invitations").InsertOne(ctx, invite); err != nil {
		f.t.Fatalf("failed to create test invitation: %v", err)
	}
	return invite
}

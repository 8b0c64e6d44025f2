package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/housekeeper/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("household_memberships")}
}

// ErrDuplicateMembership is returned when the insert collides with either
// unique index on the collection: the user is already a member of this or
// another household. Both indexes carry the same business meaning here, so
// no per-index translation is needed.
var ErrDuplicateMembership = errors.New("user already belongs to a household")

// Create inserts a membership. The single-field unique index on user_id is
// what makes this safe under concurrent joins: exactly one racing insert
// for a user wins, the rest get ErrDuplicateMembership.
func (s *Store) Create(ctx context.Context, m models.HouseholdMembership) (models.HouseholdMembership, error) {
	m.ID = uuid.NewString()
	m.JoinedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.HouseholdMembership{}, ErrDuplicateMembership
		}
		return models.HouseholdMembership{}, err
	}
	return m, nil
}

// GetByUser loads the membership for a user. At most one exists.
// Returns mongo.ErrNoDocuments if the user belongs to no household.
func (s *Store) GetByUser(ctx context.Context, userID string) (*models.HouseholdMembership, error) {
	var m models.HouseholdMembership
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByHousehold returns all memberships of a household, admins first,
// then by join time.
func (s *Store) ListByHousehold(ctx context.Context, householdID string) ([]models.HouseholdMembership, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "is_admin", Value: -1},
		{Key: "joined_at", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{"household_id": householdID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.HouseholdMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// Delete removes the membership binding the user to the household.
// Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, householdID, userID string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{
		"household_id": householdID,
		"user_id":      userID,
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

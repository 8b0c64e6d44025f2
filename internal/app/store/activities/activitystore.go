package activitystore

import (
	"context"
	"time"

	"github.com/dalemusser/housekeeper/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// feedLimit caps how much of the feed a single read returns.
const feedLimit = 100

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("household_activities")}
}

// Append records one activity entry. The feed is append-only; entries are
// never updated or deleted.
func (s *Store) Append(ctx context.Context, householdID, message string) (models.HouseholdActivity, error) {
	entry := models.HouseholdActivity{
		ID:          uuid.NewString(),
		HouseholdID: householdID,
		Message:     message,
		OccurredAt:  time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, entry); err != nil {
		return models.HouseholdActivity{}, err
	}
	return entry, nil
}

// Recent returns a household's newest activity entries, most recent first,
// capped at 100.
func (s *Store) Recent(ctx context.Context, householdID string) ([]models.HouseholdActivity, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(feedLimit)
	cur, err := s.c.Find(ctx, bson.M{"household_id": householdID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.HouseholdActivity
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

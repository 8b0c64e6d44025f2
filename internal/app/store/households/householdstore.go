package householdstore

import (
	"context"
	"time"

	"github.com/dalemusser/housekeeper/internal/app/system/normalize"
	"github.com/dalemusser/housekeeper/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("households")}
}

// Create inserts a new household. New households start with chore
// mutations locked; an admin opens them up explicitly.
func (s *Store) Create(ctx context.Context, h models.Household) (models.Household, error) {
	h.ID = uuid.NewString()
	h.Name = normalize.Name(h.Name)
	h.ChoreLocked = true
	h.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, h); err != nil {
		return models.Household{}, err
	}
	return h, nil
}

// GetByID loads a household by ID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Household, error) {
	var h models.Household
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&h); err != nil {
		return nil, err
	}
	return &h, nil
}

// SetChoreLock flips the chore-mutation lock. Returns the number of
// documents matched (0 when the household does not exist).
func (s *Store) SetChoreLock(ctx context.Context, id string, locked bool) (int64, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"chore_mutations_locked": locked}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

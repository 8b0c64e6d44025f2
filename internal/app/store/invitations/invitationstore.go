package invitationstore

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
	return &Store{c: db.Collection("household_invitations")}
}

// ErrDuplicatePendingInvite is returned when the invited user already has a
// pending invitation. The partial unique index only covers documents where
// accepted_at is absent, so accepted invitations never block new ones.
var ErrDuplicatePendingInvite = errors.New("user already has a pending invitation")

// Create inserts a pending invitation.
func (s *Store) Create(ctx context.Context, inv models.HouseholdInvitation) (models.HouseholdInvitation, error) {
	inv.ID = uuid.NewString()
	inv.CreatedAt = time.Now().UTC()
	inv.AcceptedAt = nil

	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		if wafflemongo.IsDup(err) {
			return models.HouseholdInvitation{}, ErrDuplicatePendingInvite
		}
		return models.HouseholdInvitation{}, err
	}
	return inv, nil
}

// GetByID loads an invitation by ID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id string) (*models.HouseholdInvitation, error) {
	var inv models.HouseholdInvitation
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetPendingByUser loads the pending invitation for a user. At most one
// exists. Returns mongo.ErrNoDocuments if the user has none.
func (s *Store) GetPendingByUser(ctx context.Context, userID string) (*models.HouseholdInvitation, error) {
	var inv models.HouseholdInvitation
	filter := bson.M{
		"invited_user_id": userID,
		"accepted_at":     bson.M{"$exists": false},
	}
	if err := s.c.FindOne(ctx, filter).Decode(&inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListByHousehold returns a household's invitations, newest first.
func (s *Store) ListByHousehold(ctx context.Context, householdID string) ([]models.HouseholdInvitation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"household_id": householdID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var invites []models.HouseholdInvitation
	if err := cur.All(ctx, &invites); err != nil {
		return nil, err
	}
	return invites, nil
}

// MarkAccepted records the terminal Pending->Accepted transition. The
// filter requires accepted_at to be absent, so a second acceptance of the
// same invitation matches nothing. Returns the number of documents
// modified (0 or 1).
func (s *Store) MarkAccepted(ctx context.Context, id string, at time.Time) (int64, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "accepted_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"accepted_at": at.UTC()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/housekeeper/internal/app/system/indexes"
	"github.com/dalemusser/housekeeper/internal/app/system/normalize"
	"github.com/dalemusser/housekeeper/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateUsername is returned when the username is already taken
	// (compared case-insensitively).
	ErrDuplicateUsername = errors.New("a user with this username already exists")
	// ErrDuplicateEmail is returned when the email is already registered
	// (compared case-insensitively).
	ErrDuplicateEmail = errors.New("a user with this email already exists")
)

// dupOn reports whether err is a duplicate-key rejection from the named
// unique index. The driver surfaces the offending index name in the error
// message ("index: <name>"), which is the only way to tell apart the two
// unique indexes on the users collection.
func dupOn(err error, indexName string) bool {
	return wafflemongo.IsDup(err) && strings.Contains(err.Error(), indexName)
}

// Create inserts a new user after normalizing username and email. The
// case-folded _ci fields carry the unique indexes; a duplicate-key
// rejection is translated by offending index into ErrDuplicateUsername or
// ErrDuplicateEmail.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = uuid.NewString()
	u.Username = normalize.Username(u.Username)
	u.UsernameCI = text.Fold(u.Username)
	u.Email = normalize.Email(u.Email)
	u.EmailCI = text.Fold(u.Email)
	if u.DisplayName == "" {
		u.DisplayName = u.Username
	}
	u.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		switch {
		case dupOn(err, indexes.UniqUsersUsernameCI):
			return models.User{}, ErrDuplicateUsername
		case dupOn(err, indexes.UniqUsersEmailCI):
			return models.User{}, ErrDuplicateEmail
		case wafflemongo.IsDup(err):
			// _id collision; UUIDs make this effectively unreachable.
			return models.User{}, err
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIDs loads the users with the given IDs. Missing IDs are simply
// absent from the result.
func (s *Store) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetByUsername looks up a user by case-insensitive username.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	ci := text.Fold(normalize.Username(username))
	if err := s.c.FindOne(ctx, bson.M{"username_ci": ci}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateLoginState persists the lockout counters for a user. A nil
// lockedUntil clears the lock field entirely so unlocked accounts carry no
// stale timestamp.
func (s *Store) UpdateLoginState(ctx context.Context, id string, failedAttempts int, lockedUntil *time.Time) error {
	update := bson.M{"$set": bson.M{"failed_attempts": failedAttempts}}
	if lockedUntil != nil {
		update["$set"].(bson.M)["locked_until"] = *lockedUntil
	} else {
		update["$unset"] = bson.M{"locked_until": ""}
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

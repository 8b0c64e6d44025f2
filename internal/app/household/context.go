// Package household is the membership and invitation core: it owns the
// invariants "a user belongs to at most one household" and "a user has at
// most one pending invitation", enforced optimistically through the unique
// indexes declared in system/indexes. Uniqueness rejections from the store
// layer are translated into typed domain errors here and never surface raw.
package household

import (
	"context"
	"errors"

	householdstore "github.com/dalemusser/housekeeper/internal/app/store/households"
	membershipstore "github.com/dalemusser/housekeeper/internal/app/store/memberships"
	userstore "github.com/dalemusser/housekeeper/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Context is the resolved household scope for an authenticated user. Every
// scoped operation starts from one of these.
type Context struct {
	HouseholdID   string
	HouseholdName string
	UserID        string
	DisplayName   string
	IsAdmin       bool
	ChoreLocked   bool
}

// Resolver maps an authenticated user to their household scope. It is
// read-only and cheap: three point lookups on indexed fields.
type Resolver struct {
	memberships *membershipstore.Store
	households  *householdstore.Store
	users       *userstore.Store
	log         *zap.Logger
}

func NewResolver(memberships *membershipstore.Store, households *householdstore.Store, users *userstore.Store, log *zap.Logger) *Resolver {
	return &Resolver{
		memberships: memberships,
		households:  households,
		users:       users,
		log:         log,
	}
}

// Resolve returns the household context for userID. ErrNotMember when the
// user has no membership; ErrOrphanedMembership when the membership points
// at a household document that no longer exists, which is a corruption
// signal and gets logged as such.
func (r *Resolver) Resolve(ctx context.Context, userID string) (*Context, error) {
	m, err := r.memberships.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotMember
		}
		return nil, err
	}

	h, err := r.households.GetByID(ctx, m.HouseholdID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Error("membership references missing household",
				zap.String("user_id", userID),
				zap.String("membership_id", m.ID),
				zap.String("household_id", m.HouseholdID))
			return nil, ErrOrphanedMembership
		}
		return nil, err
	}

	displayName := "Someone"
	if u, err := r.users.GetByID(ctx, userID); err == nil {
		displayName = u.DisplayName
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	return &Context{
		HouseholdID:   h.ID,
		HouseholdName: h.Name,
		UserID:        userID,
		DisplayName:   displayName,
		IsAdmin:       m.IsAdmin,
		ChoreLocked:   h.ChoreLocked,
	}, nil
}

package household

import (
	"context"
	"errors"
	"sort"
	"unicode/utf8"

	householdstore "github.com/dalemusser/housekeeper/internal/app/store/households"
	membershipstore "github.com/dalemusser/housekeeper/internal/app/store/memberships"
	userstore "github.com/dalemusser/housekeeper/internal/app/store/users"
	"github.com/dalemusser/housekeeper/internal/app/system/htmlsanitize"
	"github.com/dalemusser/housekeeper/internal/app/system/txn"
	"github.com/dalemusser/housekeeper/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Household name bounds.
const (
	MinNameLength = 2
	MaxNameLength = 80
)

// Registry owns household creation, leaving, and settings. The per-user
// membership uniqueness invariant lives in the storage indexes; the
// registry's job is to issue the writes in a safe order and translate
// constraint rejections into domain errors.
type Registry struct {
	client      *mongo.Client
	households  *householdstore.Store
	memberships *membershipstore.Store
	users       *userstore.Store
	resolver    *Resolver
	recorder    *Recorder
	log         *zap.Logger
}

func NewRegistry(
	client *mongo.Client,
	households *householdstore.Store,
	memberships *membershipstore.Store,
	users *userstore.Store,
	resolver *Resolver,
	recorder *Recorder,
	log *zap.Logger,
) *Registry {
	return &Registry{
		client:      client,
		households:  households,
		memberships: memberships,
		users:       users,
		resolver:    resolver,
		recorder:    recorder,
		log:         log,
	}
}

// CreateHousehold creates a household with the creator as its sole admin
// member and writes the creation feed entry. The three writes run in a
// transaction when the server supports one; on standalone servers they run
// sequentially with the household first, so the membership insert — the
// write guarded by the uniqueness constraint — decides the outcome before
// anything references it.
func (r *Registry) CreateHousehold(ctx context.Context, creatorID, name string) (*models.Household, error) {
	name = htmlsanitize.Strip(name)
	// Bounds count characters, not bytes, so multibyte names measure the
	// same as their on-screen length.
	if n := utf8.RuneCountInString(name); n < MinNameLength || n > MaxNameLength {
		return nil, ErrInvalidName
	}

	// Fast path: an existing membership fails before any write.
	if _, err := r.memberships.GetByUser(ctx, creatorID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	creator, err := r.users.GetByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	var created models.Household
	err = txn.Run(ctx, r.client, r.log, func(ctx context.Context) error {
		created, err = r.households.Create(ctx, models.Household{
			Name:            name,
			CreatedByUserID: creatorID,
		})
		if err != nil {
			return err
		}
		if _, err := r.memberships.Create(ctx, models.HouseholdMembership{
			HouseholdID: created.ID,
			UserID:      creatorID,
			IsAdmin:     true,
		}); err != nil {
			if errors.Is(err, membershipstore.ErrDuplicateMembership) {
				return ErrAlreadyMember
			}
			return err
		}
		return r.recorder.Append(ctx, created.ID, "%s created the household.", creator.Username)
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("household created",
		zap.String("household_id", created.ID),
		zap.String("creator_id", creatorID))
	return &created, nil
}

// LeaveHousehold removes the caller's membership. Admins cannot leave;
// they must hand off the admin role first (not supported yet, matching the
// product's current rules). A delete that matches nothing means the caller
// already left in a concurrent request.
func (r *Registry) LeaveHousehold(ctx context.Context, userID string) error {
	hctx, err := r.resolver.Resolve(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotMember) {
			return ErrMembershipNotFound
		}
		return err
	}
	if hctx.IsAdmin {
		return ErrAdminCannotLeave
	}

	deleted, err := r.memberships.Delete(ctx, hctx.HouseholdID, userID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrMembershipNotFound
	}
	return r.recorder.Append(ctx, hctx.HouseholdID, "%s left the household.", hctx.DisplayName)
}

// SetChoreLock flips the household's chore-mutation lock. Admin only.
func (r *Registry) SetChoreLock(ctx context.Context, userID string, locked bool) error {
	hctx, err := r.resolver.Resolve(ctx, userID)
	if err != nil {
		return err
	}
	if !hctx.IsAdmin {
		return ErrNotAdminChoreLock
	}

	if _, err := r.households.SetChoreLock(ctx, hctx.HouseholdID, locked); err != nil {
		return err
	}

	verb := "disabled"
	if locked {
		verb = "enabled"
	}
	return r.recorder.Append(ctx, hctx.HouseholdID, "%s %s chore lock.", hctx.DisplayName, verb)
}

// Member is one row of the household member list.
type Member struct {
	ID            string
	DisplayName   string
	IsCurrentUser bool
	IsAdmin       bool
}

// Members returns the caller's household member list, admins first, then
// alphabetically by display name.
func (r *Registry) Members(ctx context.Context, userID string) ([]Member, error) {
	hctx, err := r.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return r.members(ctx, hctx)
}

func (r *Registry) members(ctx context.Context, hctx *Context) ([]Member, error) {
	memberships, err := r.memberships.ListByHousehold(ctx, hctx.HouseholdID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		userIDs = append(userIDs, m.UserID)
	}
	users, err := r.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	usersByID := make(map[string]models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	members := make([]Member, 0, len(memberships))
	for _, m := range memberships {
		if uuid.Validate(m.ID) != nil {
			r.log.Error("membership id is malformed",
				zap.String("membership_id", m.ID),
				zap.String("household_id", m.HouseholdID))
			return nil, ErrMalformedIdentifier
		}
		displayName := "Unknown user"
		if u, ok := usersByID[m.UserID]; ok {
			displayName = u.DisplayName
			if displayName == "" {
				displayName = u.Username
			}
		}
		members = append(members, Member{
			ID:            m.ID,
			DisplayName:   displayName,
			IsCurrentUser: m.UserID == hctx.UserID,
			IsAdmin:       m.IsAdmin,
		})
	}

	sort.SliceStable(members, func(i, j int) bool {
		if members[i].IsAdmin != members[j].IsAdmin {
			return members[i].IsAdmin
		}
		return members[i].DisplayName < members[j].DisplayName
	})
	return members, nil
}

// Snapshot is the household overview the consuming layer renders.
type Snapshot struct {
	HouseholdName string
	IsAdmin       bool
	ChoreLocked   bool
	Members       []Member
}

// Snapshot returns the caller's household overview, or nil (no error) when
// the caller has no resolvable household. Callers use the nil result to
// show the "create or accept an invite" state.
func (r *Registry) Snapshot(ctx context.Context, userID string) (*Snapshot, error) {
	hctx, err := r.resolver.Resolve(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotMember) || errors.Is(err, ErrOrphanedMembership) {
			return nil, nil
		}
		return nil, err
	}
	members, err := r.members(ctx, hctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		HouseholdName: hctx.HouseholdName,
		IsAdmin:       hctx.IsAdmin,
		ChoreLocked:   hctx.ChoreLocked,
		Members:       members,
	}, nil
}

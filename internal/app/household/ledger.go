package household

import (
	"context"
	"errors"
	"time"

	householdstore "github.com/dalemusser/housekeeper/internal/app/store/households"
	invitationstore "github.com/dalemusser/housekeeper/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/housekeeper/internal/app/store/memberships"
	userstore "github.com/dalemusser/housekeeper/internal/app/store/users"
	"github.com/dalemusser/housekeeper/internal/app/system/txn"
	"github.com/dalemusser/housekeeper/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Ledger owns invitation issuance and acceptance. The pending-invite
// uniqueness invariant is carried by the partial unique index on the
// invitations collection; the pre-checks here exist to hand back the
// household-specific conflict messages on the common path, with the index
// as the authority when two requests race past them.
type Ledger struct {
	client      *mongo.Client
	users       *userstore.Store
	households  *householdstore.Store
	memberships *membershipstore.Store
	invitations *invitationstore.Store
	resolver    *Resolver
	recorder    *Recorder
	log         *zap.Logger
}

func NewLedger(
	client *mongo.Client,
	users *userstore.Store,
	households *householdstore.Store,
	memberships *membershipstore.Store,
	invitations *invitationstore.Store,
	resolver *Resolver,
	recorder *Recorder,
	log *zap.Logger,
) *Ledger {
	return &Ledger{
		client:      client,
		users:       users,
		households:  households,
		memberships: memberships,
		invitations: invitations,
		resolver:    resolver,
		recorder:    recorder,
		log:         log,
	}
}

// InviteMember issues a pending invitation from the caller's household to
// the user with the given username. Admin only.
func (l *Ledger) InviteMember(ctx context.Context, adminID, username string) (*models.HouseholdInvitation, error) {
	hctx, err := l.resolver.Resolve(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !hctx.IsAdmin {
		return nil, ErrNotAdminInvite
	}

	target, err := l.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if target.ID == adminID {
		return nil, ErrCannotInviteSelf
	}

	if existing, err := l.memberships.GetByUser(ctx, target.ID); err == nil {
		if existing.HouseholdID == hctx.HouseholdID {
			return nil, ErrTargetInThisHousehold
		}
		return nil, ErrTargetInAnotherHousehold
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	if pending, err := l.invitations.GetPendingByUser(ctx, target.ID); err == nil {
		if pending.HouseholdID == hctx.HouseholdID {
			return nil, ErrPendingInviteThisHousehold
		}
		return nil, ErrPendingInviteAnotherHousehold
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	created, err := l.invitations.Create(ctx, models.HouseholdInvitation{
		HouseholdID:     hctx.HouseholdID,
		InvitedUserID:   target.ID,
		InvitedByUserID: adminID,
	})
	if err != nil {
		if errors.Is(err, invitationstore.ErrDuplicatePendingInvite) {
			// A concurrent invite won the race past the pre-checks.
			return nil, ErrAlreadyInvited
		}
		return nil, err
	}

	if err := l.recorder.Append(ctx, hctx.HouseholdID, "%s was invited to the household.", target.Username); err != nil {
		return nil, err
	}

	l.log.Info("invitation issued",
		zap.String("invitation_id", created.ID),
		zap.String("household_id", hctx.HouseholdID),
		zap.String("invited_user_id", target.ID))
	return &created, nil
}

// AcceptInvite joins the caller to the invitation's household and marks the
// invitation accepted, the single terminal transition. The membership
// insert and the guarded invitation update run in a transaction when the
// server supports one; the sequential fallback keeps the membership insert
// first, so a crash in the gap leaves a stale pending invite (repairable)
// rather than an accepted invite with no membership.
func (l *Ledger) AcceptInvite(ctx context.Context, userID, inviteID string) (*models.HouseholdMembership, error) {
	if uuid.Validate(inviteID) != nil {
		return nil, ErrInviteNotFound
	}

	if _, err := l.memberships.GetByUser(ctx, userID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	inv, err := l.invitations.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	if inv.InvitedUserID != userID || !inv.Pending() {
		return nil, ErrInviteNotFound
	}

	if _, err := l.households.GetByID(ctx, inv.HouseholdID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrHouseholdNotFound
		}
		return nil, err
	}

	user, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var created models.HouseholdMembership
	err = txn.Run(ctx, l.client, l.log, func(ctx context.Context) error {
		created, err = l.memberships.Create(ctx, models.HouseholdMembership{
			HouseholdID: inv.HouseholdID,
			UserID:      userID,
			IsAdmin:     false,
		})
		if err != nil {
			if errors.Is(err, membershipstore.ErrDuplicateMembership) {
				return ErrAlreadyMember
			}
			return err
		}
		modified, err := l.invitations.MarkAccepted(ctx, inv.ID, time.Now())
		if err != nil {
			return err
		}
		if modified == 0 {
			// Accepted by a concurrent request after our pending check.
			return ErrInviteNotFound
		}
		return l.recorder.Append(ctx, inv.HouseholdID, "%s joined the household.", user.Username)
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("invitation accepted",
		zap.String("invitation_id", inv.ID),
		zap.String("household_id", inv.HouseholdID),
		zap.String("user_id", userID))
	return &created, nil
}

// PendingInvite is one entry of a user's open invitations, joined with the
// inviting household's name for display.
type PendingInvite struct {
	ID            string
	HouseholdName string
	InvitedAt     time.Time
}

// PendingInvites returns the caller's open invitations, newest first. The
// pending-uniqueness invariant caps this at one entry, but the result stays
// a slice so the consuming layer renders it like any other list.
func (l *Ledger) PendingInvites(ctx context.Context, userID string) ([]PendingInvite, error) {
	inv, err := l.invitations.GetPendingByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	if uuid.Validate(inv.ID) != nil {
		l.log.Error("invitation id is malformed", zap.String("invitation_id", inv.ID))
		return nil, ErrMalformedIdentifier
	}

	name := "Unknown household"
	if h, err := l.households.GetByID(ctx, inv.HouseholdID); err == nil {
		name = h.Name
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	return []PendingInvite{{
		ID:            inv.ID,
		HouseholdName: name,
		InvitedAt:     inv.CreatedAt,
	}}, nil
}

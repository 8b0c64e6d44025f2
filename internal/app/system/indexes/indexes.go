// Package indexes declares and reconciles the MongoDB indexes the
// application relies on. The unique indexes here are load-bearing: the
// membership and invitation invariants are enforced by them, not by
// application-level locks, so EnsureAll must succeed before the app
// serves traffic.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Index names for the unique constraints. Stores match these against
// duplicate-key errors to translate a storage rejection into the right
// domain conflict instead of a generic duplicate signal.
const (
	UniqUsersUsernameCI = "uniq_users_username_ci"
	UniqUsersEmailCI    = "uniq_users_email_ci"

	// One membership per (household, user) pair.
	UniqMembershipPair = "uniq_hm_household_user"
	// The binding invariant: one membership per user, full stop.
	UniqMembershipUser = "uniq_hm_user"

	// One pending invitation per invited user (partial over documents
	// where accepted_at is absent).
	UniqPendingInvite = "uniq_hi_pending_invited_user"
)

/*
EnsureAll is called at startup (EnsureSchema hook). Each ensure* function
is idempotent. Errors are aggregated so every problem is visible and
startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureMemberships(ctx, db); err != nil {
		problems = append(problems, "household_memberships: "+err.Error())
	}
	if err := ensureInvitations(ctx, db); err != nil {
		problems = append(problems, "household_invitations: "+err.Error())
	}
	if err := ensureActivities(ctx, db); err != nil {
		problems = append(problems, "household_activities: "+err.Error())
	}
	// households carry no secondary uniqueness; _id is enough.

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

type existingIndex struct {
	Name string `bson:"name"`
	Key  bson.D `bson:"key"`
}

// ensureIndexSet creates each desired index unless an index with the same
// key pattern already exists. Upgrading options on an existing index is a
// manual operation; reconciliation here only covers the create path.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing := map[string]string{} // key signature -> index name
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		defer cur.Close(ctx)
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx.Name
		}
	}

	var errs []string
	for _, m := range models {
		var desiredName string
		unique := false
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			if m.Options.Unique != nil {
				unique = *m.Options.Unique
			}
		}
		sig := keySig(m.Keys.(bson.D))

		if name, ok := existing[sig]; ok {
			zap.L().Info("reusing existing index",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.String("keys", sig))
			continue
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", sig),
				zap.Bool("unique", unique),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", sig),
			zap.Bool("unique", unique))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Usernames and emails are unique across all accounts,
		// compared case-insensitively via the folded _ci fields.
		{
			Keys:    bson.D{{Key: "username_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(UniqUsersUsernameCI),
		},
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(UniqUsersEmailCI),
		},
	})
}

func ensureMemberships(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("household_memberships")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One membership document per (household, user).
		{
			Keys:    bson.D{{Key: "household_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(UniqMembershipPair),
		},
		// A user belongs to at most one household. This single-field
		// unique index is what makes concurrent CreateHousehold and
		// AcceptInvite safe for the same user.
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(UniqMembershipUser),
		},
	})
}

func ensureInvitations(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("household_invitations")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// At most one pending invitation per invited user. Accepted
		// invitations keep their document (accepted_at set) and drop
		// out of the partial index, so history is preserved without
		// blocking later invitations.
		{
			Keys: bson.D{{Key: "invited_user_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName(UniqPendingInvite).
				SetPartialFilterExpression(bson.M{
					"accepted_at": bson.M{"$exists": false},
				}),
		},
		// Per-household invitation listings, newest first.
		{
			Keys:    bson.D{{Key: "household_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_hi_household_created"),
		},
	})
}

func ensureActivities(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("household_activities")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// The activity feed: per-household, newest first.
		{
			Keys:    bson.D{{Key: "household_id", Value: 1}, {Key: "occurred_at", Value: -1}},
			Options: options.Index().SetName("idx_ha_household_occurred"),
		},
	})
}

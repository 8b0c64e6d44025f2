package household_test

import (
	"context"
	"testing"

	"github.com/dalemusser/housekeeper/internal/app/household"
	activitystore "github.com/dalemusser/housekeeper/internal/app/store/activities"
	householdstore "github.com/dalemusser/housekeeper/internal/app/store/households"
	invitationstore "github.com/dalemusser/housekeeper/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/housekeeper/internal/app/store/memberships"
	userstore "github.com/dalemusser/housekeeper/internal/app/store/users"
	"github.com/dalemusser/housekeeper/internal/app/system/indexes"
	"github.com/dalemusser/housekeeper/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// core bundles the assembled components for a test database.
type core struct {
	db       *mongo.Database
	registry *household.Registry
	ledger   *household.Ledger
	resolver *household.Resolver
	recorder *household.Recorder
	fixtures *testutil.Fixtures
}

func setupCore(t *testing.T) (*core, context.Context, context.CancelFunc) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		cancel()
		t.Fatalf("EnsureAll failed: %v", err)
	}

	log := zap.NewNop()
	users := userstore.New(db)
	households := householdstore.New(db)
	memberships := membershipstore.New(db)
	invitations := invitationstore.New(db)
	activities := activitystore.New(db)

	resolver := household.NewResolver(memberships, households, users, log)
	recorder := household.NewRecorder(activities)
	registry := household.NewRegistry(db.Client(), households, memberships, users, resolver, recorder, log)
	ledger := household.NewLedger(db.Client(), users, households, memberships, invitations, resolver, recorder, log)

	return &core{
		db:       db,
		registry: registry,
		ledger:   ledger,
		resolver: resolver,
		recorder: recorder,
		fixtures: testutil.NewFixtures(t, db),
	}, ctx, cancel
}

// lastActivity returns the newest feed message for a household.
func lastActivity(t *testing.T, ctx context.Context, c *core, householdID string) string {
	t.Helper()
	entries, err := c.recorder.Recent(ctx, householdID)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one activity entry")
	}
	return entries[0].Message
}

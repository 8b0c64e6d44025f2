package townhall_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/housekeeper/internal/app/features/townhall"
	"github.com/dalemusser/housekeeper/internal/app/household"
	activitystore "github.com/dalemusser/housekeeper/internal/app/store/activities"
	householdstore "github.com/dalemusser/housekeeper/internal/app/store/households"
	membershipstore "github.com/dalemusser/housekeeper/internal/app/store/memberships"
	userstore "github.com/dalemusser/housekeeper/internal/app/store/users"
	"github.com/dalemusser/housekeeper/internal/app/system/auth"
	"github.com/dalemusser/housekeeper/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*townhall.Handler, *household.Recorder, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	users := userstore.New(db)
	households := householdstore.New(db)
	memberships := membershipstore.New(db)
	activities := activitystore.New(db)

	resolver := household.NewResolver(memberships, households, users, logger)
	recorder := household.NewRecorder(activities)

	return townhall.NewHandler(resolver, recorder, logger), recorder, testutil.NewFixtures(t, db)
}

func TestHandleFeed(t *testing.T) {
	h, recorder, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fx.CreateUser(ctx, "alice", "alice@example.com")
	hh := fx.CreateHousehold(ctx, "Maple Street", alice.ID)
	fx.CreateMembership(ctx, hh.ID, alice.ID, true)

	if err := recorder.Append(ctx, hh.ID, "%s created the household.", "alice"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond) // keep occurred_at strictly ordered
	if err := recorder.Append(ctx, hh.ID, "%s was invited to the household.", "bob"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/townhall", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: alice.ID, Name: "alice"})
	rec := httptest.NewRecorder()
	h.HandleFeed(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Activities []struct {
			Message string `json:"message"`
		} `json:"activities"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(resp.Activities))
	}
	// Newest first.
	if resp.Activities[0].Message != "bob was invited to the household." {
		t.Errorf("expected newest entry first, got %q", resp.Activities[0].Message)
	}
}

func TestHandleFeed_NoHousehold(t *testing.T) {
	h, _, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fx.CreateUser(ctx, "alice", "alice@example.com")

	req := httptest.NewRequest("GET", "/townhall", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: alice.ID, Name: "alice"})
	rec := httptest.NewRecorder()
	h.HandleFeed(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

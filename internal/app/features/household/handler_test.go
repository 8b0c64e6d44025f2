package householdfeature_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	householdfeature "github.com/dalemusser/housekeeper/internal/app/features/household"
	"github.com/dalemusser/housekeeper/internal/app/household"
	activitystore "github.com/dalemusser/housekeeper/internal/app/store/activities"
	householdstore "github.com/dalemusser/housekeeper/internal/app/store/households"
	invitationstore "github.com/dalemusser/housekeeper/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/housekeeper/internal/app/store/memberships"
	userstore "github.com/dalemusser/housekeeper/internal/app/store/users"
	"github.com/dalemusser/housekeeper/internal/app/system/auth"
	"github.com/dalemusser/housekeeper/internal/app/system/indexes"
	"github.com/dalemusser/housekeeper/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type testRig struct {
	router chi.Router
	fx     *testutil.Fixtures
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	logger := zap.NewNop()
	users := userstore.New(db)
	households := householdstore.New(db)
	memberships := membershipstore.New(db)
	invitations := invitationstore.New(db)
	activities := activitystore.New(db)

	resolver := household.NewResolver(memberships, households, users, logger)
	recorder := household.NewRecorder(activities)
	registry := household.NewRegistry(db.Client(), households, memberships, users, resolver, recorder, logger)
	ledger := household.NewLedger(db.Client(), users, households, memberships, invitations, resolver, recorder, logger)

	h := householdfeature.NewHandler(registry, ledger, logger)
	return &testRig{
		router: householdfeature.Routes(h),
		fx:     testutil.NewFixtures(t, db),
	}
}

// do issues a request through the feature router as the given user.
func (rig *testRig) do(t *testing.T, userID, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = auth.WithTestUser(req, &auth.SessionUser{ID: userID, Name: "tester"})
	rec := httptest.NewRecorder()
	rig.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleSnapshot_NoHousehold(t *testing.T) {
	rig := newTestRig(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := rig.fx.CreateUser(ctx, "alice", "alice@example.com")

	rec := rig.do(t, alice.ID, "GET", "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["household"] != nil {
		t.Errorf("expected null household, got %v", resp["household"])
	}
}

func TestHandleCreate_ThenSnapshot(t *testing.T) {
	rig := newTestRig(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := rig.fx.CreateUser(ctx, "alice", "alice@example.com")

	rec := rig.do(t, alice.ID, "POST", "/", `{"name":"Maple Street"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = rig.do(t, alice.ID, "GET", "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Household *struct {
			HouseholdName string `json:"household_name"`
			IsAdmin       bool   `json:"is_admin"`
			ChoreLocked   bool   `json:"chore_locked"`
			Members       []struct {
				DisplayName   string `json:"display_name"`
				IsCurrentUser bool   `json:"is_current_user"`
			} `json:"members"`
		} `json:"household"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Household == nil {
		t.Fatal("expected a household in the snapshot")
	}
	if resp.Household.HouseholdName != "Maple Street" {
		t.Errorf("expected household name 'Maple Street', got %q", resp.Household.HouseholdName)
	}
	if !resp.Household.IsAdmin {
		t.Error("expected the creator to be admin")
	}
	if !resp.Household.ChoreLocked {
		t.Error("expected chore lock to default on")
	}
	if len(resp.Household.Members) != 1 || !resp.Household.Members[0].IsCurrentUser {
		t.Errorf("expected the creator as the sole member, got %+v", resp.Household.Members)
	}
}

func TestHandleCreate_InvalidName(t *testing.T) {
	rig := newTestRig(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := rig.fx.CreateUser(ctx, "alice", "alice@example.com")

	rec := rig.do(t, alice.ID, "POST", "/", `{"name":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "between 2 and 80 characters") {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
}

func TestHandleCreate_AlreadyMember(t *testing.T) {
	rig := newTestRig(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := rig.fx.CreateUser(ctx, "alice", "alice@example.com")
	h := rig.fx.CreateHousehold(ctx, "First", alice.ID)
	rig.fx.CreateMembership(ctx, h.ID, alice.ID, true)

	rec := rig.do(t, alice.ID, "POST", "/", `{"name":"Second"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInviteAcceptFlow(t *testing.T) {
	rig := newTestRig(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := rig.fx.CreateUser(ctx, "alice", "alice@example.com")
	bob := rig.fx.CreateUser(ctx, "bob", "bob@example.com")
	h := rig.fx.CreateHousehold(ctx, "Maple Street", alice.ID)
	rig.fx.CreateMembership(ctx, h.ID, alice.ID, true)

	// Admin invites bob.
	rec := rig.do(t, alice.ID, "POST", "/invites", `{"username":"bob"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("invite: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Bob sees the pending invite.
	rec = rig.do(t, bob.ID, "GET", "/invites/pending", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("pending: expected 200, got %d", rec.Code)
	}
	var pending struct {
		Invites []struct {
			ID            string `json:"id"`
			HouseholdName string `json:"household_name"`
		} `json:"invites"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&pending); err != nil {
		t.Fatalf("decode pending: %v", err)
	}
	if len(pending.Invites) != 1 {
		t.Fatalf("expected 1 pending invite, got %d", len(pending.Invites))
	}
	if pending.Invites[0].HouseholdName != "Maple Street" {
		t.Errorf("expected household name on invite, got %q", pending.Invites[0].HouseholdName)
	}

	// Bob accepts and lands in the household.
	rec = rig.do(t, bob.ID, "POST", "/invites/"+pending.Invites[0].ID+"/accept", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&accepted); err != nil {
		t.Fatalf("decode accept: %v", err)
	}
	if accepted["household_id"] != h.ID {
		t.Errorf("expected household_id %q, got %q", h.ID, accepted["household_id"])
	}

	// Members now lists both, admin first.
	rec = rig.do(t, bob.ID, "GET", "/members", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("members: expected 200, got %d", rec.Code)
	}
	var members struct {
		Members []struct {
			DisplayName string `json:"display_name"`
			IsAdmin     bool   `json:"is_admin"`
		} `json:"members"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&members); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if len(members.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members.Members))
	}
	if !members.Members[0].IsAdmin {
		t.Error("expected the admin listed first")
	}
}

func TestHandleInvite_NotAdmin(t *testing.T) {
	rig := newTestRig(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := rig.fx.CreateUser(ctx, "alice", "alice@example.com")
	bob := rig.fx.CreateUser(ctx, "bob", "bob@example.com")
	carol := rig.fx.CreateUser(ctx, "carol", "carol@example.com")
	h := rig.fx.CreateHousehold(ctx, "Maple Street", alice.ID)
	rig.fx.CreateMembership(ctx, h.ID, alice.ID, true)
	rig.fx.CreateMembership(ctx, h.ID, bob.ID, false)

	rec := rig.do(t, bob.ID, "POST", "/invites", `{"username":"`+carol.Username+`"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleAcceptInvite_Spent(t *testing.T) {
	rig := newTestRig(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := rig.fx.CreateUser(ctx, "alice", "alice@example.com")
	bob := rig.fx.CreateUser(ctx, "bob", "bob@example.com")
	h := rig.fx.CreateHousehold(ctx, "Maple Street", alice.ID)
	rig.fx.CreateMembership(ctx, h.ID, alice.ID, true)
	inv := rig.fx.CreateInvitation(ctx, h.ID, bob.ID, alice.ID)

	rec := rig.do(t, bob.ID, "POST", "/invites/"+inv.ID+"/accept", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("first accept: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Leave, then try the same invite again: it is spent.
	rec = rig.do(t, bob.ID, "POST", "/leave", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("leave: expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = rig.do(t, bob.ID, "POST", "/invites/"+inv.ID+"/accept", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second accept: expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleLeave_AdminBlocked(t *testing.T) {
	rig := newTestRig(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := rig.fx.CreateUser(ctx, "alice", "alice@example.com")
	h := rig.fx.CreateHousehold(ctx, "Maple Street", alice.ID)
	rig.fx.CreateMembership(ctx, h.ID, alice.ID, true)

	rec := rig.do(t, alice.ID, "POST", "/leave", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Transfer admin first") {
		t.Errorf("unexpected error body: %s", rec.Body.String())
	}
}

func TestHandleChoreLock(t *testing.T) {
	rig := newTestRig(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := rig.fx.CreateUser(ctx, "alice", "alice@example.com")
	bob := rig.fx.CreateUser(ctx, "bob", "bob@example.com")
	h := rig.fx.CreateHousehold(ctx, "Maple Street", alice.ID)
	rig.fx.CreateMembership(ctx, h.ID, alice.ID, true)
	rig.fx.CreateMembership(ctx, h.ID, bob.ID, false)

	rec := rig.do(t, alice.ID, "POST", "/chore-lock", `{"locked":false}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin toggle: expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = rig.do(t, bob.ID, "POST", "/chore-lock", `{"locked":true}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member toggle: expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

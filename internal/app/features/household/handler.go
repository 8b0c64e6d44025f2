// Package household exposes the household membership and invitation
// endpoints. Every route requires a signed-in user; the session middleware
// runs in front of this router.
package householdfeature

import (
	"net/http"
	"time"

	"github.com/dalemusser/housekeeper/internal/app/features/shared"
	"github.com/dalemusser/housekeeper/internal/app/household"
	"github.com/dalemusser/housekeeper/internal/app/system/auth"
	"github.com/dalemusser/housekeeper/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Registry *household.Registry
	Ledger   *household.Ledger
	Log      *zap.Logger
}

func NewHandler(registry *household.Registry, ledger *household.Ledger, logger *zap.Logger) *Handler {
	return &Handler{
		Registry: registry,
		Ledger:   ledger,
		Log:      logger,
	}
}

type memberResponse struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	IsCurrentUser bool   `json:"is_current_user"`
	IsAdmin       bool   `json:"is_admin"`
}

type snapshotResponse struct {
	HouseholdName string           `json:"household_name"`
	IsAdmin       bool             `json:"is_admin"`
	ChoreLocked   bool             `json:"chore_locked"`
	Members       []memberResponse `json:"members"`
}

func toMemberResponses(members []household.Member) []memberResponse {
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse{
			ID:            m.ID,
			DisplayName:   m.DisplayName,
			IsCurrentUser: m.IsCurrentUser,
			IsAdmin:       m.IsAdmin,
		})
	}
	return out
}

// HandleSnapshot handles GET /household. A caller without a household gets
// {"household": null}, the cue to create one or accept an invite.
func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "household snapshot")
	defer cancel()

	snap, err := h.Registry.Snapshot(ctx, user.ID)
	if err != nil {
		shared.DomainError(w, h.Log, err)
		return
	}
	if snap == nil {
		shared.JSON(w, http.StatusOK, map[string]any{"household": nil})
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"household": snapshotResponse{
		HouseholdName: snap.HouseholdName,
		IsAdmin:       snap.IsAdmin,
		ChoreLocked:   snap.ChoreLocked,
		Members:       toMemberResponses(snap.Members),
	}})
}

type createRequest struct {
	Name string `json:"name"`
}

// HandleCreate handles POST /household.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	var req createRequest
	if !shared.Decode(w, r, &req) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create household")
	defer cancel()

	created, err := h.Registry.CreateHousehold(ctx, user.ID, req.Name)
	if err != nil {
		shared.DomainError(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusCreated, map[string]string{
		"id":   created.ID,
		"name": created.Name,
	})
}

// HandleMembers handles GET /household/members.
func (h *Handler) HandleMembers(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list members")
	defer cancel()

	members, err := h.Registry.Members(ctx, user.ID)
	if err != nil {
		shared.DomainError(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, map[string]any{"members": toMemberResponses(members)})
}

type inviteRequest struct {
	Username string `json:"username"`
}

// HandleInvite handles POST /household/invites.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	var req inviteRequest
	if !shared.Decode(w, r, &req) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "invite member")
	defer cancel()

	inv, err := h.Ledger.InviteMember(ctx, user.ID, req.Username)
	if err != nil {
		shared.DomainError(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusCreated, map[string]string{"id": inv.ID})
}

type pendingInviteResponse struct {
	ID            string    `json:"id"`
	HouseholdName string    `json:"household_name"`
	InvitedAt     time.Time `json:"invited_at"`
}

// HandlePendingInvites handles GET /household/invites/pending.
func (h *Handler) HandlePendingInvites(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list pending invites")
	defer cancel()

	invites, err := h.Ledger.PendingInvites(ctx, user.ID)
	if err != nil {
		shared.DomainError(w, h.Log, err)
		return
	}
	out := make([]pendingInviteResponse, 0, len(invites))
	for _, inv := range invites {
		out = append(out, pendingInviteResponse{
			ID:            inv.ID,
			HouseholdName: inv.HouseholdName,
			InvitedAt:     inv.InvitedAt,
		})
	}
	shared.JSON(w, http.StatusOK, map[string]any{"invites": out})
}

// HandleAcceptInvite handles POST /household/invites/{inviteID}/accept.
func (h *Handler) HandleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	inviteID := inviteIDParam(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "accept invite")
	defer cancel()

	m, err := h.Ledger.AcceptInvite(ctx, user.ID, inviteID)
	if err != nil {
		shared.DomainError(w, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, map[string]string{
		"household_id": m.HouseholdID,
	})
}

// HandleLeave handles POST /household/leave.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "leave household")
	defer cancel()

	if err := h.Registry.LeaveHousehold(ctx, user.ID); err != nil {
		shared.DomainError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type choreLockRequest struct {
	Locked bool `json:"locked"`
}

// HandleChoreLock handles POST /household/chore-lock.
func (h *Handler) HandleChoreLock(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	var req choreLockRequest
	if !shared.Decode(w, r, &req) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "set chore lock")
	defer cancel()

	if err := h.Registry.SetChoreLock(ctx, user.ID, req.Locked); err != nil {
		shared.DomainError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

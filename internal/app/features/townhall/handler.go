// Package townhall serves the household activity feed.
package townhall

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
	Resolver *household.Resolver
	Recorder *household.Recorder
	Log      *zap.Logger
}

func NewHandler(resolver *household.Resolver, recorder *household.Recorder, logger *zap.Logger) *Handler {
	return &Handler{
		Resolver: resolver,
		Recorder: recorder,
		Log:      logger,
	}
}

type activityResponse struct {
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// HandleFeed handles GET /townhall: the caller's household feed, newest
// first, capped at 100 entries.
func (h *Handler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "activity feed")
	defer cancel()

	hctx, err := h.Resolver.Resolve(ctx, user.ID)
	if err != nil {
		shared.DomainError(w, h.Log, err)
		return
	}

	entries, err := h.Recorder.Recent(ctx, hctx.HouseholdID)
	if err != nil {
		shared.DomainError(w, h.Log, err)
		return
	}
	out := make([]activityResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, activityResponse{
			Message:    e.Message,
			OccurredAt: e.OccurredAt,
		})
	}
	shared.JSON(w, http.StatusOK, map[string]any{"activities": out})
}

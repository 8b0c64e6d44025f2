package householdfeature

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleSnapshot)
	r.Post("/", h.HandleCreate)
	r.Get("/members", h.HandleMembers)
	r.Post("/invites", h.HandleInvite)
	r.Get("/invites/pending", h.HandlePendingInvites)
	r.Post("/invites/{inviteID}/accept", h.HandleAcceptInvite)
	r.Post("/leave", h.HandleLeave)
	r.Post("/chore-lock", h.HandleChoreLock)
	return r
}

func inviteIDParam(r *http.Request) string {
	return chi.URLParam(r, "inviteID")
}

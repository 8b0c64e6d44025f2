// Package accounts exposes registration and session endpoints. Login runs
// two independent throttles: the in-process IP/username rate limiter first,
// then the persistent per-account lockout inside authgate.
package accounts

import (
	"errors"
	"net/http"

	"github.com/dalemusser/housekeeper/internal/app/features/shared"
	userstore "github.com/dalemusser/housekeeper/internal/app/store/users"
	"github.com/dalemusser/housekeeper/internal/app/system/auth"
	"github.com/dalemusser/housekeeper/internal/app/system/authgate"
	"github.com/dalemusser/housekeeper/internal/app/system/ratelimit"
	"github.com/dalemusser/housekeeper/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	msgInvalidCredential = "Invalid username or password."
	msgAccountLocked     = "This account is temporarily locked. Try again later."
)

type Handler struct {
	Gate       *authgate.Gate
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	Log        *zap.Logger
}

func NewHandler(gate *authgate.Gate, sessionMgr *auth.SessionManager, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		Gate:       gate,
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		Log:        logger,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// HandleRegister handles POST /register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !shared.Decode(w, r, &req) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "register account")
	defer cancel()

	user, err := h.Gate.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, userstore.ErrDuplicateUsername):
			shared.Error(w, http.StatusConflict, "That username is already taken.")
		case errors.Is(err, userstore.ErrDuplicateEmail):
			shared.Error(w, http.StatusConflict, "That email is already in use.")
		case errors.Is(err, authgate.ErrUsernameLength),
			errors.Is(err, authgate.ErrInvalidEmail),
			errors.Is(err, authgate.ErrInvalidPassword):
			shared.Error(w, http.StatusBadRequest, err.Error())
		default:
			h.Log.Error("registration failed", zap.Error(err))
			shared.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		return
	}

	shared.JSON(w, http.StatusCreated, userResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin handles POST /login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !shared.Decode(w, r, &req) {
		return
	}

	if allowed, reason := h.Limiter.Check(r, req.Username); !allowed {
		shared.Error(w, http.StatusTooManyRequests, reason)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "login attempt")
	defer cancel()

	outcome, user, err := h.Gate.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		h.Log.Error("login attempt failed", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	switch outcome {
	case authgate.OutcomeSuccess:
		h.Limiter.ResetUsername(req.Username)
		if err := h.SessionMgr.SignIn(w, r, &auth.SessionUser{
			ID:    user.ID,
			Name:  user.DisplayName,
			Email: user.Email,
		}); err != nil {
			h.Log.Error("failed to establish session", zap.Error(err))
			shared.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
			return
		}
		shared.JSON(w, http.StatusOK, userResponse{
			ID:          user.ID,
			Username:    user.Username,
			Email:       user.Email,
			DisplayName: user.DisplayName,
		})
	case authgate.OutcomeAccountLocked:
		shared.Error(w, http.StatusForbidden, msgAccountLocked)
	default:
		shared.Error(w, http.StatusUnauthorized, msgInvalidCredential)
	}
}

// HandleLogout handles POST /logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("failed to clear session", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

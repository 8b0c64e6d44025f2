// Package authgate is the credential-lockout guard in front of password
// login. It owns the per-account failure counter and lock window: five
// wrong passwords lock the account for ten minutes, and the lock expires
// lazily on the next attempt rather than on a timer.
package authgate

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	userstore "github.com/dalemusser/housekeeper/internal/app/store/users"
	"github.com/dalemusser/housekeeper/internal/app/system/authutil"
	"github.com/dalemusser/housekeeper/internal/app/system/htmlsanitize"
	"github.com/dalemusser/housekeeper/internal/app/system/normalize"
	"github.com/dalemusser/housekeeper/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Defaults for the lockout state machine.
const (
	DefaultMaxAttempts = 5
	DefaultLockWindow  = 10 * time.Minute
)

// Username length bounds for registration.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 32
)

// Outcome classifies an authentication attempt. Invalid usernames and
// wrong passwords share OutcomeInvalidCredential so a caller cannot
// distinguish which half failed.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeInvalidCredential
	OutcomeAccountLocked
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalidCredential:
		return "invalid_credential"
	case OutcomeAccountLocked:
		return "account_locked"
	default:
		return "unknown"
	}
}

// Hasher abstracts password hashing so tests can plug in a cheap
// implementation. The default uses bcrypt via authutil.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

type bcryptHasher struct{}

func (bcryptHasher) Hash(password string) (string, error) { return authutil.HashPassword(password) }
func (bcryptHasher) Verify(hash, password string) bool {
	return authutil.CheckPassword(hash, password)
}

// Registration validation errors.
var (
	ErrUsernameLength  = fmt.Errorf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength)
	ErrInvalidEmail    = errors.New("a valid email address is required")
	ErrInvalidPassword = errors.New(authutil.PasswordRules)
)

// Gate authenticates credentials against the users collection and
// maintains the lockout counters.
type Gate struct {
	users       *userstore.Store
	hasher      Hasher
	maxAttempts int
	lockWindow  time.Duration
	now         func() time.Time
	log         *zap.Logger
}

// Option customizes a Gate.
type Option func(*Gate)

// WithHasher replaces the bcrypt hasher.
func WithHasher(h Hasher) Option { return func(g *Gate) { g.hasher = h } }

// WithLockout overrides the attempt threshold and lock window.
func WithLockout(maxAttempts int, window time.Duration) Option {
	return func(g *Gate) {
		g.maxAttempts = maxAttempts
		g.lockWindow = window
	}
}

// WithClock replaces the time source, for tests exercising lock expiry.
func WithClock(now func() time.Time) Option { return func(g *Gate) { g.now = now } }

func New(users *userstore.Store, log *zap.Logger, opts ...Option) *Gate {
	g := &Gate{
		users:       users,
		hasher:      bcryptHasher{},
		maxAttempts: DefaultMaxAttempts,
		lockWindow:  DefaultLockWindow,
		now:         time.Now,
		log:         log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authenticate runs one login attempt for the given username. The lock
// check comes first: attempts against a locked account are rejected
// without touching the password or the counters. Counter updates are
// persisted before the outcome is returned, so a crash after the reply
// never under-counts failures.
func (g *Gate) Authenticate(ctx context.Context, username, password string) (Outcome, *models.User, error) {
	user, err := g.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Unknown usernames get the same reply as wrong passwords.
			return OutcomeInvalidCredential, nil, nil
		}
		return OutcomeInvalidCredential, nil, err
	}

	now := g.now().UTC()
	if user.Locked(now) {
		g.log.Info("login attempt on locked account",
			zap.String("user_id", user.ID),
			zap.Time("locked_until", *user.LockedUntil))
		return OutcomeAccountLocked, nil, nil
	}

	if !g.hasher.Verify(user.PasswordHash, password) {
		attempts := user.FailedAttempts + 1
		if attempts >= g.maxAttempts {
			// The attempt that trips the threshold still reports a bad
			// credential; only later attempts see the lock.
			until := now.Add(g.lockWindow)
			if err := g.users.UpdateLoginState(ctx, user.ID, 0, &until); err != nil {
				return OutcomeInvalidCredential, nil, err
			}
			g.log.Warn("account locked after repeated failures",
				zap.String("user_id", user.ID),
				zap.Int("attempts", attempts),
				zap.Time("locked_until", until))
			return OutcomeInvalidCredential, nil, nil
		}
		if err := g.users.UpdateLoginState(ctx, user.ID, attempts, user.LockedUntil); err != nil {
			return OutcomeInvalidCredential, nil, err
		}
		return OutcomeInvalidCredential, nil, nil
	}

	// Success clears both the counter and any expired lock timestamp.
	if user.FailedAttempts != 0 || user.LockedUntil != nil {
		if err := g.users.UpdateLoginState(ctx, user.ID, 0, nil); err != nil {
			return OutcomeInvalidCredential, nil, err
		}
		user.FailedAttempts = 0
		user.LockedUntil = nil
	}
	return OutcomeSuccess, user, nil
}

// Register validates and creates a new account. Duplicate usernames and
// emails surface as the store's sentinel errors.
func (g *Gate) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = normalize.Username(htmlsanitize.Strip(username))
	if n := utf8.RuneCountInString(username); n < MinUsernameLength || n > MaxUsernameLength {
		return nil, ErrUsernameLength
	}
	email = normalize.Email(email)
	if !authutil.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if ok, _ := authutil.ValidatePassword(password); !ok {
		return nil, ErrInvalidPassword
	}

	hash, err := g.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	created, err := g.users.Create(ctx, models.User{
		Username:     username,
		Email:        email,
		DisplayName:  username,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}
	g.log.Info("account registered", zap.String("user_id", created.ID))
	return &created, nil
}

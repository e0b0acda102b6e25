package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meblomat/meblomat/internal/domain/user"
)

var (
	// ErrUnauthorized is the auth-boundary signal; the HTTP edge translates it
	// to a 401. A missing or expired session is NOT this error, it is the
	// nil-identity outcome.
	ErrUnauthorized = errors.New("no active user session")

	ErrSessionNotFound = errors.New("session not found")
)

type Session struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Store keeps this interface small so tests can fake it easily.
type Store interface {
	Create(ctx context.Context, s Session) error
	// GetWithUser resolves a token to its session and owning user, or
	// ErrSessionNotFound.
	GetWithUser(ctx context.Context, token string) (Session, user.User, error)
	// DeleteByToken is a no-op when the token does not exist.
	DeleteByToken(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID int64) error
}

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	// SingleSessionPerUser makes a new login supersede all prior sessions of
	// the same user. Policy, not a consistency requirement.
	SingleSessionPerUser bool
}

const (
	DefaultCookieName = "meblomat_session"
	DefaultTTL        = 3 * 24 * time.Hour
)

type Manager struct {
	store Store
	opts  Options
}

func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}

	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	return &Manager{store: store, opts: opts}
}

// NewToken returns 32 random bytes hex-encoded (256 bits of entropy).
func NewToken() (string, error) {
	buf := make([]byte, 32)

	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}

// Create persists a fresh session for the user. Under the single-session
// policy all prior sessions of the user are deleted first; concurrent logins
// for the same user are last-writer-wins, there is no transactional guard.
func (m *Manager) Create(ctx context.Context, userID int64) (Session, error) {
	if m.opts.SingleSessionPerUser {
		if err := m.store.DeleteForUser(ctx, userID); err != nil {
			return Session{}, err
		}
	}

	token, err := NewToken()

	if err != nil {
		return Session{}, err
	}

	now := time.Now().UTC()

	s := Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(m.opts.TTL),
		CreatedAt: now,
	}

	if err := m.store.Create(ctx, s); err != nil {
		return Session{}, err
	}

	return s, nil
}

// CurrentUser resolves a cookie token to the sanitized identity. An empty,
// unknown or expired token yields (nil, nil); expired rows are deleted lazily
// here, there is no background sweeper. Storage failures propagate.
func (m *Manager) CurrentUser(ctx context.Context, token string) (*user.Authenticated, error) {
	if token == "" {
		return nil, nil
	}

	s, u, err := m.store.GetWithUser(ctx, token)

	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}

		return nil, err
	}

	if s.Expired(time.Now().UTC()) {
		if err := m.store.DeleteByToken(ctx, s.Token); err != nil {
			return nil, err
		}

		return nil, nil
	}

	identity := u.Authenticated()

	return &identity, nil
}

// RequireUser wraps CurrentUser and converts the nil identity into
// ErrUnauthorized for callers sitting on the auth boundary.
func (m *Manager) RequireUser(ctx context.Context, token string) (user.Authenticated, error) {
	u, err := m.CurrentUser(ctx, token)

	if err != nil {
		return user.Authenticated{}, err
	}

	if u == nil {
		return user.Authenticated{}, ErrUnauthorized
	}

	return *u, nil
}

// Destroy deletes the session matching the token; a missing token or row is
// not an error.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	return m.store.DeleteByToken(ctx, token)
}

func (m *Manager) CookieName() string {
	return m.opts.CookieName
}

func (m *Manager) TokenFromRequest(ctx *gin.Context) string {
	raw, err := ctx.Cookie(m.opts.CookieName)

	if err != nil {
		return ""
	}

	return raw
}

func (m *Manager) SetCookie(ctx *gin.Context, s Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		m.opts.CookieName,
		s.Token,
		maxAge,
		"/",
		"",
		m.opts.Secure,
		true, // HttpOnly.
	)
}

func (m *Manager) ClearCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		m.opts.CookieName,
		"",
		-1,
		"/",
		"",
		m.opts.Secure,
		true,
	)
}

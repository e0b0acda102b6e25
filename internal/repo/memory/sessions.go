package memory

import (
	"context"
	"sync"

	"github.com/meblomat/meblomat/internal/auth"
	"github.com/meblomat/meblomat/internal/domain/user"
)

// SessionsRepo is an in-memory auth.Store for tests and local tinkering.
type SessionsRepo struct {
	mu       sync.RWMutex
	sessions map[string]auth.Session
	users    map[int64]user.User
}

func NewSessionsRepo() *SessionsRepo {
	return &SessionsRepo{
		sessions: make(map[string]auth.Session),
		users:    make(map[int64]user.User),
	}
}

// PutUser registers the user sessions will resolve to.
func (r *SessionsRepo) PutUser(u user.User) {
	r.mu.Lock()
	r.users[u.ID] = u
	r.mu.Unlock()
}

func (r *SessionsRepo) Create(_ context.Context, s auth.Session) error {
	r.mu.Lock()
	r.sessions[s.Token] = s
	r.mu.Unlock()
	return nil
}

func (r *SessionsRepo) GetWithUser(_ context.Context, token string) (auth.Session, user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[token]

	if !ok {
		return auth.Session{}, user.User{}, auth.ErrSessionNotFound
	}

	u, ok := r.users[s.UserID]

	if !ok {
		return auth.Session{}, user.User{}, auth.ErrSessionNotFound
	}

	return s, u, nil
}

func (r *SessionsRepo) DeleteByToken(_ context.Context, token string) error {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
	return nil
}

func (r *SessionsRepo) DeleteForUser(_ context.Context, userID int64) error {
	r.mu.Lock()

	for token, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, token)
		}
	}

	r.mu.Unlock()
	return nil
}

// Len reports live session count; handy in single-session tests.
func (r *SessionsRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

package auth_test

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/meblomat/meblomat/internal/auth"
	"github.com/meblomat/meblomat/internal/domain/user"
	"github.com/meblomat/meblomat/internal/repo/memory"
)

func testUser(id int64) user.User {
	return user.User{
		ID:    id,
		Email: "marta@meblomat.pl",
		Roles: []user.Role{user.RoleCarpenter},
	}
}

func TestNewToken_HexAnd256Bits(t *testing.T) {
	token, err := auth.NewToken()
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}

	raw, err := hex.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not hex: %v", err)
	}

	if len(raw) != 32 {
		t.Fatalf("expected 32 random bytes, got %d", len(raw))
	}

	other, err := auth.NewToken()
	if err != nil {
		t.Fatalf("NewToken error: %v", err)
	}

	if token == other {
		t.Fatalf("two tokens must not collide")
	}
}

func TestManager_CreateAndResolve(t *testing.T) {
	store := memory.NewSessionsRepo()
	store.PutUser(testUser(7))

	m := auth.NewManager(store, auth.Options{TTL: time.Hour})

	s, err := m.Create(context.Background(), 7)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if s.Token == "" {
		t.Fatalf("expected a token")
	}

	identity, err := m.CurrentUser(context.Background(), s.Token)
	if err != nil {
		t.Fatalf("CurrentUser error: %v", err)
	}

	if identity == nil {
		t.Fatalf("expected an identity")
	}

	if identity.ID != 7 {
		t.Fatalf("expected user 7, got %d", identity.ID)
	}
}

func TestManager_UnknownOrEmptyToken(t *testing.T) {
	m := auth.NewManager(memory.NewSessionsRepo(), auth.Options{})

	for _, token := range []string{"", "deadbeef"} {
		identity, err := m.CurrentUser(context.Background(), token)
		if err != nil {
			t.Fatalf("token %q: unexpected error %v", token, err)
		}

		if identity != nil {
			t.Fatalf("token %q: expected nil identity", token)
		}
	}
}

func TestManager_ExpiredSessionDeletedLazily(t *testing.T) {
	store := memory.NewSessionsRepo()
	store.PutUser(testUser(3))

	m := auth.NewManager(store, auth.Options{TTL: time.Hour})

	expired := auth.Session{
		Token:     "aa11",
		UserID:    3,
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
	}

	if err := store.Create(context.Background(), expired); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	identity, err := m.CurrentUser(context.Background(), "aa11")
	if err != nil {
		t.Fatalf("CurrentUser error: %v", err)
	}

	if identity != nil {
		t.Fatalf("expired session must not resolve")
	}

	if store.Len() != 0 {
		t.Fatalf("expired row should be deleted, %d sessions remain", store.Len())
	}
}

func TestManager_SingleSessionPolicy(t *testing.T) {
	store := memory.NewSessionsRepo()
	store.PutUser(testUser(5))

	m := auth.NewManager(store, auth.Options{TTL: time.Hour, SingleSessionPerUser: true})

	first, err := m.Create(context.Background(), 5)
	if err != nil {
		t.Fatalf("first Create error: %v", err)
	}

	second, err := m.Create(context.Background(), 5)
	if err != nil {
		t.Fatalf("second Create error: %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("expected one live session, got %d", store.Len())
	}

	if identity, _ := m.CurrentUser(context.Background(), first.Token); identity != nil {
		t.Fatalf("superseded session must not resolve")
	}

	if identity, _ := m.CurrentUser(context.Background(), second.Token); identity == nil {
		t.Fatalf("new session must resolve")
	}
}

func TestManager_RequireUser(t *testing.T) {
	store := memory.NewSessionsRepo()
	store.PutUser(testUser(9))

	m := auth.NewManager(store, auth.Options{TTL: time.Hour})

	if _, err := m.RequireUser(context.Background(), ""); err != auth.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	s, err := m.Create(context.Background(), 9)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	identity, err := m.RequireUser(context.Background(), s.Token)
	if err != nil {
		t.Fatalf("RequireUser error: %v", err)
	}

	if identity.ID != 9 {
		t.Fatalf("expected user 9, got %d", identity.ID)
	}
}

func TestManager_Destroy(t *testing.T) {
	store := memory.NewSessionsRepo()
	store.PutUser(testUser(2))

	m := auth.NewManager(store, auth.Options{TTL: time.Hour})

	s, err := m.Create(context.Background(), 2)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := m.Destroy(context.Background(), s.Token); err != nil {
		t.Fatalf("Destroy error: %v", err)
	}

	if identity, _ := m.CurrentUser(context.Background(), s.Token); identity != nil {
		t.Fatalf("destroyed session must not resolve")
	}

	// destroying again is a no-op
	if err := m.Destroy(context.Background(), s.Token); err != nil {
		t.Fatalf("second Destroy error: %v", err)
	}
}

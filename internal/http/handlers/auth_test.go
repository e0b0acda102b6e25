package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meblomat/meblomat/internal/auth"
	"github.com/meblomat/meblomat/internal/domain/user"
	"github.com/meblomat/meblomat/internal/http/handlers"
	"github.com/meblomat/meblomat/internal/http/middlewares"
	"github.com/meblomat/meblomat/internal/repo/memory"
	"github.com/meblomat/meblomat/internal/repo/postgres"
	"github.com/meblomat/meblomat/internal/security"
)

// Keep Gin quiet during tests

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake users repo with function fields, one per handler dependency.

type fakeUsersRepo struct {
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	createFn     func(ctx context.Context, u user.User) (user.User, error)
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}

	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}

	u.ID = 1
	return u, nil
}

func newSessions(store *memory.SessionsRepo) *auth.Manager {
	return auth.NewManager(store, auth.Options{TTL: time.Hour})
}

func authRouter(h *handlers.AuthHandler, sessions *auth.Manager) *gin.Engine {
	r := gin.New()

	mw := middlewares.NewAuthMiddleware(sessions)

	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/logout", h.Logout)
	r.GET("/api/auth/me", mw.Attach(), mw.RequireAuth(), h.Me)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == auth.DefaultCookieName {
			return c
		}
	}

	t.Fatalf("no session cookie in response")
	return nil
}

func TestRegister_CarpenterGetsTrial(t *testing.T) {
	store := memory.NewSessionsRepo()
	sessions := newSessions(store)

	var created user.User

	users := &fakeUsersRepo{
		createFn: func(_ context.Context, u user.User) (user.User, error) {
			u.ID = 42
			created = u
			store.PutUser(u)
			return u, nil
		},
	}

	r := authRouter(handlers.NewAuthHandler(users, users, sessions), sessions)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register",
		`{"email":"marta@meblomat.pl","password":"tajne12345","accountType":"CARPENTER"}`, nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}

	if created.SubscriptionPlan != user.PlanCarpenterProfessional {
		t.Fatalf("plan: got %s", created.SubscriptionPlan)
	}

	if created.SubscriptionStatus != user.SubscriptionTrialing {
		t.Fatalf("subscription status: got %s", created.SubscriptionStatus)
	}

	if created.TrialEndsAt == nil || created.TrialStartedAt == nil {
		t.Fatalf("trial window missing")
	}

	if got := created.TrialEndsAt.Sub(*created.TrialStartedAt); got != 14*24*time.Hour {
		t.Fatalf("trial length: got %v", got)
	}

	// password hash never leaves the server
	if strings.Contains(w.Body.String(), "passwordHash") || strings.Contains(w.Body.String(), "tajne12345") {
		t.Fatalf("response leaks credentials: %s", w.Body.String())
	}

	c := sessionCookie(t, w)

	if !c.HttpOnly {
		t.Fatalf("session cookie must be HttpOnly")
	}
}

func TestRegister_ClientGetsFreePlan(t *testing.T) {
	store := memory.NewSessionsRepo()
	sessions := newSessions(store)

	var created user.User

	users := &fakeUsersRepo{
		createFn: func(_ context.Context, u user.User) (user.User, error) {
			u.ID = 43
			created = u
			store.PutUser(u)
			return u, nil
		},
	}

	r := authRouter(handlers.NewAuthHandler(users, users, sessions), sessions)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register",
		`{"email":"anna@aranz.pl","password":"tajne12345","accountType":"CLIENT"}`, nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}

	if created.SubscriptionPlan != user.PlanClientFree {
		t.Fatalf("plan: got %s", created.SubscriptionPlan)
	}

	if created.SubscriptionStatus != user.SubscriptionActive {
		t.Fatalf("subscription status: got %s", created.SubscriptionStatus)
	}

	if created.TrialEndsAt != nil {
		t.Fatalf("clients do not get a trial")
	}
}

func TestRegister_NormalizesEmail(t *testing.T) {
	store := memory.NewSessionsRepo()
	sessions := newSessions(store)

	var created user.User

	users := &fakeUsersRepo{
		createFn: func(_ context.Context, u user.User) (user.User, error) {
			u.ID = 44
			created = u
			store.PutUser(u)
			return u, nil
		},
	}

	r := authRouter(handlers.NewAuthHandler(users, users, sessions), sessions)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register",
		`{"email":"Marta@Meblomat.PL","password":"tajne12345","accountType":"CARPENTER"}`, nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}

	if created.Email != "marta@meblomat.pl" {
		t.Fatalf("stored email: got %q", created.Email)
	}
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	store := memory.NewSessionsRepo()
	sessions := newSessions(store)

	users := &fakeUsersRepo{
		createFn: func(context.Context, user.User) (user.User, error) {
			return user.User{}, postgres.ErrEmailAlreadyUsed
		},
	}

	r := authRouter(handlers.NewAuthHandler(users, users, sessions), sessions)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register",
		`{"email":"marta@meblomat.pl","password":"tajne12345","accountType":"CARPENTER"}`, nil)

	if w.Code != http.StatusConflict {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}

	if !strings.Contains(w.Body.String(), "email_taken") {
		t.Fatalf("expected email_taken code, got %s", w.Body.String())
	}
}

func TestRegister_ValidationErrors(t *testing.T) {
	store := memory.NewSessionsRepo()
	sessions := newSessions(store)
	users := &fakeUsersRepo{}

	r := authRouter(handlers.NewAuthHandler(users, users, sessions), sessions)

	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"tajne12345","accountType":"CLIENT"}`},
		{"short password", `{"email":"a@b.pl","password":"short","accountType":"CLIENT"}`},
		{"bad account type", `{"email":"a@b.pl","password":"tajne12345","accountType":"WIZARD"}`},
		{"invalid json", `{"email":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/auth/register", tt.body, nil)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
			}
		})
	}
}

func TestLogin_SuccessSetsCookieAndResolves(t *testing.T) {
	store := memory.NewSessionsRepo()
	sessions := newSessions(store)

	hash, err := security.HashPassword("tajne12345")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	account := user.User{
		ID:           7,
		Email:        "marta@meblomat.pl",
		PasswordHash: hash,
		Roles:        []user.Role{user.RoleCarpenter},
	}
	store.PutUser(account)

	users := &fakeUsersRepo{
		getByEmailFn: func(_ context.Context, email string) (user.User, error) {
			if email == account.Email {
				return account, nil
			}
			return user.User{}, user.ErrNotFound
		},
	}

	r := authRouter(handlers.NewAuthHandler(users, users, sessions), sessions)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login",
		`{"email":"marta@meblomat.pl","password":"tajne12345"}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}

	c := sessionCookie(t, w)

	// the cookie token resolves through /me
	w2 := doJSON(t, r, http.MethodGet, "/api/auth/me", "", c)

	if w2.Code != http.StatusOK {
		t.Fatalf("me status: got %d body=%s", w2.Code, w2.Body.String())
	}

	var me struct {
		User user.Authenticated `json:"user"`
	}

	if err := json.Unmarshal(w2.Body.Bytes(), &me); err != nil {
		t.Fatalf("unmarshal me: %v", err)
	}

	if me.User.ID != 7 {
		t.Fatalf("me id: got %d", me.User.ID)
	}
}

func TestLogin_WrongCredentialsSameAnswer(t *testing.T) {
	store := memory.NewSessionsRepo()
	sessions := newSessions(store)

	hash, _ := security.HashPassword("tajne12345")

	users := &fakeUsersRepo{
		getByEmailFn: func(_ context.Context, email string) (user.User, error) {
			if email == "marta@meblomat.pl" {
				return user.User{ID: 7, Email: email, PasswordHash: hash}, nil
			}
			return user.User{}, user.ErrNotFound
		},
	}

	r := authRouter(handlers.NewAuthHandler(users, users, sessions), sessions)

	unknownEmail := doJSON(t, r, http.MethodPost, "/api/auth/login",
		`{"email":"nikt@meblomat.pl","password":"tajne12345"}`, nil)

	wrongPassword := doJSON(t, r, http.MethodPost, "/api/auth/login",
		`{"email":"marta@meblomat.pl","password":"zlehaslo1"}`, nil)

	for _, w := range []*httptest.ResponseRecorder{unknownEmail, wrongPassword} {
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
		}

		if !strings.Contains(w.Body.String(), "invalid_credentials") {
			t.Fatalf("expected invalid_credentials, got %s", w.Body.String())
		}
	}

	// indistinguishable bodies apart from request ids
	if unknownEmail.Body.String() != wrongPassword.Body.String() {
		t.Fatalf("unknown-email and wrong-password answers must match")
	}
}

func TestLogout_DestroysSessionAndClearsCookie(t *testing.T) {
	store := memory.NewSessionsRepo()
	sessions := newSessions(store)

	account := user.User{ID: 5, Email: "jakub@meblomat.pl"}
	store.PutUser(account)

	s, err := sessions.Create(context.Background(), 5)
	if err != nil {
		t.Fatalf("Create session: %v", err)
	}

	users := &fakeUsersRepo{}
	r := authRouter(handlers.NewAuthHandler(users, users, sessions), sessions)

	w := doJSON(t, r, http.MethodPost, "/api/auth/logout", "",
		&http.Cookie{Name: auth.DefaultCookieName, Value: s.Token})

	if w.Code != http.StatusNoContent {
		t.Fatalf("status: got %d", w.Code)
	}

	if store.Len() != 0 {
		t.Fatalf("session should be destroyed, %d remain", store.Len())
	}

	c := sessionCookie(t, w)

	if c.Value != "" || c.MaxAge >= 0 {
		t.Fatalf("cookie should be cleared, got value=%q maxAge=%d", c.Value, c.MaxAge)
	}

	// logging out again is still 204
	w2 := doJSON(t, r, http.MethodPost, "/api/auth/logout", "", nil)

	if w2.Code != http.StatusNoContent {
		t.Fatalf("second logout status: got %d", w2.Code)
	}
}

func TestMe_RequiresSession(t *testing.T) {
	store := memory.NewSessionsRepo()
	sessions := newSessions(store)
	users := &fakeUsersRepo{}

	r := authRouter(handlers.NewAuthHandler(users, users, sessions), sessions)

	w := doJSON(t, r, http.MethodGet, "/api/auth/me", "", nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}
}

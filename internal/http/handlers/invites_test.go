package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meblomat/meblomat/internal/auth"
	"github.com/meblomat/meblomat/internal/domain/job"
	"github.com/meblomat/meblomat/internal/domain/user"
	"github.com/meblomat/meblomat/internal/http/handlers"
	"github.com/meblomat/meblomat/internal/http/middlewares"
	"github.com/meblomat/meblomat/internal/jobs"
	"github.com/meblomat/meblomat/internal/repo/memory"
)

type fakeJobCreator struct {
	createFn func(ctx context.Context, req job.CreateRequest) (job.Job, error)
}

func (f *fakeJobCreator) Create(ctx context.Context, req job.CreateRequest) (job.Job, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}

	return job.New(req), nil
}

func invitesRouter(queue handlers.JobCreator, sessions *auth.Manager) *gin.Engine {
	r := gin.New()

	mw := middlewares.NewAuthMiddleware(sessions)
	h := handlers.NewInvitesHandler(queue)

	r.POST("/api/invites",
		mw.Attach(),
		mw.RequireAuth(),
		mw.RequireRole(user.RoleCarpenter, user.RoleAdmin),
		h.Create,
	)

	return r
}

func TestInvites_EnqueuesJob(t *testing.T) {
	store := memory.NewSessionsRepo()
	sessions := auth.NewManager(store, auth.Options{TTL: time.Hour})

	cookie := signedInCookie(t, store, sessions, user.User{
		ID:    3,
		Email: "marta@meblomat.pl",
		Roles: []user.Role{user.RoleCarpenter},
	})

	var enqueued job.CreateRequest

	queue := &fakeJobCreator{
		createFn: func(_ context.Context, req job.CreateRequest) (job.Job, error) {
			enqueued = req
			return job.New(req), nil
		},
	}

	r := invitesRouter(queue, sessions)

	w := doJSON(t, r, http.MethodPost, "/api/invites",
		`{"clientId":12,"email":"anna@aranz.pl","clientName":"Anna Nowak"}`, cookie)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}

	if enqueued.Type != string(jobs.JobSendClientInvite) {
		t.Fatalf("job type: got %q", enqueued.Type)
	}

	decoded, err := jobs.DecodePayload(job.New(enqueued))
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}

	p := decoded.(jobs.SendClientInvitePayload)

	if p.ClientID != 12 || p.Email != "anna@aranz.pl" {
		t.Fatalf("payload: %+v", p)
	}

	// actor rides along for the audit trail
	if p.InvitedByID != 3 {
		t.Fatalf("invitedById: got %d", p.InvitedByID)
	}
}

func TestInvites_RoleEnforced(t *testing.T) {
	store := memory.NewSessionsRepo()
	sessions := auth.NewManager(store, auth.Options{TTL: time.Hour})

	cookie := signedInCookie(t, store, sessions, user.User{
		ID:    9,
		Email: "joanna@example.com",
		Roles: []user.Role{user.RoleClient},
	})

	r := invitesRouter(&fakeJobCreator{}, sessions)

	w := doJSON(t, r, http.MethodPost, "/api/invites",
		`{"clientId":12,"email":"anna@aranz.pl","clientName":"Anna Nowak"}`, cookie)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}
}

func TestInvites_RequiresSession(t *testing.T) {
	store := memory.NewSessionsRepo()
	sessions := auth.NewManager(store, auth.Options{TTL: time.Hour})

	r := invitesRouter(&fakeJobCreator{}, sessions)

	w := doJSON(t, r, http.MethodPost, "/api/invites",
		`{"clientId":12,"email":"anna@aranz.pl","clientName":"Anna Nowak"}`, nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d body=%s", w.Code, w.Body.String())
	}
}

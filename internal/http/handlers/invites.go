package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meblomat/meblomat/internal/config"
	"github.com/meblomat/meblomat/internal/domain/job"
	"github.com/meblomat/meblomat/internal/http/middlewares"
	"github.com/meblomat/meblomat/internal/jobs"
)

type JobCreator interface {
	Create(ctx context.Context, req job.CreateRequest) (job.Job, error)
}

type InvitesHandler struct {
	queue JobCreator
}

func NewInvitesHandler(queue JobCreator) *InvitesHandler {
	return &InvitesHandler{queue: queue}
}

type InviteRequest struct {
	ClientID   int64  `json:"clientId" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	ClientName string `json:"clientName" binding:"required"`
}

// Create enqueues a client invitation for the worker; delivery is
// asynchronous, so the answer is 202 with the job id.
func (h *InvitesHandler) Create(ctx *gin.Context) {
	var req InviteRequest

	if !BindJSON(ctx, &req) {
		return
	}

	identity, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Sign in to continue")
		return
	}

	payload, err := jobs.EncodePayload(jobs.JobSendClientInvite, jobs.SendClientInvitePayload{
		ClientID:    req.ClientID,
		Email:       req.Email,
		ClientName:  req.ClientName,
		InvitedByID: identity.ID,
		RequestID:   requestIDFrom(ctx),
	})

	if err != nil {
		RespondInternal(ctx, "Could not enqueue invitation")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	j, err := h.queue.Create(cctx, job.CreateRequest{
		Type:    string(jobs.JobSendClientInvite),
		Payload: payload,
	})

	if err != nil {
		RespondInternal(ctx, "Could not enqueue invitation")
		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{
		"jobId":  j.ID,
		"status": j.Status,
	})
}

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meblomat/meblomat/internal/dashboard"
	"github.com/meblomat/meblomat/internal/domain/user"
	"github.com/meblomat/meblomat/internal/http/middlewares"
)

type DashboardService interface {
	Dashboard(ctx context.Context, viewer user.Authenticated) dashboard.Data
}

type DashboardHandler struct {
	svc DashboardService
}

func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Get serves the aggregated dashboard. Always a fresh snapshot; the sample
// fallback inside the service keeps the shape identical when the store is
// down, so this handler never branches on connection state.
func (h *DashboardHandler) Get(ctx *gin.Context) {
	identity, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Sign in to continue")
		return
	}

	data := h.svc.Dashboard(ctx.Request.Context(), identity)

	// per-viewer data, never cache
	ctx.Header("Cache-Control", "no-store")

	ctx.JSON(http.StatusOK, data)
}

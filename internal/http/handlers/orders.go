package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meblomat/meblomat/internal/cache"
	"github.com/meblomat/meblomat/internal/dashboard"
	"github.com/meblomat/meblomat/internal/domain/order"
)

const ordersCacheKey = "orders:recent"

type OrdersHandler struct {
	source dashboard.RecordSource
	cache  *cache.Cache
	log    *slog.Logger
}

func NewOrdersHandler(source dashboard.RecordSource, c *cache.Cache, log *slog.Logger) *OrdersHandler {
	if log == nil {
		log = slog.Default()
	}

	return &OrdersHandler{source: source, cache: c, log: log}
}

type ordersResponse struct {
	Source dashboard.Source  `json:"source"`
	Orders []dashboard.Order `json:"orders"`
}

// List serves the recent-orders listing. Unlike the dashboard this view is
// identical for every signed-in user, so it gets the short TTL cache plus an
// ETag for client-side revalidation.
func (h *OrdersHandler) List(ctx *gin.Context) {
	if h.cache != nil {
		if v, ok := h.cache.Get(ordersCacheKey); ok {
			if resp, ok := v.(ordersResponse); ok {
				RespondJSONWithETag(ctx, http.StatusOK, resp)
				return
			}
		}
	}

	resp := h.load(ctx)

	if h.cache != nil {
		h.cache.Set(ordersCacheKey, resp)
	}

	RespondJSONWithETag(ctx, http.StatusOK, resp)
}

func (h *OrdersHandler) load(ctx *gin.Context) ordersResponse {
	if h.source != nil {
		records, err := h.source.FetchRecords(ctx.Request.Context())

		if err == nil {
			return ordersResponse{
				Source: dashboard.SourceDatabase,
				Orders: flatten(records),
			}
		}

		h.log.WarnContext(ctx.Request.Context(), "orders fetch failed, serving sample data", "error", err)
	}

	return ordersResponse{
		Source: dashboard.SourceSample,
		Orders: flatten(dashboard.SampleRecords()),
	}
}

func flatten(records dashboard.Records) []dashboard.Order {
	snapshot := dashboard.BuildSnapshot(records, dashboard.ConnectionState{})

	out := []dashboard.Order{}

	for _, status := range order.Statuses {
		out = append(out, snapshot.OrdersByStatus[status]...)
	}

	return out
}

package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsync "github.com/storesync/backend/internal/application/sync"
	"github.com/storesync/backend/internal/domain/storefront"
	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// SyncRunner exposes the synchronization operations triggered over HTTP
type SyncRunner interface {
	RunFullSync(ctx context.Context, instanceID uuid.UUID) (*appsync.RunSummary, error)
	RunStockPriceSync(ctx context.Context, instanceID uuid.UUID) error
	SyncTemplate(ctx context.Context, instanceID, templateID uuid.UUID) error
}

// SyncHandler triggers sync runs and exposes mappings and logs
type SyncHandler struct {
	BaseHandler
	runner   SyncRunner
	mappings storefront.MappingRepository
	logs     storefront.LogRepository
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(runner SyncRunner, mappings storefront.MappingRepository, logs storefront.LogRepository) *SyncHandler {
	return &SyncHandler{runner: runner, mappings: mappings, logs: logs}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	instances := rg.Group("/instances/:id")
	{
		instances.POST("/sync", h.RunFullSync)
		instances.POST("/sync/stock-price", h.RunStockPriceSync)
		instances.POST("/templates/:templateID/sync", h.SyncTemplate)
		instances.GET("/mappings", h.ListMappings)
		instances.GET("/logs", h.ListLogs)
	}
}

// RunFullSync runs a full catalog sync for one instance
func (h *SyncHandler) RunFullSync(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.runner.RunFullSync(c.Request.Context(), id)
	if err != nil {
		h.DomainError(c, err)
		return
	}

	h.Success(c, dto.RunSummaryResponse{
		StartedAt:    summary.StartedAt,
		ElapsedMs:    summary.Elapsed.Milliseconds(),
		SuccessCount: summary.SuccessCount,
		ErrorCount:   summary.ErrorCount,
		Truncated:    summary.Truncated,
	})
}

// RunStockPriceSync runs the lightweight stock and price sync
func (h *SyncHandler) RunStockPriceSync(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.runner.RunStockPriceSync(c.Request.Context(), id); err != nil {
		h.DomainError(c, err)
		return
	}
	h.NoContent(c)
}

// SyncTemplate synchronizes a single template on demand
func (h *SyncHandler) SyncTemplate(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	templateID, ok := h.parseUUIDParam(c, "templateID")
	if !ok {
		return
	}

	if err := h.runner.SyncTemplate(c.Request.Context(), id, templateID); err != nil {
		h.DomainError(c, err)
		return
	}
	h.NoContent(c)
}

// ListMappings returns the template mappings of an instance
func (h *SyncHandler) ListMappings(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	mappings, err := h.mappings.FindByInstance(c.Request.Context(), id)
	if err != nil {
		h.DomainError(c, err)
		return
	}

	responses := make([]dto.MappingResponse, len(mappings))
	for i, mapping := range mappings {
		responses[i] = dto.MappingFromDomain(mapping)
	}
	h.Success(c, responses)
}

// ListLogs returns recent sync log entries of an instance, newest first
func (h *SyncHandler) ListLogs(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 1000 {
			h.BadRequest(c, "limit must be between 1 and 1000")
			return
		}
		limit = parsed
	}

	entries, err := h.logs.FindByInstance(c.Request.Context(), id, limit)
	if err != nil {
		h.DomainError(c, err)
		return
	}

	responses := make([]dto.LogEntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = dto.LogEntryFromDomain(entry)
	}
	h.Success(c, responses)
}

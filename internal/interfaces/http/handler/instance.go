package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/storefront"
	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// ConnectionTester verifies storefront credentials for an instance
type ConnectionTester interface {
	TestConnection(ctx context.Context, instanceID uuid.UUID) error
}

// InstanceHandler manages storefront instance configuration
type InstanceHandler struct {
	BaseHandler
	instances storefront.InstanceRepository
	tester    ConnectionTester
}

// NewInstanceHandler creates a new InstanceHandler
func NewInstanceHandler(instances storefront.InstanceRepository, tester ConnectionTester) *InstanceHandler {
	return &InstanceHandler{instances: instances, tester: tester}
}

// RegisterRoutes registers instance routes
func (h *InstanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	instances := rg.Group("/instances")
	{
		instances.POST("", h.Create)
		instances.GET("", h.List)
		instances.GET("/:id", h.Get)
		instances.PUT("/:id", h.Update)
		instances.DELETE("/:id", h.Delete)
		instances.POST("/:id/test-connection", h.TestConnection)
	}
}

// Create registers a new storefront instance
func (h *InstanceHandler) Create(c *gin.Context) {
	var req dto.CreateInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	instance, err := storefront.NewInstance(req.Name, req.BaseURL, req.ConsumerKey, req.ConsumerSecret)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if req.TimeoutSeconds > 0 {
		instance.TimeoutSeconds = req.TimeoutSeconds
	}
	if req.VerifySSL != nil {
		instance.VerifySSL = *req.VerifySSL
	}
	instance.PricelistID = req.PricelistID
	if req.StockSource != "" {
		instance.StockSource = catalog.StockSource(req.StockSource)
	}
	instance.WarehouseIDs = req.WarehouseIDs
	if req.StockMetric != "" {
		instance.StockMetric = catalog.StockMetric(req.StockMetric)
	}
	if req.ArchiveAsDraft != nil {
		instance.ArchiveAsDraft = *req.ArchiveAsDraft
	}
	if req.DefaultStatus != "" {
		instance.DefaultStatus = storefront.RemoteStatus(req.DefaultStatus)
	}
	if req.BatchSize > 0 {
		instance.BatchSize = req.BatchSize
	}

	filter := dto.TemplateFilter(req.ProductFilter)
	if err := filter.Validate(); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	instance.ProductFilter = filter

	if err := h.instances.Save(c.Request.Context(), instance); err != nil {
		h.DomainError(c, err)
		return
	}
	h.Created(c, dto.InstanceFromDomain(instance))
}

// List returns all registered instances
func (h *InstanceHandler) List(c *gin.Context) {
	instances, err := h.instances.FindAll(c.Request.Context())
	if err != nil {
		h.DomainError(c, err)
		return
	}

	responses := make([]dto.InstanceResponse, len(instances))
	for i := range instances {
		responses[i] = dto.InstanceFromDomain(&instances[i])
	}
	h.Success(c, responses)
}

// Get returns one instance
func (h *InstanceHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	instance, err := h.instances.FindByID(c.Request.Context(), id)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, dto.InstanceFromDomain(instance))
}

// Update applies a partial update to an instance
func (h *InstanceHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	instance, err := h.instances.FindByID(c.Request.Context(), id)
	if err != nil {
		h.DomainError(c, err)
		return
	}

	if req.Name != nil {
		instance.Name = *req.Name
	}
	if req.BaseURL != nil {
		instance.BaseURL = *req.BaseURL
	}
	if req.ConsumerKey != nil {
		instance.ConsumerKey = *req.ConsumerKey
	}
	if req.ConsumerSecret != nil {
		instance.ConsumerSecret = *req.ConsumerSecret
	}
	if req.Active != nil {
		instance.Active = *req.Active
	}
	if req.TimeoutSeconds != nil {
		instance.TimeoutSeconds = *req.TimeoutSeconds
	}
	if req.VerifySSL != nil {
		instance.VerifySSL = *req.VerifySSL
	}
	if req.PricelistID != nil {
		instance.PricelistID = req.PricelistID
	}
	if req.StockSource != nil {
		instance.StockSource = catalog.StockSource(*req.StockSource)
	}
	if req.WarehouseIDs != nil {
		instance.WarehouseIDs = req.WarehouseIDs
	}
	if req.StockMetric != nil {
		instance.StockMetric = catalog.StockMetric(*req.StockMetric)
	}
	if req.ArchiveAsDraft != nil {
		instance.ArchiveAsDraft = *req.ArchiveAsDraft
	}
	if req.DefaultStatus != nil {
		instance.DefaultStatus = storefront.RemoteStatus(*req.DefaultStatus)
	}
	if req.BatchSize != nil {
		instance.BatchSize = *req.BatchSize
	}
	if req.ProductFilter != nil {
		filter := dto.TemplateFilter(req.ProductFilter)
		if err := filter.Validate(); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
		instance.ProductFilter = filter
	}

	if err := h.instances.Save(c.Request.Context(), instance); err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, dto.InstanceFromDomain(instance))
}

// Delete removes an instance with its mappings and logs
func (h *InstanceHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.instances.Delete(c.Request.Context(), id); err != nil {
		h.DomainError(c, err)
		return
	}
	h.NoContent(c)
}

// TestConnection runs a credentials check against the storefront and
// records the resulting state
func (h *InstanceHandler) TestConnection(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.tester.TestConnection(c.Request.Context(), id); err != nil {
		h.DomainError(c, err)
		return
	}

	instance, err := h.instances.FindByID(c.Request.Context(), id)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, dto.InstanceFromDomain(instance))
}

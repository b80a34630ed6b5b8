package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/storefront"
	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message))
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, message))
}

// DomainError translates a domain error into the matching HTTP response
func (h *BaseHandler) DomainError(c *gin.Context, err error) {
	var remoteErr *storefront.RemoteError

	switch {
	case errors.Is(err, storefront.ErrInstanceNotFound),
		errors.Is(err, storefront.ErrMappingNotFound),
		errors.Is(err, catalog.ErrTemplateNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound):
		h.NotFound(c, err.Error())

	case errors.Is(err, storefront.ErrInstanceNotConnected):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(dto.ErrCodeNotConnected, err.Error()))

	case errors.Is(err, catalog.ErrInvalidFilter):
		h.BadRequest(c, err.Error())

	case errors.Is(err, storefront.ErrGatewayUnavailable):
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(dto.ErrCodeRemote, err.Error()))

	case errors.As(err, &remoteErr):
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(dto.ErrCodeRemote, remoteErr.Error()))

	default:
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeInternal, err.Error()))
	}
}

// parseUUIDParam parses a uuid path parameter, answering 400 on failure
func (h *BaseHandler) parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

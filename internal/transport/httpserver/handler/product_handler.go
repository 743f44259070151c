// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"product-comparison-service/internal/app/service"
	"product-comparison-service/internal/domain"
	"product-comparison-service/internal/transport/httpserver/dto"
	"product-comparison-service/internal/validator"
)

// ProductHandler handles product comparison HTTP requests.
type ProductHandler struct {
	service   *service.CatalogService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(svc *service.CatalogService, v *validator.Validator, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// Search handles GET /product
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	results, err := h.service.Search(c.Context(), req.ToSearchQuery())
	if err != nil {
		h.logger.Error("search failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "search failed",
			Code:  "INTERNAL_ERROR",
		})
	}

	return c.JSON(dto.FromSearchResults(results))
}

// Upsert handles PUT /product
func (h *ProductHandler) Upsert(c *fiber.Ctx) error {
	var req dto.UpsertRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	stored, err := h.service.Upsert(c.Context(), req.ToUpsertOffer())
	if err != nil {
		return h.domainError(c, "upsert failed", err)
	}

	return c.JSON(dto.FromUpsertOffer(stored))
}

// Delete handles DELETE /product
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	var req dto.DeleteRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: err,
		})
	}

	if err := h.service.Delete(c.Context(), req.Product, req.Supplier); err != nil {
		return h.domainError(c, "delete failed", err)
	}

	return c.JSON(dto.DeleteResponse{
		Success: true,
		Deleted: dto.DeletedOffer{Product: req.Product, Supplier: req.Supplier},
	})
}

// domainError maps domain sentinel errors to HTTP status codes.
func (h *ProductHandler) domainError(c *fiber.Ctx, msg string, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	case errors.Is(err, domain.ErrReferentialIntegrity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "REFERENTIAL_INTEGRITY_ERROR",
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_FOUND",
		})
	default:
		h.logger.Error(msg, zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: msg,
			Code:  "INTERNAL_ERROR",
		})
	}
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DocsHandler serves the API description page.
type DocsHandler struct {
	appName string
	logger  *zap.Logger
}

// NewDocsHandler creates a new DocsHandler.
func NewDocsHandler(appName string, logger *zap.Logger) *DocsHandler {
	return &DocsHandler{
		appName: appName,
		logger:  logger,
	}
}

// Render handles GET /docs
// Renders the API documentation HTML page using Fiber's template engine.
func (h *DocsHandler) Render(c *fiber.Ctx) error {
	return c.Render("pages/docs", fiber.Map{
		"Title":   "API Documentation",
		"AppName": h.appName,
	}, "layouts/base")
}

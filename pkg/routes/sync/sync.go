// Package sync exposes sync status and trigger endpoints.
package sync

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/stadlerhof/clover/pkg/docstore"
	"github.com/stadlerhof/clover/pkg/redis"
	"github.com/stadlerhof/clover/pkg/syncer"
)

// Handler serves sync control endpoints
type Handler struct {
	orchestrator *syncer.Orchestrator
	status       *docstore.Status
	logger       ectologger.Logger
}

// NewHandler creates a new sync handler
func NewHandler(orchestrator *syncer.Orchestrator, status *docstore.Status, logger ectologger.Logger) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		status:       status,
		logger:       logger,
	}
}

// Register registers sync routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("/status", h.GetStatus)
	g.POST("/run", h.RunSync)
	g.PUT("/auto", h.SetAutoSync)
}

// GetStatus returns the last written sync status document
func (h *Handler) GetStatus(c echo.Context) error {
	ctx := c.Request().Context()

	status, err := h.status.Read(ctx)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to read sync status")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to read sync status")
	}
	if status == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "no sync has run yet")
	}

	return c.JSON(http.StatusOK, status)
}

// RunSync triggers a sync pass immediately, independent of the auto-sync flag
func (h *Handler) RunSync(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.orchestrator.RunOnce(ctx)
	if errors.Is(err, redis.ErrLockNotAcquired) {
		return httperror.NewHTTPError(http.StatusConflict, "a sync pass is already running on another instance")
	}
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Manual sync pass failed")
		return httperror.NewHTTPError(http.StatusInternalServerError, "sync pass failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"runId":   result.RunID,
		"created": result.Created,
		"updated": result.Updated,
		"errors":  result.Errors,
	})
}

// AutoSyncRequest is the body for toggling the auto-sync loop
type AutoSyncRequest struct {
	Enabled bool `json:"enabled"`
}

// SetAutoSync flips the auto-sync flag; it takes effect at the next tick
func (h *Handler) SetAutoSync(c echo.Context) error {
	var req AutoSyncRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	h.orchestrator.SetEnabled(req.Enabled)

	return c.JSON(http.StatusOK, map[string]any{
		"enabled": h.orchestrator.Enabled(),
	})
}

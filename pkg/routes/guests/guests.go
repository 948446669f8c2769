// Package guests exposes read endpoints over the canonical guest registry.
package guests

import (
	"net/http"
	"sort"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/stadlerhof/clover/pkg/docstore"
)

// Handler serves canonical guest reads
type Handler struct {
	guests *docstore.Guests
	logger ectologger.Logger
}

// NewHandler creates a new guest handler
func NewHandler(guests *docstore.Guests, logger ectologger.Logger) *Handler {
	return &Handler{
		guests: guests,
		logger: logger,
	}
}

// Register registers guest routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.ListGuests)
	g.GET("/:id", h.GetGuest)
}

// GetGuest gets a canonical guest by id
func (h *Handler) GetGuest(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	guest, err := h.guests.Get(ctx, id)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Errorf("Failed to load guest %s", id)
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to load guest")
	}
	if guest == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "guest not found")
	}

	return c.JSON(http.StatusOK, guest)
}

// ListGuests lists every canonical guest, ordered by customer number
func (h *Handler) ListGuests(c echo.Context) error {
	ctx := c.Request().Context()

	guests, err := h.guests.List(ctx)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to list guests")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list guests")
	}

	sort.Slice(guests, func(i, j int) bool {
		return guests[i].CustomerNumber < guests[j].CustomerNumber
	})

	return c.JSON(http.StatusOK, map[string]any{
		"guests": guests,
		"count":  len(guests),
	})
}

package settings

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/settings", h.Get)
	g.PUT("/settings", h.Update)
}

func (h *Handler) Get(c echo.Context) error {
	s, err := h.svc.Get(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) Update(c echo.Context) error {
	var in Settings
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	s, err := h.svc.Update(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

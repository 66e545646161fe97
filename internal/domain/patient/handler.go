package patient

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the patient endpoints. /patients/names is served by
// the appointment handler; echo prefers the static segment over :name.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/patients", h.ListPatients)
	g.GET("/patients/:name", h.GetPatient)
}

func (h *Handler) ListPatients(c echo.Context) error {
	items, err := h.svc.ListPatients(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetPatient(c echo.Context) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return apperr.Validation("invalid patient name")
	}
	d, err := h.svc.GetPatientDetail(c.Request().Context(), name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// pathParam returns the decoded value of a path parameter. echo routes on
// URL.RawPath when the request carries one (for example an encoded "/"), and
// its params are then still escaped; otherwise they come from the already
// decoded URL.Path and must not be decoded again.
func pathParam(c echo.Context, name string) (string, error) {
	v := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return v, nil
	}
	return url.PathUnescape(v)
}

package appointment

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
	g.GET("/appointments", h.ListAppointments)
	g.POST("/appointments", h.CreateAppointment)
	g.GET("/appointments/dates", h.ListDates)
	g.GET("/appointments/queue", h.Queue)
	g.GET("/appointments/:id", h.GetAppointment)
	g.DELETE("/appointments/:id", h.DeleteAppointment)
	g.PATCH("/appointments/:id/status", h.UpdateStatus)
	g.GET("/doctors", h.ListDoctors)
	g.GET("/patients/names", h.ListPatientNames)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	f := Filter{
		DoctorName:    c.QueryParam("doctor"),
		Date:          c.QueryParam("date"),
		Status:        c.QueryParam("status"),
		Tab:           c.QueryParam("tab"),
		ReferenceDate: c.QueryParam("ref"),
	}
	items, err := h.svc.ListAppointments(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	a, err := h.svc.CreateAppointment(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	a, err := h.svc.GetAppointment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	if err := h.svc.DeleteAppointment(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status" query:"status"`
}

// UpdateStatus accepts the new status as a JSON body or a status query parameter.
func (h *Handler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	var bindErr error
	if c.Request().ContentLength != 0 {
		bindErr = (&echo.DefaultBinder{}).BindBody(c, &req)
	}
	if req.Status == "" {
		req.Status = c.QueryParam("status")
	}
	if req.Status == "" {
		if bindErr != nil {
			return apperr.Validation("invalid request body")
		}
		return apperr.Validation("status is required")
	}
	a, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListDates(c echo.Context) error {
	dates, err := h.svc.ListAppointmentDates(c.Request().Context(), c.QueryParam("doctor"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dates)
}

func (h *Handler) Queue(c echo.Context) error {
	entries, err := h.svc.Queue(c.Request().Context(), c.QueryParam("date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	doctors, err := h.svc.ListDoctors(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doctors)
}

func (h *Handler) ListPatientNames(c echo.Context) error {
	names, err := h.svc.ListDistinctPatientNames(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, names)
}

package report

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
	g.GET("/reports/daily", h.Daily)
	g.GET("/reports/weekly", h.Weekly)
	g.GET("/reports/cancellations", h.Cancellations)
	g.GET("/reports/doctor-workload", h.DoctorWorkload)
}

type dailyQuery struct {
	Date string `query:"date" json:"date" validate:"required,isodate"`
}

type weeklyQuery struct {
	StartDate string `query:"startDate" json:"startDate" validate:"omitempty,isodate"`
	// start_date is the spelling older clients send.
	StartDateSnake string `query:"start_date" json:"start_date" validate:"omitempty,isodate"`
	EndDate        string `query:"endDate" json:"endDate" validate:"omitempty,isodate"`
}

func bindQuery(c echo.Context, dst interface{}) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, dst); err != nil {
		return apperr.Validation("invalid query parameters")
	}
	return c.Validate(dst)
}

func (h *Handler) Daily(c echo.Context) error {
	var q dailyQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	counts, err := h.svc.DailyStatusCounts(c.Request().Context(), q.Date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *Handler) Weekly(c echo.Context) error {
	var q weeklyQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	start := q.StartDate
	if start == "" {
		start = q.StartDateSnake
	}
	counts, err := h.svc.WeeklyDateCounts(c.Request().Context(), start, q.EndDate)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *Handler) Cancellations(c echo.Context) error {
	out, err := h.svc.CancellationCount(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) DoctorWorkload(c echo.Context) error {
	out, err := h.svc.DoctorWorkload(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

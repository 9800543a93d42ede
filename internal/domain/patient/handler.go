package patient

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterDashboard wires the read-only dashboard routes.
func (h *Handler) RegisterDashboard(g *echo.Group) {
	g.GET("/patients", h.List)
	g.GET("/patients/:id", h.Get)
	g.GET("/patients/:id/wearable-data", h.WearableData)
	g.GET("/patients/:id/risk-prediction", h.RiskPrediction)
	g.GET("/patients/:id/conversation-log", h.ConversationLog)
	g.GET("/patients/:id/available-dates", h.AvailableDates)
	g.GET("/patients/:id/daily-summary", h.DailySummary)
}

// RegisterProtected wires the mutating and lookup routes behind the API key.
func (h *Handler) RegisterProtected(g *echo.Group) {
	g.POST("/patients", h.Create)
	g.GET("/patients/by-assistant-id/:assistant_user_id", h.GetByAssistantID)
}

func (h *Handler) List(c echo.Context) error {
	summaries, err := h.service.ListSummaries(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list patients")
	}
	return c.JSON(http.StatusOK, summaries)
}

func (h *Handler) Get(c echo.Context) error {
	p, err := h.service.GetByDisplayID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch patient")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Create(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	id, err := h.service.Create(c.Request().Context(), &p)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			return echo.NewHTTPError(http.StatusBadRequest, ErrMissingFields.Error())
		case errors.Is(err, ErrDuplicateAssistantID):
			return echo.NewHTTPError(http.StatusConflict, ErrDuplicateAssistantID.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to create patient")
		}
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"_id":     id,
		"message": "Patient created successfully",
	})
}

func (h *Handler) GetByAssistantID(c echo.Context) error {
	p, err := h.service.GetByAssistantID(c.Request().Context(), c.Param("assistant_user_id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch patient")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) WearableData(c echo.Context) error {
	p, err := h.lookup(c)
	if err != nil {
		return err
	}
	if p.WearableSensorData == nil {
		return echo.NewHTTPError(http.StatusNotFound, "wearable data not found")
	}
	return c.JSON(http.StatusOK, p.WearableSensorData)
}

func (h *Handler) RiskPrediction(c echo.Context) error {
	p, err := h.lookup(c)
	if err != nil {
		return err
	}
	if p.AIRiskPrediction == nil {
		return echo.NewHTTPError(http.StatusNotFound, "risk prediction not found")
	}
	return c.JSON(http.StatusOK, p.AIRiskPrediction)
}

func (h *Handler) ConversationLog(c echo.Context) error {
	p, err := h.lookup(c)
	if err != nil {
		return err
	}
	log, err := h.service.ConversationLogFor(p, c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, log)
}

func (h *Handler) AvailableDates(c echo.Context) error {
	p, err := h.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"dates": h.service.AvailableDates(p),
	})
}

func (h *Handler) DailySummary(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required")
	}
	p, err := h.lookup(c)
	if err != nil {
		return err
	}
	summary, err := h.service.DailySummary(c.Request().Context(), p, date)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate summary")
	}
	return c.JSON(http.StatusOK, map[string]string{"date": date, "summary": summary})
}

func (h *Handler) lookup(c echo.Context) (*Patient, error) {
	p, err := h.service.GetByDisplayID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch patient")
	}
	return p, nil
}

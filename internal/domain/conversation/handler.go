package conversation

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carewatch/carewatch/internal/domain/patient"
	"github.com/carewatch/carewatch/pkg/dates"
)

type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// Register wires the assistant-facing conversation routes. All of them
// sit behind the API key.
func (h *Handler) Register(g *echo.Group) {
	g.POST("/users/:assistant_user_id/conversation", h.SubmitTurn)
	g.GET("/users/:assistant_user_id/last_message", h.LastMessage)
	g.GET("/users/:assistant_user_id/conversation_logs", h.ConversationLogs)
	g.POST("/users/:assistant_user_id/session_end", h.SessionEnd)
	g.GET("/users/:assistant_user_id/symptom_states", h.SymptomStates)
}

type turnRequest struct {
	Content string `json:"content"`
}

func (h *Handler) SubmitTurn(c echo.Context) error {
	var req turnRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing content")
	}

	result, err := h.engine.SubmitTurn(c.Request().Context(), c.Param("assistant_user_id"), req.Content)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to process turn")
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) LastMessage(c echo.Context) error {
	msg, err := h.engine.LastMessage(c.Request().Context(), c.Param("assistant_user_id"))
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch last message")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":      "success",
		"last_message": msg,
	})
}

func (h *Handler) ConversationLogs(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		date = dates.Today()
	}

	logs, err := h.engine.LogsByCategory(c.Request().Context(), c.Param("assistant_user_id"), date)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, logs)
}

func (h *Handler) SessionEnd(c echo.Context) error {
	if err := h.engine.EndSession(c.Request().Context(), c.Param("assistant_user_id")); err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to end session")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Session ended successfully"})
}

func (h *Handler) SymptomStates(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		date = dates.Today()
	}

	snap, err := h.engine.SymptomStateFor(c.Request().Context(), c.Param("assistant_user_id"), date)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, snap)
}

package assistant

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carewatch/carewatch/internal/domain/patient"
)

// defaultLookback is the window served when the poller sends no
// from_time.
const defaultLookback = time.Minute

type Handler struct {
	patients patient.Repository
}

func NewHandler(patients patient.Repository) *Handler {
	return &Handler{patients: patients}
}

// Register wires the assignment polling feed behind the API key.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/updates", h.Updates)
}

// Updates returns patients whose assistant id was assigned at or after
// from_time (RFC 3339), defaulting to the last minute.
func (h *Handler) Updates(c echo.Context) error {
	since := time.Now().UTC().Add(-defaultLookback)
	if raw := c.QueryParam("from_time"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "from_time must be RFC 3339")
		}
		since = parsed.UTC()
	}

	patients, err := h.patients.ListAssignedSince(c.Request().Context(), since)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list updates")
	}

	updates := make([]Update, 0, len(patients))
	for _, p := range patients {
		var at time.Time
		if p.AssistantIDAddedAt != nil {
			at = p.AssistantIDAddedAt.UTC()
		}
		updates = append(updates, Update{
			PatientID:       p.ID.Hex(),
			PatientName:     p.Name,
			AssistantUserID: p.AssistantUserID,
			UpdatedAt:       at,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"updates":     updates,
		"server_time": time.Now().UTC().Format(time.RFC3339),
	})
}

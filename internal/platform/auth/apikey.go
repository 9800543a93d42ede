package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIKeyHeader is the header the assistant platform sends its key in.
const APIKeyHeader = "X-API-Key"

// RequireAPIKey authenticates requests against one configured key. The
// comparison is constant time. An empty configured key rejects everything,
// so a missing ASSISTANT_API_KEY fails closed rather than open.
func RequireAPIKey(validKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			provided := c.Request().Header.Get(APIKeyHeader)
			if validKey == "" || provided == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing api key")
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(validKey)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing api key")
			}
			return next(c)
		}
	}
}

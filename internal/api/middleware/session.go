package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"updigital/internal/sessions"
)

// SessionMiddleware resolves the session cookie to an account
// identity and stashes both on the request context. Requests without
// a cookie, or with an expired session, proceed as anonymous.
type SessionMiddleware struct {
	store      *sessions.Store
	cookieName string
}

func NewSessionMiddleware(store *sessions.Store, cookieName string) *SessionMiddleware {
	return &SessionMiddleware{store: store, cookieName: cookieName}
}

func (m *SessionMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(m.cookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			c.Set("sessionID", cookie.Value)

			userID, err := m.store.Get(c.Request().Context(), cookie.Value)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "session store unavailable")
			}
			if userID != "" {
				c.Set("userID", userID)
			}

			return next(c)
		}
	}
}

// RequireUser rejects anonymous requests.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if GetUserID(c) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// GetUserID returns the authenticated account id, or "".
func GetUserID(c echo.Context) string {
	if id, ok := c.Get("userID").(string); ok {
		return id
	}
	return ""
}

// GetSessionID returns the request's session id, or "".
func GetSessionID(c echo.Context) string {
	if id, ok := c.Get("sessionID").(string); ok {
		return id
	}
	return ""
}

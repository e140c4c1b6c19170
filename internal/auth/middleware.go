package auth

import (
	"strings"

	"commerce-platform/internal/httpapi"
	"commerce-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Cookie and header names carrying authentication state. Cookies are the
// canonical transport; bearer/header is accepted as a fallback for API
// clients. Whichever transport the request used, the response answers in
// kind: rotated credentials travel back the same way they arrived.
const (
	CookieAccess  = "authentication"
	CookieRefresh = "rtoken"
	CookieSession = "_session-token"

	headerAuthorization = "Authorization"
	headerRefreshToken  = "X-Refresh-Token"
	headerAccessToken   = "X-Access-Token"
	bearerPrefix        = "Bearer "
)

// RequireAuth intercepts every protected request, runs the guard, and
// applies its outcome to the transport: attach the user, set rotated
// credentials, or clear cookies and respond unauthorized.
func RequireAuth(g *Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, fromHeader := extractAccess(c)
		refresh := extractRefresh(c)

		out := g.Authenticate(c.Request.Context(), access, refresh)

		if !out.Accept {
			if out.Reason != nil {
				logger.FromGin(c).Warn("auth rejected", "reason", out.Reason.Error())
			}
			if out.ClearCredentials {
				clearAuthCookies(c)
			}
			httpapi.AbortUnauthorized(c)
			return
		}

		if out.SetCredentials != nil {
			logger.FromGin(c).Info("refresh token rotated", "user_id", out.User.ID)
			applyCredentials(c, *out.SetCredentials, fromHeader)
		}

		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), out.User))
		c.Set("user", out.User)
		c.Next()
	}
}

func extractAccess(c *gin.Context) (token string, fromHeader bool) {
	if v, err := c.Cookie(CookieAccess); err == nil && v != "" {
		return v, false
	}
	raw := strings.TrimSpace(c.GetHeader(headerAuthorization))
	if strings.HasPrefix(raw, bearerPrefix) {
		return strings.TrimPrefix(raw, bearerPrefix), true
	}
	return "", false
}

func extractRefresh(c *gin.Context) string {
	if v, err := c.Cookie(CookieRefresh); err == nil && v != "" {
		return v
	}
	return strings.TrimSpace(c.GetHeader(headerRefreshToken))
}

// SetAuthCookies writes the credential set as httpOnly cookies plus the
// client-visible session marker.
func SetAuthCookies(c *gin.Context, creds Credentials) {
	c.SetCookie(CookieAccess, creds.AccessToken, 0, "/", "", false, true)
	c.SetCookie(CookieRefresh, creds.RefreshToken, 0, "/", "", false, true)
	c.SetCookie(CookieSession, creds.SessionToken, 0, "/", "", false, false)
}

func applyCredentials(c *gin.Context, creds Credentials, fromHeader bool) {
	if fromHeader {
		c.Writer.Header().Set(headerAccessToken, creds.AccessToken)
		c.Writer.Header().Set(headerRefreshToken, creds.RefreshToken)
		return
	}
	SetAuthCookies(c, creds)
}

func clearAuthCookies(c *gin.Context) {
	// Empty value with an immediately-past expiry on all three cookies.
	c.SetCookie(CookieAccess, "", -1, "/", "", false, true)
	c.SetCookie(CookieRefresh, "", -1, "/", "", false, true)
	c.SetCookie(CookieSession, "", -1, "/", "", false, false)
}

// ClearAuthCookies is the exported logout helper.
func ClearAuthCookies(c *gin.Context) { clearAuthCookies(c) }

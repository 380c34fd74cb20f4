package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/basit/fileshare-catalog/auth"
	"github.com/basit/fileshare-catalog/logging"
)

const (
	// SnapshotKey is the gin context key holding the resolved auth.Snapshot.
	SnapshotKey = "session"
	// AccessCookie may carry the access token for browser navigation.
	AccessCookie = "access_token"

	msgAuthRequired  = "Authentication required"
	msgAdminRequired = "You do not have administrator privileges"
)

// Snapshot returns the identity resolved for this request, or the
// signed-out snapshot.
func Snapshot(c *gin.Context) auth.Snapshot {
	if v, ok := c.Get(SnapshotKey); ok {
		if s, ok := v.(auth.Snapshot); ok {
			return s
		}
	}
	return auth.Snapshot{}
}

func accessToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	if cookie, err := c.Cookie(AccessCookie); err == nil {
		return cookie
	}
	return ""
}

// resolve attaches the snapshot for the request's token, if it is valid.
// Invalid or missing tokens leave the request signed out.
func resolve(c *gin.Context, sessions auth.SessionProvider) auth.Snapshot {
	if _, done := c.Get(SnapshotKey); done {
		return Snapshot(c)
	}

	var snap auth.Snapshot
	if token := accessToken(c); token != "" {
		if s, err := sessions.Resolve(c.Request.Context(), token); err == nil {
			snap = s
		}
	}
	c.Set(SnapshotKey, snap)
	c.Request = c.Request.WithContext(auth.WithSnapshot(c.Request.Context(), snap))
	return snap
}

// AuthOptional resolves the session when a token is present and always
// continues.
func AuthOptional(sessions auth.SessionProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolve(c, sessions)
		c.Next()
	}
}

// AuthRequired rejects requests without a valid session.
func AuthRequired(sessions auth.SessionProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !resolve(c, sessions).SignedIn() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgAuthRequired})
			return
		}
		c.Next()
	}
}

// AdminRequired guards API routes: 401 without a session, 403 for a
// non-admin session.
func AdminRequired(sessions auth.SessionProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch auth.NewGate().Update(resolve(c, sessions)) {
		case auth.GateRedirectUnauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msgAuthRequired})
		case auth.GateRedirectForbidden:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msgAdminRequired})
		default:
			c.Next()
		}
	}
}

// AdminRedirect guards browser pages: visitors without a session go to the
// sign-in page, non-admins back to the home page with a notice.
func AdminRedirect(sessions auth.SessionProvider, frontendURL string) gin.HandlerFunc {
	base := strings.TrimRight(frontendURL, "/")
	return func(c *gin.Context) {
		switch auth.NewGate().Update(resolve(c, sessions)) {
		case auth.GateRedirectUnauthenticated:
			c.Redirect(http.StatusFound, base+"/auth")
			c.Abort()
		case auth.GateRedirectForbidden:
			c.Redirect(http.StatusFound, base+"/?notice=admin_required")
			c.Abort()
		default:
			c.Next()
		}
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		ctx := c.Request.Context()
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error(ctx, "request", args...)
		case status >= http.StatusBadRequest:
			logger.Warn(ctx, "request", args...)
		default:
			logger.Info(ctx, "request", args...)
		}
	}
}

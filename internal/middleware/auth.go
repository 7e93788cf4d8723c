package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/nail-scheduler/internal/auth"
	"github.com/BruksfildServices01/nail-scheduler/internal/config"
	"github.com/BruksfildServices01/nail-scheduler/internal/logging"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextUsername = "username"
)

const (
	LoginPath  = "/accounts/login"
	DeniedPath = "/denied"
)

// Session reads the session cookie and, when it holds a valid token, puts the
// user on the context. Requests without a valid session continue anonymously.
func Session(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(auth.CookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		claims, err := auth.ParseToken(cfg.SecretKey, raw)
		if err != nil {
			// stale or tampered cookie
			c.SetCookie(auth.CookieName, "", -1, "/", "", cfg.SecureCookies, true)
			c.Next()
			return
		}

		userID, _ := claims.UserID()
		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUsername, claims.Username)

		c.Next()
	}
}

// CurrentUser returns the authenticated user id and role, if any.
func CurrentUser(c *gin.Context) (uint, models.Role, bool) {
	idVal, ok := c.Get(ContextUserID)
	if !ok {
		return 0, "", false
	}
	id, ok := idVal.(uint)
	if !ok || id == 0 {
		return 0, "", false
	}
	role, _ := c.Get(ContextUserRole)
	r, _ := role.(models.Role)
	return id, r, true
}

func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, ok := CurrentUser(c); !ok {
			redirectToLogin(c)
			return
		}
		c.Next()
	}
}

// MasterRequired lets through only users whose role is master. Anonymous
// users go to the login page, everyone else to the denial page. The wrapped
// handler never runs for them.
func MasterRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, ok := CurrentUser(c)
		if !ok {
			redirectToLogin(c)
			return
		}
		if role != models.RoleMaster {
			logging.FromContext(c.Request.Context()).Info("master required",
				"user_id", userID,
				"role", role,
				"path", c.Request.URL.Path,
			)
			c.Redirect(http.StatusFound, DeniedPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	target := LoginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

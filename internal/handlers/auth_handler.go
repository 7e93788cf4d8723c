package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/nail-scheduler/internal/auth"
	"github.com/BruksfildServices01/nail-scheduler/internal/config"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/logging"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, config: cfg}
}

// --------- Requests ---------

type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

// --------- Handlers ---------

func (h *AuthHandler) LoginPage(c *gin.Context) {
	next := safeNext(c.Query("next"))
	if s := currentSession(c); s != nil {
		c.Redirect(http.StatusFound, next)
		return
	}
	render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Log in",
		"Next":  next,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.loginFailed(c, http.StatusBadRequest, req, "Enter both username and password.")
		return
	}

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).
		Where("username = ?", strings.TrimSpace(req.Username)).
		First(&user).Error; err != nil {

		if httperr.IsNotFound(err) {
			h.loginFailed(c, http.StatusUnauthorized, req, "Invalid username or password.")
			return
		}
		renderInternal(c, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.loginFailed(c, http.StatusUnauthorized, req, "Invalid username or password.")
		return
	}

	token, err := auth.GenerateToken(h.config.SecretKey, &user)
	if err != nil {
		renderInternal(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(auth.SessionTTL.Seconds()), "/", "", h.config.SecureCookies, true)

	logging.FromContext(c.Request.Context()).Info("user logged in", "user_id", user.ID, "role", user.Role)
	c.Redirect(http.StatusFound, safeNext(req.Next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", h.config.SecureCookies, true)
	c.Redirect(http.StatusFound, "/accounts/login")
}

func (h *AuthHandler) loginFailed(c *gin.Context, status int, req LoginRequest, msg string) {
	render(c, status, "login.html", gin.H{
		"Title":    "Log in",
		"Error":    msg,
		"Next":     safeNext(req.Next),
		"Username": req.Username,
	})
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

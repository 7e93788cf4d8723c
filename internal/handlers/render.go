package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"

	"github.com/BruksfildServices01/nail-scheduler/internal/auth"
	domainProfile "github.com/BruksfildServices01/nail-scheduler/internal/domain/profile"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/logging"
	"github.com/BruksfildServices01/nail-scheduler/internal/middleware"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

// ======================================================
// SESSION
// ======================================================

// SessionView is what templates know about the logged-in user.
type SessionView struct {
	ID       uint
	Username string
	Role     models.Role
}

func (s *SessionView) IsMaster() bool { return s.Role == models.RoleMaster }
func (s *SessionView) IsAdmin() bool  { return s.Role == models.RoleAdmin }

func currentSession(c *gin.Context) *SessionView {
	id, role, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	return &SessionView{ID: id, Username: c.GetString(middleware.ContextUsername), Role: role}
}

func actorFrom(c *gin.Context) (domainProfile.Actor, bool) {
	id, role, ok := middleware.CurrentUser(c)
	return domainProfile.Actor{UserID: id, Role: role}, ok
}

// clearSession drops the session cookie, used when the acting user deletes
// their own account.
func clearSession(c *gin.Context) {
	secure := c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
	c.SetCookie(auth.CookieName, "", -1, "/", "", secure, true)
}

// ======================================================
// RENDERING
// ======================================================

func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Session"] = currentSession(c)
	data["CSRFField"] = csrf.TemplateField(c.Request)
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string{}
	}
	c.HTML(status, name, data)
}

func renderDenied(c *gin.Context) {
	render(c, http.StatusForbidden, "denied.html", gin.H{"Title": "Forbidden"})
}

func renderNotFound(c *gin.Context, message string) {
	render(c, http.StatusNotFound, "not_found.html", gin.H{"Title": "Not found", "Message": message})
}

func renderInternal(c *gin.Context, err error) {
	logging.FromContext(c.Request.Context()).Error("request failed", "error", err)
	c.String(http.StatusInternalServerError, "internal server error")
}

// wantsJSON is true for API clients: JSON bodies or an Accept header that
// asks for JSON.
func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), gin.MIMEJSON)
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func queryPage(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ======================================================
// ERRORS
// ======================================================

var businessMessages = map[string]string{
	"username_taken":     "A user with that username already exists.",
	"invalid_username":   "Enter a valid username. Use letters, digits and @/./+/-/_ only.",
	"password_too_short": "This password is too short. It must contain at least 8 characters.",
	"missing_title":      "This field is required.",
	"title_too_long":     "Ensure this value has at most 255 characters.",
	"invalid_start":      "Enter a valid date and time.",
	"invalid_end":        "Enter a valid date and time.",
	"invalid_time_range": "The end must be after the start.",
	"duplicate_price":    "This service is already in the price list.",
	"service_not_found":  "Select a valid service.",
	"master_not_found":   "Select a valid master.",
	"invalid_price":      "Enter a valid, non-negative price.",
	"invalid_duration":   "Enter a duration as HH:MM.",
	"invalid_avatar":     "Upload a JPEG, PNG or WebP image of at most 5 MB and 4096x4096 pixels.",
	"not_owner":          "You do not have permission to perform this action.",
	"not_master":         "Only masters can do this.",
	"role_mismatch":      "This profile does not match its user role.",
}

var businessFields = map[string]string{
	"username_taken":     "username",
	"invalid_username":   "username",
	"password_too_short": "password1",
	"missing_title":      "title",
	"title_too_long":     "title",
	"invalid_start":      "start",
	"invalid_end":        "end",
	"invalid_time_range": "end",
	"duplicate_price":    "services",
	"service_not_found":  "services",
	"invalid_price":      "price",
	"invalid_duration":   "duration",
	"invalid_avatar":     "avatar",
}

func businessMessage(code string) string {
	if msg, ok := businessMessages[code]; ok {
		return msg
	}
	return code
}

// formErrors turns a bind or business error into per-field messages. The
// second value is a message with no field to attach to.
func formErrors(err error) (map[string]string, string) {
	out := map[string]string{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fe.Field()] = fieldMessage(fe)
		}
		return out, ""
	}

	if code := httperr.BusinessCode(err); code != "" {
		if field, ok := businessFields[code]; ok {
			out[field] = businessMessage(code)
			return out, ""
		}
		return out, businessMessage(code)
	}

	return out, "The submitted data is invalid."
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "eqfield":
		return "The two password fields didn't match."
	case "username":
		return businessMessages["invalid_username"]
	case "duration":
		return businessMessages["invalid_duration"]
	}
	return "Enter a valid value."
}

// bindError marks a request that failed binding or validation, as opposed
// to a failure further down.
type bindError struct{ error }

func (e bindError) Unwrap() error { return e.error }

func isBindError(err error) bool {
	var be bindError
	return errors.As(err, &be)
}

// writeJSONError maps a use case error onto the JSON error shape.
func writeJSONError(c *gin.Context, err error) {
	code := httperr.BusinessCode(err)
	status := httperr.Status(code)
	switch {
	case code == "":
		logging.FromContext(c.Request.Context()).Error("request failed", "error", err)
		httperr.Internal(c, "internal_error", "Something went wrong.")
	case status == http.StatusNotFound:
		httperr.NotFound(c, code, "Not found.")
	default:
		httperr.Write(c, status, code, businessMessage(code))
	}
}

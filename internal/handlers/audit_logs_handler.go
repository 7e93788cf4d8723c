package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/nail-scheduler/internal/middleware"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

// List returns the audit trail as JSON. Admins only.
func (h *AuditLogsHandler) List(c *gin.Context) {
	if _, role, _ := middleware.CurrentUser(c); role != models.RoleAdmin {
		httperr.Forbidden(c, "admin_required", "Only administrators can read the audit log.")
		return
	}

	action := c.Query("action")
	entity := c.Query("entity")
	userStr := c.Query("user_id")
	fromStr := c.Query("from")
	toStr := c.Query("to")

	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "50")

	page, _ := strconv.Atoi(pageStr)
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	offset := (page - 1) * limit

	// --------------------------------------------------
	// Filters
	// --------------------------------------------------

	base := func() *gorm.DB {
		q := h.db.WithContext(c.Request.Context()).Model(&models.AuditLog{})

		if action != "" {
			q = q.Where("action = ?", action)
		}
		if entity != "" {
			q = q.Where("entity = ?", entity)
		}
		if userStr != "" {
			if uid, err := strconv.ParseUint(userStr, 10, 64); err == nil {
				q = q.Where("user_id = ?", uid)
			}
		}
		if fromStr != "" {
			if from, err := time.Parse("2006-01-02", fromStr); err == nil {
				q = q.Where("created_at >= ?", from)
			}
		}
		if toStr != "" {
			if to, err := time.Parse("2006-01-02", toStr); err == nil {
				q = q.Where("created_at < ?", to.Add(24*time.Hour))
			}
		}
		return q
	}

	// --------------------------------------------------
	// Total
	// --------------------------------------------------

	var total int64
	if err := base().Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Could not count audit entries.")
		return
	}

	// --------------------------------------------------
	// Page
	// --------------------------------------------------

	var logs []models.AuditLog
	if err := base().
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {

		httperr.Internal(c, "audit_list_failed", "Could not list audit entries.")
		return
	}

	httpresp.Page(c, logs, page, limit, total)
}

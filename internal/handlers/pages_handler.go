package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/nail-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/nail-scheduler/internal/logging"
	"github.com/BruksfildServices01/nail-scheduler/internal/visits"
)

// ======================================================
// DASHBOARD
// ======================================================

type DashboardHandler struct {
	catalogue *repository.CatalogueGormRepository
	visits    visits.Counter
}

func NewDashboardHandler(
	catalogue *repository.CatalogueGormRepository,
	counter visits.Counter,
) *DashboardHandler {
	return &DashboardHandler{
		catalogue: catalogue,
		visits:    counter,
	}
}

func (h *DashboardHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.catalogue.Stats(ctx)
	if err != nil {
		renderInternal(c, err)
		return
	}

	var count int64
	if s := currentSession(c); s != nil {
		count, err = h.visits.Incr(ctx, s.ID)
		if err != nil {
			// the page is still useful without the counter
			logging.FromContext(ctx).Warn("visit counter unavailable", "error", err)
			count = 0
		}
	}

	render(c, http.StatusOK, "index.html", gin.H{
		"Title":  "Home",
		"Stats":  stats,
		"Visits": count,
	})
}

// ======================================================
// STATIC PAGES
// ======================================================

func Denied(c *gin.Context) {
	renderDenied(c)
}

func NotFound(c *gin.Context) {
	if wantsJSON(c) {
		c.JSON(http.StatusNotFound, gin.H{"error_code": "not_found", "message": "Not found."})
		return
	}
	renderNotFound(c, "")
}

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

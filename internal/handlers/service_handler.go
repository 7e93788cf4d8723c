package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/nail-scheduler/internal/audit"
	domainProfile "github.com/BruksfildServices01/nail-scheduler/internal/domain/profile"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/nail-scheduler/internal/middleware"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
	ucProfile "github.com/BruksfildServices01/nail-scheduler/internal/usecase/profile"
	"github.com/BruksfildServices01/nail-scheduler/internal/validators"
)

type ServiceHandler struct {
	catalogue *repository.CatalogueGormRepository
	audit     audit.Recorder
}

func NewServiceHandler(
	catalogue *repository.CatalogueGormRepository,
	recorder audit.Recorder,
) *ServiceHandler {
	return &ServiceHandler{catalogue: catalogue, audit: recorder}
}

// --------- Requests ---------

type ServiceRequest struct {
	Name     string `form:"name" binding:"required,max=100"`
	Price    string `form:"price" binding:"required"`
	Duration string `form:"duration" binding:"required,duration"`
}

// parse validates the fields the binding tags cannot express.
func (r ServiceRequest) parse() (models.Service, map[string]string) {
	errs := map[string]string{}
	svc := models.Service{Name: strings.TrimSpace(r.Name)}

	price, err := domainProfile.ParsePrice(r.Price)
	if err != nil {
		errs["price"] = businessMessage("invalid_price")
	}
	svc.Price = price

	d, err := validators.ParseDuration(r.Duration)
	if err != nil {
		errs["duration"] = businessMessage("invalid_duration")
	}
	svc.DurationMin = d

	return svc, errs
}

// --------- Handlers ---------

func (h *ServiceHandler) List(c *gin.Context) {
	query := strings.TrimSpace(c.Query("name"))
	filter := domainProfile.ListFilter{Page: queryPage(c)}.Normalize()

	services, total, err := h.catalogue.PageServices(c.Request.Context(), query, filter.PageSize, filter.Offset())
	if err != nil {
		renderInternal(c, err)
		return
	}

	_, role, _ := middleware.CurrentUser(c)
	render(c, http.StatusOK, "services_list.html", gin.H{
		"Title": "Services",
		"Page": ucProfile.Page[models.Service]{
			Items:    services,
			Total:    total,
			Page:     filter.Page,
			PageSize: filter.PageSize,
		},
		"Query":      query,
		"QueryParam": "name",
		"BasePath":   "/services",
		"CanEdit":    role == models.RoleMaster,
	})
}

func (h *ServiceHandler) NewForm(c *gin.Context) {
	render(c, http.StatusOK, "service_form.html", gin.H{
		"Title":  "New service",
		"Action": "/services/new",
		"Form":   ServiceRequest{},
	})
}

func (h *ServiceHandler) Create(c *gin.Context) {
	var req ServiceRequest
	if !h.bind(c, &req, "New service", "/services/new") {
		return
	}

	svc, errs := req.parse()
	if len(errs) > 0 {
		h.formFailed(c, req, "New service", "/services/new", errs, "")
		return
	}

	if err := h.catalogue.CreateService(c.Request.Context(), &svc); err != nil {
		if httperr.IsUniqueViolation(err) {
			h.formFailed(c, req, "New service", "/services/new",
				map[string]string{"name": "A service with this name already exists."}, "")
			return
		}
		renderInternal(c, err)
		return
	}

	h.record(c, "service_created", svc.ID, map[string]any{"name": svc.Name})
	c.Redirect(http.StatusFound, "/services")
}

func (h *ServiceHandler) EditForm(c *gin.Context) {
	svc, ok := h.load(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "service_form.html", gin.H{
		"Title":  "Edit service",
		"Action": servicePath(svc.ID) + "/update",
		"Form": ServiceRequest{
			Name:     svc.Name,
			Price:    strconv.FormatFloat(svc.Price, 'f', 2, 64),
			Duration: models.FormatDuration(svc.DurationMin),
		},
	})
}

func (h *ServiceHandler) Update(c *gin.Context) {
	existing, ok := h.load(c)
	if !ok {
		return
	}
	action := servicePath(existing.ID) + "/update"

	var req ServiceRequest
	if !h.bind(c, &req, "Edit service", action) {
		return
	}

	svc, errs := req.parse()
	if len(errs) > 0 {
		h.formFailed(c, req, "Edit service", action, errs, "")
		return
	}

	existing.Name = svc.Name
	existing.Price = svc.Price
	existing.DurationMin = svc.DurationMin

	if err := h.catalogue.UpdateService(c.Request.Context(), existing); err != nil {
		if httperr.IsUniqueViolation(err) {
			h.formFailed(c, req, "Edit service", action,
				map[string]string{"name": "A service with this name already exists."}, "")
			return
		}
		renderInternal(c, err)
		return
	}

	h.record(c, "service_updated", existing.ID, nil)
	c.Redirect(http.StatusFound, "/services")
}

func (h *ServiceHandler) DeleteConfirm(c *gin.Context) {
	svc, ok := h.load(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "confirm_delete.html", gin.H{
		"Title":  "Delete service",
		"Object": svc.Name,
		"Action": servicePath(svc.ID) + "/delete",
		"Cancel": "/services",
	})
}

func (h *ServiceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		renderNotFound(c, "")
		return
	}

	if err := h.catalogue.DeleteService(c.Request.Context(), id); err != nil {
		if httperr.IsNotFound(err) {
			renderNotFound(c, "No service found matching the query.")
			return
		}
		renderInternal(c, err)
		return
	}

	h.record(c, "service_deleted", id, nil)
	c.Redirect(http.StatusFound, "/services")
}

// --------- Helpers ---------

func (h *ServiceHandler) load(c *gin.Context) (*models.Service, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		renderNotFound(c, "")
		return nil, false
	}
	svc, err := h.catalogue.GetService(c.Request.Context(), id)
	if err != nil {
		if httperr.IsNotFound(err) {
			renderNotFound(c, "No service found matching the query.")
			return nil, false
		}
		renderInternal(c, err)
		return nil, false
	}
	return svc, true
}

func (h *ServiceHandler) bind(c *gin.Context, req *ServiceRequest, title, action string) bool {
	if err := c.ShouldBind(req); err != nil {
		errs, msg := formErrors(err)
		h.formFailed(c, *req, title, action, errs, msg)
		return false
	}
	return true
}

func (h *ServiceHandler) formFailed(
	c *gin.Context,
	req ServiceRequest,
	title, action string,
	errs map[string]string,
	msg string,
) {
	render(c, http.StatusBadRequest, "service_form.html", gin.H{
		"Title":  title,
		"Action": action,
		"Form":   req,
		"Errors": errs,
		"Error":  msg,
	})
}

func (h *ServiceHandler) record(c *gin.Context, action string, id uint, meta any) {
	userID, _, _ := middleware.CurrentUser(c)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   action,
		Entity:   "service",
		EntityID: &id,
		Metadata: meta,
	})
}

func servicePath(id uint) string {
	return "/services/" + strconv.FormatUint(uint64(id), 10)
}

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
	"github.com/BruksfildServices01/nail-scheduler/internal/validators"
)

// PriceHandler manages single rows of a master's price list. Only the
// master who owns the list may touch it.
type PriceHandler struct {
	catalogue *repository.CatalogueGormRepository
	profiles  domainProfile.Repository
	audit     audit.Recorder
}

func NewPriceHandler(
	catalogue *repository.CatalogueGormRepository,
	profiles domainProfile.Repository,
	recorder audit.Recorder,
) *PriceHandler {
	return &PriceHandler{
		catalogue: catalogue,
		profiles:  profiles,
		audit:     recorder,
	}
}

type PriceRequest struct {
	ServiceID uint   `form:"service_id"`
	Price     string `form:"price"`
	Duration  string `form:"duration" binding:"omitempty,duration"`
}

// input converts the request; a blank price or duration means the
// service default.
func (r PriceRequest) input(serviceID uint) (domainProfile.PriceInput, error) {
	in := domainProfile.PriceInput{ServiceID: serviceID}

	if raw := strings.TrimSpace(r.Price); raw != "" {
		v, err := domainProfile.ParsePrice(raw)
		if err != nil {
			return in, err
		}
		in.Price = &v
	}
	if raw := strings.TrimSpace(r.Duration); raw != "" {
		d, err := validators.ParseDuration(raw)
		if err != nil {
			return in, httperr.ErrBusiness("invalid_duration")
		}
		in.DurationMin = &d
	}
	return in, nil
}

// --------- Handlers ---------

func (h *PriceHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _, _ := middleware.CurrentUser(c)

	masterID, ok := parseID(c, "id")
	if !ok {
		renderNotFound(c, "")
		return
	}
	master, err := h.profiles.GetMaster(ctx, masterID)
	if err != nil {
		if httperr.IsNotFound(err) {
			renderNotFound(c, "No master found matching the query.")
			return
		}
		renderInternal(c, err)
		return
	}
	if master.UserID != userID {
		renderDenied(c)
		return
	}

	action := masterPath(master.ID) + "/prices"

	var req PriceRequest
	if err := c.ShouldBind(&req); err != nil {
		h.formFailed(c, req, action, true, err)
		return
	}
	if req.ServiceID == 0 {
		h.formFailed(c, req, action, true, httperr.ErrBusiness("service_not_found"))
		return
	}

	in, err := req.input(req.ServiceID)
	if err != nil {
		h.formFailed(c, req, action, true, err)
		return
	}

	services, err := h.profiles.ServicesByID(ctx, []uint{req.ServiceID})
	if err != nil {
		renderInternal(c, err)
		return
	}
	rows, err := domainProfile.BuildPriceList(master.ID, []domainProfile.PriceInput{in}, services)
	if err != nil {
		h.formFailed(c, req, action, true, err)
		return
	}
	price := rows[0]

	if err := h.catalogue.CreatePrice(ctx, &price); err != nil {
		if httperr.IsUniqueViolation(err) {
			h.formFailed(c, req, action, true, httperr.ErrBusiness("duplicate_price"))
			return
		}
		renderInternal(c, err)
		return
	}

	h.record(c, "price_created", price.ID, map[string]any{"master_id": master.ID, "service_id": price.ServiceID})
	c.Redirect(http.StatusFound, masterPath(master.ID))
}

func (h *PriceHandler) EditForm(c *gin.Context) {
	price, ok := h.loadOwned(c)
	if !ok {
		return
	}

	form := PriceRequest{Price: strconv.FormatFloat(price.Price, 'f', 2, 64)}
	if price.DurationMin != nil {
		form.Duration = models.FormatDuration(*price.DurationMin)
	}

	render(c, http.StatusOK, "price_form.html", gin.H{
		"Title":  "Edit price for " + price.Service.Name,
		"Action": pricePath(price.ID) + "/update",
		"Form":   form,
	})
}

func (h *PriceHandler) Update(c *gin.Context) {
	price, ok := h.loadOwned(c)
	if !ok {
		return
	}
	action := pricePath(price.ID) + "/update"

	var req PriceRequest
	if err := c.ShouldBind(&req); err != nil {
		h.formFailed(c, req, action, false, err)
		return
	}

	in, err := req.input(price.ServiceID)
	if err != nil {
		h.formFailed(c, req, action, false, err)
		return
	}
	rows, err := domainProfile.BuildPriceList(
		price.MasterID,
		[]domainProfile.PriceInput{in},
		map[uint]models.Service{price.ServiceID: price.Service},
	)
	if err != nil {
		h.formFailed(c, req, action, false, err)
		return
	}

	price.Price = rows[0].Price
	price.DurationMin = rows[0].DurationMin
	if err := h.catalogue.UpdatePrice(c.Request.Context(), price); err != nil {
		renderInternal(c, err)
		return
	}

	h.record(c, "price_updated", price.ID, nil)
	c.Redirect(http.StatusFound, masterPath(price.MasterID))
}

func (h *PriceHandler) Delete(c *gin.Context) {
	price, ok := h.loadOwned(c)
	if !ok {
		return
	}

	if err := h.catalogue.DeletePrice(c.Request.Context(), price.ID); err != nil {
		renderInternal(c, err)
		return
	}

	h.record(c, "price_deleted", price.ID, map[string]any{"service_id": price.ServiceID})
	c.Redirect(http.StatusFound, masterPath(price.MasterID))
}

// --------- Helpers ---------

func (h *PriceHandler) loadOwned(c *gin.Context) (*models.PriceList, bool) {
	userID, _, _ := middleware.CurrentUser(c)

	id, ok := parseID(c, "id")
	if !ok {
		renderNotFound(c, "")
		return nil, false
	}
	price, err := h.catalogue.GetPrice(c.Request.Context(), id)
	if err != nil {
		if httperr.IsNotFound(err) {
			renderNotFound(c, "No price found matching the query.")
			return nil, false
		}
		renderInternal(c, err)
		return nil, false
	}
	if price.Master.UserID != userID {
		renderDenied(c)
		return nil, false
	}
	return price, true
}

func (h *PriceHandler) formFailed(c *gin.Context, req PriceRequest, action string, pickService bool, err error) {
	errs, msg := formErrors(err)

	data := gin.H{
		"Title":  "Price",
		"Action": action,
		"Form":   req,
		"Errors": errs,
		"Error":  msg,
	}
	if pickService {
		services, lerr := h.catalogue.ListServices(c.Request.Context(), "")
		if lerr != nil {
			renderInternal(c, lerr)
			return
		}
		data["Services"] = services
		if _, ok := errs["services"]; ok {
			data["Error"] = errs["services"]
		}
	}
	render(c, http.StatusBadRequest, "price_form.html", data)
}

func (h *PriceHandler) record(c *gin.Context, action string, id uint, meta any) {
	userID, _, _ := middleware.CurrentUser(c)
	h.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   action,
		Entity:   "price_list",
		EntityID: &id,
		Metadata: meta,
	})
}

func pricePath(id uint) string {
	return "/prices/" + strconv.FormatUint(uint64(id), 10)
}

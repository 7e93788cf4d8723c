package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domainProfile "github.com/BruksfildServices01/nail-scheduler/internal/domain/profile"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/nail-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
	ucEvent "github.com/BruksfildServices01/nail-scheduler/internal/usecase/event"
	ucProfile "github.com/BruksfildServices01/nail-scheduler/internal/usecase/profile"
	"github.com/BruksfildServices01/nail-scheduler/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type MasterHandler struct {
	catalogue *repository.CatalogueGormRepository

	list   *ucProfile.ListMasters
	get    *ucProfile.GetMasterProfile
	create *ucProfile.CreateMaster
	update *ucProfile.UpdateMaster
	remove *ucProfile.DeleteMaster
	events *ucEvent.ListEvents
}

func NewMasterHandler(
	catalogue *repository.CatalogueGormRepository,
	list *ucProfile.ListMasters,
	get *ucProfile.GetMasterProfile,
	create *ucProfile.CreateMaster,
	update *ucProfile.UpdateMaster,
	remove *ucProfile.DeleteMaster,
	events *ucEvent.ListEvents,
) *MasterHandler {
	return &MasterHandler{
		catalogue: catalogue,
		list:      list,
		get:       get,
		create:    create,
		update:    update,
		remove:    remove,
		events:    events,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateMasterRequest struct {
	Username  string `form:"username" binding:"required,username"`
	Password1 string `form:"password1" binding:"required,min=8"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Email     string `form:"email" binding:"omitempty,email"`
	About     string `form:"about"`
	Services  []uint `form:"services"`
}

type UpdateMasterRequest struct {
	FirstName       string `form:"first_name" binding:"max=150"`
	LastName        string `form:"last_name" binding:"max=150"`
	Email           string `form:"email" binding:"omitempty,email"`
	About           string `form:"about"`
	Services        []uint `form:"services"`
	PricesSubmitted string `form:"prices_submitted"`
}

// masterFormView is what master_form.html reads back.
type masterFormView struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	About     string
}

// ======================================================
// LIST / DETAIL
// ======================================================

func (h *MasterHandler) List(c *gin.Context) {
	query := strings.TrimSpace(c.Query("username"))

	page, err := h.list.Execute(c.Request.Context(), domainProfile.ListFilter{
		Username: query,
		Page:     queryPage(c),
	})
	if err != nil {
		renderInternal(c, err)
		return
	}

	render(c, http.StatusOK, "masters_list.html", gin.H{
		"Title":      "Masters",
		"Page":       page,
		"Query":      query,
		"BasePath":   "/masters",
		"QueryParam": "username",
	})
}

func (h *MasterHandler) Detail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		renderNotFound(c, "")
		return
	}

	profile, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		if httperr.IsBusiness(err, "master_not_found") {
			renderNotFound(c, "No master found matching the query.")
			return
		}
		renderInternal(c, err)
		return
	}

	isOwner, canSchedule := false, false
	if actor, ok := actorFrom(c); ok {
		isOwner = domainProfile.CanManage(actor, profile.Master.UserID) == nil
		canSchedule = actor.Role == models.RoleMaster && actor.UserID == profile.Master.UserID
	}

	var unpriced []models.Service
	if canSchedule {
		all, err := h.catalogue.ListServices(c.Request.Context(), "")
		if err != nil {
			renderInternal(c, err)
			return
		}
		priced := make(map[uint]bool, len(profile.Master.PriceList))
		for _, p := range profile.Master.PriceList {
			priced[p.ServiceID] = true
		}
		for _, s := range all {
			if !priced[s.ID] {
				unpriced = append(unpriced, s)
			}
		}
	}

	render(c, http.StatusOK, "master_detail.html", gin.H{
		"Title":       profile.Master.User.Username,
		"Profile":     profile,
		"IsOwner":     isOwner,
		"CanSchedule": canSchedule,
		"Services":    unpriced,
	})
}

// Events is the JSON feed of one master's events.
func (h *MasterHandler) Events(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		httperr.NotFound(c, "master_not_found", "Master not found.")
		return
	}

	if _, err := h.get.Execute(c.Request.Context(), id); err != nil {
		writeJSONError(c, err)
		return
	}

	events, err := h.events.Execute(c.Request.Context(), id)
	if err != nil {
		writeJSONError(c, err)
		return
	}
	httpresp.List(c, events)
}

// ======================================================
// CREATE
// ======================================================

func (h *MasterHandler) NewForm(c *gin.Context) {
	h.renderForm(c, http.StatusOK, formState{
		title:    "Become a master",
		action:   "/masters/new",
		creating: true,
	})
}

func (h *MasterHandler) Create(c *gin.Context) {
	var req CreateMasterRequest
	bindErr := c.ShouldBind(&req)

	state := formState{
		title:    "Become a master",
		action:   "/masters/new",
		creating: true,
		form: masterFormView{
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			About:     req.About,
		},
		selected: req.Services,
	}

	prices, priceErrs := readPriceInputs(c, req.Services)

	if bindErr != nil || len(priceErrs) > 0 {
		state.errors, state.message = formErrors(bindErr)
		if bindErr == nil {
			state.message = ""
		}
		for k, v := range priceErrs {
			state.errors[k] = v
		}
		h.renderForm(c, http.StatusBadRequest, state)
		return
	}

	master, err := h.create.Execute(c.Request.Context(), ucProfile.CreateMasterInput{
		Username:  req.Username,
		Password:  req.Password1,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		About:     req.About,
		Prices:    prices,
	})
	if err != nil {
		if httperr.BusinessCode(err) == "" {
			renderInternal(c, err)
			return
		}
		state.errors, state.message = formErrors(err)
		h.renderForm(c, http.StatusBadRequest, state)
		return
	}

	c.Redirect(http.StatusFound, "/masters/"+strconv.FormatUint(uint64(master.ID), 10))
}

// ======================================================
// UPDATE
// ======================================================

func (h *MasterHandler) EditForm(c *gin.Context) {
	profile, ok := h.loadManaged(c)
	if !ok {
		return
	}

	m := profile.Master
	selected := make([]uint, 0, len(m.PriceList))
	for _, p := range m.PriceList {
		selected = append(selected, p.ServiceID)
	}

	h.renderForm(c, http.StatusOK, formState{
		title:  "Edit profile",
		action: "/masters/" + strconv.FormatUint(uint64(m.ID), 10) + "/update",
		form: masterFormView{
			FirstName: m.User.FirstName,
			LastName:  m.User.LastName,
			Email:     m.User.Email,
			About:     m.About,
		},
		selected: selected,
		prices:   m.PriceList,
	})
}

func (h *MasterHandler) Update(c *gin.Context) {
	profile, ok := h.loadManaged(c)
	if !ok {
		return
	}
	actor, _ := actorFrom(c)
	m := profile.Master

	var req UpdateMasterRequest
	bindErr := c.ShouldBind(&req)

	state := formState{
		title:  "Edit profile",
		action: "/masters/" + strconv.FormatUint(uint64(m.ID), 10) + "/update",
		form: masterFormView{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			About:     req.About,
		},
		selected: req.Services,
	}

	prices, priceErrs := readPriceInputs(c, req.Services)
	if bindErr != nil || len(priceErrs) > 0 {
		state.errors, state.message = formErrors(bindErr)
		if bindErr == nil {
			state.message = ""
		}
		for k, v := range priceErrs {
			state.errors[k] = v
		}
		h.renderForm(c, http.StatusBadRequest, state)
		return
	}

	in := ucProfile.UpdateMasterInput{
		Actor:         actor,
		MasterID:      m.ID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		About:         req.About,
		Prices:        prices,
		ReplacePrices: req.PricesSubmitted != "",
	}

	if fh, err := c.FormFile("avatar"); err == nil && fh.Size > 0 {
		f, err := fh.Open()
		if err != nil {
			renderInternal(c, err)
			return
		}
		defer f.Close()
		in.Avatar = f
	}

	if _, err := h.update.Execute(c.Request.Context(), in); err != nil {
		switch httperr.BusinessCode(err) {
		case "":
			renderInternal(c, err)
		case "not_owner":
			renderDenied(c)
		case "master_not_found":
			renderNotFound(c, "")
		default:
			state.errors, state.message = formErrors(err)
			h.renderForm(c, http.StatusBadRequest, state)
		}
		return
	}

	c.Redirect(http.StatusFound, "/masters/"+strconv.FormatUint(uint64(m.ID), 10))
}

// ======================================================
// DELETE
// ======================================================

func (h *MasterHandler) DeleteConfirm(c *gin.Context) {
	profile, ok := h.loadManaged(c)
	if !ok {
		return
	}
	id := strconv.FormatUint(uint64(profile.Master.ID), 10)
	render(c, http.StatusOK, "confirm_delete.html", gin.H{
		"Title":  "Delete master",
		"Object": profile.Master.User.Username,
		"Action": "/masters/" + id + "/delete",
		"Cancel": "/masters/" + id,
	})
}

func (h *MasterHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		renderNotFound(c, "")
		return
	}
	actor, _ := actorFrom(c)

	master, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		if httperr.IsBusiness(err, "master_not_found") {
			renderNotFound(c, "")
			return
		}
		renderInternal(c, err)
		return
	}

	if err := h.remove.Execute(c.Request.Context(), actor, id); err != nil {
		switch {
		case httperr.IsBusiness(err, "not_owner"):
			renderDenied(c)
		case httperr.IsBusiness(err, "master_not_found"):
			renderNotFound(c, "")
		default:
			renderInternal(c, err)
		}
		return
	}

	if master.Master.UserID == actor.UserID {
		clearSession(c)
	}
	c.Redirect(http.StatusFound, "/masters")
}

// ======================================================
// HELPERS
// ======================================================

// loadManaged resolves :id and checks the actor may manage it, writing the
// 404 or 403 page itself when not.
func (h *MasterHandler) loadManaged(c *gin.Context) (*ucProfile.MasterProfile, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		renderNotFound(c, "")
		return nil, false
	}

	profile, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		if httperr.IsBusiness(err, "master_not_found") {
			renderNotFound(c, "No master found matching the query.")
			return nil, false
		}
		renderInternal(c, err)
		return nil, false
	}

	actor, _ := actorFrom(c)
	if err := domainProfile.CanManage(actor, profile.Master.UserID); err != nil {
		renderDenied(c)
		return nil, false
	}
	return profile, true
}

type formState struct {
	title    string
	action   string
	creating bool
	form     masterFormView
	selected []uint
	prices   []models.PriceList
	errors   map[string]string
	message  string
}

func (h *MasterHandler) renderForm(c *gin.Context, status int, st formState) {
	services, err := h.catalogue.ListServices(c.Request.Context(), "")
	if err != nil {
		renderInternal(c, err)
		return
	}

	selected := make(map[uint]bool, len(st.selected))
	for _, id := range st.selected {
		selected[id] = true
	}

	priceValues := map[uint]string{}
	durationValues := map[uint]string{}
	for _, p := range st.prices {
		priceValues[p.ServiceID] = strconv.FormatFloat(p.Price, 'f', 2, 64)
		if p.DurationMin != nil {
			durationValues[p.ServiceID] = models.FormatDuration(*p.DurationMin)
		}
	}
	// values echoed back from a rejected submission win
	for _, svc := range services {
		if v := strings.TrimSpace(c.PostForm(priceField(svc.ID))); v != "" {
			priceValues[svc.ID] = v
		}
		if v := strings.TrimSpace(c.PostForm(durationField(svc.ID))); v != "" {
			durationValues[svc.ID] = v
		}
	}

	errs := st.errors
	if errs == nil {
		errs = map[string]string{}
	}

	render(c, status, "master_form.html", gin.H{
		"Title":          st.title,
		"Action":         st.action,
		"Creating":       st.creating,
		"Form":           st.form,
		"Errors":         errs,
		"Error":          st.message,
		"Services":       services,
		"Selected":       selected,
		"PriceValues":    priceValues,
		"DurationValues": durationValues,
	})
}

func priceField(serviceID uint) string {
	return "price_" + strconv.FormatUint(uint64(serviceID), 10)
}

func durationField(serviceID uint) string {
	return "duration_" + strconv.FormatUint(uint64(serviceID), 10)
}

// readPriceInputs collects the price_<id> and duration_<id> fields for each
// selected service. Blank values fall back to the service defaults.
func readPriceInputs(c *gin.Context, serviceIDs []uint) ([]domainProfile.PriceInput, map[string]string) {
	errs := map[string]string{}
	out := make([]domainProfile.PriceInput, 0, len(serviceIDs))

	for _, id := range serviceIDs {
		in := domainProfile.PriceInput{ServiceID: id}

		if raw := strings.TrimSpace(c.PostForm(priceField(id))); raw != "" {
			v, err := domainProfile.ParsePrice(raw)
			if err != nil {
				errs["services"] = businessMessage("invalid_price")
				continue
			}
			in.Price = &v
		}

		if raw := strings.TrimSpace(c.PostForm(durationField(id))); raw != "" {
			d, err := validators.ParseDuration(raw)
			if err != nil {
				errs["services"] = businessMessage("invalid_duration")
				continue
			}
			in.DurationMin = &d
		}

		out = append(out, in)
	}
	return out, errs
}

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domainProfile "github.com/BruksfildServices01/nail-scheduler/internal/domain/profile"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/infra/repository"
	ucProfile "github.com/BruksfildServices01/nail-scheduler/internal/usecase/profile"
)

type CustomerHandler struct {
	catalogue *repository.CatalogueGormRepository

	list   *ucProfile.ListCustomers
	get    *ucProfile.GetCustomerProfile
	create *ucProfile.CreateCustomer
	update *ucProfile.UpdateCustomer
	remove *ucProfile.DeleteCustomer
}

func NewCustomerHandler(
	catalogue *repository.CatalogueGormRepository,
	list *ucProfile.ListCustomers,
	get *ucProfile.GetCustomerProfile,
	create *ucProfile.CreateCustomer,
	update *ucProfile.UpdateCustomer,
	remove *ucProfile.DeleteCustomer,
) *CustomerHandler {
	return &CustomerHandler{
		catalogue: catalogue,
		list:      list,
		get:       get,
		create:    create,
		update:    update,
		remove:    remove,
	}
}

// --------- Requests ---------

type CreateCustomerRequest struct {
	Username  string `form:"username" binding:"required,username"`
	Password1 string `form:"password1" binding:"required,min=8"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Email     string `form:"email" binding:"omitempty,email"`
}

type UpdateCustomerRequest struct {
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Email     string `form:"email" binding:"omitempty,email"`
	Services  []uint `form:"services"`
	Masters   []uint `form:"masters"`
}

type customerFormView struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
}

// --------- Handlers ---------

func (h *CustomerHandler) List(c *gin.Context) {
	query := strings.TrimSpace(c.Query("username"))

	page, err := h.list.Execute(c.Request.Context(), domainProfile.ListFilter{
		Username: query,
		Page:     queryPage(c),
	})
	if err != nil {
		renderInternal(c, err)
		return
	}

	render(c, http.StatusOK, "customers_list.html", gin.H{
		"Title":      "Customers",
		"Page":       page,
		"Query":      query,
		"BasePath":   "/customers",
		"QueryParam": "username",
	})
}

func (h *CustomerHandler) Detail(c *gin.Context) {
	profile, ok := h.load(c)
	if !ok {
		return
	}

	isOwner := false
	if actor, ok := actorFrom(c); ok {
		isOwner = domainProfile.CanManage(actor, profile.Customer.UserID) == nil
	}

	render(c, http.StatusOK, "customer_detail.html", gin.H{
		"Title":   profile.Customer.User.Username,
		"Profile": profile,
		"IsOwner": isOwner,
	})
}

func (h *CustomerHandler) NewForm(c *gin.Context) {
	render(c, http.StatusOK, "customer_form.html", gin.H{
		"Title":    "Register as a customer",
		"Action":   "/customers/new",
		"Creating": true,
		"Form":     customerFormView{},
	})
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req CreateCustomerRequest
	bindErr := c.ShouldBind(&req)

	data := gin.H{
		"Title":    "Register as a customer",
		"Action":   "/customers/new",
		"Creating": true,
		"Form": customerFormView{
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
		},
	}

	if bindErr != nil {
		data["Errors"], data["Error"] = formErrors(bindErr)
		render(c, http.StatusBadRequest, "customer_form.html", data)
		return
	}

	customer, err := h.create.Execute(c.Request.Context(), ucProfile.CreateCustomerInput{
		Username:  req.Username,
		Password:  req.Password1,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		if httperr.BusinessCode(err) == "" {
			renderInternal(c, err)
			return
		}
		data["Errors"], data["Error"] = formErrors(err)
		render(c, http.StatusBadRequest, "customer_form.html", data)
		return
	}

	c.Redirect(http.StatusFound, "/customers/"+strconv.FormatUint(uint64(customer.ID), 10))
}

func (h *CustomerHandler) EditForm(c *gin.Context) {
	profile, ok := h.loadManaged(c)
	if !ok {
		return
	}

	serviceIDs := make([]uint, 0, len(profile.Services))
	for _, s := range profile.Services {
		serviceIDs = append(serviceIDs, s.ID)
	}
	masterIDs := make([]uint, 0, len(profile.Masters))
	for _, m := range profile.Masters {
		masterIDs = append(masterIDs, m.ID)
	}

	u := profile.Customer.User
	h.renderEdit(c, http.StatusOK, profile.Customer.ID, gin.H{
		"Form": customerFormView{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email},
	}, serviceIDs, masterIDs)
}

func (h *CustomerHandler) Update(c *gin.Context) {
	profile, ok := h.loadManaged(c)
	if !ok {
		return
	}
	actor, _ := actorFrom(c)
	id := profile.Customer.ID

	var req UpdateCustomerRequest
	bindErr := c.ShouldBind(&req)

	data := gin.H{
		"Form": customerFormView{FirstName: req.FirstName, LastName: req.LastName, Email: req.Email},
	}

	if bindErr != nil {
		data["Errors"], data["Error"] = formErrors(bindErr)
		h.renderEdit(c, http.StatusBadRequest, id, data, req.Services, req.Masters)
		return
	}

	_, err := h.update.Execute(c.Request.Context(), ucProfile.UpdateCustomerInput{
		Actor:      actor,
		CustomerID: id,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		ServiceIDs: req.Services,
		MasterIDs:  req.Masters,
	})
	if err != nil {
		switch httperr.BusinessCode(err) {
		case "":
			renderInternal(c, err)
		case "not_owner":
			renderDenied(c)
		case "customer_not_found":
			renderNotFound(c, "")
		default:
			data["Errors"], data["Error"] = formErrors(err)
			h.renderEdit(c, http.StatusBadRequest, id, data, req.Services, req.Masters)
		}
		return
	}

	c.Redirect(http.StatusFound, "/customers/"+strconv.FormatUint(uint64(id), 10))
}

func (h *CustomerHandler) DeleteConfirm(c *gin.Context) {
	profile, ok := h.loadManaged(c)
	if !ok {
		return
	}
	id := strconv.FormatUint(uint64(profile.Customer.ID), 10)
	render(c, http.StatusOK, "confirm_delete.html", gin.H{
		"Title":  "Delete customer",
		"Object": profile.Customer.User.Username,
		"Action": "/customers/" + id + "/delete",
		"Cancel": "/customers/" + id,
	})
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	profile, ok := h.load(c)
	if !ok {
		return
	}
	actor, _ := actorFrom(c)

	if err := h.remove.Execute(c.Request.Context(), actor, profile.Customer.ID); err != nil {
		switch {
		case httperr.IsBusiness(err, "not_owner"):
			renderDenied(c)
		case httperr.IsBusiness(err, "customer_not_found"):
			renderNotFound(c, "")
		default:
			renderInternal(c, err)
		}
		return
	}

	if profile.Customer.UserID == actor.UserID {
		clearSession(c)
	}
	c.Redirect(http.StatusFound, "/customers")
}

// --------- Helpers ---------

func (h *CustomerHandler) load(c *gin.Context) (*ucProfile.CustomerProfile, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		renderNotFound(c, "")
		return nil, false
	}

	profile, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		if httperr.IsBusiness(err, "customer_not_found") {
			renderNotFound(c, "No customer found matching the query.")
			return nil, false
		}
		renderInternal(c, err)
		return nil, false
	}
	return profile, true
}

func (h *CustomerHandler) loadManaged(c *gin.Context) (*ucProfile.CustomerProfile, bool) {
	profile, ok := h.load(c)
	if !ok {
		return nil, false
	}
	actor, _ := actorFrom(c)
	if err := domainProfile.CanManage(actor, profile.Customer.UserID); err != nil {
		renderDenied(c)
		return nil, false
	}
	return profile, true
}

func (h *CustomerHandler) renderEdit(
	c *gin.Context,
	status int,
	customerID uint,
	data gin.H,
	serviceIDs []uint,
	masterIDs []uint,
) {
	ctx := c.Request.Context()

	services, err := h.catalogue.ListServices(ctx, "")
	if err != nil {
		renderInternal(c, err)
		return
	}
	masters, err := h.catalogue.AllMasters(ctx)
	if err != nil {
		renderInternal(c, err)
		return
	}

	selectedServices := make(map[uint]bool, len(serviceIDs))
	for _, id := range serviceIDs {
		selectedServices[id] = true
	}
	selectedMasters := make(map[uint]bool, len(masterIDs))
	for _, id := range masterIDs {
		selectedMasters[id] = true
	}

	data["Title"] = "Edit profile"
	data["Action"] = "/customers/" + strconv.FormatUint(uint64(customerID), 10) + "/update"
	data["Creating"] = false
	data["Services"] = services
	data["Masters"] = masters
	data["SelectedServices"] = selectedServices
	data["SelectedMasters"] = selectedMasters

	render(c, status, "customer_form.html", data)
}

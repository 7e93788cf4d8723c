package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/nail-scheduler/internal/dto"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/nail-scheduler/internal/middleware"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
	ucEvent "github.com/BruksfildServices01/nail-scheduler/internal/usecase/event"
	"github.com/BruksfildServices01/nail-scheduler/internal/web"
)

// ======================================================
// HANDLER
// ======================================================

type EventHandler struct {
	createUC *ucEvent.CreateEvent
	updateUC *ucEvent.UpdateEvent
	removeUC *ucEvent.RemoveEvent
	getUC    *ucEvent.GetOwnedEvent
	listUC   *ucEvent.ListEvents

	timezone string
}

func NewEventHandler(
	createUC *ucEvent.CreateEvent,
	updateUC *ucEvent.UpdateEvent,
	removeUC *ucEvent.RemoveEvent,
	getUC *ucEvent.GetOwnedEvent,
	listUC *ucEvent.ListEvents,
	tz string,
) *EventHandler {
	return &EventHandler{
		createUC: createUC,
		updateUC: updateUC,
		removeUC: removeUC,
		getUC:    getUC,
		listUC:   listUC,
		timezone: tz,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type EventRequest struct {
	Title string `form:"title" json:"title" binding:"required,max=255"`
	Start string `form:"start" json:"start" binding:"required"`
	End   string `form:"end" json:"end" binding:"required"`
}

// ======================================================
// LIST
// ======================================================

// List is the calendar feed: every event, or one master's when master_id
// is given.
func (h *EventHandler) List(c *gin.Context) {
	var masterID uint
	if raw := c.Query("master_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_master_id", "master_id must be a number.")
			return
		}
		masterID = uint(id)
	}

	events, err := h.listUC.Execute(c.Request.Context(), masterID)
	if err != nil {
		writeJSONError(c, err)
		return
	}
	httpresp.OK(c, events)
}

// ======================================================
// CREATE
// ======================================================

func (h *EventHandler) Create(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)

	var req EventRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, bindError{err}, req, "/events", "New event")
		return
	}

	ev, err := h.createUC.Execute(c.Request.Context(), ucEvent.CreateEventInput{
		UserID: userID,
		Title:  req.Title,
		Start:  req.Start,
		End:    req.End,
	})
	if err != nil {
		h.fail(c, err, req, "/events", "New event")
		return
	}

	if wantsJSON(c) {
		httpresp.Created(c, dto.NewEventDTO(*ev, h.timezone))
		return
	}
	c.Redirect(http.StatusSeeOther, masterPath(ev.MasterID))
}

// ======================================================
// UPDATE
// ======================================================

func (h *EventHandler) EditForm(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)
	id, ok := parseID(c, "id")
	if !ok {
		renderNotFound(c, "")
		return
	}

	ev, err := h.getUC.Execute(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, err, EventRequest{}, "", "")
		return
	}

	render(c, http.StatusOK, "event_form.html", gin.H{
		"Title":  "Edit event",
		"Action": eventPath(ev.ID) + "/update",
		"Form":   h.formView(ev),
	})
}

func (h *EventHandler) Update(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)
	id, ok := parseID(c, "id")
	if !ok {
		renderNotFound(c, "")
		return
	}
	action := eventPath(id) + "/update"

	var req EventRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, bindError{err}, req, action, "Edit event")
		return
	}

	ev, err := h.updateUC.Execute(c.Request.Context(), ucEvent.UpdateEventInput{
		UserID:  userID,
		EventID: id,
		Title:   req.Title,
		Start:   req.Start,
		End:     req.End,
	})
	if err != nil {
		h.fail(c, err, req, action, "Edit event")
		return
	}

	if wantsJSON(c) {
		httpresp.OK(c, dto.NewEventDTO(*ev, h.timezone))
		return
	}
	c.Redirect(http.StatusSeeOther, masterPath(ev.MasterID))
}

// ======================================================
// DELETE
// ======================================================

func (h *EventHandler) Delete(c *gin.Context) {
	userID, _, _ := middleware.CurrentUser(c)
	id, ok := parseID(c, "id")
	if !ok {
		renderNotFound(c, "")
		return
	}

	ev, err := h.removeUC.Execute(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, err, EventRequest{}, "", "")
		return
	}

	if wantsJSON(c) {
		httpresp.OK(c, gin.H{"deleted": ev.ID})
		return
	}
	c.Redirect(http.StatusSeeOther, masterPath(ev.MasterID))
}

// ======================================================
// HELPERS
// ======================================================

// fail answers with JSON for API clients. Browsers get the denial or
// not-found page, or the form again with its errors.
func (h *EventHandler) fail(c *gin.Context, err error, req EventRequest, action, title string) {
	if wantsJSON(c) {
		if isBindError(err) {
			httperr.BadRequest(c, "invalid_request", "Invalid data.")
			return
		}
		writeJSONError(c, err)
		return
	}

	switch httperr.BusinessCode(err) {
	case "not_owner", "not_master":
		renderDenied(c)
		return
	case "event_not_found":
		renderNotFound(c, "No event found matching the query.")
		return
	case "":
		if !isBindError(err) {
			renderInternal(c, err)
			return
		}
	}

	errs, msg := formErrors(err)
	render(c, http.StatusBadRequest, "event_form.html", gin.H{
		"Title":  title,
		"Action": action,
		"Form":   eventFormView{Title: req.Title, Start: req.Start, End: req.End},
		"Errors": errs,
		"Error":  msg,
	})
}

type eventFormView struct {
	Title string
	Start string
	End   string
}

func (h *EventHandler) formView(ev *models.Event) eventFormView {
	return eventFormView{
		Title: ev.Title,
		Start: web.InputTime(ev.StartAt, h.timezone),
		End:   web.InputTime(ev.EndAt, h.timezone),
	}
}

func masterPath(id uint) string {
	return "/masters/" + strconv.FormatUint(uint64(id), 10)
}

func eventPath(id uint) string {
	return "/events/" + strconv.FormatUint(uint64(id), 10)
}

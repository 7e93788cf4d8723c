package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainProfile "github.com/BruksfildServices01/nail-scheduler/internal/domain/profile"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

type MeHandler struct {
	profiles domainProfile.Repository
}

func NewMeHandler(profiles domainProfile.Repository) *MeHandler {
	return &MeHandler{profiles: profiles}
}

// GetMe sends the user to their own profile page. Users without a profile
// (admins) land on the dashboard.
func (h *MeHandler) GetMe(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.Redirect(http.StatusFound, "/accounts/login?next=/me")
		return
	}
	ctx := c.Request.Context()

	switch actor.Role {
	case models.RoleMaster:
		master, err := h.profiles.GetMasterByUserID(ctx, actor.UserID)
		if err == nil {
			c.Redirect(http.StatusFound, masterPath(master.ID))
			return
		}
		if !httperr.IsNotFound(err) {
			renderInternal(c, err)
			return
		}
	case models.RoleCustomer:
		customer, err := h.profiles.GetCustomerByUserID(ctx, actor.UserID)
		if err == nil {
			c.Redirect(http.StatusFound, "/customers/"+strconv.FormatUint(uint64(customer.ID), 10))
			return
		}
		if !httperr.IsNotFound(err) {
			renderInternal(c, err)
			return
		}
	}

	c.Redirect(http.StatusFound, "/")
}

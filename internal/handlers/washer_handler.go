package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/httpresp"
	ucAccount "github.com/Horridhunk/carmannagement/internal/usecase/account"
	ucOrder "github.com/Horridhunk/carmannagement/internal/usecase/order"
)

type WasherHandler struct {
	create         *ucAccount.CreateWasher
	manage         *ucAccount.ManageClients
	toggle         *ucOrder.ToggleAvailability
	setStatus      *ucOrder.SetWasherStatus
	remove         *ucOrder.DeleteWasher
	changePassword *ucAccount.ChangeWasherPassword
}

func NewWasherHandler(
	create *ucAccount.CreateWasher,
	manage *ucAccount.ManageClients,
	toggle *ucOrder.ToggleAvailability,
	setStatus *ucOrder.SetWasherStatus,
	remove *ucOrder.DeleteWasher,
	changePassword *ucAccount.ChangeWasherPassword,
) *WasherHandler {
	return &WasherHandler{
		create:         create,
		manage:         manage,
		toggle:         toggle,
		setStatus:      setStatus,
		remove:         remove,
		changePassword: changePassword,
	}
}

type AddWasherRequest struct {
	RegisterWasherRequest
	Status      string `json:"status"`
	Unavailable bool   `json:"unavailable"`
}

type SetWasherStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ======================================================
// WASHER SELF-SERVICE
// ======================================================

// ToggleSelf flips the calling washer's availability.
func (h *WasherHandler) ToggleSelf(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	h.respondChange(c, func() (*ucOrder.WasherChange, error) {
		return h.toggle.Execute(c.Request.Context(), p, p.ID)
	})
}

func (h *WasherHandler) ChangePassword(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.changePassword.Execute(c.Request.Context(), p, req.CurrentPassword, req.Password, req.ConfirmPassword); err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed."})
}

// ======================================================
// ADMIN
// ======================================================

func (h *WasherHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	washers, err := h.manage.ListWashers(c.Request.Context(), p)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, washers)
}

func (h *WasherHandler) Add(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req AddWasherRequest
	if !bindJSON(c, &req) {
		return
	}

	w, err := h.create.Execute(c.Request.Context(), p, ucAccount.WasherInput{
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		HourlyRate:      req.HourlyRate,
		Status:          req.Status,
		Unavailable:     req.Unavailable,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, w)
}

func (h *WasherHandler) Toggle(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	h.respondChange(c, func() (*ucOrder.WasherChange, error) {
		return h.toggle.Execute(c.Request.Context(), p, id)
	})
}

func (h *WasherHandler) SetStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req SetWasherStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	h.respondChange(c, func() (*ucOrder.WasherChange, error) {
		return h.setStatus.Execute(c.Request.Context(), p, id, req.Status)
	})
}

func (h *WasherHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	requeued, err := h.remove.Execute(c.Request.Context(), p, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requeued": requeued})
}

func (h *WasherHandler) respondChange(c *gin.Context, fn func() (*ucOrder.WasherChange, error)) {
	change, err := fn()
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"washer":   change.Washer,
		"assigned": change.Assigned,
		"message":  assignedMessage("Washer updated.", change.Assigned),
	})
}

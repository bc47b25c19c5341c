package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/httpresp"
	ucOrder "github.com/Horridhunk/carmannagement/internal/usecase/order"
)

// ======================================================
// HANDLER
// ======================================================

type OrderHandler struct {
	book       *ucOrder.BookWash
	cancel     *ucOrder.CancelOrder
	assign     *ucOrder.AssignWasher
	start      *ucOrder.StartWash
	complete   *ucOrder.CompleteWash
	autoAssign *ucOrder.AutoAssign
	queries    *ucOrder.Queries
}

func NewOrderHandler(
	book *ucOrder.BookWash,
	cancel *ucOrder.CancelOrder,
	assign *ucOrder.AssignWasher,
	start *ucOrder.StartWash,
	complete *ucOrder.CompleteWash,
	autoAssign *ucOrder.AutoAssign,
	queries *ucOrder.Queries,
) *OrderHandler {
	return &OrderHandler{
		book:       book,
		cancel:     cancel,
		assign:     assign,
		start:      start,
		complete:   complete,
		autoAssign: autoAssign,
		queries:    queries,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type BookWashRequest struct {
	VehicleID uint   `json:"vehicle_id" binding:"required"`
	WashType  string `json:"wash_type" binding:"required"`
	Notes     string `json:"notes"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type AssignWasherRequest struct {
	WasherID uint `json:"washer_id" binding:"required"`
}

// ======================================================
// CLIENT
// ======================================================

func (h *OrderHandler) Book(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req BookWashRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.book.Execute(c.Request.Context(), p, ucOrder.BookWashInput{
		VehicleID: req.VehicleID,
		WashType:  req.WashType,
		Notes:     req.Notes,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	msg := "Wash booked. You are in the queue and will be assigned the next free washer."
	if o.WasherID != nil {
		msg = "Wash booked and assigned to a washer."
	}
	c.JSON(http.StatusCreated, gin.H{
		"order":    o,
		"assigned": o.WasherID != nil,
		"message":  msg,
	})
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	orders, err := h.queries.ClientOrders(c.Request.Context(), p)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, orders)
}

func (h *OrderHandler) Detail(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.queries.Detail(c.Request.Context(), p, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, detail)
}

// Cancel serves both the client and the admin route; the principal decides
// which rules apply.
func (h *OrderHandler) Cancel(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req CancelRequest
	// body is optional
	_ = c.ShouldBindJSON(&req)

	o, backfilled, err := h.cancel.Execute(c.Request.Context(), p, id, req.Reason)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":      o,
		"backfilled": len(backfilled),
		"message":    assignedMessage("Order cancelled.", len(backfilled)),
	})
}

// ======================================================
// WASHER
// ======================================================

func (h *OrderHandler) WasherCurrent(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	orders, err := h.queries.WasherCurrent(c.Request.Context(), p)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, orders)
}

func (h *OrderHandler) WasherCompleted(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	orders, err := h.queries.WasherCompleted(c.Request.Context(), p)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, orders)
}

func (h *OrderHandler) Start(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	o, err := h.start.Execute(c.Request.Context(), p, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, o)
}

func (h *OrderHandler) Complete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	o, backfilled, err := h.complete.Execute(c.Request.Context(), p, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":      o,
		"backfilled": len(backfilled),
	})
}

// ======================================================
// ADMIN
// ======================================================

func (h *OrderHandler) AdminList(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	orders, err := h.queries.AdminOrders(c.Request.Context(), p, c.Query("status"), c.Query("period"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, orders)
}

func (h *OrderHandler) Assign(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req AssignWasherRequest
	if !bindJSON(c, &req) {
		return
	}

	o, err := h.assign.Execute(c.Request.Context(), p, id, req.WasherID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, o)
}

func (h *OrderHandler) AutoAssign(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	n, err := h.autoAssign.Execute(c.Request.Context(), p)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	msg := "No pending orders could be assigned."
	if n > 0 {
		msg = assignedMessage("Auto-assignment complete.", n)
	}
	c.JSON(http.StatusOK, gin.H{"assigned": n, "message": msg})
}

func assignedMessage(prefix string, n int) string {
	switch n {
	case 0:
		return prefix
	case 1:
		return prefix + " 1 waiting order was assigned."
	}
	return fmt.Sprintf("%s %d waiting orders were assigned.", prefix, n)
}

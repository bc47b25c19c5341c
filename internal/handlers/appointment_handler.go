package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Horridhunk/carmannagement/internal/config"
	apdomain "github.com/Horridhunk/carmannagement/internal/domain/appointment"
	"github.com/Horridhunk/carmannagement/internal/dto"
	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/httpresp"
	"github.com/Horridhunk/carmannagement/internal/timezone"
	ucAppointment "github.com/Horridhunk/carmannagement/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	schedule    *ucAppointment.Schedule
	cancel      *ucAppointment.CancelAppointment
	reschedule  *ucAppointment.Reschedule
	createOrder *ucAppointment.CreateWashOrder
	slots       *ucAppointment.ListAvailableSlots
	list        *ucAppointment.ListAppointments
	seed        *ucAppointment.SeedTimeSlots

	seeding config.SlotSeeding
	loc     *time.Location
	clock   timezone.Clock
}

func NewAppointmentHandler(
	schedule *ucAppointment.Schedule,
	cancel *ucAppointment.CancelAppointment,
	reschedule *ucAppointment.Reschedule,
	createOrder *ucAppointment.CreateWashOrder,
	slots *ucAppointment.ListAvailableSlots,
	list *ucAppointment.ListAppointments,
	seed *ucAppointment.SeedTimeSlots,
	seeding config.SlotSeeding,
	loc *time.Location,
	clock timezone.Clock,
) *AppointmentHandler {
	if clock == nil {
		clock = timezone.System
	}
	return &AppointmentHandler{
		schedule:    schedule,
		cancel:      cancel,
		reschedule:  reschedule,
		createOrder: createOrder,
		slots:       slots,
		list:        list,
		seed:        seed,
		seeding:     seeding,
		loc:         loc,
		clock:       clock,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type ScheduleRequest struct {
	VehicleID           uint   `json:"vehicle_id" binding:"required"`
	TimeSlotID          uint   `json:"time_slot_id" binding:"required"`
	WashType            string `json:"wash_type" binding:"required"`
	SpecialInstructions string `json:"special_instructions"`
}

type RescheduleRequest struct {
	TimeSlotID uint `json:"time_slot_id" binding:"required"`
}

// SeedSlotsRequest overrides the configured seeding defaults field by field.
type SeedSlotsRequest struct {
	From            string `json:"from"`
	Days            int    `json:"days"`
	Open            string `json:"open"`
	Close           string `json:"close"`
	IntervalMinutes int    `json:"interval_minutes"`
	Capacity        int    `json:"capacity"`
}

// ======================================================
// CLIENT
// ======================================================

func (h *AppointmentHandler) Schedule(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req ScheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.schedule.Execute(c.Request.Context(), p, ucAppointment.ScheduleInput{
		VehicleID:           req.VehicleID,
		TimeSlotID:          req.TimeSlotID,
		WashType:            req.WashType,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, ap)
}

// List returns upcoming appointments unless ?all=true is passed.
func (h *AppointmentHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	aps, err := h.list.Execute(c.Request.Context(), p, c.Query("all") != "true")
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, dto.FromAppointments(aps))
}

func (h *AppointmentHandler) AvailableSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "date_required", "Query parameter date (YYYY-MM-DD) is required.")
		return
	}

	slots, err := h.slots.Execute(c.Request.Context(), date)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, slots)
}

// Cancel serves clients and admins alike.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req CancelRequest
	_ = c.ShouldBindJSON(&req)

	ap, err := h.cancel.Execute(c.Request.Context(), p, id, req.Reason)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, dto.FromAppointment(ap))
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req RescheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.reschedule.Execute(c.Request.Context(), p, id, req.TimeSlotID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) CreateOrder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	o, created, err := h.createOrder.Execute(c.Request.Context(), p, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"order": o, "created": created})
}

// ======================================================
// ADMIN
// ======================================================

func (h *AppointmentHandler) SeedSlots(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req SeedSlotsRequest
	_ = c.ShouldBindJSON(&req)

	plan, err := SeedPlanFrom(h.seeding, req, h.clock(), h.loc)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	res, err := h.seed.Execute(c.Request.Context(), p, plan)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, res)
}

// SeedPlanFrom overlays req on the configured defaults. From defaults to
// today in loc.
func SeedPlanFrom(def config.SlotSeeding, req SeedSlotsRequest, now time.Time, loc *time.Location) (apdomain.SeedPlan, error) {
	plan := apdomain.SeedPlan{
		From:            now.In(loc),
		Days:            def.Days,
		Open:            def.Open,
		Close:           def.Close,
		IntervalMinutes: def.IntervalMinutes,
		Capacity:        def.Capacity,
	}

	if req.From != "" {
		from, err := time.ParseInLocation(apdomain.DateLayout, req.From, loc)
		if err != nil {
			return plan, httperr.ErrValidation("invalid_date", "Invalid date format. Use YYYY-MM-DD.")
		}
		plan.From = from
	}
	if req.Days != 0 {
		plan.Days = req.Days
	}
	if req.Open != "" {
		plan.Open = req.Open
	}
	if req.Close != "" {
		plan.Close = req.Close
	}
	if req.IntervalMinutes != 0 {
		plan.IntervalMinutes = req.IntervalMinutes
	}
	if req.Capacity != 0 {
		plan.Capacity = req.Capacity
	}

	return plan, nil
}

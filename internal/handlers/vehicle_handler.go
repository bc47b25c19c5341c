package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Horridhunk/carmannagement/internal/httperr"
	"github.com/Horridhunk/carmannagement/internal/httpresp"
	ucVehicle "github.com/Horridhunk/carmannagement/internal/usecase/vehicle"
)

type VehicleHandler struct {
	vehicles *ucVehicle.Service
}

func NewVehicleHandler(vehicles *ucVehicle.Service) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles}
}

type AddVehicleRequest struct {
	Make         string `json:"make" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Year         *int   `json:"year"`
	Color        string `json:"color"`
	LicensePlate string `json:"license_plate" binding:"required"`
	VehicleType  string `json:"vehicle_type" binding:"required"`
}

func (h *VehicleHandler) Add(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req AddVehicleRequest
	if !bindJSON(c, &req) {
		return
	}

	v, err := h.vehicles.Add(c.Request.Context(), p, ucVehicle.Input{
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		Color:        req.Color,
		LicensePlate: req.LicensePlate,
		VehicleType:  req.VehicleType,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, v)
}

func (h *VehicleHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	vehicles, err := h.vehicles.List(c.Request.Context(), p)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, vehicles)
}

func (h *VehicleHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.vehicles.Delete(c.Request.Context(), p, id); err != nil {
		httperr.Respond(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

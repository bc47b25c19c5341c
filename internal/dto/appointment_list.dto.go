package dto

import "github.com/Horridhunk/carmannagement/internal/models"

// AppointmentListDTO flattens an appointment with its slot, vehicle and
// derived order for list views.
type AppointmentListDTO struct {
	ID                  uint   `json:"id"`
	Date                string `json:"date"`
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	WashType            string `json:"wash_type"`
	Status              string `json:"status"`
	Vehicle             string `json:"vehicle"`
	LicensePlate        string `json:"license_plate"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
	OrderID             *uint  `json:"order_id"`
	OrderStatus         string `json:"order_status,omitempty"`
	CancellationReason  string `json:"cancellation_reason,omitempty"`
}

func AppointmentStatus(ap *models.Appointment) string {
	switch {
	case ap.IsCancelled:
		return "cancelled"
	case ap.IsConfirmed:
		return "confirmed"
	}
	return "pending"
}

func FromAppointment(ap *models.Appointment) AppointmentListDTO {
	out := AppointmentListDTO{
		ID:                  ap.ID,
		WashType:            ap.WashType,
		Status:              AppointmentStatus(ap),
		SpecialInstructions: ap.SpecialInstructions,
		OrderID:             ap.WashOrderID,
		CancellationReason:  ap.CancellationReason,
	}
	if ap.TimeSlot != nil {
		out.Date = ap.TimeSlot.Date
		out.StartTime = ap.TimeSlot.StartTime
		out.EndTime = ap.TimeSlot.EndTime
	}
	if ap.Vehicle != nil {
		out.Vehicle = ap.Vehicle.Make + " " + ap.Vehicle.Model
		out.LicensePlate = ap.Vehicle.LicensePlate
	}
	if ap.WashOrder != nil {
		out.OrderStatus = ap.WashOrder.Status
	}
	return out
}

func FromAppointments(aps []models.Appointment) []AppointmentListDTO {
	out := make([]AppointmentListDTO, len(aps))
	for i := range aps {
		out[i] = FromAppointment(&aps[i])
	}
	return out
}

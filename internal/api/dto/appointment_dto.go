package dto

import (
	"time"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// CreateAppointmentRequest payload.
type CreateAppointmentRequest struct {
	DoctorID        string `json:"doctorId"`
	PatientID       string `json:"patientId"`
	AppointmentTime string `json:"appointmentTime"`
}

// SetNoteRequest payload.
type SetNoteRequest struct {
	DoctorNote string `json:"doctorNote"`
}

// AppointmentResponse is the public appointment view.
type AppointmentResponse struct {
	ID          string                   `json:"id"`
	DoctorID    string                   `json:"doctor_id"`
	PatientID   string                   `json:"patient_id"`
	ScheduledAt time.Time                `json:"scheduled_at"`
	Status      domain.AppointmentStatus `json:"status"`
	DoctorNote  *string                  `json:"doctor_note,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

package domain

import "time"

// AppointmentStatus enumerates lifecycle states for appointments.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
)

// Appointment is the aggregate for a booked time slot between one doctor and
// one patient. Two appointments for the same doctor at the same instant may
// never coexist unless one of them is CANCELLED.
type Appointment struct {
	ID          string
	DoctorID    string
	PatientID   string
	ScheduledAt time.Time
	Status      AppointmentStatus
	DoctorNote  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

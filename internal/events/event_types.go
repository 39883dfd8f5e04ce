package events

import (
	"time"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAppointmentCreated       EventType = "appointment_created"
	EventAppointmentStatusChanged EventType = "appointment_status_changed"
	EventAppointmentNoteSet       EventType = "appointment_note_set"
	EventAppointmentDeleted       EventType = "appointment_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role   domain.Role `json:"role"`
	UserID *string     `json:"user_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	AppointmentID string      `json:"appointment_id"`
	Actor         Actor       `json:"actor"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// AppointmentCreatedPayload payload.
type AppointmentCreatedPayload struct {
	DoctorID    string    `json:"doctor_id"`
	PatientID   string    `json:"patient_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// AppointmentStatusChangedPayload payload.
type AppointmentStatusChangedPayload struct {
	OldStatus domain.AppointmentStatus `json:"old_status"`
	NewStatus domain.AppointmentStatus `json:"new_status"`
}

// AppointmentNoteSetPayload payload.
type AppointmentNoteSetPayload struct {
	NotePreview string `json:"note_preview"`
}

// AppointmentDeletedPayload payload.
type AppointmentDeletedPayload struct {
	DoctorID  string `json:"doctor_id"`
	PatientID string `json:"patient_id"`
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/events"
	"github.com/spec-kit/clinic-service/internal/repository"
	apperrors "github.com/spec-kit/clinic-service/pkg/util"
)

// SchedulerService owns the appointment lifecycle and the double-booking
// guarantee.
type SchedulerService struct {
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	dispatcher   events.Dispatcher
	now          func() time.Time
}

// SchedulerDependencies bundles repositories for the scheduler.
type SchedulerDependencies struct {
	AppointmentRepo repository.AppointmentRepository
	DoctorRepo      repository.DoctorRepository
	PatientRepo     repository.PatientRepository
	Dispatcher      events.Dispatcher
}

// NewSchedulerService constructs the service.
func NewSchedulerService(deps SchedulerDependencies) *SchedulerService {
	return &SchedulerService{
		appointments: deps.AppointmentRepo,
		doctors:      deps.DoctorRepo,
		patients:     deps.PatientRepo,
		dispatcher:   deps.Dispatcher,
		now:          time.Now,
	}
}

// CreateAppointment books a PENDING slot for a patient with a doctor. The slot
// conflicts when any non-cancelled appointment for the doctor sits at exactly
// the same instant; durations are not modeled.
func (s *SchedulerService) CreateAppointment(ctx context.Context, doctorID, patientID string, scheduledAt time.Time) (*domain.Appointment, error) {
	doctor, err := s.doctors.GetByUserID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("doctor", map[string]any{"id": doctorID})
		}
		return nil, err
	}
	if _, err := s.patients.GetByUserID(ctx, patientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("patient", map[string]any{"id": patientID})
		}
		return nil, err
	}

	if scheduledAt.Before(s.now()) {
		return nil, apperrors.NewValidationError("appointment time is in the past", map[string]any{"scheduled_at": scheduledAt})
	}
	if !doctor.Profile.Availability {
		return nil, apperrors.NewUnavailable("doctor is not taking appointments", map[string]any{"doctor_id": doctorID})
	}

	taken, err := s.appointments.ExistsActiveAt(ctx, doctorID, scheduledAt)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflict("doctor already has an appointment at this time", map[string]any{
			"doctor_id":    doctorID,
			"scheduled_at": scheduledAt,
		})
	}

	appointment := &domain.Appointment{
		DoctorID:    doctorID,
		PatientID:   patientID,
		ScheduledAt: scheduledAt,
		Status:      domain.AppointmentStatusPending,
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		// the partial unique index closes the check-then-insert race
		if de := apperrors.ToDomainError(err); de.Code == "CONFLICT" {
			return nil, de
		}
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:          events.EventAppointmentCreated,
		AppointmentID: appointment.ID,
		Actor:         patientActor(patientID),
		Payload: events.AppointmentCreatedPayload{
			DoctorID:    doctorID,
			PatientID:   patientID,
			ScheduledAt: scheduledAt,
		},
	})
	return appointment, nil
}

// GetAppointmentsByDoctor returns every appointment referencing the doctor,
// in no particular order.
func (s *SchedulerService) GetAppointmentsByDoctor(ctx context.Context, doctorID string) ([]domain.Appointment, error) {
	if _, err := s.doctors.GetByUserID(ctx, doctorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("doctor", map[string]any{"id": doctorID})
		}
		return nil, err
	}
	return s.appointments.ListByDoctor(ctx, doctorID)
}

// GetAppointmentsByPatient returns every appointment referencing the patient.
func (s *SchedulerService) GetAppointmentsByPatient(ctx context.Context, patientID string) ([]domain.Appointment, error) {
	if _, err := s.patients.GetByUserID(ctx, patientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("patient", map[string]any{"id": patientID})
		}
		return nil, err
	}
	return s.appointments.ListByPatient(ctx, patientID)
}

// ApproveAppointment transitions PENDING to CONFIRMED. An appointment may be
// approved or rejected exactly once.
func (s *SchedulerService) ApproveAppointment(ctx context.Context, id string) (*domain.Appointment, error) {
	return s.transition(ctx, id, domain.AppointmentStatusConfirmed)
}

// RejectAppointment transitions PENDING to CANCELLED.
func (s *SchedulerService) RejectAppointment(ctx context.Context, id string) (*domain.Appointment, error) {
	return s.transition(ctx, id, domain.AppointmentStatusCancelled)
}

func (s *SchedulerService) transition(ctx context.Context, id string, next domain.AppointmentStatus) (*domain.Appointment, error) {
	appointment, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status != domain.AppointmentStatusPending {
		return nil, apperrors.NewInvalidState("appointment has already been processed", map[string]any{
			"id":     id,
			"status": appointment.Status,
		})
	}

	oldStatus := appointment.Status
	appointment.Status = next
	if err := s.appointments.Update(ctx, appointment); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:          events.EventAppointmentStatusChanged,
		AppointmentID: appointment.ID,
		Actor:         doctorActor(appointment.DoctorID),
		Payload: events.AppointmentStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: next,
		},
	})
	return appointment, nil
}

// CancelAppointment soft-cancels from any live state. Rows are never removed
// by cancellation; the hard delete below exists for administrative cleanup.
func (s *SchedulerService) CancelAppointment(ctx context.Context, id string) (*domain.Appointment, error) {
	appointment, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status == domain.AppointmentStatusCancelled {
		return nil, apperrors.NewInvalidState("appointment is already cancelled", map[string]any{"id": id})
	}

	oldStatus := appointment.Status
	appointment.Status = domain.AppointmentStatusCancelled
	if err := s.appointments.Update(ctx, appointment); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:          events.EventAppointmentStatusChanged,
		AppointmentID: appointment.ID,
		Actor:         patientActor(appointment.PatientID),
		Payload: events.AppointmentStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: domain.AppointmentStatusCancelled,
		},
	})
	return appointment, nil
}

// DeleteAppointment hard-deletes the row regardless of status.
func (s *SchedulerService) DeleteAppointment(ctx context.Context, id string) error {
	appointment, err := s.getAppointment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("appointment", map[string]any{"id": id})
		}
		return err
	}

	s.publishEvent(ctx, events.Event{
		Type:          events.EventAppointmentDeleted,
		AppointmentID: id,
		Actor:         doctorActor(appointment.DoctorID),
		Payload: events.AppointmentDeletedPayload{
			DoctorID:  appointment.DoctorID,
			PatientID: appointment.PatientID,
		},
	})
	return nil
}

// SetNote overwrites the doctor note unconditionally, any status.
func (s *SchedulerService) SetNote(ctx context.Context, id, note string) (*domain.Appointment, error) {
	appointment, err := s.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	appointment.DoctorNote = &note
	if err := s.appointments.Update(ctx, appointment); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:          events.EventAppointmentNoteSet,
		AppointmentID: appointment.ID,
		Actor:         doctorActor(appointment.DoctorID),
		Payload: events.AppointmentNoteSetPayload{
			NotePreview: stringPreview(note, 120),
		},
	})
	return appointment, nil
}

func (s *SchedulerService) getAppointment(ctx context.Context, id string) (*domain.Appointment, error) {
	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("appointment", map[string]any{"id": id})
		}
		return nil, err
	}
	return appointment, nil
}

func (s *SchedulerService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func patientActor(patientID string) events.Actor {
	return events.Actor{Role: domain.RolePatient, UserID: &patientID}
}

func doctorActor(doctorID string) events.Actor {
	return events.Actor{Role: domain.RoleDoctor, UserID: &doctorID}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}

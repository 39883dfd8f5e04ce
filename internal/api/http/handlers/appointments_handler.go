package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-service/internal/api/dto"
	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/service"
	apperrors "github.com/spec-kit/clinic-service/pkg/util"
)

// AppointmentsHandler exposes the scheduler over HTTP.
type AppointmentsHandler struct {
	scheduler *service.SchedulerService
}

// NewAppointmentsHandler constructs handler.
func NewAppointmentsHandler(scheduler *service.SchedulerService) *AppointmentsHandler {
	return &AppointmentsHandler{scheduler: scheduler}
}

// Create handles POST /appointment/create.
func (h *AppointmentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.DoctorID == "" || req.PatientID == "" || req.AppointmentTime == "" {
		return apperrors.NewValidationError("doctorId, patientId, appointmentTime required", nil)
	}
	scheduledAt, err := time.Parse(time.RFC3339, req.AppointmentTime)
	if err != nil {
		return apperrors.NewValidationError("appointmentTime must be RFC3339", map[string]any{"appointmentTime": req.AppointmentTime})
	}

	appointment, err := h.scheduler.CreateAppointment(c.Context(), req.DoctorID, req.PatientID, scheduledAt)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": appointmentResponse(appointment)})
}

// ListByDoctor handles GET /appointment/doctor/:id.
func (h *AppointmentsHandler) ListByDoctor(c *fiber.Ctx) error {
	appointments, err := h.scheduler.GetAppointmentsByDoctor(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponses(appointments)})
}

// ListByPatient handles GET /appointment/patient/:id.
func (h *AppointmentsHandler) ListByPatient(c *fiber.Ctx) error {
	appointments, err := h.scheduler.GetAppointmentsByPatient(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponses(appointments)})
}

// Approve handles POST /appointment/approve/:id.
func (h *AppointmentsHandler) Approve(c *fiber.Ctx) error {
	appointment, err := h.scheduler.ApproveAppointment(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appointment)})
}

// Reject handles POST /appointment/reject/:id.
func (h *AppointmentsHandler) Reject(c *fiber.Ctx) error {
	appointment, err := h.scheduler.RejectAppointment(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appointment)})
}

// Cancel handles DELETE /appointment/cancel/:id. Soft cancel: the row stays.
func (h *AppointmentsHandler) Cancel(c *fiber.Ctx) error {
	appointment, err := h.scheduler.CancelAppointment(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appointment)})
}

// Delete handles DELETE /appointment/delete/:id, the administrative hard
// delete.
func (h *AppointmentsHandler) Delete(c *fiber.Ctx) error {
	if err := h.scheduler.DeleteAppointment(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// SetNote handles POST /appointment/setNote/:id.
func (h *AppointmentsHandler) SetNote(c *fiber.Ctx) error {
	var req dto.SetNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	appointment, err := h.scheduler.SetNote(c.Context(), c.Params("id"), req.DoctorNote)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appointment)})
}

func appointmentResponse(appointment *domain.Appointment) dto.AppointmentResponse {
	return dto.AppointmentResponse{
		ID:          appointment.ID,
		DoctorID:    appointment.DoctorID,
		PatientID:   appointment.PatientID,
		ScheduledAt: appointment.ScheduledAt,
		Status:      appointment.Status,
		DoctorNote:  appointment.DoctorNote,
		CreatedAt:   appointment.CreatedAt,
		UpdatedAt:   appointment.UpdatedAt,
	}
}

func appointmentResponses(appointments []domain.Appointment) []dto.AppointmentResponse {
	items := make([]dto.AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		items = append(items, appointmentResponse(&appointments[i]))
	}
	return items
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/events"
	apperrors "github.com/spec-kit/clinic-service/pkg/util"
)

type schedulerFixture struct {
	scheduler    *SchedulerService
	appointments *fakeAppointmentRepo
	doctors      *fakeDoctorRepo
	patients     *fakePatientRepo
	dispatcher   *recordingDispatcher
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()
	users := newFakeUserRepo()
	doctors := newFakeDoctorRepo(users)
	patients := newFakePatientRepo(users)
	appointments := newFakeAppointmentRepo()
	dispatcher := &recordingDispatcher{}
	scheduler := NewSchedulerService(SchedulerDependencies{
		AppointmentRepo: appointments,
		DoctorRepo:      doctors,
		PatientRepo:     patients,
		Dispatcher:      dispatcher,
	})
	return &schedulerFixture{
		scheduler:    scheduler,
		appointments: appointments,
		doctors:      doctors,
		patients:     patients,
		dispatcher:   dispatcher,
	}
}

func (f *schedulerFixture) seedDoctor(t *testing.T, available bool) string {
	t.Helper()
	user := &domain.User{Email: "doc@example.com", PasswordHash: "x", Role: domain.RoleDoctor}
	if err := f.doctors.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed doctor user: %v", err)
	}
	profile := &domain.DoctorProfile{
		UserID:       user.ID,
		Name:         "Gregory",
		Surname:      "House",
		BirthDate:    time.Date(1970, 5, 11, 0, 0, 0, 0, time.UTC),
		PhoneNo:      "5550001",
		Specialty:    domain.SpecialtyCardiology,
		Availability: available,
	}
	if err := f.doctors.CreateProfile(context.Background(), profile); err != nil {
		t.Fatalf("seed doctor profile: %v", err)
	}
	return user.ID
}

func (f *schedulerFixture) seedPatient(t *testing.T) string {
	t.Helper()
	user := &domain.User{Email: "pat@example.com", PasswordHash: "x", Role: domain.RolePatient}
	if err := f.patients.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed patient user: %v", err)
	}
	profile := &domain.PatientProfile{
		UserID:    user.ID,
		Name:      "Lisa",
		Surname:   "Cuddy",
		BirthDate: time.Date(1985, 3, 2, 0, 0, 0, 0, time.UTC),
		PhoneNo:   "5550002",
	}
	if err := f.patients.CreateProfile(context.Background(), profile); err != nil {
		t.Fatalf("seed patient profile: %v", err)
	}
	return user.ID
}

func slot(hoursFromNow int) time.Time {
	return time.Now().Add(time.Duration(hoursFromNow) * time.Hour).Truncate(time.Minute)
}

func TestCreateAppointment(t *testing.T) {
	f := newSchedulerFixture(t)
	doctorID := f.seedDoctor(t, true)
	patientID := f.seedPatient(t)
	ctx := context.Background()

	appointment, err := f.scheduler.CreateAppointment(ctx, doctorID, patientID, slot(24))
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	if appointment.ID == "" {
		t.Fatal("expected appointment id to be assigned")
	}
	if appointment.Status != domain.AppointmentStatusPending {
		t.Fatalf("new appointment status = %s, want PENDING", appointment.Status)
	}
	if appointment.DoctorNote != nil {
		t.Fatal("new appointment should carry no note")
	}
	if got := f.dispatcher.byType(events.EventAppointmentCreated); len(got) != 1 {
		t.Fatalf("created events = %d, want 1", len(got))
	}
}

func TestCreateAppointmentDoubleBooking(t *testing.T) {
	f := newSchedulerFixture(t)
	doctorID := f.seedDoctor(t, true)
	patientID := f.seedPatient(t)
	ctx := context.Background()
	at := slot(24)

	if _, err := f.scheduler.CreateAppointment(ctx, doctorID, patientID, at); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := f.scheduler.CreateAppointment(ctx, doctorID, patientID, at)
	if !apperrors.IsCode(err, "CONFLICT") {
		t.Fatalf("second booking at same instant: got %v, want CONFLICT", err)
	}

	// a different instant for the same doctor is fine
	if _, err := f.scheduler.CreateAppointment(ctx, doctorID, patientID, at.Add(time.Hour)); err != nil {
		t.Fatalf("booking at a different instant: %v", err)
	}
}

func TestCreateAppointmentCancelledSlotReusable(t *testing.T) {
	f := newSchedulerFixture(t)
	doctorID := f.seedDoctor(t, true)
	patientID := f.seedPatient(t)
	ctx := context.Background()
	at := slot(24)

	first, err := f.scheduler.CreateAppointment(ctx, doctorID, patientID, at)
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := f.scheduler.CancelAppointment(ctx, first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := f.scheduler.CreateAppointment(ctx, doctorID, patientID, at); err != nil {
		t.Fatalf("rebooking a cancelled slot: %v", err)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := newSchedulerFixture(t)
	doctorID := f.seedDoctor(t, true)
	patientID := f.seedPatient(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		doctorID  string
		patientID string
		at        time.Time
		wantCode  string
	}{
		{"unknown doctor", "missing", patientID, slot(24), "NOT_FOUND"},
		{"unknown patient", doctorID, "missing", slot(24), "NOT_FOUND"},
		{"past time", doctorID, patientID, slot(-1), "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.scheduler.CreateAppointment(ctx, tt.doctorID, tt.patientID, tt.at)
			if !apperrors.IsCode(err, tt.wantCode) {
				t.Fatalf("got %v, want %s", err, tt.wantCode)
			}
		})
	}

	// nothing persisted by the rejected attempts
	if appointments, _ := f.appointments.ListByDoctor(ctx, doctorID); len(appointments) != 0 {
		t.Fatalf("persisted appointments = %d, want 0", len(appointments))
	}
}

func TestCreateAppointmentUnavailableDoctor(t *testing.T) {
	f := newSchedulerFixture(t)
	doctorID := f.seedDoctor(t, false)
	patientID := f.seedPatient(t)

	_, err := f.scheduler.CreateAppointment(context.Background(), doctorID, patientID, slot(24))
	if !apperrors.IsCode(err, "DOCTOR_UNAVAILABLE") {
		t.Fatalf("got %v, want DOCTOR_UNAVAILABLE", err)
	}
}

func TestApproveAppointment(t *testing.T) {
	f := newSchedulerFixture(t)
	doctorID := f.seedDoctor(t, true)
	patientID := f.seedPatient(t)
	ctx := context.Background()

	appointment, err := f.scheduler.CreateAppointment(ctx, doctorID, patientID, slot(24))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	approved, err := f.scheduler.ApproveAppointment(ctx, appointment.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != domain.AppointmentStatusConfirmed {
		t.Fatalf("status = %s, want CONFIRMED", approved.Status)
	}

	// the decision is single-shot
	if _, err := f.scheduler.ApproveAppointment(ctx, appointment.ID); !apperrors.IsCode(err, "INVALID_STATE") {
		t.Fatalf("second approve: got %v, want INVALID_STATE", err)
	}
	if _, err := f.scheduler.RejectAppointment(ctx, appointment.ID); !apperrors.IsCode(err, "INVALID_STATE") {
		t.Fatalf("reject after approve: got %v, want INVALID_STATE", err)
	}
}

func TestRejectAppointment(t *testing.T) {
	f := newSchedulerFixture(t)
	doctorID := f.seedDoctor(t, true)
	patientID := f.seedPatient(t)
	ctx := context.Background()

	appointment, err := f.scheduler.CreateAppointment(ctx, doctorID, patientID, slot(24))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rejected, err := f.scheduler.RejectAppointment(ctx, appointment.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != domain.AppointmentStatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", rejected.Status)
	}
	if got := f.dispatcher.byType(events.EventAppointmentStatusChanged); len(got) != 1 {
		t.Fatalf("status change events = %d, want 1", len(got))
	}
}

func TestCancelAppointment(t *testing.T) {
	f := newSchedulerFixture(t)
	doctorID := f.seedDoctor(t, true)
	patientID := f.seedPatient(t)
	ctx := context.Background()

	appointment, err := f.scheduler.CreateAppointment(ctx, doctorID, patientID, slot(24))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, err := f.scheduler.CancelAppointment(ctx, appointment.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.AppointmentStatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", cancelled.Status)
	}

	// the row survives cancellation
	if _, err := f.appointments.GetByID(ctx, appointment.ID); err != nil {
		t.Fatalf("cancelled appointment should remain stored: %v", err)
	}

	if _, err := f.scheduler.CancelAppointment(ctx, appointment.ID); !apperrors.IsCode(err, "INVALID_STATE") {
		t.Fatalf("second cancel: got %v, want INVALID_STATE", err)
	}
}

func TestCancelConfirmedAppointment(t *testing.T) {
	f := newSchedulerFixture(t)
	doctorID := f.seedDoctor(t, true)
	patientID := f.seedPatient(t)
	ctx := context.Background()

	appointment, err := f.scheduler.CreateAppointment(ctx, doctorID, patientID, slot(24))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.scheduler.ApproveAppointment(ctx, appointment.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	cancelled, err := f.scheduler.CancelAppointment(ctx, appointment.ID)
	if err != nil {
		t.Fatalf("cancel confirmed: %v", err)
	}
	if cancelled.Status != domain.AppointmentStatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", cancelled.Status)
	}
}

func TestDeleteAppointment(t *testing.T) {
	f := newSchedulerFixture(t)
	doctorID := f.seedDoctor(t, true)
	patientID := f.seedPatient(t)
	ctx := context.Background()

	appointment, err := f.scheduler.CreateAppointment(ctx, doctorID, patientID, slot(24))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.scheduler.DeleteAppointment(ctx, appointment.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.appointments.GetByID(ctx, appointment.ID); err == nil {
		t.Fatal("deleted appointment still stored")
	}
	if err := f.scheduler.DeleteAppointment(ctx, appointment.ID); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("second delete: got %v, want NOT_FOUND", err)
	}
}

func TestSetNote(t *testing.T) {
	f := newSchedulerFixture(t)
	doctorID := f.seedDoctor(t, true)
	patientID := f.seedPatient(t)
	ctx := context.Background()

	appointment, err := f.scheduler.CreateAppointment(ctx, doctorID, patientID, slot(24))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	noted, err := f.scheduler.SetNote(ctx, appointment.ID, "bring previous bloodwork")
	if err != nil {
		t.Fatalf("set note: %v", err)
	}
	if noted.DoctorNote == nil || *noted.DoctorNote != "bring previous bloodwork" {
		t.Fatalf("note = %v, want set", noted.DoctorNote)
	}

	// overwrite is unconditional, including on cancelled appointments
	if _, err := f.scheduler.CancelAppointment(ctx, appointment.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	noted, err = f.scheduler.SetNote(ctx, appointment.ID, "no show")
	if err != nil {
		t.Fatalf("set note after cancel: %v", err)
	}
	if *noted.DoctorNote != "no show" {
		t.Fatalf("note = %q, want overwrite", *noted.DoctorNote)
	}

	if _, err := f.scheduler.SetNote(ctx, "missing", "x"); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("note on unknown appointment: got %v, want NOT_FOUND", err)
	}
}

func TestListAppointments(t *testing.T) {
	f := newSchedulerFixture(t)
	doctorID := f.seedDoctor(t, true)
	patientID := f.seedPatient(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if _, err := f.scheduler.CreateAppointment(ctx, doctorID, patientID, slot(24*i)); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	byDoctor, err := f.scheduler.GetAppointmentsByDoctor(ctx, doctorID)
	if err != nil {
		t.Fatalf("list by doctor: %v", err)
	}
	if len(byDoctor) != 3 {
		t.Fatalf("by doctor = %d, want 3", len(byDoctor))
	}

	byPatient, err := f.scheduler.GetAppointmentsByPatient(ctx, patientID)
	if err != nil {
		t.Fatalf("list by patient: %v", err)
	}
	if len(byPatient) != 3 {
		t.Fatalf("by patient = %d, want 3", len(byPatient))
	}

	if _, err := f.scheduler.GetAppointmentsByDoctor(ctx, "missing"); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("list for unknown doctor: got %v, want NOT_FOUND", err)
	}
	if _, err := f.scheduler.GetAppointmentsByPatient(ctx, "missing"); !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("list for unknown patient: got %v, want NOT_FOUND", err)
	}
}

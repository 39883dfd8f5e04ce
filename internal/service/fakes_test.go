package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/events"
)

// In-memory repository fakes. Misses surface as pgx.ErrNoRows, matching the
// postgres implementations.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		result = append(result, *user)
	}
	return result, nil
}

type fakeDoctorRepo struct {
	mu       sync.Mutex
	users    *fakeUserRepo
	profiles map[string]*domain.DoctorProfile
}

func newFakeDoctorRepo(users *fakeUserRepo) *fakeDoctorRepo {
	return &fakeDoctorRepo{users: users, profiles: make(map[string]*domain.DoctorProfile)}
}

func (r *fakeDoctorRepo) CreateProfile(_ context.Context, profile *domain.DoctorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt
	clone := *profile
	r.profiles[profile.UserID] = &clone
	return nil
}

func (r *fakeDoctorRepo) UpdateAvailability(_ context.Context, userID string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	profile.Availability = available
	profile.UpdatedAt = time.Now()
	return nil
}

func (r *fakeDoctorRepo) GetByUserID(ctx context.Context, userID string) (*domain.Doctor, error) {
	r.mu.Lock()
	profile, ok := r.profiles[userID]
	if !ok {
		r.mu.Unlock()
		return nil, pgx.ErrNoRows
	}
	clone := *profile
	r.mu.Unlock()

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.Doctor{User: *user, Profile: clone}, nil
}

func (r *fakeDoctorRepo) List(ctx context.Context) ([]domain.Doctor, error) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	result := make([]domain.Doctor, 0, len(ids))
	for _, id := range ids {
		doctor, err := r.GetByUserID(ctx, id)
		if err != nil {
			continue
		}
		result = append(result, *doctor)
	}
	return result, nil
}

func (r *fakeDoctorRepo) ListBySpecialty(ctx context.Context, specialty domain.Specialty) ([]domain.Doctor, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Doctor, 0, len(all))
	for _, doctor := range all {
		if doctor.Profile.Specialty == specialty {
			result = append(result, doctor)
		}
	}
	return result, nil
}

type fakePatientRepo struct {
	mu       sync.Mutex
	users    *fakeUserRepo
	profiles map[string]*domain.PatientProfile
}

func newFakePatientRepo(users *fakeUserRepo) *fakePatientRepo {
	return &fakePatientRepo{users: users, profiles: make(map[string]*domain.PatientProfile)}
}

func (r *fakePatientRepo) CreateProfile(_ context.Context, profile *domain.PatientProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt
	clone := *profile
	r.profiles[profile.UserID] = &clone
	return nil
}

func (r *fakePatientRepo) GetByUserID(ctx context.Context, userID string) (*domain.Patient, error) {
	r.mu.Lock()
	profile, ok := r.profiles[userID]
	if !ok {
		r.mu.Unlock()
		return nil, pgx.ErrNoRows
	}
	clone := *profile
	r.mu.Unlock()

	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.Patient{User: *user, Profile: clone}, nil
}

func (r *fakePatientRepo) List(ctx context.Context) ([]domain.Patient, error) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	result := make([]domain.Patient, 0, len(ids))
	for _, id := range ids {
		patient, err := r.GetByUserID(ctx, id)
		if err != nil {
			continue
		}
		result = append(result, *patient)
	}
	return result, nil
}

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[string]*domain.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[string]*domain.Appointment)}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, appointment *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment.ID = uuid.NewString()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt
	clone := *appointment
	r.appointments[appointment.ID] = &clone
	return nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, appointment *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[appointment.ID]; !ok {
		return pgx.ErrNoRows
	}
	appointment.UpdatedAt = time.Now()
	clone := *appointment
	r.appointments[appointment.ID] = &clone
	return nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.appointments, id)
	return nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appointment, ok := r.appointments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *appointment
	return &clone, nil
}

func (r *fakeAppointmentRepo) ListByDoctor(_ context.Context, doctorID string) ([]domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Appointment
	for _, appointment := range r.appointments {
		if appointment.DoctorID == doctorID {
			result = append(result, *appointment)
		}
	}
	return result, nil
}

func (r *fakeAppointmentRepo) ListByPatient(_ context.Context, patientID string) ([]domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Appointment
	for _, appointment := range r.appointments {
		if appointment.PatientID == patientID {
			result = append(result, *appointment)
		}
	}
	return result, nil
}

func (r *fakeAppointmentRepo) ExistsActiveAt(_ context.Context, doctorID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, appointment := range r.appointments {
		if appointment.DoctorID == doctorID &&
			appointment.ScheduledAt.Equal(at) &&
			appointment.Status != domain.AppointmentStatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *fakeSessionRepo) CreateReplacingActive(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if existing.UserID == session.UserID {
			existing.IsActive = false
		}
	}
	session.ID = uuid.NewString()
	session.CreatedAt = time.Now()
	session.IsActive = true
	clone := *session
	r.sessions[session.Token] = &clone
	return nil
}

func (r *fakeSessionRepo) GetActiveByToken(_ context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok || !session.IsActive {
		return nil, pgx.ErrNoRows
	}
	clone := *session
	return &clone, nil
}

func (r *fakeSessionRepo) ExtendExpiry(_ context.Context, token string, expiresAt time.Time) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok || !session.IsActive {
		return nil, pgx.ErrNoRows
	}
	session.ExpiresAt = expiresAt
	clone := *session
	return &clone, nil
}

func (r *fakeSessionRepo) Deactivate(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[token]; ok {
		session.IsActive = false
	}
	return nil
}

func (r *fakeSessionRepo) DeactivateAllForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.UserID == userID {
			session.IsActive = false
		}
	}
	return nil
}

func (r *fakeSessionRepo) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var swept int64
	for _, session := range r.sessions {
		if session.IsActive && session.ExpiresAt.Before(now) {
			session.IsActive = false
			swept++
		}
	}
	return swept, nil
}

// expire force-expires the stored session so tests can exercise sweeps.
func (r *fakeSessionRepo) expire(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[token]; ok {
		session.ExpiresAt = time.Now().Add(-time.Minute)
	}
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

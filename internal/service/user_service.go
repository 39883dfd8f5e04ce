package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-service/internal/auth"
	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/repository"
	apperrors "github.com/spec-kit/clinic-service/pkg/util"
)

const (
	doctorCachePrefix = "doctors:specialty:"
	doctorCacheTTL    = 5 * time.Minute
)

// UserService coordinates the user directory and the doctor/patient registry.
type UserService struct {
	users      repository.UserRepository
	doctors    repository.DoctorRepository
	patients   repository.PatientRepository
	cache      *redis.Client
	logger     *zap.Logger
	bcryptCost int
}

// UserDependencies encapsulates requirements for the user service.
type UserDependencies struct {
	UserRepo    repository.UserRepository
	DoctorRepo  repository.DoctorRepository
	PatientRepo repository.PatientRepository
	Cache       *redis.Client
	Logger      *zap.Logger
}

// RegisterDoctorInput carries doctor registration fields.
type RegisterDoctorInput struct {
	Email     string
	Password  string
	Name      string
	Surname   string
	BirthDate time.Time
	PhoneNo   string
	Specialty domain.Specialty
}

// RegisterPatientInput carries patient registration fields.
type RegisterPatientInput struct {
	Email     string
	Password  string
	Name      string
	Surname   string
	BirthDate time.Time
	PhoneNo   string
}

// UserUpdateInput holds partial-update fields; nil means leave unchanged.
type UserUpdateInput struct {
	Email    *string
	Password *string
}

// NewUserService builds the service.
func NewUserService(bcryptCost int, deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		doctors:    deps.DoctorRepo,
		patients:   deps.PatientRepo,
		cache:      deps.Cache,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// Register creates a bare identity record with the given role.
func (s *UserService) Register(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// RegisterDoctor creates the identity record plus the doctor profile. New
// doctors start available.
func (s *UserService) RegisterDoctor(ctx context.Context, input RegisterDoctorInput) (*domain.Doctor, error) {
	user, err := s.Register(ctx, input.Email, input.Password, domain.RoleDoctor)
	if err != nil {
		return nil, err
	}

	profile := domain.DoctorProfile{
		UserID:       user.ID,
		Name:         input.Name,
		Surname:      input.Surname,
		BirthDate:    input.BirthDate,
		PhoneNo:      input.PhoneNo,
		Specialty:    input.Specialty,
		Availability: true,
	}
	if err := s.doctors.CreateProfile(ctx, &profile); err != nil {
		// roll back the orphaned identity row
		_ = s.users.Delete(ctx, user.ID)
		return nil, apperrors.MapError(err)
	}

	s.invalidateDoctorCache(ctx, profile.Specialty)
	return &domain.Doctor{User: *user, Profile: profile}, nil
}

// RegisterPatient creates the identity record plus the patient profile.
func (s *UserService) RegisterPatient(ctx context.Context, input RegisterPatientInput) (*domain.Patient, error) {
	user, err := s.Register(ctx, input.Email, input.Password, domain.RolePatient)
	if err != nil {
		return nil, err
	}

	profile := domain.PatientProfile{
		UserID:    user.ID,
		Name:      input.Name,
		Surname:   input.Surname,
		BirthDate: input.BirthDate,
		PhoneNo:   input.PhoneNo,
	}
	if err := s.patients.CreateProfile(ctx, &profile); err != nil {
		_ = s.users.Delete(ctx, user.ID)
		return nil, apperrors.MapError(err)
	}

	return &domain.Patient{User: *user, Profile: profile}, nil
}

// Login authenticates by email and password.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return user, nil
}

// GetUser resolves a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}
	return user, nil
}

// ListUsers returns every identity record.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// ListDoctors returns every doctor with profile.
func (s *UserService) ListDoctors(ctx context.Context) ([]domain.Doctor, error) {
	return s.doctors.List(ctx)
}

// ListPatients returns every patient with profile.
func (s *UserService) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	return s.patients.List(ctx)
}

// ListDoctorsBySpecialty filters doctors by specialty, via the Redis cache
// when available.
func (s *UserService) ListDoctorsBySpecialty(ctx context.Context, specialty domain.Specialty) ([]domain.Doctor, error) {
	if cached, ok := s.cachedDoctors(ctx, specialty); ok {
		return cached, nil
	}

	doctors, err := s.doctors.ListBySpecialty(ctx, specialty)
	if err != nil {
		return nil, err
	}
	s.cacheDoctors(ctx, specialty, doctors)
	return doctors, nil
}

// UpdateUser applies a partial update of email and/or password.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UserUpdateInput) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// DeleteUser removes the identity record; dependent profiles, sessions and
// appointments cascade at the schema level.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == domain.RoleDoctor {
		if doctor, err := s.doctors.GetByUserID(ctx, id); err == nil {
			s.invalidateDoctorCache(ctx, doctor.Profile.Specialty)
		}
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return err
	}
	return nil
}

// SetDoctorAvailability flips the availability flag used by booking.
func (s *UserService) SetDoctorAvailability(ctx context.Context, doctorID string, available bool) (*domain.Doctor, error) {
	if err := s.doctors.UpdateAvailability(ctx, doctorID, available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("doctor", map[string]any{"id": doctorID})
		}
		return nil, err
	}
	doctor, err := s.doctors.GetByUserID(ctx, doctorID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidateDoctorCache(ctx, doctor.Profile.Specialty)
	return doctor, nil
}

// GetDoctor resolves the composed doctor view.
func (s *UserService) GetDoctor(ctx context.Context, id string) (*domain.Doctor, error) {
	doctor, err := s.doctors.GetByUserID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("doctor", map[string]any{"id": id})
		}
		return nil, err
	}
	return doctor, nil
}

// GetPatient resolves the composed patient view.
func (s *UserService) GetPatient(ctx context.Context, id string) (*domain.Patient, error) {
	patient, err := s.patients.GetByUserID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("patient", map[string]any{"id": id})
		}
		return nil, err
	}
	return patient, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string) error {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}
	return nil
}

func (s *UserService) cachedDoctors(ctx context.Context, specialty domain.Specialty) ([]domain.Doctor, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, doctorCachePrefix+string(specialty)).Result()
	if err != nil {
		return nil, false
	}
	var doctors []domain.Doctor
	if err := json.Unmarshal([]byte(raw), &doctors); err != nil {
		return nil, false
	}
	return doctors, true
}

func (s *UserService) cacheDoctors(ctx context.Context, specialty domain.Specialty, doctors []domain.Doctor) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(doctors)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, doctorCachePrefix+string(specialty), raw, doctorCacheTTL).Err(); err != nil {
		s.logger.Debug("doctor cache set failed", zap.Error(err))
	}
}

func (s *UserService) invalidateDoctorCache(ctx context.Context, specialty domain.Specialty) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, doctorCachePrefix+string(specialty)).Err(); err != nil {
		s.logger.Debug("doctor cache invalidation failed", zap.Error(err))
	}
}

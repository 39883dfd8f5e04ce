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

const birthDateLayout = "2006-01-02"

// UsersHandler exposes directory and registration endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Register handles POST /user/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	role, ok := parseRole(req.Role)
	if !ok {
		return apperrors.NewValidationError("role must be PATIENT or DOCTOR", map[string]any{"role": req.Role})
	}

	user, err := h.users.Register(c.Context(), req.Email, req.Password, role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// RegisterDoctor handles POST /user/registerDoctor.
func (h *UsersHandler) RegisterDoctor(c *fiber.Ctx) error {
	var req dto.RegisterDoctorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.Name == "" || req.Surname == "" {
		return apperrors.NewValidationError("email, password, name, surname required", nil)
	}
	specialty, ok := domain.ParseSpecialty(req.Specialty)
	if !ok {
		return apperrors.NewValidationError("unknown specialty", map[string]any{"specialty": req.Specialty})
	}
	birthDate, err := time.Parse(birthDateLayout, req.BirthDate)
	if err != nil {
		return apperrors.NewValidationError("birth_date must be YYYY-MM-DD", nil)
	}

	doctor, err := h.users.RegisterDoctor(c.Context(), service.RegisterDoctorInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Surname:   req.Surname,
		BirthDate: birthDate,
		PhoneNo:   req.PhoneNo,
		Specialty: specialty,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": doctorResponse(doctor)})
}

// RegisterPatient handles POST /user/registerPatient.
func (h *UsersHandler) RegisterPatient(c *fiber.Ctx) error {
	var req dto.RegisterPatientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.Name == "" || req.Surname == "" {
		return apperrors.NewValidationError("email, password, name, surname required", nil)
	}
	birthDate, err := time.Parse(birthDateLayout, req.BirthDate)
	if err != nil {
		return apperrors.NewValidationError("birth_date must be YYYY-MM-DD", nil)
	}

	patient, err := h.users.RegisterPatient(c.Context(), service.RegisterPatientInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Surname:   req.Surname,
		BirthDate: birthDate,
		PhoneNo:   req.PhoneNo,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": patientResponse(patient)})
}

// Login handles POST /user/login. Credential check only; session issuance
// lives under /session/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, err := h.users.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// GetUser handles GET /user/getUser/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// GetAllUsers handles GET /user/getAllUser.
func (h *UsersHandler) GetAllUsers(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetAllDoctors handles GET /user/getAllDoctors.
func (h *UsersHandler) GetAllDoctors(c *fiber.Ctx) error {
	doctors, err := h.users.ListDoctors(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": doctorResponses(doctors)})
}

// GetAllPatients handles GET /user/getAllPatients.
func (h *UsersHandler) GetAllPatients(c *fiber.Ctx) error {
	patients, err := h.users.ListPatients(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.PatientResponse, 0, len(patients))
	for i := range patients {
		items = append(items, patientResponse(&patients[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetDoctorsBySpecialty handles GET /user/getDoctorsBySpecialty/:specialty.
func (h *UsersHandler) GetDoctorsBySpecialty(c *fiber.Ctx) error {
	specialty, ok := domain.ParseSpecialty(c.Params("specialty"))
	if !ok {
		return apperrors.NewValidationError("unknown specialty", map[string]any{"specialty": c.Params("specialty")})
	}
	doctors, err := h.users.ListDoctorsBySpecialty(c.Context(), specialty)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": doctorResponses(doctors)})
}

// UpdateUser handles PUT /user/update/:id.
func (h *UsersHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == nil && req.Password == nil {
		return apperrors.NewValidationError("nothing to update", nil)
	}

	user, err := h.users.UpdateUser(c.Context(), c.Params("id"), service.UserUpdateInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// DeleteUser handles DELETE /user/delete/:id.
func (h *UsersHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.users.DeleteUser(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// SetDoctorAvailability handles PUT /user/doctorAvailability/:id.
func (h *UsersHandler) SetDoctorAvailability(c *fiber.Ctx) error {
	var req dto.SetAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	doctor, err := h.users.SetDoctorAvailability(c.Context(), c.Params("id"), req.Availability)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": doctorResponse(doctor)})
}

func parseRole(raw string) (domain.Role, bool) {
	switch domain.Role(raw) {
	case domain.RolePatient, domain.RoleDoctor:
		return domain.Role(raw), true
	}
	return "", false
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func doctorResponse(doctor *domain.Doctor) dto.DoctorResponse {
	return dto.DoctorResponse{
		UserResponse: userResponse(&doctor.User),
		Name:         doctor.Profile.Name,
		Surname:      doctor.Profile.Surname,
		BirthDate:    doctor.Profile.BirthDate.Format(birthDateLayout),
		PhoneNo:      doctor.Profile.PhoneNo,
		Specialty:    doctor.Profile.Specialty,
		Availability: doctor.Profile.Availability,
	}
}

func doctorResponses(doctors []domain.Doctor) []dto.DoctorResponse {
	items := make([]dto.DoctorResponse, 0, len(doctors))
	for i := range doctors {
		items = append(items, doctorResponse(&doctors[i]))
	}
	return items
}

func patientResponse(patient *domain.Patient) dto.PatientResponse {
	return dto.PatientResponse{
		UserResponse: userResponse(&patient.User),
		Name:         patient.Profile.Name,
		Surname:      patient.Profile.Surname,
		BirthDate:    patient.Profile.BirthDate.Format(birthDateLayout),
		PhoneNo:      patient.Profile.PhoneNo,
	}
}

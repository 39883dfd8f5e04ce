package dto

import (
	"time"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// RegisterRequest payload for the bare identity endpoint.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RegisterDoctorRequest payload for doctor registration.
type RegisterDoctorRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	BirthDate string `json:"birth_date"`
	PhoneNo   string `json:"phone_no"`
	Specialty string `json:"specialty"`
}

// RegisterPatientRequest payload for patient registration.
type RegisterPatientRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	BirthDate string `json:"birth_date"`
	PhoneNo   string `json:"phone_no"`
}

// LoginRequest payload for credential checks.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest carries the partial-update fields.
type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// SetAvailabilityRequest flips a doctor's availability flag.
type SetAvailabilityRequest struct {
	Availability bool `json:"availability"`
}

// UserResponse is the public identity view; the credential hash never leaves
// the service.
type UserResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// DoctorResponse is the composed doctor view.
type DoctorResponse struct {
	UserResponse
	Name         string           `json:"name"`
	Surname      string           `json:"surname"`
	BirthDate    string           `json:"birth_date"`
	PhoneNo      string           `json:"phone_no"`
	Specialty    domain.Specialty `json:"specialty"`
	Availability bool             `json:"availability"`
}

// PatientResponse is the composed patient view.
type PatientResponse struct {
	UserResponse
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	BirthDate string `json:"birth_date"`
	PhoneNo   string `json:"phone_no"`
}

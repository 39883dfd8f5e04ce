package domain

import "time"

// Specialty enumerates the medical fields a doctor can be tagged with.
type Specialty string

const (
	SpecialtyDermatology    Specialty = "Dermatology"
	SpecialtyCardiology     Specialty = "Cardiology"
	SpecialtyEye            Specialty = "Eye"
	SpecialtyGeneralSurgery Specialty = "GeneralSurgery"
)

// ParseSpecialty validates a raw specialty value.
func ParseSpecialty(raw string) (Specialty, bool) {
	switch Specialty(raw) {
	case SpecialtyDermatology, SpecialtyCardiology, SpecialtyEye, SpecialtyGeneralSurgery:
		return Specialty(raw), true
	}
	return "", false
}

// DoctorProfile holds the role-specific data keyed by the shared user id.
type DoctorProfile struct {
	UserID       string
	Name         string
	Surname      string
	BirthDate    time.Time
	PhoneNo      string
	Specialty    Specialty
	Availability bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Doctor is the composed directory view: identity plus profile.
type Doctor struct {
	User
	Profile DoctorProfile
}

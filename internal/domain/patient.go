package domain

import "time"

// PatientProfile holds patient data keyed by the shared user id.
type PatientProfile struct {
	UserID    string
	Name      string
	Surname   string
	BirthDate time.Time
	PhoneNo   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Patient is the composed directory view: identity plus profile.
type Patient struct {
	User
	Profile PatientProfile
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinic-service/internal/domain"
)

const patientSelect = `
        SELECT u.id, u.email, u.password_hash, u.role, u.created_at, u.updated_at,
               p.user_id, p.name, p.surname, p.birth_date, p.phone_no,
               p.created_at, p.updated_at
        FROM users u JOIN patient_profiles p ON p.user_id = u.id`

// PatientRepository handles persistence for patient profiles and composed views.
type PatientRepository interface {
	CreateProfile(ctx context.Context, profile *domain.PatientProfile) error
	GetByUserID(ctx context.Context, userID string) (*domain.Patient, error)
	List(ctx context.Context) ([]domain.Patient, error)
}

type patientRepository struct {
	pool *pgxpool.Pool
}

// NewPatientRepository instantiates the repository.
func NewPatientRepository(pool *pgxpool.Pool) PatientRepository {
	return &patientRepository{pool: pool}
}

func (r *patientRepository) CreateProfile(ctx context.Context, profile *domain.PatientProfile) error {
	const query = `
        INSERT INTO patient_profiles (user_id, name, surname, birth_date, phone_no)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		profile.UserID,
		profile.Name,
		profile.Surname,
		profile.BirthDate,
		profile.PhoneNo,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID string) (*domain.Patient, error) {
	var patient domain.Patient
	if err := r.pool.QueryRow(ctx, patientSelect+` WHERE u.id=$1`, userID).Scan(
		&patient.ID,
		&patient.Email,
		&patient.PasswordHash,
		&patient.Role,
		&patient.CreatedAt,
		&patient.UpdatedAt,
		&patient.Profile.UserID,
		&patient.Profile.Name,
		&patient.Profile.Surname,
		&patient.Profile.BirthDate,
		&patient.Profile.PhoneNo,
		&patient.Profile.CreatedAt,
		&patient.Profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context) ([]domain.Patient, error) {
	rows, err := r.pool.Query(ctx, patientSelect+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Patient
	for rows.Next() {
		var patient domain.Patient
		if err := rows.Scan(
			&patient.ID,
			&patient.Email,
			&patient.PasswordHash,
			&patient.Role,
			&patient.CreatedAt,
			&patient.UpdatedAt,
			&patient.Profile.UserID,
			&patient.Profile.Name,
			&patient.Profile.Surname,
			&patient.Profile.BirthDate,
			&patient.Profile.PhoneNo,
			&patient.Profile.CreatedAt,
			&patient.Profile.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, patient)
	}
	return result, rows.Err()
}

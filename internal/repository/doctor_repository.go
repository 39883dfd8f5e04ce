package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinic-service/internal/domain"
)

const doctorSelect = `
        SELECT u.id, u.email, u.password_hash, u.role, u.created_at, u.updated_at,
               d.user_id, d.name, d.surname, d.birth_date, d.phone_no, d.specialty, d.availability,
               d.created_at, d.updated_at
        FROM users u JOIN doctor_profiles d ON d.user_id = u.id`

// DoctorRepository handles persistence for doctor profiles and composed views.
type DoctorRepository interface {
	CreateProfile(ctx context.Context, profile *domain.DoctorProfile) error
	UpdateAvailability(ctx context.Context, userID string, available bool) error
	GetByUserID(ctx context.Context, userID string) (*domain.Doctor, error)
	List(ctx context.Context) ([]domain.Doctor, error)
	ListBySpecialty(ctx context.Context, specialty domain.Specialty) ([]domain.Doctor, error)
}

type doctorRepository struct {
	pool *pgxpool.Pool
}

// NewDoctorRepository instantiates the repository.
func NewDoctorRepository(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepository{pool: pool}
}

func (r *doctorRepository) CreateProfile(ctx context.Context, profile *domain.DoctorProfile) error {
	const query = `
        INSERT INTO doctor_profiles (user_id, name, surname, birth_date, phone_no, specialty, availability)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		profile.UserID,
		profile.Name,
		profile.Surname,
		profile.BirthDate,
		profile.PhoneNo,
		profile.Specialty,
		profile.Availability,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (r *doctorRepository) UpdateAvailability(ctx context.Context, userID string, available bool) error {
	const query = `
        UPDATE doctor_profiles SET availability=$1, updated_at=NOW()
        WHERE user_id=$2`

	cmd, err := r.pool.Exec(ctx, query, available, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *doctorRepository) GetByUserID(ctx context.Context, userID string) (*domain.Doctor, error) {
	var doctor domain.Doctor
	if err := r.pool.QueryRow(ctx, doctorSelect+` WHERE u.id=$1`, userID).Scan(
		&doctor.ID,
		&doctor.Email,
		&doctor.PasswordHash,
		&doctor.Role,
		&doctor.CreatedAt,
		&doctor.UpdatedAt,
		&doctor.Profile.UserID,
		&doctor.Profile.Name,
		&doctor.Profile.Surname,
		&doctor.Profile.BirthDate,
		&doctor.Profile.PhoneNo,
		&doctor.Profile.Specialty,
		&doctor.Profile.Availability,
		&doctor.Profile.CreatedAt,
		&doctor.Profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context) ([]domain.Doctor, error) {
	rows, err := r.pool.Query(ctx, doctorSelect+` ORDER BY d.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDoctors(rows)
}

func (r *doctorRepository) ListBySpecialty(ctx context.Context, specialty domain.Specialty) ([]domain.Doctor, error) {
	rows, err := r.pool.Query(ctx, doctorSelect+` WHERE d.specialty=$1 ORDER BY d.created_at DESC`, specialty)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDoctors(rows)
}

func scanDoctors(rows pgx.Rows) ([]domain.Doctor, error) {
	var result []domain.Doctor
	for rows.Next() {
		var doctor domain.Doctor
		if err := rows.Scan(
			&doctor.ID,
			&doctor.Email,
			&doctor.PasswordHash,
			&doctor.Role,
			&doctor.CreatedAt,
			&doctor.UpdatedAt,
			&doctor.Profile.UserID,
			&doctor.Profile.Name,
			&doctor.Profile.Surname,
			&doctor.Profile.BirthDate,
			&doctor.Profile.PhoneNo,
			&doctor.Profile.Specialty,
			&doctor.Profile.Availability,
			&doctor.Profile.CreatedAt,
			&doctor.Profile.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, doctor)
	}
	return result, rows.Err()
}

package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinic-service/internal/domain"
)

const appointmentSelect = `
        SELECT id, doctor_id, patient_id, scheduled_at, status, doctor_note, created_at, updated_at
        FROM appointments`

// AppointmentRepository encapsulates appointment persistence.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) error
	Update(ctx context.Context, appointment *domain.Appointment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]domain.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]domain.Appointment, error)
	ExistsActiveAt(ctx context.Context, doctorID string, at time.Time) (bool, error)
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository instantiates the repository.
func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

// Create inserts the row. A partial unique index on (doctor_id, scheduled_at)
// over non-cancelled rows backs the conflict check under concurrent bookings;
// violations surface as pgconn errors the caller maps to Conflict.
func (r *appointmentRepository) Create(ctx context.Context, appointment *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (doctor_id, patient_id, scheduled_at, status, doctor_note)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		appointment.DoctorID,
		appointment.PatientID,
		appointment.ScheduledAt,
		appointment.Status,
		appointment.DoctorNote,
	).Scan(&appointment.ID, &appointment.CreatedAt, &appointment.UpdatedAt)
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *domain.Appointment) error {
	const query = `
        UPDATE appointments SET status=$1, doctor_note=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query,
		appointment.Status,
		appointment.DoctorNote,
		appointment.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	var appointment domain.Appointment
	if err := r.pool.QueryRow(ctx, appointmentSelect+` WHERE id=$1`, id).Scan(
		&appointment.ID,
		&appointment.DoctorID,
		&appointment.PatientID,
		&appointment.ScheduledAt,
		&appointment.Status,
		&appointment.DoctorNote,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID string) ([]domain.Appointment, error) {
	rows, err := r.pool.Query(ctx, appointmentSelect+` WHERE doctor_id=$1`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID string) ([]domain.Appointment, error) {
	rows, err := r.pool.Query(ctx, appointmentSelect+` WHERE patient_id=$1`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// ExistsActiveAt reports whether a non-cancelled appointment already occupies
// the exact (doctor, instant) slot. Equality match only; durations are not
// modeled.
func (r *appointmentRepository) ExistsActiveAt(ctx context.Context, doctorID string, at time.Time) (bool, error) {
	const query = `
        SELECT EXISTS(
            SELECT 1 FROM appointments
            WHERE doctor_id=$1 AND scheduled_at=$2 AND status <> $3)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, doctorID, at, domain.AppointmentStatusCancelled).Scan(&exists)
	return exists, err
}

func scanAppointments(rows pgx.Rows) ([]domain.Appointment, error) {
	var result []domain.Appointment
	for rows.Next() {
		var appointment domain.Appointment
		if err := rows.Scan(
			&appointment.ID,
			&appointment.DoctorID,
			&appointment.PatientID,
			&appointment.ScheduledAt,
			&appointment.Status,
			&appointment.DoctorNote,
			&appointment.CreatedAt,
			&appointment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, appointment)
	}
	return result, rows.Err()
}

package store

import (
	"context"
	"fmt"

	"riding-school-api/internal/model"
)

// date and time are read back as text so the model keeps the wire shape.
const appointmentCols = `id, appointment_date::text, to_char(appointment_time, 'HH24:MI:SS'),
	student_name, notes, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner, a *model.Appointment) error {
	return row.Scan(&a.ID, &a.Date, &a.Time, &a.Student, &a.Notes, &a.CreatedAt)
}

// CreateAppointment inserts a and fills in the store-assigned ID and
// CreatedAt. A second booking for the same slot fails with ErrSlotTaken.
func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO appointments (appointment_date, appointment_time, student_name, notes)
		 VALUES ($1::date, $2::time, $3, $4)
		 RETURNING id, created_at`,
		a.Date, a.Time, a.Student, a.Notes,
	).Scan(&a.ID, &a.CreatedAt)
	if isUniqueViolation(err) {
		return ErrSlotTaken
	}
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (s *Store) ListAppointmentsOn(ctx context.Context, date string) ([]model.Appointment, error) {
	return s.list(ctx,
		`SELECT `+appointmentCols+`
		 FROM appointments
		 WHERE appointment_date = $1::date
		 ORDER BY appointment_time`, date)
}

// ListAppointmentsSince returns every appointment on or after since
// (YYYY-MM-DD), ordered by slot.
func (s *Store) ListAppointmentsSince(ctx context.Context, since string) ([]model.Appointment, error) {
	return s.list(ctx,
		`SELECT `+appointmentCols+`
		 FROM appointments
		 WHERE appointment_date >= $1::date
		 ORDER BY appointment_date, appointment_time`, since)
}

func (s *Store) list(ctx context.Context, q string, args ...any) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := scanAppointment(rows, &a); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := scanAppointment(s.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id), a)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// DeleteAppointment removes the row and returns it as it was.
func (s *Store) DeleteAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := scanAppointment(s.pool.QueryRow(ctx,
		`DELETE FROM appointments WHERE id = $1 RETURNING `+appointmentCols, id), a)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

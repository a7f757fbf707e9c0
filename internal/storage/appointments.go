package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

// CreateAppointment stores an appointment and returns its id.
func (s *Storage) CreateAppointment(ctx context.Context, a models.Appointment) (int64, error) {
	const op = "storage.CreateAppointment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO appointments (patient_id, date, time, notes)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var id int64
	if err := s.DB.QueryRowContext(ctx, query, a.PatientID, a.Date, a.Time, a.Notes).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return id, nil
}

// ListAppointmentsFrom returns the owner's appointments dated on or after
// from, ascending by date and time, with the patient name joined in.
func (s *Storage) ListAppointmentsFrom(ctx context.Context, ownerID int64, from calendar.Date) ([]models.Appointment, error) {
	const op = "storage.ListAppointmentsFrom"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT a.id, a.patient_id, p.name, a.date, a.time, a.notes
			  FROM appointments a
			  JOIN patients p ON p.id = a.patient_id
			  WHERE p.owner_id = $1 AND a.date >= $2
			  ORDER BY a.date, a.time, a.id`
	rows, err := s.DB.QueryContext(ctx, query, ownerID, from)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeError(err))
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Appointment, 0)
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.PatientName, &a.Date, &a.Time, &a.Notes); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return result, nil
}

// DeleteAppointment removes an appointment of one of the owner's patients.
func (s *Storage) DeleteAppointment(ctx context.Context, ownerID, appointmentID int64) (int64, error) {
	const op = "storage.DeleteAppointment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM appointments a
			  USING patients p
			  WHERE a.patient_id = p.id AND p.owner_id = $1 AND a.id = $2`
	result, err := s.DB.ExecContext(ctx, query, ownerID, appointmentID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, storeError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return affected, nil
}

// ListAppointmentsOn returns every owner's appointments dated on date,
// ascending by time, with patient and owner joined in.
func (s *Storage) ListAppointmentsOn(ctx context.Context, date calendar.Date) ([]models.DueAppointment, error) {
	const op = "storage.ListAppointmentsOn"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.owner_id, a.id, a.patient_id, p.name, a.date, a.time, a.notes
			  FROM appointments a
			  JOIN patients p ON p.id = a.patient_id
			  WHERE a.date = $1
			  ORDER BY a.time, a.id`
	rows, err := s.DB.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeError(err))
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.DueAppointment, 0)
	for rows.Next() {
		var a models.DueAppointment
		if err := rows.Scan(&a.OwnerID, &a.ID, &a.PatientID, &a.PatientName, &a.Date, &a.Time, &a.Notes); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return result, nil
}

package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/psycontrol/internal/models"
)

// CreatePatient stores a patient and returns its id.
func (s *Storage) CreatePatient(ctx context.Context, p models.Patient) (int64, error) {
	const op = "storage.CreatePatient"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO patients (owner_id, name, phone, email, notes, photo_path, card_number)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var id int64
	err := s.DB.QueryRowContext(ctx, query,
		p.OwnerID, p.Name, p.Phone, p.Email, p.Notes, p.PhotoPath, p.CardNumber).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return id, nil
}

// ListPatients returns the owner's patients ordered by id.
func (s *Storage) ListPatients(ctx context.Context, ownerID int64) ([]models.Patient, error) {
	const op = "storage.ListPatients"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, owner_id, name, phone, email, notes, photo_path, card_number
			  FROM patients
			  WHERE owner_id = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeError(err))
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Patient, 0)
	for rows.Next() {
		var p models.Patient
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Phone, &p.Email,
			&p.Notes, &p.PhotoPath, &p.CardNumber); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return result, nil
}

// DeletePatient removes the patient if the owner has it. Sessions and
// appointments go with it by cascade. It returns the number of removed rows.
func (s *Storage) DeletePatient(ctx context.Context, ownerID, patientID int64) (int64, error) {
	const op = "storage.DeletePatient"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM patients WHERE id = $1 AND owner_id = $2`, patientID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, storeError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return affected, nil
}

// PatientBelongsTo reports whether patientID exists and is owned by ownerID.
func (s *Storage) PatientBelongsTo(ctx context.Context, ownerID, patientID int64) (bool, error) {
	const op = "storage.PatientBelongsTo"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1 AND owner_id = $2)`,
		patientID, ownerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return exists, nil
}

// GetReminderContact returns the patient's contact with the owner's name.
// It returns models.ErrNotFound when the owner has no such patient.
func (s *Storage) GetReminderContact(ctx context.Context, ownerID, patientID int64) (models.ReminderContact, error) {
	const op = "storage.GetReminderContact"
	select {
	case <-ctx.Done():
		return models.ReminderContact{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.name, p.email, o.name
			  FROM patients p
			  JOIN owners o ON o.id = p.owner_id
			  WHERE p.id = $1 AND p.owner_id = $2`
	var c models.ReminderContact
	err := s.DB.QueryRowContext(ctx, query, patientID, ownerID).Scan(&c.PatientName, &c.PatientEmail, &c.OwnerName)
	if err != nil {
		return models.ReminderContact{}, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return c, nil
}

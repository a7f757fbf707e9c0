package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/psycontrol/internal/models"
)

// CreateSession stores a session and returns its id. Nil revenue fields are
// written as NULL.
func (s *Storage) CreateSession(ctx context.Context, sess models.Session) (int64, error) {
	const op = "storage.CreateSession"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var (
		amount   decimal.NullDecimal
		category sql.NullString
		units    sql.NullInt32
	)
	if sess.RevenueAmount != nil {
		amount = decimal.NewNullDecimal(*sess.RevenueAmount)
	}
	if sess.RevenueCategory != nil {
		category = sql.NullString{String: *sess.RevenueCategory, Valid: true}
	}
	if sess.UnitCount != nil {
		if *sess.UnitCount < 1 || *sess.UnitCount > models.MaxUnitCount {
			return 0, fmt.Errorf("%s: %w", op, models.Invalid("unit_count", "out of range"))
		}
		units = sql.NullInt32{Int32: int32(*sess.UnitCount), Valid: true}
	}

	query := `INSERT INTO sessions (patient_id, date, description, revenue_amount, revenue_category, unit_count)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var id int64
	err := s.DB.QueryRowContext(ctx, query,
		sess.PatientID, sess.Date, sess.Description, amount, category, units).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return id, nil
}

// ListSessions returns every session of the owner's patients, newest first,
// with the patient name joined in.
func (s *Storage) ListSessions(ctx context.Context, ownerID int64) ([]models.Session, error) {
	const op = "storage.ListSessions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, s.patient_id, p.name, s.date, s.description,
			      s.revenue_amount, s.revenue_category, s.unit_count
			  FROM sessions s
			  JOIN patients p ON p.id = s.patient_id
			  WHERE p.owner_id = $1
			  ORDER BY s.date DESC, s.id DESC`
	rows, err := s.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeError(err))
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Session, 0)
	for rows.Next() {
		var (
			item     models.Session
			amount   decimal.NullDecimal
			category sql.NullString
			units    sql.NullInt32
		)
		if err := rows.Scan(&item.ID, &item.PatientID, &item.PatientName, &item.Date,
			&item.Description, &amount, &category, &units); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if amount.Valid {
			item.RevenueAmount = &amount.Decimal
		}
		if category.Valid {
			item.RevenueCategory = &category.String
		}
		if units.Valid {
			n := int(units.Int32)
			item.UnitCount = &n
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return result, nil
}

// DeleteSession removes a session of one of the owner's patients.
func (s *Storage) DeleteSession(ctx context.Context, ownerID, sessionID int64) (int64, error) {
	const op = "storage.DeleteSession"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM sessions s
			  USING patients p
			  WHERE s.patient_id = p.id AND p.owner_id = $1 AND s.id = $2`
	result, err := s.DB.ExecContext(ctx, query, ownerID, sessionID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, storeError(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, storeError(err))
	}
	return affected, nil
}

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

func TestStorage_Owners(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	id, err := storage.CreateOwner(ctx, models.Owner{Name: "Dr. Ana", Login: "ana", PasswordDigest: "hash"})
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = storage.CreateOwner(ctx, models.Owner{Name: "Other Ana", Login: "ana", PasswordDigest: "hash"})
	assert.ErrorIs(t, err, models.ErrDuplicateLogin)

	owner, err := storage.GetOwnerByLogin(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, id, owner.ID)
	assert.Equal(t, "Dr. Ana", owner.Name)
	assert.Equal(t, "hash", owner.PasswordDigest)

	_, err = storage.GetOwnerByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_Patients(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	verify := NewTestVerification(storage)

	ana := factory.CreateOwner(t, "ana")
	other := factory.CreateOwner(t, "carl")

	bob, err := storage.CreatePatient(ctx, models.Patient{
		OwnerID: ana, Name: "Bob", Phone: "11999998888", Email: "bob@x.com", CardNumber: "123",
	})
	require.NoError(t, err)
	factory.CreatePatient(t, other, "Eve")

	patients, err := storage.ListPatients(ctx, ana)
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "Bob", patients[0].Name)
	assert.Equal(t, "123", patients[0].CardNumber)
	assert.Empty(t, patients[0].PhotoPath)

	belongs, err := storage.PatientBelongsTo(ctx, ana, bob)
	require.NoError(t, err)
	assert.True(t, belongs)
	belongs, err = storage.PatientBelongsTo(ctx, other, bob)
	require.NoError(t, err)
	assert.False(t, belongs)

	contact, err := storage.GetReminderContact(ctx, ana, bob)
	require.NoError(t, err)
	assert.Equal(t, models.ReminderContact{PatientName: "Bob", PatientEmail: "bob@x.com", OwnerName: "Dr. ana"}, contact)
	_, err = storage.GetReminderContact(ctx, other, bob)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = storage.CreatePatient(ctx, models.Patient{OwnerID: 9999, Name: "Ghost"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	t.Run("delete scoped to owner", func(t *testing.T) {
		n, err := storage.DeletePatient(ctx, other, bob)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("delete cascades", func(t *testing.T) {
		factory.CreateSession(t, bob, "2024-01-10", "150.00", "Particular")
		_, err := storage.CreateAppointment(ctx, models.Appointment{
			PatientID: bob, Date: calendar.MustParseDate("2030-01-01"), Time: calendar.MustParseTime("09:00"),
		})
		require.NoError(t, err)

		n, err := storage.DeletePatient(ctx, ana, bob)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
		assert.Zero(t, verify.CountRows(t, "sessions"))
		assert.Zero(t, verify.CountRows(t, "appointments"))

		n, err = storage.DeletePatient(ctx, ana, bob)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestStorage_Appointments(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	ana := factory.CreateOwner(t, "ana")
	bob := factory.CreatePatient(t, ana, "Bob")
	eve := factory.CreatePatient(t, factory.CreateOwner(t, "carl"), "Eve")

	insert := func(patient int64, date, tm string) int64 {
		id, err := storage.CreateAppointment(ctx, models.Appointment{
			PatientID: patient, Date: calendar.MustParseDate(date), Time: calendar.MustParseTime(tm), Notes: "n",
		})
		require.NoError(t, err)
		return id
	}
	insert(bob, "2024-03-01", "14:00")
	insert(bob, "2024-03-01", "09:00")
	insert(bob, "2024-02-28", "10:00")
	insert(bob, "2024-02-27", "10:00")
	insert(eve, "2024-03-01", "08:00")

	due, err := storage.ListAppointmentsOn(ctx, calendar.MustParseDate("2024-03-01"))
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, "Eve", due[0].PatientName)
	assert.Equal(t, "08:00", due[0].Time.String())
	assert.Equal(t, ana, due[1].OwnerID)
	assert.Equal(t, "09:00", due[1].Time.String())

	got, err := storage.ListAppointmentsFrom(ctx, ana, calendar.MustParseDate("2024-02-28"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2024-02-28 10:00", got[0].Date.String()+" "+got[0].Time.String())
	assert.Equal(t, "2024-03-01 09:00", got[1].Date.String()+" "+got[1].Time.String())
	assert.Equal(t, "2024-03-01 14:00", got[2].Date.String()+" "+got[2].Time.String())
	assert.Equal(t, "Bob", got[0].PatientName)

	n, err := storage.DeleteAppointment(ctx, ana, got[0].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = storage.DeleteAppointment(ctx, ana, got[0].ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStorage_Sessions(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	ana := factory.CreateOwner(t, "ana")
	bob := factory.CreatePatient(t, ana, "Bob")

	legacy := factory.CreateLegacySession(t, bob, "2023-05-01")
	recorded := factory.CreateSession(t, bob, "2024-01-10", "150.00", "Particular")

	sessions, err := storage.ListSessions(ctx, ana)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, recorded, sessions[0].ID)
	require.NotNil(t, sessions[0].RevenueAmount)
	assert.True(t, decimal.RequireFromString("150").Equal(*sessions[0].RevenueAmount))
	assert.Equal(t, "Particular", *sessions[0].RevenueCategory)
	assert.Equal(t, 1, *sessions[0].UnitCount)
	assert.Equal(t, "Bob", sessions[0].PatientName)

	assert.Equal(t, legacy, sessions[1].ID)
	assert.Nil(t, sessions[1].RevenueAmount)
	assert.Nil(t, sessions[1].RevenueCategory)
	assert.Nil(t, sessions[1].UnitCount)

	_, err = storage.CreateSession(ctx, models.Session{
		PatientID: 9999, Date: calendar.MustParseDate("2024-01-10"), Description: "x",
	})
	assert.ErrorIs(t, err, models.ErrNotFound)

	other := factory.CreateOwner(t, "carl")
	n, err := storage.DeleteSession(ctx, other, legacy)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = storage.DeleteSession(ctx, ana, legacy)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestStorage_CostsAndFinance(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	ana := factory.CreateOwner(t, "ana")
	bob := factory.CreatePatient(t, ana, "Bob")

	factory.CreateSession(t, bob, "2024-01-10", "150.00", "Particular")
	factory.CreateSession(t, bob, "2024-03-02", "200.00", "Convênio - Plano A")
	factory.CreateLegacySession(t, bob, "2024-04-01")
	factory.CreateCost(t, ana, "2024-02-05", "80.00", "Aluguel")
	factory.CreateCost(t, ana, "2024-03-01", "20.50", "Marketing")
	factory.CreateCost(t, ana, "2024-03-15", "19.50", "Aluguel")

	_, err := storage.CreateCost(ctx, models.Cost{
		OwnerID: ana, Description: "free", Amount: decimal.Zero,
		Date: calendar.MustParseDate("2024-03-01"), Category: "Outros",
	})
	assert.ErrorIs(t, err, models.ErrValidation)

	costs, err := storage.ListCosts(ctx, ana)
	require.NoError(t, err)
	require.Len(t, costs, 3)
	assert.Equal(t, "2024-03-15", costs[0].Date.String())

	revenue, err := storage.SumRevenue(ctx, ana)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("350").Equal(revenue))

	total, err := storage.SumCosts(ctx, ana)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("120").Equal(total))

	byMonth, err := storage.RevenueByMonth(ctx, ana)
	require.NoError(t, err)
	require.Len(t, byMonth, 3)
	assert.Equal(t, calendar.YearMonth{Year: 2024, Month: time.January}, byMonth[0].Month)
	assert.True(t, byMonth[2].Amount.IsZero(), "legacy-only month sums to zero")

	costMonths, err := storage.CostsByMonth(ctx, ana)
	require.NoError(t, err)
	require.Len(t, costMonths, 2)
	assert.True(t, decimal.RequireFromString("40").Equal(costMonths[1].Amount))

	byCategory, err := storage.CostsByCategory(ctx, ana)
	require.NoError(t, err)
	require.Len(t, byCategory, 2)
	assert.Equal(t, "Aluguel", byCategory[0].Category)
	assert.True(t, decimal.RequireFromString("99.50").Equal(byCategory[0].Amount))

	revenueByCategory, err := storage.RevenueByCategory(ctx, ana)
	require.NoError(t, err)
	require.Len(t, revenueByCategory, 3)
	assert.Equal(t, "Convênio - Plano A", revenueByCategory[0].Category)
	assert.Equal(t, models.CategoryUncategorized, revenueByCategory[2].Category)

	empty := factory.CreateOwner(t, "empty")
	zero, err := storage.SumRevenue(ctx, empty)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestStorage_CancelledContext(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := storage.ListPatients(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, storage.Ready(ctx), context.Canceled)
	assert.NoError(t, storage.Ready(context.Background()))
}

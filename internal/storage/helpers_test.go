package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
	"github.com/magabrotheeeer/psycontrol/internal/migrations"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

// setupTestDatabase starts PostgreSQL in a container and applies the migrations.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	const pgPort = nat.Port("5432/tcp")
	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{string(pgPort)},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(pgPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	port, err := postgresContainer.MappedPort(ctx, pgPort)
	require.NoError(t, err, "Failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	for range 10 {
		storage, err = New(connStr, PoolConfig{MaxOpenConns: 5})
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")
	require.NoError(t, migrations.Run(storage.DB))

	cleanup := func() {
		_ = storage.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

// TestDataFactory inserts fixtures directly.
type TestDataFactory struct {
	storage *Storage
}

func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

func (f *TestDataFactory) CreateOwner(t *testing.T, login string) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO owners (name, login, password_digest)
		VALUES ($1, $2, 'digest') RETURNING id`, "Dr. "+login, login).Scan(&id)
	require.NoError(t, err)
	return id
}

func (f *TestDataFactory) CreatePatient(t *testing.T, ownerID int64, name string) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO patients (owner_id, name, phone, email)
		VALUES ($1, $2, '11999998888', 'p@x.com') RETURNING id`, ownerID, name).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateLegacySession inserts a session the way rows looked before revenue tracking.
func (f *TestDataFactory) CreateLegacySession(t *testing.T, patientID int64, date string) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO sessions (patient_id, date, description)
		VALUES ($1, $2, 'legacy') RETURNING id`, patientID, date).Scan(&id)
	require.NoError(t, err)
	return id
}

func (f *TestDataFactory) CreateSession(t *testing.T, patientID int64, date, amount, category string) int64 {
	units := 1
	id, err := f.storage.CreateSession(context.Background(), models.Session{
		PatientID:       patientID,
		Date:            calendar.MustParseDate(date),
		Description:     "session",
		RevenueAmount:   ptr(decimal.RequireFromString(amount)),
		RevenueCategory: ptr(category),
		UnitCount:       &units,
	})
	require.NoError(t, err)
	return id
}

func (f *TestDataFactory) CreateCost(t *testing.T, ownerID int64, date, amount, category string) int64 {
	id, err := f.storage.CreateCost(context.Background(), models.Cost{
		OwnerID:     ownerID,
		Description: "expense",
		Amount:      decimal.RequireFromString(amount),
		Date:        calendar.MustParseDate(date),
		Category:    category,
	})
	require.NoError(t, err)
	return id
}

// TestVerification holds row-count assertions.
type TestVerification struct {
	storage *Storage
}

func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

func (v *TestVerification) CountRows(t *testing.T, table string) int {
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
	require.NoError(t, err)
	return count
}

func ptr[T any](v T) *T { return &v }

package appointments

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) PatientBelongsTo(ctx context.Context, ownerID, patientID int64) (bool, error) {
	args := m.Called(ctx, ownerID, patientID)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) CreateAppointment(ctx context.Context, a models.Appointment) (int64, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) ListAppointmentsFrom(ctx context.Context, ownerID int64, from calendar.Date) ([]models.Appointment, error) {
	args := m.Called(ctx, ownerID, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *RepoMock) DeleteAppointment(ctx context.Context, ownerID, appointmentID int64) (int64, error) {
	args := m.Called(ctx, ownerID, appointmentID)
	return args.Get(0).(int64), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, message any) error {
	return m.Called(ctx, routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var (
	ana   = models.Principal{OwnerID: 1, Name: "Dr. Ana"}
	brt   = time.FixedZone("BRT", -3*60*60)
	now   = time.Date(2024, 3, 1, 10, 0, 0, 0, brt)
	clock = calendar.FixedClock(now)
)

func at(s string) *calendar.TimeOfDay {
	t := calendar.MustParseTime(s)
	return &t
}

func TestService_Schedule(t *testing.T) {
	tests := []struct {
		name       string
		in         models.NewAppointment
		setupMocks func(r *RepoMock, p *PublisherMock)
		wantID     int64
		wantErr    error
	}{
		{
			name: "today is allowed",
			in: models.NewAppointment{
				PatientID: 5, Date: calendar.MustParseDate("2024-03-01"), Time: at("14:00"),
			},
			setupMocks: func(r *RepoMock, p *PublisherMock) {
				r.On("PatientBelongsTo", mock.Anything, int64(1), int64(5)).Return(true, nil).Once()
				r.On("CreateAppointment", mock.Anything, mock.MatchedBy(func(a models.Appointment) bool {
					return a.PatientID == 5 && a.Date.String() == "2024-03-01" && a.Time.String() == "14:00"
				})).Return(int64(9), nil).Once()
				p.On("Publish", mock.Anything, models.AppointmentScheduled, mock.MatchedBy(func(e models.AppointmentEvent) bool {
					return e.AppointmentID == 9 && e.OwnerID == 1 && e.Date == "2024-03-01" && e.OccurredAt.Equal(now)
				})).Return(nil).Once()
			},
			wantID: 9,
		},
		{
			name: "publish failure does not fail scheduling",
			in: models.NewAppointment{
				PatientID: 5, Date: calendar.MustParseDate("2024-04-01"), Time: at("09:00"),
			},
			setupMocks: func(r *RepoMock, p *PublisherMock) {
				r.On("PatientBelongsTo", mock.Anything, int64(1), int64(5)).Return(true, nil).Once()
				r.On("CreateAppointment", mock.Anything, mock.Anything).Return(int64(10), nil).Once()
				p.On("Publish", mock.Anything, models.AppointmentScheduled, mock.Anything).
					Return(errors.New("channel closed")).Once()
			},
			wantID: 10,
		},
		{
			name: "past date",
			in: models.NewAppointment{
				PatientID: 5, Date: calendar.MustParseDate("2024-02-29"), Time: at("09:00"),
			},
			setupMocks: func(*RepoMock, *PublisherMock) {},
			wantErr:    models.ErrValidation,
		},
		{
			name:       "missing date",
			in:         models.NewAppointment{PatientID: 5, Time: at("09:00")},
			setupMocks: func(*RepoMock, *PublisherMock) {},
			wantErr:    models.ErrValidation,
		},
		{
			name:       "missing time",
			in:         models.NewAppointment{PatientID: 5, Date: calendar.MustParseDate("2024-03-02")},
			setupMocks: func(*RepoMock, *PublisherMock) {},
			wantErr:    models.ErrValidation,
		},
		{
			name: "midnight is a real time",
			in: models.NewAppointment{
				PatientID: 5, Date: calendar.MustParseDate("2024-03-02"), Time: at("00:00"),
			},
			setupMocks: func(r *RepoMock, p *PublisherMock) {
				r.On("PatientBelongsTo", mock.Anything, int64(1), int64(5)).Return(true, nil).Once()
				r.On("CreateAppointment", mock.Anything, mock.MatchedBy(func(a models.Appointment) bool {
					return a.Time.String() == "00:00"
				})).Return(int64(11), nil).Once()
				p.On("Publish", mock.Anything, models.AppointmentScheduled, mock.MatchedBy(func(e models.AppointmentEvent) bool {
					return e.Time == "00:00"
				})).Return(nil).Once()
			},
			wantID: 11,
		},
		{
			name: "patient of another owner",
			in: models.NewAppointment{
				PatientID: 77, Date: calendar.MustParseDate("2024-03-02"), Time: at("09:00"),
			},
			setupMocks: func(r *RepoMock, _ *PublisherMock) {
				r.On("PatientBelongsTo", mock.Anything, int64(1), int64(77)).Return(false, nil).Once()
			},
			wantErr: models.ErrValidation,
		},
		{
			name: "store unavailable",
			in: models.NewAppointment{
				PatientID: 5, Date: calendar.MustParseDate("2024-03-02"), Time: at("09:00"),
			},
			setupMocks: func(r *RepoMock, _ *PublisherMock) {
				r.On("PatientBelongsTo", mock.Anything, int64(1), int64(5)).Return(false, models.ErrStoreUnavailable).Once()
			},
			wantErr: models.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			publisher := new(PublisherMock)
			tt.setupMocks(repo, publisher)
			svc := New(newNoopLogger(), repo, publisher, clock)

			got, err := svc.Schedule(context.Background(), ana, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, got.ID)
			}
			repo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestService_ScheduleWithoutPublisher(t *testing.T) {
	repo := new(RepoMock)
	repo.On("PatientBelongsTo", mock.Anything, int64(1), int64(5)).Return(true, nil).Once()
	repo.On("CreateAppointment", mock.Anything, mock.Anything).Return(int64(3), nil).Once()
	svc := New(newNoopLogger(), repo, nil, clock)

	got, err := svc.Schedule(context.Background(), ana, models.NewAppointment{
		PatientID: 5, Date: calendar.MustParseDate("2024-03-05"), Time: at("08:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
}

func TestService_ListUpcoming(t *testing.T) {
	repo := new(RepoMock)
	svc := New(newNoopLogger(), repo, nil, clock)

	rows := []models.Appointment{
		{ID: 1, PatientName: "Bob", Date: calendar.MustParseDate("2024-03-01"), Time: calendar.MustParseTime("09:00")},
		{ID: 2, PatientName: "Bob", Date: calendar.MustParseDate("2024-03-01"), Time: calendar.MustParseTime("14:00")},
		{ID: 3, PatientName: "Carla", Date: calendar.MustParseDate("2024-03-04"), Time: calendar.MustParseTime("08:00")},
	}
	// 2024-03-02 01:30 UTC is still March 1st in BRT.
	late := time.Date(2024, 3, 2, 1, 30, 0, 0, time.UTC)
	repo.On("ListAppointmentsFrom", mock.Anything, int64(1), calendar.MustParseDate("2024-03-01")).Return(rows, nil).Once()

	got, err := svc.ListUpcoming(context.Background(), ana, late)
	require.NoError(t, err)
	require.Len(t, got, 3)

	today := calendar.MustParseDate("2024-03-01")
	for i, a := range got {
		assert.False(t, a.Date.Before(today), "past appointment returned")
		if i > 0 {
			prev := got[i-1]
			ordered := prev.Date.Before(a.Date) || (prev.Date == a.Date && prev.Time.Compare(a.Time) <= 0)
			assert.True(t, ordered, "appointments out of order at %d", i)
		}
	}
	repo.AssertExpectations(t)
}

func TestService_Cancel(t *testing.T) {
	repo := new(RepoMock)
	publisher := new(PublisherMock)
	svc := New(newNoopLogger(), repo, publisher, clock)

	repo.On("DeleteAppointment", mock.Anything, int64(1), int64(9)).Return(int64(1), nil).Once()
	repo.On("DeleteAppointment", mock.Anything, int64(1), int64(9)).Return(int64(0), nil).Once()
	publisher.On("Publish", mock.Anything, models.AppointmentCancelled, mock.MatchedBy(func(e models.AppointmentEvent) bool {
		return e.AppointmentID == 9
	})).Return(nil).Once()

	require.NoError(t, svc.Cancel(context.Background(), ana, 9))
	require.NoError(t, svc.Cancel(context.Background(), ana, 9), "second cancel is a no-op")

	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

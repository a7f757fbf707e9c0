package create

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/psycontrol/internal/http/middlewarectx"
	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Schedule(ctx context.Context, principal models.Principal, in models.NewAppointment) (models.Appointment, error) {
	args := m.Called(ctx, principal, in)
	return args.Get(0).(models.Appointment), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ana := models.Principal{OwnerID: 1, Name: "Dr. Ana"}
	at := calendar.MustParseTime("14:00")
	in := models.NewAppointment{
		PatientID: 5,
		Date:      calendar.MustParseDate("2024-03-01"),
		Time:      &at,
	}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "appointment scheduled",
			body: `{"patient_id":5,"date":"2024-03-01","time":"14:00"}`,
			setupMock: func(m *MockService) {
				m.On("Schedule", mock.Anything, ana, in).Return(models.Appointment{
					ID: 3, PatientID: 5, Date: in.Date, Time: at,
				}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"status":"OK","data":{"id":3,"patient_id":5,"date":"2024-03-01","time":"14:00","notes":""}}`,
		},
		{
			name:           "brazilian date format is malformed input",
			body:           `{"patient_id":5,"date":"01/03/2024","time":"14:00"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "missing patient",
			body:           `{"date":"2024-03-01","time":"14:00"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field PatientID is a required field"}`,
		},
		{
			name:           "missing time",
			body:           `{"patient_id":5,"date":"2024-03-01"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field Time is a required field"}`,
		},
		{
			name: "date in the past",
			body: `{"patient_id":5,"date":"2024-03-01","time":"14:00"}`,
			setupMock: func(m *MockService) {
				m.On("Schedule", mock.Anything, ana, in).Return(models.Appointment{},
					fmt.Errorf("appointments.Schedule: %w", models.Invalid("date", "must not be before 2024-03-02"))).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"date: must not be before 2024-03-02"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), ana))
			w := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

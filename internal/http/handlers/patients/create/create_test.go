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
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, principal models.Principal, in models.NewPatient) (models.Patient, error) {
	args := m.Called(ctx, principal, in)
	return args.Get(0).(models.Patient), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ana := models.Principal{OwnerID: 1, Name: "Dr. Ana"}
	bob := models.NewPatient{Name: "Bob", Phone: "(11) 98765-4321", Email: "bob@example.com"}

	tests := []struct {
		name           string
		principal      *models.Principal
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "patient created",
			principal: &ana,
			body:      `{"name":"Bob","phone":"(11) 98765-4321","email":"bob@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, ana, bob).Return(models.Patient{
					ID: 10, OwnerID: 1, Name: "Bob", Phone: bob.Phone, Email: bob.Email,
				}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody: `{"status":"OK","data":{"id":10,"owner_id":1,"name":"Bob","phone":"(11) 98765-4321",
				"email":"bob@example.com","notes":"","photo_path":"","card_number":""}}`,
		},
		{
			name:           "unauthenticated",
			body:           `{}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:           "missing email",
			principal:      &ana,
			body:           `{"name":"Bob","phone":"11987654321"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field Email is a required field"}`,
		},
		{
			name:      "bad email rejected by service",
			principal: &ana,
			body:      `{"name":"Bob","phone":"11987654321","email":"bob"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, ana, mock.Anything).
					Return(models.Patient{}, fmt.Errorf("patients.Create: %w", models.Invalid("email", "must look like name@domain.tld"))).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"email: must look like name@domain.tld"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/patients", bytes.NewBufferString(tt.body))
			if tt.principal != nil {
				req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), *tt.principal))
			}
			w := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

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

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/psycontrol/internal/http/middlewarectx"
	"github.com/magabrotheeeer/psycontrol/internal/lib/calendar"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Record(ctx context.Context, principal models.Principal, in models.NewCost) (models.Cost, error) {
	args := m.Called(ctx, principal, in)
	return args.Get(0).(models.Cost), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ana := models.Principal{OwnerID: 1, Name: "Dr. Ana"}
	rent := decimal.RequireFromString("1200.5")

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "cost without category",
			body: `{"description":"Rent","amount":"1200.50","date":"2024-01-05"}`,
			setupMock: func(m *MockService) {
				m.On("Record", mock.Anything, ana, mock.MatchedBy(func(in models.NewCost) bool {
					return in.Description == "Rent" && in.Amount.Equal(rent) && in.Category == ""
				})).Return(models.Cost{
					ID: 4, OwnerID: 1, Description: "Rent", Amount: rent,
					Date: calendar.MustParseDate("2024-01-05"), Category: models.DefaultCostCategory,
				}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody: `{"status":"OK","data":{"id":4,"owner_id":1,"description":"Rent","amount":"1200.5",
				"date":"2024-01-05","category":"Outros"}}`,
		},
		{
			name:           "missing description",
			body:           `{"amount":"10","date":"2024-01-05"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field Description is a required field"}`,
		},
		{
			name: "zero amount",
			body: `{"description":"Pens","amount":"0","date":"2024-01-05"}`,
			setupMock: func(m *MockService) {
				m.On("Record", mock.Anything, ana, mock.Anything).Return(models.Cost{},
					fmt.Errorf("costs.Record: %w", models.Invalid("amount", "must be greater than zero"))).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"amount: must be greater than zero"}`,
		},
		{
			name:           "amount is not a number",
			body:           `{"description":"Pens","amount":"ten","date":"2024-01-05"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/costs", bytes.NewBufferString(tt.body))
			req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), ana))
			w := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

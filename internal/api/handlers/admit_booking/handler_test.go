package admit_booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClinicBooking/internal/api/handlers"
	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	admitBooking "github.com/m04kA/SMC-ClinicBooking/internal/usecase/admit_booking"
	"github.com/m04kA/SMC-ClinicBooking/pkg/logger"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

type fakeUseCase struct {
	got  *admitBooking.Request
	resp *admitBooking.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *admitBooking.Request) (*admitBooking.Response, error) {
	f.got = req
	return f.resp, f.err
}

const validBody = `{
	"date": "2025-10-20",
	"startTime": "10:30",
	"type": "checkup",
	"firstName": "Ivan",
	"lastName": "Petrov",
	"phone": "+7 900 123-45-67",
	"email": "ivan@example.com"
}`

func doRequest(t *testing.T, uc *fakeUseCase, body string) *httptest.ResponseRecorder {
	t.Helper()

	h := NewHandler(uc, logger.Nop())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	created := time.Date(2025, 10, 13, 8, 0, 0, 0, time.UTC)
	uc := &fakeUseCase{resp: &admitBooking.Response{
		ID:        42,
		Type:      "checkup",
		Status:    "pending",
		Date:      time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC),
		StartTime: types.TimeString("10:30"),
		FirstName: "Ivan",
		LastName:  "Petrov",
		Phone:     "+7 900 123-45-67",
		Email:     "ivan@example.com",
		CreatedAt: created,
		UpdatedAt: created,
	}}

	rec := doRequest(t, uc, validBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, "2025-10-20", uc.got.Date.Format(domain.DateFormat))
	assert.Equal(t, types.TimeString("10:30"), uc.got.StartTime)

	var resp BookingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "2025-10-20", resp.Date)
	assert.Equal(t, "10:30", resp.StartTime)
	assert.Equal(t, "2025-10-13T08:00:00Z", resp.CreatedAt)
}

func TestHandle_BadRequestBeforeUseCase(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "malformed json", body: `{"date":`},
		{name: "unknown field", body: `{"date":"2025-10-20","slot":"x"}`},
		{
			name:      "bad date",
			body:      strings.Replace(validBody, "2025-10-20", "20.10.2025", 1),
			wantField: "date",
		},
		{
			name:      "bad start time",
			body:      strings.Replace(validBody, "10:30", "25:99", 1),
			wantField: "startTime",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUseCase{}
			rec := doRequest(t, uc, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, uc.got, "use case must not be called")

			var resp handlers.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantField, resp.Field)
		})
	}
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantRetry  bool
	}{
		{
			name:       "invalid input",
			err:        errors.Join(admitBooking.ErrInvalidInput, domain.NewValidationError("email", "bad")),
			wantStatus: http.StatusBadRequest,
		},
		{name: "slot not offered", err: admitBooking.ErrSlotNotOffered, wantStatus: http.StatusConflict},
		{name: "slot taken", err: admitBooking.ErrSlotTaken, wantStatus: http.StatusConflict},
		{
			name:       "storage unavailable",
			err:        admitBooking.ErrStorageUnavailable,
			wantStatus: http.StatusServiceUnavailable,
			wantRetry:  true,
		},
		{name: "internal", err: admitBooking.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, &fakeUseCase{err: tt.err}, validBody)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantRetry {
				assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestHandle_InvalidInputCarriesField(t *testing.T) {
	err := errors.Join(admitBooking.ErrInvalidInput, domain.NewValidationError("email", "invalid address"))
	rec := doRequest(t, &fakeUseCase{err: err}, validBody)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp handlers.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "email", resp.Field)
	assert.Equal(t, "invalid address", resp.Reason)
}

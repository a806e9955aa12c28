package list_bookings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClinicBooking/internal/api/handlers"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings/models"
	"github.com/m04kA/SMC-ClinicBooking/pkg/logger"
)

type fakeService struct {
	got *models.ListBookingsRequest
	err error
}

func (f *fakeService) ListBookings(_ context.Context, req *models.ListBookingsRequest) (*models.BookingsPageResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingsPageResponse{
		Bookings:   []models.BookingResponse{},
		TotalCount: 25,
		Page:       2,
		PerPage:    10,
		PageCount:  3,
	}, nil
}

func doRequest(svc *fakeService, rawQuery string) *httptest.ResponseRecorder {
	h := NewHandler(svc, logger.Nop())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/bookings?"+rawQuery, nil)
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestParseQuery(t *testing.T) {
	q := url.Values{}
	q.Set("page", "2")
	q.Set("per_page", "10")
	q.Set("sort", "lastName.asc")
	q.Set("from", "2025-10-01")
	q.Set("to", "2025-10-31")
	q.Set("lastName", " petr ")
	q.Set("type", "checkup.treatment")
	q.Set("status", "pending..confirmed")
	q.Set("email", "example.com")

	req, err := parseQuery(q)
	require.NoError(t, err)

	assert.Equal(t, 2, req.Page)
	assert.Equal(t, 10, req.PerPage)
	assert.Equal(t, "lastName.asc", req.Sort)
	assert.Equal(t, "petr", req.LastName)
	assert.Equal(t, "example.com", req.Email)
	assert.Equal(t, []string{"checkup", "treatment"}, req.Types)
	assert.Equal(t, []string{"pending", "confirmed"}, req.Statuses)
	require.NotNil(t, req.From)
	require.NotNil(t, req.To)
	assert.Equal(t, "2025-10-01", req.From.Format("2006-01-02"))
	assert.Equal(t, "2025-10-31", req.To.Format("2006-01-02"))
}

func TestParseQuery_Empty(t *testing.T) {
	req, err := parseQuery(url.Values{})
	require.NoError(t, err)

	assert.Zero(t, req.Page)
	assert.Zero(t, req.PerPage)
	assert.Nil(t, req.Types)
	assert.Nil(t, req.Statuses)
	assert.Nil(t, req.From)
	assert.Nil(t, req.To)
}

func TestHandle_InvalidParams(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantField string
	}{
		{name: "page not a number", query: "page=two", wantField: "page"},
		{name: "per_page not a number", query: "per_page=ten", wantField: "per_page"},
		{name: "bad from", query: "from=01.10.2025", wantField: "from"},
		{name: "bad to", query: "to=2025-13-01", wantField: "to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := doRequest(svc, tt.query)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, svc.got)

			var resp handlers.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantField, resp.Field)
		})
	}
}

func TestHandle_OK(t *testing.T) {
	svc := &fakeService{}
	rec := doRequest(svc, "type=checkup&page=2&per_page=10")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, []string{"checkup"}, svc.got.Types)

	var resp models.BookingsPageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 25, resp.TotalCount)
	assert.Equal(t, 3, resp.PageCount)
}

func TestHandle_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "invalid filter", err: fmt.Errorf("%w: unknown type", bookings.ErrInvalidInput), wantStatus: http.StatusBadRequest},
		{name: "storage unavailable", err: bookings.ErrStorageUnavailable, wantStatus: http.StatusServiceUnavailable},
		{name: "internal", err: bookings.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(&fakeService{err: tt.err}, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

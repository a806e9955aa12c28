package admit_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	admitBooking "github.com/m04kA/SMC-ClinicBooking/internal/usecase/admit_booking"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// AdmitBookingRequest HTTP request model
type AdmitBookingRequest struct {
	Date      string  `json:"date"`      // "2025-10-15"
	StartTime string  `json:"startTime"` // "10:00"
	Type      string  `json:"type"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	Message   *string `json:"message,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID        int64   `json:"id"`
	Type      string  `json:"type"`
	Status    string  `json:"status"`
	Date      string  `json:"date"`
	StartTime string  `json:"startTime"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	Message   *string `json:"message,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Ошибка разбора даты или времени имеет тип *domain.ValidationError
func (r *AdmitBookingRequest) ToUseCaseRequest() (*admitBooking.Request, error) {
	// Парсим дату
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, domain.NewValidationError("date", fmt.Sprintf("expected YYYY-MM-DD, got %q", r.Date))
	}

	// Парсим время
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, domain.NewValidationError("startTime", fmt.Sprintf("expected HH:MM, got %q", r.StartTime))
	}

	return &admitBooking.Request{
		Date:      date,
		StartTime: startTime,
		Type:      r.Type,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Email:     r.Email,
		Message:   r.Message,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *admitBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:        resp.ID,
		Type:      resp.Type,
		Status:    resp.Status,
		Date:      resp.Date.Format(domain.DateFormat),
		StartTime: resp.StartTime.String(),
		FirstName: resp.FirstName,
		LastName:  resp.LastName,
		Phone:     resp.Phone,
		Email:     resp.Email,
		Message:   resp.Message,
		CreatedAt: resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt: resp.UpdatedAt.Format(time.RFC3339),
	}
}

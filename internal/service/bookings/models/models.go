package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// Request модели

// UpdateStatusRequest запрос на смену статуса бронирования
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ListBookingsRequest параметры списка бронирований в сыром виде
type ListBookingsRequest struct {
	Page     int
	PerPage  int
	Sort     string // "lastName.asc"
	LastName string
	Email    string
	Types    []string
	Statuses []string
	From     *time.Time // дата создания, включительно
	To       *time.Time // дата создания, включительно
}

// ToDomainQuery конвертирует запрос в domain.BookingsQuery.
// Неизвестный тип или статус даёт *domain.ValidationError
func (r *ListBookingsRequest) ToDomainQuery() (domain.BookingsQuery, error) {
	field, dir := domain.ParseSort(r.Sort)

	q := domain.BookingsQuery{
		Filter: domain.BookingsFilter{
			LastNameContains: r.LastName,
			EmailContains:    r.Email,
			CreatedFrom:      r.From,
			CreatedTo:        r.To,
		},
		SortField:     field,
		SortDirection: dir,
		Page:          r.Page,
		PerPage:       r.PerPage,
	}

	for _, raw := range r.Types {
		t := domain.BookingType(raw)
		if !t.IsValid() {
			return domain.BookingsQuery{}, domain.NewValidationError("type", fmt.Sprintf("unknown booking type %q", raw))
		}
		q.Filter.Types = append(q.Filter.Types, t)
	}

	for _, raw := range r.Statuses {
		status, err := ToDomainBookingStatus(raw)
		if err != nil {
			return domain.BookingsQuery{}, err
		}
		q.Filter.Statuses = append(q.Filter.Statuses, status)
	}

	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return domain.BookingsQuery{}, domain.NewValidationError("to", "must not be before from")
	}

	return q.Normalize(), nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID        int64   `json:"id"`
	Type      string  `json:"type"`
	Status    string  `json:"status"`
	Date      string  `json:"date"`      // "2025-10-15"
	StartTime string  `json:"startTime"` // "10:00"
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	Message   *string `json:"message,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingsPageResponse страница списка бронирований
type BookingsPageResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	TotalCount int               `json:"totalCount"`
	Page       int               `json:"page"`
	PerPage    int               `json:"perPage"`
	PageCount  int               `json:"pageCount"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO, дата и время в часовом поясе клиники
func FromDomainBooking(b *domain.Booking, loc *time.Location) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:        b.ID,
		Type:      string(b.Type),
		Status:    string(b.Status),
		Date:      b.Date(loc).Format(domain.DateFormat),
		StartTime: b.StartTime(loc).String(),
		FirstName: b.FirstName,
		LastName:  b.LastName,
		Phone:     b.Phone,
		Email:     b.Email,
		Message:   b.Message,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// FromDomainBookingsPage конвертирует страницу domain моделей в DTO
func FromDomainBookingsPage(page *domain.BookingsPage, loc *time.Location) *BookingsPageResponse {
	resp := &BookingsPageResponse{
		Bookings:   make([]BookingResponse, 0, len(page.Items)),
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PerPage:    page.PerPage,
		PageCount:  page.PageCount,
	}

	for _, booking := range page.Items {
		if bookingResp := FromDomainBooking(booking, loc); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", domain.NewValidationError("status", fmt.Sprintf("unknown booking status %q", status))
	}
	return s, nil
}

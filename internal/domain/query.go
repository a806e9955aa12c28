package domain

import (
	"strings"
	"time"
)

// SortField поле сортировки списка бронирований
type SortField string

const (
	SortByID        SortField = "id"
	SortByType      SortField = "type"
	SortByStatus    SortField = "status"
	SortBySlot      SortField = "slot"
	SortByFirstName SortField = "firstName"
	SortByLastName  SortField = "lastName"
	SortByPhone     SortField = "phone"
	SortByEmail     SortField = "email"
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
)

var sortFields = map[SortField]struct{}{
	SortByID:        {},
	SortByType:      {},
	SortByStatus:    {},
	SortBySlot:      {},
	SortByFirstName: {},
	SortByLastName:  {},
	SortByPhone:     {},
	SortByEmail:     {},
	SortByCreatedAt: {},
	SortByUpdatedAt: {},
}

// IsValid returns true for a whitelisted sort field
func (f SortField) IsValid() bool {
	_, ok := sortFields[f]
	return ok
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSort разбирает строку вида "lastName.asc".
// Неизвестное поле даёт createdAt desc, направление отличное от asc даёт desc
func ParseSort(raw string) (SortField, SortDirection) {
	field, dir, _ := strings.Cut(raw, ".")

	if !SortField(field).IsValid() {
		return SortByCreatedAt, SortDesc
	}
	if SortDirection(dir) == SortAsc {
		return SortField(field), SortAsc
	}
	return SortField(field), SortDesc
}

// BookingsFilter условия отбора, объединяются через AND. Пустое поле не фильтрует
type BookingsFilter struct {
	LastNameContains string
	EmailContains    string
	Types            []BookingType
	Statuses         []BookingStatus
	CreatedFrom      *time.Time // календарная дата, включительно
	CreatedTo        *time.Time // календарная дата, включительно
}

// BookingsQuery запрос страницы списка бронирований
type BookingsQuery struct {
	Filter        BookingsFilter
	SortField     SortField
	SortDirection SortDirection
	Page          int // с 1
	PerPage       int
}

// Normalize подставляет значения по умолчанию вместо некорректных
func (q BookingsQuery) Normalize() BookingsQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	if !q.SortField.IsValid() {
		q.SortField, q.SortDirection = SortByCreatedAt, SortDesc
	}
	if q.SortDirection != SortAsc {
		q.SortDirection = SortDesc
	}
	return q
}

// Offset смещение первой строки страницы
func (q BookingsQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}

// BookingsPage страница списка бронирований
type BookingsPage struct {
	Items      []*Booking
	TotalCount int
	Page       int
	PerPage    int
	PageCount  int
}

// PageCount ceil(total / perPage)
func PageCount(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

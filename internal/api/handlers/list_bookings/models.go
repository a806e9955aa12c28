package list_bookings

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-ClinicBooking/internal/api/handlers"
	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/bookings/models"
)

// Имена query параметров
const (
	paramPage     = "page"
	paramPerPage  = "per_page"
	paramSort     = "sort"
	paramFrom     = "from"
	paramTo       = "to"
	paramLastName = "lastName"
	paramType     = "type"
	paramEmail    = "email"
	paramStatus   = "status"
)

// multiValueSeparator разделитель множественных значений: type=checkup.treatment
const multiValueSeparator = "."

// parseQuery собирает модель сервиса из query параметров.
// Ошибка формата возвращается как *domain.ValidationError
func parseQuery(q url.Values) (*models.ListBookingsRequest, error) {
	req := &models.ListBookingsRequest{
		Sort:     q.Get(paramSort),
		LastName: strings.TrimSpace(q.Get(paramLastName)),
		Email:    strings.TrimSpace(q.Get(paramEmail)),
		Types:    splitMulti(q.Get(paramType)),
		Statuses: splitMulti(q.Get(paramStatus)),
	}

	var err error
	if req.Page, err = parseOptionalInt(q.Get(paramPage)); err != nil {
		return nil, domain.NewValidationError(paramPage, "must be an integer")
	}
	if req.PerPage, err = parseOptionalInt(q.Get(paramPerPage)); err != nil {
		return nil, domain.NewValidationError(paramPerPage, "must be an integer")
	}
	if req.From, err = handlers.ParseOptionalDate(q.Get(paramFrom)); err != nil {
		return nil, domain.NewValidationError(paramFrom, "expected YYYY-MM-DD")
	}
	if req.To, err = handlers.ParseOptionalDate(q.Get(paramTo)); err != nil {
		return nil, domain.NewValidationError(paramTo, "expected YYYY-MM-DD")
	}

	return req, nil
}

// parseOptionalInt пустая строка даёт 0, значение по умолчанию подставит сервис
func parseOptionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func splitMulti(s string) []string {
	if s == "" {
		return nil
	}

	var result []string
	for _, part := range strings.Split(s, multiValueSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

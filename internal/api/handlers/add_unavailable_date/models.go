package add_unavailable_date

import (
	"github.com/m04kA/SMC-ClinicBooking/internal/api/handlers"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/schedule/models"
)

// AddUnavailableDateRequest HTTP request model
type AddUnavailableDateRequest struct {
	Date   string  `json:"date"` // "2025-12-25"
	Reason *string `json:"reason,omitempty"`
}

// AddUnavailableDateResponse HTTP response model
type AddUnavailableDateResponse struct {
	Date    string `json:"date"`
	Created bool   `json:"created"` // false, если дата уже была закрыта
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *AddUnavailableDateRequest) ToServiceRequest() (*models.AddUnavailableDateRequest, error) {
	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	return &models.AddUnavailableDateRequest{
		Date:   date,
		Reason: r.Reason,
	}, nil
}

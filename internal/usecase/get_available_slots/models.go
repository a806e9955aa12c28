package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	Date time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком слотов
type Response struct {
	Date  time.Time              // Дата, на которую запрашивались слоты
	Slots []domain.AvailableSlot // Слоты по возрастанию времени, включая заполненные
}

package admit_booking

import (
	"time"

	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// Request модель запроса на запись пациента
type Request struct {
	Date      time.Time        // Дата визита (без времени)
	StartTime types.TimeString // Время начала слота (например, "10:00")
	Type      string           // Тип визита
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Message   *string // Комментарий пациента (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID        int64            // ID созданного бронирования
	Type      string           // Тип визита
	Status    string           // Статус бронирования (pending)
	Date      time.Time        // Дата визита
	StartTime types.TimeString // Время начала
	Slot      time.Time        // Момент начала слота
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Message   *string

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}

package admit_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("admit_booking: invalid input data")

	// ErrSlotNotOffered возвращается, когда слот не предлагается на эту дату
	// (выходной, закрытый день, прошлое, вне окна записи или не совпадает с сеткой)
	ErrSlotNotOffered = errors.New("admit_booking: slot is not offered")

	// ErrSlotTaken возвращается, когда все места в слоте заняты
	ErrSlotTaken = errors.New("admit_booking: slot is taken")

	// ErrStorageUnavailable возвращается при временной недоступности хранилища.
	// Запрос можно повторить
	ErrStorageUnavailable = errors.New("admit_booking: storage unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("admit_booking: internal error")
)

// Исходы для метрики admissions_total
const (
	OutcomeAdmitted           = "admitted"
	OutcomeInvalidInput       = "invalid_input"
	OutcomeSlotNotOffered     = "slot_not_offered"
	OutcomeSlotTaken          = "slot_taken"
	OutcomeStorageUnavailable = "storage_unavailable"
	OutcomeError              = "error"
)

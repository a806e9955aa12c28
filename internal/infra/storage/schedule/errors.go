package schedule

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда строка расписания ещё не создана
	ErrScheduleNotFound = errors.New("schedule.repository: schedule not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")

	// ErrEncodePeriods возвращается при ошибке (де)сериализации периодов
	ErrEncodePeriods = errors.New("schedule.repository: failed to encode periods")
)

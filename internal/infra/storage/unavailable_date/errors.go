package unavailable_date

import "errors"

var (
	// ErrLockDate возвращается, когда не удалось захватить блокировку дня
	ErrLockDate = errors.New("unavailable_date.repository: failed to lock date")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("unavailable_date.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("unavailable_date.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("unavailable_date.repository: failed to scan row")
)

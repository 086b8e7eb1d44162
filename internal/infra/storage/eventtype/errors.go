package eventtype

import "errors"

var (
	// ErrEventTypeNotFound возвращается, когда event type не найден
	ErrEventTypeNotFound = errors.New("eventtype.repository: event type not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("eventtype.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("eventtype.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("eventtype.repository: failed to scan row")
)

package workflow

import "errors"

var (
	// ErrReminderNotFound возвращается, когда напоминание не найдено
	ErrReminderNotFound = errors.New("workflow.repository: reminder not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("workflow.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("workflow.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("workflow.repository: failed to scan row")
)

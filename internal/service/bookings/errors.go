package bookings

import "errors"

var (
	// ErrBookingNotFound бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")
	// ErrAccessDenied пользователь не имеет доступа к бронированию
	ErrAccessDenied = errors.New("access denied")
)

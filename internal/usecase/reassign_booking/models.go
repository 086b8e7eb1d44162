package reassign_booking

import (
	"time"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
)

// Request модель запроса на переназначение организатора
type Request struct {
	BookingID      int64  // ID бронирования
	NewOrganizerID int64  // ID нового организатора
	OrganizationID *int64 // ID организации (опционально, влияет на booker URL в напоминаниях)
}

// Response модель ответа с обновлённым бронированием
type Response struct {
	ID          int64
	UID         string
	Title       string
	StartTime   time.Time
	EndTime     time.Time
	OrganizerID int64
	Location    *string
	Status      string

	// Изменился ли организатор (false для no-op переназначения)
	OrganizerChanged bool

	UpdatedAt time.Time
}

// toResponse конвертирует доменное бронирование в ответ usecase
func toResponse(booking *domain.Booking, organizerChanged bool) *Response {
	return &Response{
		ID:               booking.ID,
		UID:              booking.UID,
		Title:            booking.Title,
		StartTime:        booking.StartTime,
		EndTime:          booking.EndTime,
		OrganizerID:      booking.OrganizerID(),
		Location:         booking.Location,
		Status:           string(booking.Status),
		OrganizerChanged: organizerChanged,
		UpdatedAt:        booking.UpdatedAt,
	}
}

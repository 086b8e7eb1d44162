package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusAccepted  BookingStatus = "accepted"
	StatusCancelled BookingStatus = "cancelled"
	StatusRejected  BookingStatus = "rejected"
)

// Booking represents a scheduled meeting in the system
type Booking struct {
	ID          int64
	UID         string // Публичный идентификатор бронирования (UUID)
	Title       string
	Description *string
	StartTime   time.Time
	EndTime     time.Time
	UserID      *int64 // ID организатора (nullable - бронирование может потерять владельца)
	EventTypeID *int64
	Location    *string
	Status      BookingStatus

	// Ответы на кастомные поля формы бронирования (jsonb)
	Responses map[string]interface{}

	Attendees  []Attendee
	References []BookingReference

	// Версия строки для оптимистичной блокировки при переназначении организатора
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasOrganizer returns true if the booking has a current organizer
func (b *Booking) HasOrganizer() bool {
	return b.UserID != nil
}

// OrganizerID returns the current organizer id (0 if none)
func (b *Booking) OrganizerID() int64 {
	if b.UserID == nil {
		return 0
	}
	return *b.UserID
}

// IsActive returns true if the booking is in an active state
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusAccepted
}

// AttendeeName возвращает имя участника для подстановки в название встречи
// Приоритет: ответ формы "name", затем имя первого участника, затем заглушка
func (b *Booking) AttendeeName() string {
	if name, ok := b.Responses["name"].(string); ok && name != "" {
		return name
	}
	if len(b.Attendees) > 0 && b.Attendees[0].Name != "" {
		return b.Attendees[0].Name
	}
	return NamelessFallback
}

// Attendee represents a booking participant
// Owned by Booking; copied into outbound calendar event payloads
type Attendee struct {
	ID          int64
	BookingID   int64
	Email       string
	Name        string
	TimeZone    string
	Locale      string
	PhoneNumber *string
}

// BookingReference opaque handle linking a booking to a remote
// calendar/conferencing artifact. Replaced wholesale on reassignment.
type BookingReference struct {
	ID                 int64
	BookingID          int64
	Type               string // Тип интеграции (google_calendar, office365_calendar, daily_video, ...)
	UID                string // Идентификатор артефакта на стороне провайдера
	MeetingID          *string
	MeetingPassword    *string
	MeetingURL         *string
	ExternalCalendarID *string
	CredentialID       *int64
}

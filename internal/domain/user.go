package domain

import "time"

// User represents an organizer account
type User struct {
	ID       int64
	Email    string
	Name     string
	Username string
	TimeZone string
	Locale   string
	// Формат времени в письмах: 12 или 24
	TimeFormat int

	// Ссылка дефолтного конференц-приложения организатора
	// Подставляется вместо location-sentinel, если задана
	DefaultConferencingURL *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName returns the user's name with a fallback for empty values
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return NamelessFallback
}

// ResolvedLocale returns the user's locale with a fallback to the default
func (u *User) ResolvedLocale() string {
	if u.Locale != "" {
		return u.Locale
	}
	return DefaultLocale
}

// TimeFormatString returns the Go layout string for the user's time format
func (u *User) TimeFormatString() string {
	if u.TimeFormat == 24 {
		return "15:04"
	}
	return "3:04pm"
}

// DestinationCalendar remote calendar an event is mirrored to
// Belongs either to a user (personal) or to an event type (fixed)
type DestinationCalendar struct {
	ID          int64
	UserID      *int64
	EventTypeID *int64
	Integration string // Тип интеграции (google_calendar, office365_calendar, ...)
	ExternalID  string // Идентификатор календаря у провайдера
}

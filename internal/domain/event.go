package domain

import "time"

// EventLanguage язык участника события, разрешённый через Translation Service
type EventLanguage struct {
	Locale string
}

// EventPerson участник или организатор в payload календарного события
type EventPerson struct {
	Email       string
	Name        string
	TimeZone    string
	Language    EventLanguage
	PhoneNumber *string
}

// CalendarEventPayload ephemeral контракт, передаваемый Calendar Gateway
// Собирается из Booking + EventType + организатора + участников, не хранится
type CalendarEventPayload struct {
	Type        string // Slug event type
	Title       string
	Description *string
	StartTime   time.Time // UTC
	EndTime     time.Time // UTC
	Organizer   EventPerson
	Attendees   []EventPerson
	UID         string
	Location    *string
	Responses   map[string]interface{}

	DestinationCalendars []DestinationCalendar
}

// VideoCallURL возвращает ссылку на видеозвонок, если локация - URL
func (e *CalendarEventPayload) VideoCallURL() string {
	if e.Location == nil {
		return ""
	}
	loc := *e.Location
	if len(loc) >= 8 && (loc[:8] == "https://" || loc[:7] == "http://") {
		return loc
	}
	return ""
}

// WithOrganizer возвращает копию payload с заменённым организатором
// Участники и ссылки общие с оригиналом - payload не мутируется after build
func (e *CalendarEventPayload) WithOrganizer(organizer EventPerson) *CalendarEventPayload {
	clone := *e
	clone.Organizer = organizer
	return &clone
}

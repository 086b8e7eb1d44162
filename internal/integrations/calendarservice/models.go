package calendarservice

import (
	"time"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
)

// PersonPayload участник события в wire-формате
type PersonPayload struct {
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	TimeZone    string  `json:"timeZone"`
	Locale      string  `json:"locale"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

// CalendarPayload календарь назначения в wire-формате
type CalendarPayload struct {
	Integration string `json:"integration"`
	ExternalID  string `json:"externalId"`
}

// EventPayload календарное событие в wire-формате
type EventPayload struct {
	Type                 string                 `json:"type"`
	Title                string                 `json:"title"`
	Description          *string                `json:"description,omitempty"`
	StartTime            time.Time              `json:"startTime"`
	EndTime              time.Time              `json:"endTime"`
	UID                  string                 `json:"uid"`
	Location             *string                `json:"location,omitempty"`
	Organizer            PersonPayload          `json:"organizer"`
	Attendees            []PersonPayload        `json:"attendees"`
	Responses            map[string]interface{} `json:"responses,omitempty"`
	DestinationCalendars []CalendarPayload      `json:"destinationCalendars,omitempty"`
}

// RescheduleRequest запрос на пересоздание внешних артефактов бронирования
type RescheduleRequest struct {
	BookingUID         string            `json:"bookingUid"`
	Event              EventPayload      `json:"event"`
	OrganizerChanged   bool              `json:"organizerChanged"`
	CalendarsToCleanUp []CalendarPayload `json:"calendarsToCleanUp,omitempty"`
}

// ReferencePayload созданный артефакт в ответе шлюза
type ReferencePayload struct {
	Type               string  `json:"type"`
	UID                string  `json:"uid"`
	MeetingID          *string `json:"meetingId,omitempty"`
	MeetingPassword    *string `json:"meetingPassword,omitempty"`
	MeetingURL         *string `json:"meetingUrl,omitempty"`
	ExternalCalendarID *string `json:"externalCalendarId,omitempty"`
	CredentialID       *int64  `json:"credentialId,omitempty"`
}

// RescheduleResponse ответ шлюза на reschedule
type RescheduleResponse struct {
	ReferencesToCreate []ReferencePayload `json:"referencesToCreate"`
}

// ErrorResponse модель ошибки от сервиса
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ToEventPayload конвертирует доменный payload в wire-формат
func ToEventPayload(evt *domain.CalendarEventPayload) EventPayload {
	attendees := make([]PersonPayload, 0, len(evt.Attendees))
	for _, a := range evt.Attendees {
		attendees = append(attendees, toPersonPayload(a))
	}

	calendars := make([]CalendarPayload, 0, len(evt.DestinationCalendars))
	for _, c := range evt.DestinationCalendars {
		calendars = append(calendars, CalendarPayload{
			Integration: c.Integration,
			ExternalID:  c.ExternalID,
		})
	}

	return EventPayload{
		Type:                 evt.Type,
		Title:                evt.Title,
		Description:          evt.Description,
		StartTime:            evt.StartTime.UTC(),
		EndTime:              evt.EndTime.UTC(),
		UID:                  evt.UID,
		Location:             evt.Location,
		Organizer:            toPersonPayload(evt.Organizer),
		Attendees:            attendees,
		Responses:            evt.Responses,
		DestinationCalendars: calendars,
	}
}

// ToCalendarPayloads конвертирует календари назначения в wire-формат
func ToCalendarPayloads(calendars []domain.DestinationCalendar) []CalendarPayload {
	payloads := make([]CalendarPayload, 0, len(calendars))
	for _, c := range calendars {
		payloads = append(payloads, CalendarPayload{
			Integration: c.Integration,
			ExternalID:  c.ExternalID,
		})
	}
	return payloads
}

// ToDomainReferences конвертирует ответ шлюза в доменные ссылки
func ToDomainReferences(bookingID int64, refs []ReferencePayload) []domain.BookingReference {
	references := make([]domain.BookingReference, 0, len(refs))
	for _, ref := range refs {
		references = append(references, domain.BookingReference{
			BookingID:          bookingID,
			Type:               ref.Type,
			UID:                ref.UID,
			MeetingID:          ref.MeetingID,
			MeetingPassword:    ref.MeetingPassword,
			MeetingURL:         ref.MeetingURL,
			ExternalCalendarID: ref.ExternalCalendarID,
			CredentialID:       ref.CredentialID,
		})
	}
	return references
}

func toPersonPayload(p domain.EventPerson) PersonPayload {
	return PersonPayload{
		Email:       p.Email,
		Name:        p.Name,
		TimeZone:    p.TimeZone,
		Locale:      p.Language.Locale,
		PhoneNumber: p.PhoneNumber,
	}
}

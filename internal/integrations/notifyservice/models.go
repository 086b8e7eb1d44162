package notifyservice

import (
	"time"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
)

// RecipientPayload получатель уведомления
type RecipientPayload struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	TimeZone   string `json:"timeZone"`
	Locale     string `json:"locale"`
	TimeFormat string `json:"timeFormat"`
}

// EventSummaryPayload краткое описание события в уведомлении
type EventSummaryPayload struct {
	UID       string    `json:"uid"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Location  *string   `json:"location,omitempty"`
	Organizer string    `json:"organizer"`
}

// EventTypeSummaryPayload метаданные event type для оформления письма
type EventTypeSummaryPayload struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	Length      int     `json:"length"`
	TeamName    string  `json:"teamName,omitempty"`
}

// SendRequest запрос на отправку транзакционного письма
type SendRequest struct {
	Kind       string              `json:"kind"` // scheduled | cancelled
	Event      EventSummaryPayload `json:"event"`
	Recipients []RecipientPayload  `json:"recipients"`
	// Метаданные event type; шлюз использует их для брендирования письма
	EventType *EventTypeSummaryPayload `json:"eventType,omitempty"`
	// iCalendar вложение (METHOD:REQUEST для scheduled, METHOD:CANCEL для cancelled)
	ICalendar string `json:"icalendar,omitempty"`
}

// ScheduleReminderRequest запрос на отложенную отправку напоминания
type ScheduleReminderRequest struct {
	SendTo     string              `json:"sendTo"`
	SendAt     time.Time           `json:"sendAt"`
	Trigger    string              `json:"trigger"`
	Template   string              `json:"template"`
	Event      EventSummaryPayload `json:"event"`
	VideoURL   string              `json:"videoUrl,omitempty"`
	BookerURL  string              `json:"bookerUrl,omitempty"`
	BookingUID string              `json:"bookingUid"`
}

// ScheduleReminderResponse ответ с идентификатором отложенной отправки
type ScheduleReminderResponse struct {
	ReferenceID string `json:"referenceId"`
}

// ErrorResponse модель ошибки от сервиса
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ToEventSummary конвертирует доменный payload в краткое описание события
func ToEventSummary(evt *domain.CalendarEventPayload) EventSummaryPayload {
	return EventSummaryPayload{
		UID:       evt.UID,
		Type:      evt.Type,
		Title:     evt.Title,
		StartTime: evt.StartTime.UTC(),
		EndTime:   evt.EndTime.UTC(),
		Location:  evt.Location,
		Organizer: evt.Organizer.Name,
	}
}

// ToEventTypeSummary конвертирует event type в метаданные уведомления
func ToEventTypeSummary(et *domain.EventType) *EventTypeSummaryPayload {
	if et == nil {
		return nil
	}
	return &EventTypeSummaryPayload{
		ID:          et.ID,
		Title:       et.Title,
		Slug:        et.Slug,
		Description: et.Description,
		Length:      et.Length,
		TeamName:    et.TeamName(),
	}
}

// ToRecipient конвертирует пользователя в получателя уведомления
func ToRecipient(u *domain.User) RecipientPayload {
	return RecipientPayload{
		Email:      u.Email,
		Name:       u.DisplayName(),
		TimeZone:   u.TimeZone,
		Locale:     u.ResolvedLocale(),
		TimeFormat: u.TimeFormatString(),
	}
}

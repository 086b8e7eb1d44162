package reassign_booking

import (
	"strconv"
	"strings"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
)

// eventNameInput данные для вычисления названия встречи
type eventNameInput struct {
	AttendeeName   string
	EventTypeTitle string
	// Кастомный шаблон названия из event type (пустой - название по умолчанию)
	EventName string
	TeamName  string
	HostName  string
	Location  string
	Duration  int
	Locale    string
}

// buildEventName вычисляет название встречи
// Без кастомного шаблона - локализованное "{Event type} between {Host} and {Attendee}",
// для командных событий вместо имени организатора подставляется имя команды
func buildEventName(t Translator, in eventNameInput) string {
	if in.EventName == "" {
		host := in.HostName
		if in.TeamName != "" {
			host = in.TeamName
		}
		return t.Translate(in.Locale, "event_between_users", in.EventTypeTitle, host, in.AttendeeName)
	}

	replacer := strings.NewReplacer(
		"{Event type title}", in.EventTypeTitle,
		"{Organiser}", in.HostName,
		"{Scheduler}", in.AttendeeName,
		"{Location}", in.Location,
		"{Team}", in.TeamName,
		"{Event duration}", strconv.Itoa(in.Duration),
	)

	return replacer.Replace(in.EventName)
}

// resolveBookingLocation разрешает локацию бронирования под нового организатора
// Sentinel "дефолтное приложение организатора" заменяется на ссылку нового
// организатора; если ссылки нет - fallback на статическую локацию event type
func resolveBookingLocation(booking *domain.Booking, eventType *domain.EventType, newOrganizer *domain.User) *string {
	if !eventType.HasOrganizerDefaultLocation() {
		return booking.Location
	}

	if newOrganizer.DefaultConferencingURL != nil && *newOrganizer.DefaultConferencingURL != "" {
		return newOrganizer.DefaultConferencingURL
	}

	fallback := eventType.FirstStaticLocation()
	return &fallback
}

package domain

import "time"

// EventType template describing a bookable meeting kind
// Read-only from the reassignment flow's perspective
type EventType struct {
	ID          int64
	Title       string
	Slug        string
	Description *string
	// Шаблон названия встречи с плейсхолдерами ({Event type title}, {Organiser}, {Scheduler}, {Location})
	// Пустая строка - используется название по умолчанию
	EventName string
	// Длительность встречи в минутах
	Length int

	// Типы локаций, доступные для этого event type
	Locations []string

	TeamID *int64
	Team   *Team

	// Фиксированный календарь назначения; имеет приоритет над личным календарем организатора
	DestinationCalendar *DestinationCalendar

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasOrganizerDefaultLocation returns true if the event type uses the
// "organizer's default conferencing app" sentinel location
func (et *EventType) HasOrganizerDefaultLocation() bool {
	for _, loc := range et.Locations {
		if loc == LocationOrganizerDefault {
			return true
		}
	}
	return false
}

// FirstStaticLocation возвращает первую не-sentinel локацию event type
// Используется как fallback, когда у организатора нет дефолтной ссылки
func (et *EventType) FirstStaticLocation() string {
	for _, loc := range et.Locations {
		if loc != LocationOrganizerDefault {
			return loc
		}
	}
	return LocationDefaultVideo
}

// TeamName returns the owning team name (empty string for personal event types)
func (et *EventType) TeamName() string {
	if et.Team == nil {
		return ""
	}
	return et.Team.Name
}

// Team owning a shared event type
type Team struct {
	ID       int64
	Name     string
	ParentID *int64 // Родительская команда (организация), если есть
}

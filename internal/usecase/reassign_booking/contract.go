package reassign_booking

import (
	"context"
	"time"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
	"github.com/calhub/CalHub-ReassignService/internal/integrations/notifyservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateOrganizer(ctx context.Context, id int64, newUserID int64, title string, location *string, version int64) error
	ReplaceReferences(ctx context.Context, bookingID int64, references []domain.BookingReference) error
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetDestinationCalendar(ctx context.Context, userID int64) (*domain.DestinationCalendar, error)
}

// EventTypeRepository интерфейс репозитория event types
type EventTypeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.EventType, error)
}

// WorkflowRepository интерфейс репозитория workflows и напоминаний
type WorkflowRepository interface {
	GetOrganizerEmailReminders(ctx context.Context, bookingUID string) ([]*domain.WorkflowReminder, error)
	CreateReminder(ctx context.Context, reminder *domain.WorkflowReminder) (*domain.WorkflowReminder, error)
	DeleteReminder(ctx context.Context, id int64) error
	GetNewEventWorkflows(ctx context.Context, eventTypeID int64, teamID, parentTeamID *int64) ([]*domain.Workflow, error)
}

// CalendarGateway интерфейс шлюза календарей и видеосвязи
type CalendarGateway interface {
	Reschedule(
		ctx context.Context,
		evt *domain.CalendarEventPayload,
		bookingUID string,
		organizerChanged bool,
		calendarsToCleanUp []domain.DestinationCalendar,
	) ([]domain.BookingReference, error)
}

// NotificationGateway интерфейс шлюза уведомлений
// Все вызовы best-effort: сбой логируется и не прерывает операцию
type NotificationGateway interface {
	SendScheduled(ctx context.Context, evt *domain.CalendarEventPayload, recipients []*domain.User) error
	SendCancelled(ctx context.Context, evt *domain.CalendarEventPayload, recipients []*domain.User, eventType *domain.EventType) error
	ScheduleReminder(ctx context.Context, req *notifyservice.ScheduleReminderRequest) (string, error)
	CancelReminder(ctx context.Context, referenceID string) error
}

// Translator интерфейс сервиса переводов
type Translator interface {
	Resolve(locale string) string
	Language(locale string) domain.EventLanguage
	Translate(locale, key string, args ...interface{}) string
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

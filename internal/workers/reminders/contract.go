package reminders

import (
	"context"
	"time"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
	"github.com/calhub/CalHub-ReassignService/internal/integrations/notifyservice"
)

// WorkflowRepository интерфейс репозитория workflow-напоминаний
type WorkflowRepository interface {
	GetDueEmailReminders(ctx context.Context, before time.Time, limit int) ([]*domain.WorkflowReminder, error)
	MarkScheduled(ctx context.Context, id int64, referenceID *string) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByUID(ctx context.Context, uid string) (*domain.Booking, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// NotificationGateway интерфейс шлюза уведомлений
type NotificationGateway interface {
	ScheduleReminder(ctx context.Context, req *notifyservice.ScheduleReminderRequest) (string, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

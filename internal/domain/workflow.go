package domain

import "time"

// WorkflowTrigger событие жизненного цикла бронирования, запускающее workflow
type WorkflowTrigger string

const (
	TriggerBeforeEvent     WorkflowTrigger = "BEFORE_EVENT"
	TriggerNewEvent        WorkflowTrigger = "NEW_EVENT"
	TriggerAfterEvent      WorkflowTrigger = "AFTER_EVENT"
	TriggerEventCancelled  WorkflowTrigger = "EVENT_CANCELLED"
	TriggerRescheduleEvent WorkflowTrigger = "RESCHEDULE_EVENT"
)

// WorkflowAction действие шага workflow
type WorkflowAction string

const (
	ActionEmailHost     WorkflowAction = "EMAIL_HOST"
	ActionEmailAttendee WorkflowAction = "EMAIL_ATTENDEE"
	ActionSMSAttendee   WorkflowAction = "SMS_ATTENDEE"
)

// WorkflowMethod способ доставки напоминания
type WorkflowMethod string

const (
	MethodEmail WorkflowMethod = "EMAIL"
	MethodSMS   WorkflowMethod = "SMS"
)

// TimeUnit единица измерения сдвига напоминания относительно триггера
type TimeUnit string

const (
	TimeUnitMinute TimeUnit = "minute"
	TimeUnitHour   TimeUnit = "hour"
	TimeUnitDay    TimeUnit = "day"
)

// OrganizerReminderTriggers триггеры, чьи напоминания привязаны к организатору
// и должны быть перепривязаны при переназначении
var OrganizerReminderTriggers = []WorkflowTrigger{
	TriggerBeforeEvent,
	TriggerNewEvent,
	TriggerAfterEvent,
}

// Workflow автоматизация, привязанная к event type или команде
type Workflow struct {
	ID            int64
	Name          string
	TeamID        *int64
	Trigger       WorkflowTrigger
	Time          *int // Сдвиг относительно триггера (nil для NEW_EVENT)
	TimeUnit      *TimeUnit
	IsActiveOnAll bool // Активен на всех event types команды
	Steps         []WorkflowStep
}

// WorkflowStep шаг workflow с конкретным действием
type WorkflowStep struct {
	ID         int64
	WorkflowID int64
	Action     WorkflowAction
	Template   string
}

// HostSteps returns only the EMAIL_HOST steps of the workflow
func (w *Workflow) HostSteps() []WorkflowStep {
	steps := make([]WorkflowStep, 0, len(w.Steps))
	for _, s := range w.Steps {
		if s.Action == ActionEmailHost {
			steps = append(steps, s)
		}
	}
	return steps
}

// WorkflowReminder запланированное напоминание по бронированию
type WorkflowReminder struct {
	ID             int64
	BookingUID     string
	WorkflowStepID int64
	Method         WorkflowMethod
	ScheduledDate  time.Time
	// Идентификатор отложенной отправки на стороне провайдера (если есть)
	ReferenceID *string
	// Передано ли напоминание провайдеру
	Scheduled bool

	// Данные шага и workflow, поднятые join-ом (для перепланирования)
	Step     *WorkflowStep
	Trigger  WorkflowTrigger
	Time     *int
	TimeUnit *TimeUnit
}

// ReminderTime вычисляет момент срабатывания напоминания для триггера
// BEFORE_EVENT - сдвиг до начала, AFTER_EVENT - сдвиг после окончания,
// NEW_EVENT срабатывает сразу (возвращается now)
func ReminderTime(trigger WorkflowTrigger, offset *int, unit *TimeUnit, start, end, now time.Time) time.Time {
	d := reminderOffset(offset, unit)

	switch trigger {
	case TriggerBeforeEvent:
		return start.Add(-d)
	case TriggerAfterEvent:
		return end.Add(d)
	default:
		return now
	}
}

func reminderOffset(offset *int, unit *TimeUnit) time.Duration {
	if offset == nil || unit == nil {
		return 0
	}

	switch *unit {
	case TimeUnitMinute:
		return time.Duration(*offset) * time.Minute
	case TimeUnitHour:
		return time.Duration(*offset) * time.Hour
	case TimeUnitDay:
		return time.Duration(*offset) * 24 * time.Hour
	default:
		return 0
	}
}

package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
	"github.com/calhub/CalHub-ReassignService/internal/integrations/notifyservice"
	"github.com/calhub/CalHub-ReassignService/pkg/ptr"
)

// Насколько вперед воркер забирает напоминания при каждом проходе:
// провайдер сам выдерживает точное время отправки по SendAt
const dispatchLookahead = 15 * time.Minute

// Таймаут одного прохода сканирования
const scanTimeout = 2 * time.Minute

// Config настройки воркера
type Config struct {
	CronSpec  string
	BatchSize int
}

// Worker передает накопившиеся email-напоминания шлюзу уведомлений
// Напоминания, не переданные провайдеру при перепланировании
// (или созданные до внедрения перепланирования), подбираются по cron
type Worker struct {
	cfg          Config
	workflowRepo WorkflowRepository
	bookingRepo  BookingRepository
	userRepo     UserRepository
	notifyGW     NotificationGateway
	logger       Logger

	c *cron.Cron
}

// NewWorker создает новый воркер отправки напоминаний
func NewWorker(
	cfg Config,
	workflowRepo WorkflowRepository,
	bookingRepo BookingRepository,
	userRepo UserRepository,
	notifyGW NotificationGateway,
	logger Logger,
) *Worker {
	return &Worker{
		cfg:          cfg,
		workflowRepo: workflowRepo,
		bookingRepo:  bookingRepo,
		userRepo:     userRepo,
		notifyGW:     notifyGW,
		logger:       logger,
	}
}

// Start регистрирует cron-задачу и запускает планировщик
func (w *Worker) Start() error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

	c := cron.New(cron.WithParser(parser))
	if _, err := c.AddFunc(w.cfg.CronSpec, w.runOnce); err != nil {
		return fmt.Errorf("reminders.Worker - Start: invalid cron spec %q: %w", w.cfg.CronSpec, err)
	}

	c.Start()
	w.c = c

	w.logger.Info("Reminder dispatch worker started: cron_spec=%q, batch_size=%d",
		w.cfg.CronSpec, w.cfg.BatchSize)
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущего прохода
func (w *Worker) Stop() {
	if w.c == nil {
		return
	}

	<-w.c.Stop().Done()
	w.logger.Info("Reminder dispatch worker stopped")
}

func (w *Worker) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	before := time.Now().Add(dispatchLookahead)

	due, err := w.workflowRepo.GetDueEmailReminders(ctx, before, w.cfg.BatchSize)
	if err != nil {
		w.logger.Error("Reminder dispatch - failed to load due reminders: %v", err)
		return
	}

	if len(due) == 0 {
		return
	}

	dispatched := 0
	for _, reminder := range due {
		if err := w.dispatch(ctx, reminder); err != nil {
			// Напоминание остается неотправленным и будет подобрано следующим проходом
			w.logger.Error("Reminder dispatch - failed: reminder_id=%d, booking_uid=%s, error=%v",
				reminder.ID, reminder.BookingUID, err)
			continue
		}
		dispatched++
	}

	w.logger.Info("Reminder dispatch - pass finished: due=%d, dispatched=%d", len(due), dispatched)
}

// dispatch передает одно напоминание провайдеру и помечает его отправленным
func (w *Worker) dispatch(ctx context.Context, reminder *domain.WorkflowReminder) error {
	booking, err := w.bookingRepo.GetByUID(ctx, reminder.BookingUID)
	if err != nil {
		return fmt.Errorf("load booking: %w", err)
	}

	if !booking.IsActive() {
		// Встреча отменена или отклонена - напоминание гасим без отправки
		w.logger.Warn("Reminder dispatch - booking inactive, dropping reminder: reminder_id=%d, booking_uid=%s, status=%s",
			reminder.ID, reminder.BookingUID, booking.Status)
		return w.workflowRepo.MarkScheduled(ctx, reminder.ID, nil)
	}

	if !booking.HasOrganizer() {
		return fmt.Errorf("booking %s has no organizer", reminder.BookingUID)
	}

	organizer, err := w.userRepo.GetByID(ctx, booking.OrganizerID())
	if err != nil {
		return fmt.Errorf("load organizer: %w", err)
	}

	referenceID, err := w.notifyGW.ScheduleReminder(ctx, &notifyservice.ScheduleReminderRequest{
		SendTo:   organizer.Email,
		SendAt:   reminder.ScheduledDate.UTC(),
		Template: "reminder_host",
		Event: notifyservice.EventSummaryPayload{
			UID:       booking.UID,
			Title:     booking.Title,
			StartTime: booking.StartTime.UTC(),
			EndTime:   booking.EndTime.UTC(),
			Location:  booking.Location,
			Organizer: organizer.DisplayName(),
		},
		BookingUID: booking.UID,
	})
	if err != nil {
		return fmt.Errorf("schedule with provider: %w", err)
	}

	if err := w.workflowRepo.MarkScheduled(ctx, reminder.ID, ptr.Ptr(referenceID)); err != nil {
		return fmt.Errorf("mark scheduled: %w", err)
	}

	return nil
}

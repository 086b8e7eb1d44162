package reassign_booking

import (
	"context"
	"strconv"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
	"github.com/calhub/CalHub-ReassignService/internal/integrations/notifyservice"
)

// rebindOrganizerReminders перепривязывает email-напоминания организатора
// к новому адресату. Для каждого напоминания сначала планируется новое,
// и только после успеха удаляется старое - иначе при сбое планирования
// бронирование осталось бы вовсе без напоминаний
// Сбои best-effort: логируются и не прерывают операцию
func (uc *UseCase) rebindOrganizerReminders(
	ctx context.Context,
	booking *domain.Booking,
	newOrganizer *domain.User,
	evt *domain.CalendarEventPayload,
	organizationID *int64,
) {
	reminders, err := uc.workflowRepo.GetOrganizerEmailReminders(ctx, booking.UID)
	if err != nil {
		uc.logger.Error("ReassignBooking: failed to list organizer reminders for booking_uid=%s: %v", booking.UID, err)
		return
	}

	now := uc.timeProvider.Now()

	for _, reminder := range reminders {
		if reminder.Step == nil {
			continue
		}

		sendAt := domain.ReminderTime(reminder.Trigger, reminder.Time, reminder.TimeUnit,
			booking.StartTime, booking.EndTime, now)

		referenceID, err := uc.notifyGW.ScheduleReminder(ctx, &notifyservice.ScheduleReminderRequest{
			SendTo:     newOrganizer.Email,
			SendAt:     sendAt,
			Trigger:    string(reminder.Trigger),
			Template:   reminder.Step.Template,
			Event:      notifyservice.ToEventSummary(evt),
			VideoURL:   evt.VideoCallURL(),
			BookerURL:  uc.bookerURL(organizationID),
			BookingUID: booking.UID,
		})
		if err != nil {
			uc.logger.Error("ReassignBooking: failed to schedule reminder id=%d for booking_uid=%s: %v",
				reminder.ID, booking.UID, err)
			// Старое напоминание не трогаем - лучше письмо прежнему организатору, чем никому
			continue
		}

		_, err = uc.workflowRepo.CreateReminder(ctx, &domain.WorkflowReminder{
			BookingUID:     booking.UID,
			WorkflowStepID: reminder.WorkflowStepID,
			Method:         domain.MethodEmail,
			ScheduledDate:  sendAt,
			ReferenceID:    &referenceID,
			Scheduled:      true,
		})
		if err != nil {
			uc.logger.Error("ReassignBooking: failed to persist rescheduled reminder for booking_uid=%s: %v",
				booking.UID, err)
			continue
		}

		// Новое напоминание на месте - удаляем старое
		if reminder.ReferenceID != nil {
			if err := uc.notifyGW.CancelReminder(ctx, *reminder.ReferenceID); err != nil {
				uc.logger.Warn("ReassignBooking: failed to cancel provider reminder reference=%s: %v",
					*reminder.ReferenceID, err)
			}
		}
		if err := uc.workflowRepo.DeleteReminder(ctx, reminder.ID); err != nil {
			uc.logger.Error("ReassignBooking: failed to delete old reminder id=%d: %v", reminder.ID, err)
		}
	}

	uc.logger.Info("ReassignBooking: rebound %d organizer reminder(s) for booking_uid=%s",
		len(reminders), booking.UID)
}

// scheduleNewEventWorkflows планирует EMAIL_HOST шаги NEW_EVENT workflows,
// применимых к event type, для нового организатора
func (uc *UseCase) scheduleNewEventWorkflows(
	ctx context.Context,
	booking *domain.Booking,
	eventType *domain.EventType,
	newOrganizer *domain.User,
	evt *domain.CalendarEventPayload,
	organizationID *int64,
) {
	var parentTeamID *int64
	if eventType.Team != nil {
		parentTeamID = eventType.Team.ParentID
	}

	workflows, err := uc.workflowRepo.GetNewEventWorkflows(ctx, eventType.ID, eventType.TeamID, parentTeamID)
	if err != nil {
		uc.logger.Error("ReassignBooking: failed to list NEW_EVENT workflows for event_type=%d: %v", eventType.ID, err)
		return
	}

	now := uc.timeProvider.Now()
	scheduled := 0

	for _, workflow := range workflows {
		for _, step := range workflow.HostSteps() {
			sendAt := domain.ReminderTime(workflow.Trigger, workflow.Time, workflow.TimeUnit,
				booking.StartTime, booking.EndTime, now)

			referenceID, err := uc.notifyGW.ScheduleReminder(ctx, &notifyservice.ScheduleReminderRequest{
				SendTo:     newOrganizer.Email,
				SendAt:     sendAt,
				Trigger:    string(workflow.Trigger),
				Template:   step.Template,
				Event:      notifyservice.ToEventSummary(evt),
				VideoURL:   evt.VideoCallURL(),
				BookerURL:  uc.bookerURL(organizationID),
				BookingUID: booking.UID,
			})
			if err != nil {
				uc.logger.Error("ReassignBooking: failed to schedule NEW_EVENT workflow=%d step=%d: %v",
					workflow.ID, step.ID, err)
				continue
			}

			_, err = uc.workflowRepo.CreateReminder(ctx, &domain.WorkflowReminder{
				BookingUID:     booking.UID,
				WorkflowStepID: step.ID,
				Method:         domain.MethodEmail,
				ScheduledDate:  sendAt,
				ReferenceID:    &referenceID,
				Scheduled:      true,
			})
			if err != nil {
				uc.logger.Error("ReassignBooking: failed to persist NEW_EVENT reminder workflow=%d step=%d: %v",
					workflow.ID, step.ID, err)
				continue
			}

			scheduled++
		}
	}

	uc.logger.Info("ReassignBooking: scheduled %d NEW_EVENT workflow reminder(s) for booking_uid=%s",
		scheduled, booking.UID)
}

// bookerURL возвращает базовый URL страницы бронирования
// Для организаций URL дополняется идентификатором организации
func (uc *UseCase) bookerURL(organizationID *int64) string {
	if organizationID == nil {
		return uc.bookerBaseURL
	}
	return uc.bookerBaseURL + "/org/" + strconv.FormatInt(*organizationID, 10)
}

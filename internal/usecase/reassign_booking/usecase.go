package reassign_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
	bookingRepo "github.com/calhub/CalHub-ReassignService/internal/infra/storage/booking"
	eventTypeRepo "github.com/calhub/CalHub-ReassignService/internal/infra/storage/eventtype"
	userRepo "github.com/calhub/CalHub-ReassignService/internal/infra/storage/user"
	"github.com/calhub/CalHub-ReassignService/pkg/ptr"
)

// UseCase use case для ручного переназначения организатора round-robin бронирования
//
// Коммит-точка - перезапись строки бронирования (шаг 6): до неё любая ошибка
// прерывает операцию без внешне видимых изменений, после неё ошибки синхронизации
// календаря поднимаются наверх, но изменение организатора не откатывается
// (forward-only recovery: повтор всей операции или ручная сверка)
type UseCase struct {
	bookingRepo   BookingRepository
	userRepo      UserRepository
	eventTypeRepo EventTypeRepository
	workflowRepo  WorkflowRepository
	calendarGW    CalendarGateway
	notifyGW      NotificationGateway
	translator    Translator
	txManager     TransactionManager
	timeProvider  TimeProvider
	bookerBaseURL string
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	userRepo UserRepository,
	eventTypeRepo EventTypeRepository,
	workflowRepo WorkflowRepository,
	calendarGW CalendarGateway,
	notifyGW NotificationGateway,
	translator Translator,
	txManager TransactionManager,
	bookerBaseURL string,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		userRepo:      userRepo,
		eventTypeRepo: eventTypeRepo,
		workflowRepo:  workflowRepo,
		calendarGW:    calendarGW,
		notifyGW:      notifyGW,
		translator:    translator,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		bookerBaseURL: bookerBaseURL,
		logger:        logger,
	}
}

// Execute выполняет переназначение организатора бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ReassignBooking: booking=%d, new_organizer=%d", req.BookingID, req.NewOrganizerID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ReassignBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Загружаем бронирование с участниками и ссылками
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("ReassignBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("ReassignBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	// Предусловия: у бронирования есть организатор и event type
	if !booking.HasOrganizer() {
		uc.logger.Warn("ReassignBooking: booking id=%d has no organizer", req.BookingID)
		return nil, ErrOrganizerNotFound
	}
	if booking.EventTypeID == nil {
		uc.logger.Warn("ReassignBooking: booking id=%d has no event type", req.BookingID)
		return nil, ErrEventTypeNotFound
	}

	// 3. Загружаем event type, прежнего и нового организаторов
	eventType, err := uc.eventTypeRepo.GetByID(ctx, *booking.EventTypeID)
	if err != nil {
		if errors.Is(err, eventTypeRepo.ErrEventTypeNotFound) {
			uc.logger.Warn("ReassignBooking: event type id=%d not found", *booking.EventTypeID)
			return nil, ErrEventTypeNotFound
		}
		uc.logger.Error("ReassignBooking: failed to get event type id=%d: %v", *booking.EventTypeID, err)
		return nil, fmt.Errorf("%w: failed to get event type: %v", ErrInternal, err)
	}

	originalOrganizer, err := uc.userRepo.GetByID(ctx, booking.OrganizerID())
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			uc.logger.Warn("ReassignBooking: original organizer id=%d not found", booking.OrganizerID())
			return nil, ErrOrganizerNotFound
		}
		uc.logger.Error("ReassignBooking: failed to get original organizer id=%d: %v", booking.OrganizerID(), err)
		return nil, fmt.Errorf("%w: failed to get original organizer: %v", ErrInternal, err)
	}

	newOrganizer, err := uc.userRepo.GetByID(ctx, req.NewOrganizerID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			uc.logger.Warn("ReassignBooking: new organizer id=%d not found", req.NewOrganizerID)
			return nil, ErrNewOrganizerNotFound
		}
		uc.logger.Error("ReassignBooking: failed to get new organizer id=%d: %v", req.NewOrganizerID, err)
		return nil, fmt.Errorf("%w: failed to get new organizer: %v", ErrInternal, err)
	}

	// 4. Определяем, меняется ли организатор (no-op переназначение допустимо)
	organizerChanged := booking.OrganizerID() != req.NewOrganizerID

	// 5. При смене организатора пересчитываем название и локацию
	if organizerChanged {
		location := resolveBookingLocation(booking, eventType, newOrganizer)

		title := buildEventName(uc.translator, eventNameInput{
			AttendeeName:   booking.AttendeeName(),
			EventTypeTitle: eventType.Title,
			EventName:      eventType.EventName,
			TeamName:       eventType.TeamName(),
			HostName:       newOrganizer.DisplayName(),
			Location:       ptr.Deref(location),
			Duration:       eventType.Length,
			Locale:         newOrganizer.ResolvedLocale(),
		})

		// 6. Коммит-точка: перезаписываем организатора с проверкой версии
		err = uc.bookingRepo.UpdateOrganizer(ctx, booking.ID, req.NewOrganizerID, title, location, booking.Version)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrVersionConflict) {
				uc.logger.Warn("ReassignBooking: concurrent reassignment of booking id=%d", booking.ID)
				return nil, ErrConflict
			}
			uc.logger.Error("ReassignBooking: failed to update booking id=%d: %v", booking.ID, err)
			return nil, fmt.Errorf("%w: failed to update booking: %v", ErrInternal, err)
		}

		booking.UserID = ptr.Ptr(req.NewOrganizerID)
		booking.Title = title
		booking.Location = location
		booking.Version++

		uc.logger.Info("ReassignBooking: booking id=%d reassigned %d -> %d, title=%q",
			booking.ID, originalOrganizer.ID, newOrganizer.ID, title)
	}

	// 7. Разрешаем календари назначения по приоритетному правилу
	destinationCalendars, err := uc.resolveDestinationCalendars(ctx, eventType, originalOrganizer.ID, newOrganizer.ID, organizerChanged)
	if err != nil {
		uc.logger.Error("ReassignBooking: failed to resolve destination calendars for booking id=%d: %v", booking.ID, err)
		return nil, uc.afterCommit(organizerChanged, fmt.Errorf("failed to resolve destination calendars: %v", err))
	}

	calendarsToCleanUp, err := uc.previousHostCalendars(ctx, originalOrganizer.ID, organizerChanged)
	if err != nil {
		uc.logger.Error("ReassignBooking: failed to get previous host calendars for booking id=%d: %v", booking.ID, err)
		return nil, uc.afterCommit(organizerChanged, fmt.Errorf("failed to get previous host calendars: %v", err))
	}

	// 8. Собираем payload календарного события под нового организатора
	evt := uc.buildEventPayload(booking, eventType, newOrganizer, destinationCalendars)

	// 9. Пересоздаем внешние артефакты через Calendar Gateway
	newReferences, err := uc.calendarGW.Reschedule(ctx, evt, booking.UID, organizerChanged, calendarsToCleanUp)
	if err != nil {
		uc.logger.Error("ReassignBooking: calendar gateway failed for booking id=%d: %v", booking.ID, err)
		return nil, uc.afterCommit(organizerChanged, fmt.Errorf("calendar gateway: %v", err))
	}

	// 10. Атомарно заменяем ссылки на артефакты новым набором
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		return uc.bookingRepo.ReplaceReferences(txCtx, booking.ID, newReferences)
	})
	if err != nil {
		uc.logger.Error("ReassignBooking: failed to replace references for booking id=%d: %v", booking.ID, err)
		return nil, uc.afterCommit(organizerChanged, fmt.Errorf("failed to replace references: %v", err))
	}
	booking.References = newReferences

	// 11. Уведомление о назначении новому организатору (best-effort)
	if err := uc.notifyGW.SendScheduled(ctx, evt, []*domain.User{newOrganizer}); err != nil {
		uc.logger.Error("ReassignBooking: scheduled notification failed for booking id=%d: %v", booking.ID, err)
	}

	// 12. При смене организатора: уведомление об отмене прежнему организатору
	// и перепривязка напоминаний
	if organizerChanged {
		cancelledEvt := evt.WithOrganizer(uc.toEventPerson(originalOrganizer))
		if err := uc.notifyGW.SendCancelled(ctx, cancelledEvt, []*domain.User{originalOrganizer}, eventType); err != nil {
			uc.logger.Error("ReassignBooking: cancelled notification failed for booking id=%d: %v", booking.ID, err)
		}

		uc.rebindOrganizerReminders(ctx, booking, newOrganizer, evt, req.OrganizationID)
		uc.scheduleNewEventWorkflows(ctx, booking, eventType, newOrganizer, evt, req.OrganizationID)
	}

	uc.logger.Info("ReassignBooking: successfully completed for booking id=%d, organizer_changed=%t",
		booking.ID, organizerChanged)

	return toResponse(booking, organizerChanged), nil
}

// buildEventPayload собирает ephemeral payload для Calendar Gateway
// Язык каждого участника разрешается через Translation Service
func (uc *UseCase) buildEventPayload(
	booking *domain.Booking,
	eventType *domain.EventType,
	organizer *domain.User,
	destinationCalendars []domain.DestinationCalendar,
) *domain.CalendarEventPayload {
	attendees := make([]domain.EventPerson, 0, len(booking.Attendees))
	for _, a := range booking.Attendees {
		attendees = append(attendees, domain.EventPerson{
			Email:       a.Email,
			Name:        a.Name,
			TimeZone:    a.TimeZone,
			Language:    uc.translator.Language(a.Locale),
			PhoneNumber: a.PhoneNumber,
		})
	}

	return &domain.CalendarEventPayload{
		Type:                 eventType.Slug,
		Title:                booking.Title,
		Description:          eventType.Description,
		StartTime:            booking.StartTime.UTC(),
		EndTime:              booking.EndTime.UTC(),
		Organizer:            uc.toEventPerson(organizer),
		Attendees:            attendees,
		UID:                  booking.UID,
		Location:             booking.Location,
		Responses:            booking.Responses,
		DestinationCalendars: destinationCalendars,
	}
}

func (uc *UseCase) toEventPerson(u *domain.User) domain.EventPerson {
	return domain.EventPerson{
		Email:    u.Email,
		Name:     u.DisplayName(),
		TimeZone: u.TimeZone,
		Language: uc.translator.Language(u.Locale),
	}
}

// afterCommit оборачивает ошибку, случившуюся после коммит-точки
// При смене организатора запись уже применена - состояние разошлось с календарем
func (uc *UseCase) afterCommit(organizerChanged bool, err error) error {
	if organizerChanged {
		return fmt.Errorf("%w: %v", ErrCalendarSync, err)
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

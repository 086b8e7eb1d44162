package reassign_booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
	bookingRepo "github.com/calhub/CalHub-ReassignService/internal/infra/storage/booking"
	userRepo "github.com/calhub/CalHub-ReassignService/internal/infra/storage/user"
	"github.com/calhub/CalHub-ReassignService/internal/integrations/notifyservice"
	"github.com/calhub/CalHub-ReassignService/internal/service/translations"
	"github.com/calhub/CalHub-ReassignService/pkg/ptr"
)

// ---- Стабы зависимостей ----

type stubBookingRepo struct {
	getByIDFn           func(ctx context.Context, id int64) (*domain.Booking, error)
	updateOrganizerFn   func(ctx context.Context, id, newUserID int64, title string, location *string, version int64) error
	replaceReferencesFn func(ctx context.Context, bookingID int64, refs []domain.BookingReference) error
}

func (s *stubBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubBookingRepo) UpdateOrganizer(ctx context.Context, id, newUserID int64, title string, location *string, version int64) error {
	if s.updateOrganizerFn == nil {
		return nil
	}
	return s.updateOrganizerFn(ctx, id, newUserID, title, location, version)
}

func (s *stubBookingRepo) ReplaceReferences(ctx context.Context, bookingID int64, refs []domain.BookingReference) error {
	if s.replaceReferencesFn == nil {
		return nil
	}
	return s.replaceReferencesFn(ctx, bookingID, refs)
}

type stubUserRepo struct {
	getByIDFn                func(ctx context.Context, id int64) (*domain.User, error)
	getDestinationCalendarFn func(ctx context.Context, userID int64) (*domain.DestinationCalendar, error)
}

func (s *stubUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubUserRepo) GetDestinationCalendar(ctx context.Context, userID int64) (*domain.DestinationCalendar, error) {
	if s.getDestinationCalendarFn == nil {
		return nil, userRepo.ErrCalendarNotFound
	}
	return s.getDestinationCalendarFn(ctx, userID)
}

type stubEventTypeRepo struct {
	getByIDFn func(ctx context.Context, id int64) (*domain.EventType, error)
}

func (s *stubEventTypeRepo) GetByID(ctx context.Context, id int64) (*domain.EventType, error) {
	return s.getByIDFn(ctx, id)
}

type stubWorkflowRepo struct {
	getOrganizerEmailRemindersFn func(ctx context.Context, bookingUID string) ([]*domain.WorkflowReminder, error)
	createReminderFn             func(ctx context.Context, r *domain.WorkflowReminder) (*domain.WorkflowReminder, error)
	deleteReminderFn             func(ctx context.Context, id int64) error
	getNewEventWorkflowsFn       func(ctx context.Context, eventTypeID int64, teamID, parentTeamID *int64) ([]*domain.Workflow, error)
}

func (s *stubWorkflowRepo) GetOrganizerEmailReminders(ctx context.Context, bookingUID string) ([]*domain.WorkflowReminder, error) {
	if s.getOrganizerEmailRemindersFn == nil {
		return nil, nil
	}
	return s.getOrganizerEmailRemindersFn(ctx, bookingUID)
}

func (s *stubWorkflowRepo) CreateReminder(ctx context.Context, r *domain.WorkflowReminder) (*domain.WorkflowReminder, error) {
	if s.createReminderFn == nil {
		return r, nil
	}
	return s.createReminderFn(ctx, r)
}

func (s *stubWorkflowRepo) DeleteReminder(ctx context.Context, id int64) error {
	if s.deleteReminderFn == nil {
		return nil
	}
	return s.deleteReminderFn(ctx, id)
}

func (s *stubWorkflowRepo) GetNewEventWorkflows(ctx context.Context, eventTypeID int64, teamID, parentTeamID *int64) ([]*domain.Workflow, error) {
	if s.getNewEventWorkflowsFn == nil {
		return nil, nil
	}
	return s.getNewEventWorkflowsFn(ctx, eventTypeID, teamID, parentTeamID)
}

type stubCalendarGateway struct {
	rescheduleFn func(ctx context.Context, evt *domain.CalendarEventPayload, bookingUID string, organizerChanged bool, cleanup []domain.DestinationCalendar) ([]domain.BookingReference, error)
}

func (s *stubCalendarGateway) Reschedule(ctx context.Context, evt *domain.CalendarEventPayload, bookingUID string, organizerChanged bool, cleanup []domain.DestinationCalendar) ([]domain.BookingReference, error) {
	return s.rescheduleFn(ctx, evt, bookingUID, organizerChanged, cleanup)
}

type stubNotifyGateway struct {
	sendScheduledFn    func(ctx context.Context, evt *domain.CalendarEventPayload, recipients []*domain.User) error
	sendCancelledFn    func(ctx context.Context, evt *domain.CalendarEventPayload, recipients []*domain.User, eventType *domain.EventType) error
	scheduleReminderFn func(ctx context.Context, req *notifyservice.ScheduleReminderRequest) (string, error)
	cancelReminderFn   func(ctx context.Context, referenceID string) error
}

func (s *stubNotifyGateway) SendScheduled(ctx context.Context, evt *domain.CalendarEventPayload, recipients []*domain.User) error {
	if s.sendScheduledFn == nil {
		return nil
	}
	return s.sendScheduledFn(ctx, evt, recipients)
}

func (s *stubNotifyGateway) SendCancelled(ctx context.Context, evt *domain.CalendarEventPayload, recipients []*domain.User, eventType *domain.EventType) error {
	if s.sendCancelledFn == nil {
		return nil
	}
	return s.sendCancelledFn(ctx, evt, recipients, eventType)
}

func (s *stubNotifyGateway) ScheduleReminder(ctx context.Context, req *notifyservice.ScheduleReminderRequest) (string, error) {
	if s.scheduleReminderFn == nil {
		return "ref-new", nil
	}
	return s.scheduleReminderFn(ctx, req)
}

func (s *stubNotifyGateway) CancelReminder(ctx context.Context, referenceID string) error {
	if s.cancelReminderFn == nil {
		return nil
	}
	return s.cancelReminderFn(ctx, referenceID)
}

type stubTxManager struct{}

func (s *stubTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTimeProvider struct{ now time.Time }

func (f *fixedTimeProvider) Now() time.Time { return f.now }

// ---- Фикстуры ----

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func testBooking() *domain.Booking {
	return &domain.Booking{
		ID:          100,
		UID:         "bk_abc123",
		Title:       "Discovery Call between Alice One and Bob Booker",
		StartTime:   testNow.Add(24 * time.Hour),
		EndTime:     testNow.Add(24*time.Hour + 30*time.Minute),
		UserID:      ptr.Ptr(int64(1)),
		EventTypeID: ptr.Ptr(int64(10)),
		Location:    ptr.Ptr("integrations:daily-video"),
		Status:      domain.StatusAccepted,
		Responses:   map[string]interface{}{"name": "Bob Booker"},
		Attendees: []domain.Attendee{
			{ID: 7, BookingID: 100, Email: "bob@example.com", Name: "Bob Booker", TimeZone: "America/New_York", Locale: "en"},
		},
		References: []domain.BookingReference{
			{ID: 51, BookingID: 100, Type: "google_calendar", UID: "gcal-old", ExternalCalendarID: ptr.Ptr("alice@gmail.com")},
		},
		Version: 3,
	}
}

func testEventType() *domain.EventType {
	return &domain.EventType{
		ID:        10,
		Title:     "Discovery Call",
		Slug:      "discovery-call",
		Length:    30,
		Locations: []string{"integrations:daily-video"},
	}
}

func testUsers() (original, replacement *domain.User) {
	original = &domain.User{
		ID: 1, Email: "alice@example.com", Name: "Alice One",
		TimeZone: "Europe/London", Locale: "en", TimeFormat: 12,
	}
	replacement = &domain.User{
		ID: 2, Email: "carol@example.com", Name: "Carol Two",
		TimeZone: "Europe/Berlin", Locale: "en", TimeFormat: 24,
	}
	return original, replacement
}

type testDeps struct {
	bookings  *stubBookingRepo
	users     *stubUserRepo
	eventType *stubEventTypeRepo
	workflows *stubWorkflowRepo
	calendar  *stubCalendarGateway
	notify    *stubNotifyGateway
}

func defaultDeps() *testDeps {
	original, replacement := testUsers()

	return &testDeps{
		bookings: &stubBookingRepo{
			getByIDFn: func(ctx context.Context, id int64) (*domain.Booking, error) {
				return testBooking(), nil
			},
		},
		users: &stubUserRepo{
			getByIDFn: func(ctx context.Context, id int64) (*domain.User, error) {
				switch id {
				case original.ID:
					return original, nil
				case replacement.ID:
					return replacement, nil
				default:
					return nil, userRepo.ErrUserNotFound
				}
			},
		},
		eventType: &stubEventTypeRepo{
			getByIDFn: func(ctx context.Context, id int64) (*domain.EventType, error) {
				return testEventType(), nil
			},
		},
		workflows: &stubWorkflowRepo{},
		calendar: &stubCalendarGateway{
			rescheduleFn: func(ctx context.Context, evt *domain.CalendarEventPayload, bookingUID string, organizerChanged bool, cleanup []domain.DestinationCalendar) ([]domain.BookingReference, error) {
				return []domain.BookingReference{
					{Type: "google_calendar", UID: "gcal-new", ExternalCalendarID: ptr.Ptr("carol@gmail.com")},
				}, nil
			},
		},
		notify: &stubNotifyGateway{},
	}
}

func newTestUseCase(d *testDeps) *UseCase {
	uc := NewUseCase(
		d.bookings,
		d.users,
		d.eventType,
		d.workflows,
		d.calendar,
		d.notify,
		translations.NewService(),
		&stubTxManager{},
		"https://book.example.com",
		nopLogger{},
	)
	uc.timeProvider = &fixedTimeProvider{now: testNow}
	return uc
}

// ---- Тесты ----

// TestExecute_ReassignsOrganizer проверяет полный happy path смены организатора
func TestExecute_ReassignsOrganizer(t *testing.T) {
	deps := defaultDeps()

	var updatedTitle string
	var updatedUserID, updatedVersion int64
	deps.bookings.updateOrganizerFn = func(ctx context.Context, id, newUserID int64, title string, location *string, version int64) error {
		updatedUserID = newUserID
		updatedTitle = title
		updatedVersion = version
		return nil
	}

	var replacedRefs []domain.BookingReference
	deps.bookings.replaceReferencesFn = func(ctx context.Context, bookingID int64, refs []domain.BookingReference) error {
		replacedRefs = refs
		return nil
	}

	var scheduledTo, cancelledTo []string
	deps.notify.sendScheduledFn = func(ctx context.Context, evt *domain.CalendarEventPayload, recipients []*domain.User) error {
		for _, r := range recipients {
			scheduledTo = append(scheduledTo, r.Email)
		}
		assert.Equal(t, "carol@example.com", evt.Organizer.Email)
		return nil
	}
	deps.notify.sendCancelledFn = func(ctx context.Context, evt *domain.CalendarEventPayload, recipients []*domain.User, eventType *domain.EventType) error {
		for _, r := range recipients {
			cancelledTo = append(cancelledTo, r.Email)
		}
		// В отменяющем письме организатором остается прежний,
		// а метаданные event type уходят для оформления
		assert.Equal(t, "alice@example.com", evt.Organizer.Email)
		require.NotNil(t, eventType)
		assert.Equal(t, "Discovery Call", eventType.Title)
		return nil
	}

	uc := newTestUseCase(deps)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 100, NewOrganizerID: 2})
	require.NoError(t, err)

	// Организатор и версия
	assert.True(t, resp.OrganizerChanged)
	assert.Equal(t, int64(2), resp.OrganizerID)
	assert.Equal(t, int64(2), updatedUserID)
	assert.Equal(t, int64(3), updatedVersion)

	// Название пересчитано под нового организатора
	assert.Equal(t, "Discovery Call between Carol Two and Bob Booker", updatedTitle)
	assert.Equal(t, updatedTitle, resp.Title)

	// Ссылки заменены ровно набором из шлюза
	require.Len(t, replacedRefs, 1)
	assert.Equal(t, "gcal-new", replacedRefs[0].UID)

	// Уведомления: новому - назначение, прежнему - отмена
	assert.Equal(t, []string{"carol@example.com"}, scheduledTo)
	assert.Equal(t, []string{"alice@example.com"}, cancelledTo)
}

// TestExecute_NoOpReassignment проверяет переназначение на текущего организатора:
// строка бронирования не переписывается, отмена не отправляется
func TestExecute_NoOpReassignment(t *testing.T) {
	deps := defaultDeps()

	deps.bookings.updateOrganizerFn = func(ctx context.Context, id, newUserID int64, title string, location *string, version int64) error {
		t.Fatal("UpdateOrganizer must not be called for a no-op reassignment")
		return nil
	}

	cancelled := false
	deps.notify.sendCancelledFn = func(ctx context.Context, evt *domain.CalendarEventPayload, recipients []*domain.User, eventType *domain.EventType) error {
		cancelled = true
		return nil
	}

	var gwOrganizerChanged bool
	deps.calendar.rescheduleFn = func(ctx context.Context, evt *domain.CalendarEventPayload, bookingUID string, organizerChanged bool, cleanup []domain.DestinationCalendar) ([]domain.BookingReference, error) {
		gwOrganizerChanged = organizerChanged
		assert.Empty(t, cleanup)
		return []domain.BookingReference{{Type: "google_calendar", UID: "gcal-kept"}}, nil
	}

	uc := newTestUseCase(deps)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 100, NewOrganizerID: 1})
	require.NoError(t, err)

	assert.False(t, resp.OrganizerChanged)
	assert.Equal(t, int64(1), resp.OrganizerID)
	// Название не пересчитывается
	assert.Equal(t, "Discovery Call between Alice One and Bob Booker", resp.Title)
	assert.False(t, gwOrganizerChanged)
	assert.False(t, cancelled)
}

// TestExecute_BookingNotFound проверяет, что до коммит-точки операция
// прерывается без каких-либо записей
func TestExecute_BookingNotFound(t *testing.T) {
	deps := defaultDeps()
	deps.bookings.getByIDFn = func(ctx context.Context, id int64) (*domain.Booking, error) {
		return nil, bookingRepo.ErrBookingNotFound
	}
	deps.bookings.updateOrganizerFn = func(ctx context.Context, id, newUserID int64, title string, location *string, version int64) error {
		t.Fatal("UpdateOrganizer must not be called when booking is missing")
		return nil
	}

	uc := newTestUseCase(deps)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 100, NewOrganizerID: 2})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

// TestExecute_NewOrganizerNotFound проверяет ошибку при отсутствующем новом организаторе
func TestExecute_NewOrganizerNotFound(t *testing.T) {
	deps := defaultDeps()
	uc := newTestUseCase(deps)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 100, NewOrganizerID: 999})
	assert.ErrorIs(t, err, ErrNewOrganizerNotFound)
}

// TestExecute_InvalidInput проверяет валидацию входных данных
func TestExecute_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
	}{
		{name: "zero booking id", req: &Request{BookingID: 0, NewOrganizerID: 2}},
		{name: "negative organizer id", req: &Request{BookingID: 100, NewOrganizerID: -1}},
		{name: "zero organization id", req: &Request{BookingID: 100, NewOrganizerID: 2, OrganizationID: ptr.Ptr(int64(0))}},
	}

	uc := newTestUseCase(defaultDeps())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

// TestExecute_VersionConflict проверяет маппинг конкурентного переназначения в ErrConflict
func TestExecute_VersionConflict(t *testing.T) {
	deps := defaultDeps()
	deps.bookings.updateOrganizerFn = func(ctx context.Context, id, newUserID int64, title string, location *string, version int64) error {
		return bookingRepo.ErrVersionConflict
	}

	uc := newTestUseCase(deps)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 100, NewOrganizerID: 2})
	assert.ErrorIs(t, err, ErrConflict)
}

// TestExecute_CalendarSyncFailure проверяет, что сбой шлюза календарей после
// коммит-точки поднимается как ErrCalendarSync, а не откатывается
func TestExecute_CalendarSyncFailure(t *testing.T) {
	deps := defaultDeps()

	updated := false
	deps.bookings.updateOrganizerFn = func(ctx context.Context, id, newUserID int64, title string, location *string, version int64) error {
		updated = true
		return nil
	}
	deps.calendar.rescheduleFn = func(ctx context.Context, evt *domain.CalendarEventPayload, bookingUID string, organizerChanged bool, cleanup []domain.DestinationCalendar) ([]domain.BookingReference, error) {
		return nil, errors.New("gateway unavailable")
	}

	uc := newTestUseCase(deps)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 100, NewOrganizerID: 2})
	assert.ErrorIs(t, err, ErrCalendarSync)
	assert.True(t, updated, "commit point must be reached before the gateway call")
}

// TestExecute_CalendarFailureWithoutOrganizerChange проверяет, что сбой шлюза
// при неизменном организаторе не считается рассинхронизацией: строка
// бронирования не переписывалась, поэтому ошибка внутренняя
func TestExecute_CalendarFailureWithoutOrganizerChange(t *testing.T) {
	deps := defaultDeps()

	deps.bookings.updateOrganizerFn = func(ctx context.Context, id, newUserID int64, title string, location *string, version int64) error {
		t.Fatal("UpdateOrganizer must not be called for a no-op reassignment")
		return nil
	}
	deps.calendar.rescheduleFn = func(ctx context.Context, evt *domain.CalendarEventPayload, bookingUID string, organizerChanged bool, cleanup []domain.DestinationCalendar) ([]domain.BookingReference, error) {
		return nil, errors.New("gateway unavailable")
	}

	uc := newTestUseCase(deps)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 100, NewOrganizerID: 1})
	assert.ErrorIs(t, err, ErrInternal)
	assert.NotErrorIs(t, err, ErrCalendarSync)
}

// TestExecute_SentinelLocationFallback проверяет разрешение sentinel-локации:
// у нового организатора нет дефолтной ссылки - берется статическая локация event type
func TestExecute_SentinelLocationFallback(t *testing.T) {
	deps := defaultDeps()

	deps.bookings.getByIDFn = func(ctx context.Context, id int64) (*domain.Booking, error) {
		b := testBooking()
		b.Location = ptr.Ptr(domain.LocationOrganizerDefault)
		return b, nil
	}
	deps.eventType.getByIDFn = func(ctx context.Context, id int64) (*domain.EventType, error) {
		et := testEventType()
		et.Locations = []string{domain.LocationOrganizerDefault, "integrations:daily-video"}
		return et, nil
	}

	var updatedLocation *string
	deps.bookings.updateOrganizerFn = func(ctx context.Context, id, newUserID int64, title string, location *string, version int64) error {
		updatedLocation = location
		return nil
	}

	uc := newTestUseCase(deps)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 100, NewOrganizerID: 2})
	require.NoError(t, err)

	require.NotNil(t, updatedLocation)
	assert.Equal(t, "integrations:daily-video", *updatedLocation)
	assert.Equal(t, updatedLocation, resp.Location)
}

// TestExecute_SentinelLocationUsesOrganizerLink проверяет подстановку
// дефолтной ссылки нового организатора вместо sentinel-локации
func TestExecute_SentinelLocationUsesOrganizerLink(t *testing.T) {
	deps := defaultDeps()

	deps.bookings.getByIDFn = func(ctx context.Context, id int64) (*domain.Booking, error) {
		b := testBooking()
		b.Location = ptr.Ptr(domain.LocationOrganizerDefault)
		return b, nil
	}
	deps.eventType.getByIDFn = func(ctx context.Context, id int64) (*domain.EventType, error) {
		et := testEventType()
		et.Locations = []string{domain.LocationOrganizerDefault}
		return et, nil
	}

	original, replacement := testUsers()
	replacement.DefaultConferencingURL = ptr.Ptr("https://meet.example.com/carol")
	deps.users.getByIDFn = func(ctx context.Context, id int64) (*domain.User, error) {
		switch id {
		case original.ID:
			return original, nil
		case replacement.ID:
			return replacement, nil
		default:
			return nil, userRepo.ErrUserNotFound
		}
	}

	var updatedLocation *string
	deps.bookings.updateOrganizerFn = func(ctx context.Context, id, newUserID int64, title string, location *string, version int64) error {
		updatedLocation = location
		return nil
	}

	uc := newTestUseCase(deps)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 100, NewOrganizerID: 2})
	require.NoError(t, err)

	require.NotNil(t, updatedLocation)
	assert.Equal(t, "https://meet.example.com/carol", *updatedLocation)
}

// TestExecute_DestinationCalendarPriority проверяет приоритет календарей назначения
func TestExecute_DestinationCalendarPriority(t *testing.T) {
	t.Run("event type calendar wins", func(t *testing.T) {
		deps := defaultDeps()

		deps.eventType.getByIDFn = func(ctx context.Context, id int64) (*domain.EventType, error) {
			et := testEventType()
			et.DestinationCalendar = &domain.DestinationCalendar{
				ID: 500, EventTypeID: ptr.Ptr(int64(10)), Integration: "google_calendar", ExternalID: "team@gmail.com",
			}
			return et, nil
		}
		deps.users.getDestinationCalendarFn = func(ctx context.Context, userID int64) (*domain.DestinationCalendar, error) {
			return &domain.DestinationCalendar{ID: 600, UserID: ptr.Ptr(userID), Integration: "google_calendar", ExternalID: "personal@gmail.com"}, nil
		}

		var gotCalendars []domain.DestinationCalendar
		deps.calendar.rescheduleFn = func(ctx context.Context, evt *domain.CalendarEventPayload, bookingUID string, organizerChanged bool, cleanup []domain.DestinationCalendar) ([]domain.BookingReference, error) {
			gotCalendars = evt.DestinationCalendars
			return nil, nil
		}

		uc := newTestUseCase(deps)

		_, err := uc.Execute(context.Background(), &Request{BookingID: 100, NewOrganizerID: 2})
		require.NoError(t, err)

		require.Len(t, gotCalendars, 1)
		assert.Equal(t, "team@gmail.com", gotCalendars[0].ExternalID)
	})

	t.Run("new organizer personal calendar", func(t *testing.T) {
		deps := defaultDeps()

		deps.users.getDestinationCalendarFn = func(ctx context.Context, userID int64) (*domain.DestinationCalendar, error) {
			if userID == 2 {
				return &domain.DestinationCalendar{ID: 600, UserID: ptr.Ptr(userID), Integration: "google_calendar", ExternalID: "carol@gmail.com"}, nil
			}
			return nil, userRepo.ErrCalendarNotFound
		}

		var gotCalendars []domain.DestinationCalendar
		deps.calendar.rescheduleFn = func(ctx context.Context, evt *domain.CalendarEventPayload, bookingUID string, organizerChanged bool, cleanup []domain.DestinationCalendar) ([]domain.BookingReference, error) {
			gotCalendars = evt.DestinationCalendars
			return nil, nil
		}

		uc := newTestUseCase(deps)

		_, err := uc.Execute(context.Background(), &Request{BookingID: 100, NewOrganizerID: 2})
		require.NoError(t, err)

		require.Len(t, gotCalendars, 1)
		assert.Equal(t, "carol@gmail.com", gotCalendars[0].ExternalID)
	})
}

// TestExecute_RebindsOrganizerReminders проверяет перепривязку напоминаний:
// новое планируется и сохраняется раньше, чем отменяется и удаляется старое
func TestExecute_RebindsOrganizerReminders(t *testing.T) {
	deps := defaultDeps()

	oldRef := "ref-old"
	deps.workflows.getOrganizerEmailRemindersFn = func(ctx context.Context, bookingUID string) ([]*domain.WorkflowReminder, error) {
		return []*domain.WorkflowReminder{
			{
				ID:             900,
				BookingUID:     bookingUID,
				WorkflowStepID: 40,
				Method:         domain.MethodEmail,
				ReferenceID:    &oldRef,
				Scheduled:      true,
				Step:           &domain.WorkflowStep{ID: 40, WorkflowID: 4, Action: domain.ActionEmailHost, Template: "reminder"},
				Trigger:        domain.TriggerBeforeEvent,
				Time:           ptr.Ptr(30),
				TimeUnit:       ptr.Ptr(domain.TimeUnitMinute),
			},
		}, nil
	}

	var order []string
	deps.notify.scheduleReminderFn = func(ctx context.Context, req *notifyservice.ScheduleReminderRequest) (string, error) {
		order = append(order, "schedule")
		assert.Equal(t, "carol@example.com", req.SendTo)
		// BEFORE_EVENT со сдвигом 30 минут
		assert.Equal(t, testNow.Add(24*time.Hour).Add(-30*time.Minute), req.SendAt)
		assert.Equal(t, "https://book.example.com/org/77", req.BookerURL)
		return "ref-new", nil
	}
	deps.workflows.createReminderFn = func(ctx context.Context, r *domain.WorkflowReminder) (*domain.WorkflowReminder, error) {
		order = append(order, "create")
		assert.True(t, r.Scheduled)
		require.NotNil(t, r.ReferenceID)
		assert.Equal(t, "ref-new", *r.ReferenceID)
		return r, nil
	}
	deps.notify.cancelReminderFn = func(ctx context.Context, referenceID string) error {
		order = append(order, "cancel")
		assert.Equal(t, oldRef, referenceID)
		return nil
	}
	deps.workflows.deleteReminderFn = func(ctx context.Context, id int64) error {
		order = append(order, "delete")
		assert.Equal(t, int64(900), id)
		return nil
	}

	uc := newTestUseCase(deps)

	_, err := uc.Execute(context.Background(), &Request{
		BookingID: 100, NewOrganizerID: 2, OrganizationID: ptr.Ptr(int64(77)),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"schedule", "create", "cancel", "delete"}, order)
}

// TestExecute_ReminderScheduleFailureKeepsOld проверяет, что при сбое
// планирования нового напоминания старое не удаляется
func TestExecute_ReminderScheduleFailureKeepsOld(t *testing.T) {
	deps := defaultDeps()

	oldRef := "ref-old"
	deps.workflows.getOrganizerEmailRemindersFn = func(ctx context.Context, bookingUID string) ([]*domain.WorkflowReminder, error) {
		return []*domain.WorkflowReminder{
			{
				ID: 900, BookingUID: bookingUID, WorkflowStepID: 40,
				Method: domain.MethodEmail, ReferenceID: &oldRef, Scheduled: true,
				Step:    &domain.WorkflowStep{ID: 40, WorkflowID: 4, Action: domain.ActionEmailHost, Template: "reminder"},
				Trigger: domain.TriggerBeforeEvent,
			},
		}, nil
	}
	deps.notify.scheduleReminderFn = func(ctx context.Context, req *notifyservice.ScheduleReminderRequest) (string, error) {
		return "", errors.New("provider down")
	}
	deps.workflows.deleteReminderFn = func(ctx context.Context, id int64) error {
		t.Fatal("old reminder must not be deleted when rescheduling failed")
		return nil
	}
	deps.notify.cancelReminderFn = func(ctx context.Context, referenceID string) error {
		t.Fatal("old provider reminder must not be cancelled when rescheduling failed")
		return nil
	}

	uc := newTestUseCase(deps)

	// Сбой перепривязки не валит операцию целиком
	_, err := uc.Execute(context.Background(), &Request{BookingID: 100, NewOrganizerID: 2})
	require.NoError(t, err)
}

// TestExecute_SchedulesNewEventWorkflows проверяет планирование EMAIL_HOST шагов
// NEW_EVENT workflows для нового организатора
func TestExecute_SchedulesNewEventWorkflows(t *testing.T) {
	deps := defaultDeps()

	deps.workflows.getNewEventWorkflowsFn = func(ctx context.Context, eventTypeID int64, teamID, parentTeamID *int64) ([]*domain.Workflow, error) {
		assert.Equal(t, int64(10), eventTypeID)
		return []*domain.Workflow{
			{
				ID: 4, Name: "welcome host", Trigger: domain.TriggerNewEvent,
				Steps: []domain.WorkflowStep{
					{ID: 41, WorkflowID: 4, Action: domain.ActionEmailHost, Template: "new_host"},
					{ID: 42, WorkflowID: 4, Action: domain.ActionEmailAttendee, Template: "new_attendee"},
				},
			},
		}, nil
	}

	var scheduledTemplates []string
	deps.notify.scheduleReminderFn = func(ctx context.Context, req *notifyservice.ScheduleReminderRequest) (string, error) {
		scheduledTemplates = append(scheduledTemplates, req.Template)
		// NEW_EVENT срабатывает сразу
		assert.Equal(t, testNow, req.SendAt)
		return "ref-new", nil
	}

	var created []*domain.WorkflowReminder
	deps.workflows.createReminderFn = func(ctx context.Context, r *domain.WorkflowReminder) (*domain.WorkflowReminder, error) {
		created = append(created, r)
		return r, nil
	}

	uc := newTestUseCase(deps)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 100, NewOrganizerID: 2})
	require.NoError(t, err)

	// Только EMAIL_HOST шаг, EMAIL_ATTENDEE пропускается
	assert.Equal(t, []string{"new_host"}, scheduledTemplates)
	require.Len(t, created, 1)
	assert.Equal(t, int64(41), created[0].WorkflowStepID)
}

// TestExecute_NotificationFailureIsBestEffort проверяет, что сбой уведомлений
// не прерывает операцию
func TestExecute_NotificationFailureIsBestEffort(t *testing.T) {
	deps := defaultDeps()

	deps.notify.sendScheduledFn = func(ctx context.Context, evt *domain.CalendarEventPayload, recipients []*domain.User) error {
		return errors.New("smtp down")
	}
	deps.notify.sendCancelledFn = func(ctx context.Context, evt *domain.CalendarEventPayload, recipients []*domain.User, eventType *domain.EventType) error {
		return errors.New("smtp down")
	}

	uc := newTestUseCase(deps)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 100, NewOrganizerID: 2})
	require.NoError(t, err)
	assert.True(t, resp.OrganizerChanged)
}

// TestExecute_RoundTrip проверяет переназначение A -> B -> A:
// после обратного переназначения название снова указывает на исходного организатора
func TestExecute_RoundTrip(t *testing.T) {
	deps := defaultDeps()

	// Общее изменяемое состояние бронирования между двумя вызовами
	state := testBooking()
	deps.bookings.getByIDFn = func(ctx context.Context, id int64) (*domain.Booking, error) {
		cp := *state
		return &cp, nil
	}
	deps.bookings.updateOrganizerFn = func(ctx context.Context, id, newUserID int64, title string, location *string, version int64) error {
		if version != state.Version {
			return bookingRepo.ErrVersionConflict
		}
		state.UserID = ptr.Ptr(newUserID)
		state.Title = title
		state.Location = location
		state.Version++
		return nil
	}

	uc := newTestUseCase(deps)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 100, NewOrganizerID: 2})
	require.NoError(t, err)
	assert.Equal(t, "Discovery Call between Carol Two and Bob Booker", resp.Title)

	resp, err = uc.Execute(context.Background(), &Request{BookingID: 100, NewOrganizerID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.OrganizerID)
	assert.Equal(t, "Discovery Call between Alice One and Bob Booker", resp.Title)
	assert.Equal(t, int64(5), state.Version)
}

package reassign_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/calhub/CalHub-ReassignService/internal/api/handlers"
	reassignUC "github.com/calhub/CalHub-ReassignService/internal/usecase/reassign_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные параметры переназначения"
	msgNotFound           = "бронирование не найдено"
	msgOrganizerNotFound  = "организатор не найден"
	msgEventTypeNotFound  = "тип события не найден"
	msgConflict           = "бронирование изменено конкурирующим запросом, повторите попытку"
	msgCalendarSync       = "организатор переназначен, но календарь не удалось синхронизировать"
)

// Метки результата для метрики booking_reassignments_total
const (
	resultSuccess      = "success"
	resultNotFound     = "not_found"
	resultInvalid      = "invalid"
	resultConflict     = "conflict"
	resultCalendarSync = "calendar_sync_error"
	resultError        = "error"
)

type Handler struct {
	usecase ReassignUseCase
	metrics Metrics
	logger  Logger
}

// NewHandler создает новый handler переназначения
// metrics может быть nil, если сбор метрик выключен
func NewHandler(usecase ReassignUseCase, metrics Metrics, logger Logger) *Handler {
	return &Handler{
		usecase: usecase,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/reassign
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем bookingId из URL
	vars := mux.Vars(r)
	bookingIDStr := vars["bookingId"]

	bookingID, err := strconv.ParseInt(bookingIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/reassign - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	// Декодируем body
	var req ReassignRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/reassign - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Выполняем переназначение
	resp, err := h.usecase.Execute(r.Context(), req.ToUseCaseRequest(bookingID))
	if err != nil {
		h.handleError(w, bookingID, req.NewOrganizerID, err)
		return
	}

	h.incResult(resultSuccess)
	h.logger.Info("POST /bookings/{id}/reassign - Booking reassigned successfully: booking_id=%d, new_organizer_id=%d, organizer_changed=%t",
		bookingID, req.NewOrganizerID, resp.OrganizerChanged)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}

func (h *Handler) handleError(w http.ResponseWriter, bookingID, newOrganizerID int64, err error) {
	switch {
	case errors.Is(err, reassignUC.ErrInvalidInput):
		h.incResult(resultInvalid)
		h.logger.Warn("POST /bookings/{id}/reassign - Invalid input: booking_id=%d, error=%v", bookingID, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, reassignUC.ErrBookingNotFound):
		h.incResult(resultNotFound)
		h.logger.Warn("POST /bookings/{id}/reassign - Booking not found: booking_id=%d", bookingID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, reassignUC.ErrNewOrganizerNotFound),
		errors.Is(err, reassignUC.ErrOrganizerNotFound):
		h.incResult(resultNotFound)
		h.logger.Warn("POST /bookings/{id}/reassign - Organizer not found: booking_id=%d, new_organizer_id=%d, error=%v",
			bookingID, newOrganizerID, err)
		handlers.RespondNotFound(w, msgOrganizerNotFound)

	case errors.Is(err, reassignUC.ErrEventTypeNotFound):
		h.incResult(resultNotFound)
		h.logger.Warn("POST /bookings/{id}/reassign - Event type not found: booking_id=%d", bookingID)
		handlers.RespondNotFound(w, msgEventTypeNotFound)

	case errors.Is(err, reassignUC.ErrConflict):
		h.incResult(resultConflict)
		h.logger.Warn("POST /bookings/{id}/reassign - Concurrent modification: booking_id=%d", bookingID)
		handlers.RespondConflict(w, msgConflict)

	case errors.Is(err, reassignUC.ErrCalendarSync):
		// Организатор уже переписан в БД - клиент должен знать о расхождении
		h.incResult(resultCalendarSync)
		h.logger.Error("POST /bookings/{id}/reassign - Calendar sync failed after commit: booking_id=%d, error=%v",
			bookingID, err)
		handlers.RespondBadGateway(w, msgCalendarSync)

	default:
		h.incResult(resultError)
		h.logger.Error("POST /bookings/{id}/reassign - Failed to reassign booking: booking_id=%d, error=%v",
			bookingID, err)
		handlers.RespondInternalError(w)
	}
}

func (h *Handler) incResult(result string) {
	if h.metrics != nil {
		h.metrics.IncReassignment(result)
	}
}

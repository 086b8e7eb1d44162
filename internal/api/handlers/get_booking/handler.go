package get_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/calhub/CalHub-ReassignService/internal/api/handlers"
	"github.com/calhub/CalHub-ReassignService/internal/api/middleware"
	"github.com/calhub/CalHub-ReassignService/internal/service/bookings"
	"github.com/calhub/CalHub-ReassignService/internal/service/bookings/models"
)

const (
	msgEmptyBookingRef = "не указан идентификатор бронирования"
	msgBookingNotFound = "бронирование не найдено"
	msgMissingUserID   = "отсутствует ID пользователя"
	msgNotOrganizer    = "просмотр доступен только организатору бронирования"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{bookingId}
// Принимает как внутренний числовой ID, так и внешний UID из приглашения
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["bookingId"]
	if ref == "" {
		handlers.RespondBadRequest(w, msgEmptyBookingRef)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("get_booking - missing user ID in context")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Числовая ссылка - внутренний ID, иначе трактуем как UID
	var (
		booking *models.BookingResponse
		err     error
	)
	if id, parseErr := strconv.ParseInt(ref, 10, 64); parseErr == nil {
		booking, err = h.service.GetByID(r.Context(), id, userID)
	} else {
		booking, err = h.service.GetByUID(r.Context(), ref, userID)
	}

	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("get_booking - not found: booking_ref=%s, user_id=%d", ref, userID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("get_booking - not the organizer: booking_ref=%s, user_id=%d", ref, userID)
			handlers.RespondForbidden(w, msgNotOrganizer)

		default:
			h.logger.Error("get_booking - lookup failed: booking_ref=%s, error=%v", ref, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("get_booking - served: booking_id=%d, version=%d, user_id=%d",
		booking.ID, booking.Version, userID)
	handlers.RespondJSON(w, http.StatusOK, booking)
}

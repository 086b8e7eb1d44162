package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
	storage "github.com/calhub/CalHub-ReassignService/internal/infra/storage/booking"
	"github.com/calhub/CalHub-ReassignService/internal/service/bookings/models"
)

// Service сервис чтения бронирований
type Service struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// GetByID возвращает бронирование по ID с проверкой прав доступа
// Просмотр доступен только текущему организатору
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("bookings.Service - GetByID: %w", err)
	}

	return s.toAuthorizedResponse(booking, userID)
}

// GetByUID возвращает бронирование по внешнему UID с той же проверкой прав
// UID используют клиенты, которым доступен только идентификатор из приглашения
func (s *Service) GetByUID(ctx context.Context, uid string, userID int64) (*models.BookingResponse, error) {
	booking, err := s.bookingRepo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("bookings.Service - GetByUID: %w", err)
	}

	return s.toAuthorizedResponse(booking, userID)
}

func (s *Service) toAuthorizedResponse(booking *domain.Booking, userID int64) (*models.BookingResponse, error) {
	if booking.UserID == nil || *booking.UserID != userID {
		s.logger.Warn("bookings.Service - access denied: booking_id=%d, user_id=%d", booking.ID, userID)
		return nil, ErrAccessDenied
	}

	return models.FromDomain(booking), nil
}

package reassign_booking

import (
	"context"
	"errors"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
	userRepo "github.com/calhub/CalHub-ReassignService/internal/infra/storage/user"
)

// resolveDestinationCalendars выбирает календари назначения по приоритетному правилу:
// фиксированный календарь event type > личный календарь нового организатора
// (при смене) > личный календарь прежнего организатора (без смены)
// Пустой результат допустим - шлюз тогда решает сам
func (uc *UseCase) resolveDestinationCalendars(
	ctx context.Context,
	eventType *domain.EventType,
	originalOrganizerID int64,
	newOrganizerID int64,
	organizerChanged bool,
) ([]domain.DestinationCalendar, error) {
	if eventType.DestinationCalendar != nil {
		return []domain.DestinationCalendar{*eventType.DestinationCalendar}, nil
	}

	ownerID := originalOrganizerID
	if organizerChanged {
		ownerID = newOrganizerID
	}

	calendar, err := uc.userRepo.GetDestinationCalendar(ctx, ownerID)
	if err != nil {
		if errors.Is(err, userRepo.ErrCalendarNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return []domain.DestinationCalendar{*calendar}, nil
}

// previousHostCalendars возвращает календари прежнего организатора для зачистки
// Актуально только при смене организатора
func (uc *UseCase) previousHostCalendars(ctx context.Context, originalOrganizerID int64, organizerChanged bool) ([]domain.DestinationCalendar, error) {
	if !organizerChanged {
		return nil, nil
	}

	calendar, err := uc.userRepo.GetDestinationCalendar(ctx, originalOrganizerID)
	if err != nil {
		if errors.Is(err, userRepo.ErrCalendarNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return []domain.DestinationCalendar{*calendar}, nil
}

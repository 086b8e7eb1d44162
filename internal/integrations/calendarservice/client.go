package calendarservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с Calendar Gateway
// Шлюз создает/обновляет/удаляет события во внешних календарях и видеосвязи
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента Calendar Gateway
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Reschedule пересоздает внешние артефакты бронирования под нового организатора
// Шлюз идемпотентен по bookingUid + содержимому события; при смене организатора
// calendarsToCleanUp указывает календари прежнего организатора для зачистки
// Возвращает новый набор ссылок, которым нужно заменить старые
func (c *Client) Reschedule(
	ctx context.Context,
	evt *domain.CalendarEventPayload,
	bookingUID string,
	organizerChanged bool,
	calendarsToCleanUp []domain.DestinationCalendar,
) ([]domain.BookingReference, error) {
	reqBody := RescheduleRequest{
		BookingUID:         bookingUID,
		Event:              ToEventPayload(evt),
		OrganizerChanged:   organizerChanged,
		CalendarsToCleanUp: ToCalendarPayloads(calendarsToCleanUp),
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/internal/calendar/bookings/%s/reschedule", c.baseURL, bookingUID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Недоступность шлюза после коммита организатора - это рассинхронизация
		c.log.Error("CalendarService unavailable for booking_uid=%s: %v", bookingUID, err)
		return nil, fmt.Errorf("%w: booking_uid=%s: %v", ErrCalendarSync, bookingUID, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusBadRequest:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: bad request: %s", ErrInvalidResponse, string(body))
	default:
		body, _ := io.ReadAll(resp.Body)
		c.log.Error("CalendarService returned status=%d for booking_uid=%s: %s",
			resp.StatusCode, bookingUID, string(body))
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrCalendarSync, resp.StatusCode, string(body))
	}

	var result RescheduleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	c.log.Info("CalendarService rescheduled booking_uid=%s, references=%d, organizer_changed=%t",
		bookingUID, len(result.ReferencesToCreate), organizerChanged)

	return ToDomainReferences(0, result.ReferencesToCreate), nil
}

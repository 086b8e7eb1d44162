package notifyservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с Notification Gateway
// Шлюз отправляет транзакционные email/SMS и управляет отложенными напоминаниями
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента Notification Gateway
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// SendScheduled отправляет получателям уведомление о назначенной встрече
func (c *Client) SendScheduled(ctx context.Context, evt *domain.CalendarEventPayload, recipients []*domain.User) error {
	ics, err := buildICS(evt, methodRequest)
	if err != nil {
		// Письмо важнее вложения - отправляем без него
		c.log.Warn("SendScheduled: failed to build ics for booking_uid=%s: %v", evt.UID, err)
		ics = ""
	}

	return c.send(ctx, SendRequest{
		Kind:       "scheduled",
		Event:      ToEventSummary(evt),
		Recipients: toRecipients(recipients),
		ICalendar:  ics,
	})
}

// SendCancelled отправляет получателям уведомление об отмене встречи
// Используется для прежнего организатора при переназначении; метаданные
// event type уходят шлюзу для оформления письма
func (c *Client) SendCancelled(ctx context.Context, evt *domain.CalendarEventPayload, recipients []*domain.User, eventType *domain.EventType) error {
	ics, err := buildICS(evt, methodCancel)
	if err != nil {
		c.log.Warn("SendCancelled: failed to build ics for booking_uid=%s: %v", evt.UID, err)
		ics = ""
	}

	return c.send(ctx, SendRequest{
		Kind:       "cancelled",
		Event:      ToEventSummary(evt),
		Recipients: toRecipients(recipients),
		EventType:  ToEventTypeSummary(eventType),
		ICalendar:  ics,
	})
}

// ScheduleReminder регистрирует отложенную отправку напоминания
// Возвращает идентификатор отправки на стороне провайдера
func (c *Client) ScheduleReminder(ctx context.Context, req *ScheduleReminderRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/internal/notifications/reminders", c.baseURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Шлюз дедуплицирует повторные отправки по этому ключу
	httpReq.Header.Set("X-Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: failed to execute request: %v", ErrNotification, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// Продолжаем обработку
	default:
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: unexpected status code %d: %s", ErrNotification, resp.StatusCode, string(body))
	}

	var result ScheduleReminderResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return result.ReferenceID, nil
}

// CancelReminder отменяет отложенную отправку напоминания у провайдера
func (c *Client) CancelReminder(ctx context.Context, referenceID string) error {
	url := fmt.Sprintf("%s/internal/notifications/reminders/%s", c.baseURL, referenceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrNotification, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		// Отправка уже выполнена или отменена - для отмены это не ошибка
		c.log.Warn("CancelReminder: reference_id=%s not found", referenceID)
		return nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrNotification, resp.StatusCode, string(body))
	}
}

func (c *Client) send(ctx context.Context, req SendRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/internal/notifications/send", c.baseURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrNotification, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		c.log.Info("Notification kind=%s sent for booking_uid=%s to %d recipient(s)",
			req.Kind, req.Event.UID, len(req.Recipients))
		return nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrNotification, resp.StatusCode, string(body))
	}
}

func toRecipients(users []*domain.User) []RecipientPayload {
	recipients := make([]RecipientPayload, 0, len(users))
	for _, u := range users {
		recipients = append(recipients, ToRecipient(u))
	}
	return recipients
}

package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
	"github.com/calhub/CalHub-ReassignService/pkg/dbmetrics"
	"github.com/calhub/CalHub-ReassignService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var bookingColumns = []string{
	"id",
	"uid",
	"title",
	"description",
	"start_time",
	"end_time",
	"user_id",
	"event_type_id",
	"location",
	"status",
	"responses",
	"version",
	"created_at",
	"updated_at",
}

// GetByID получает бронирование по ID вместе с участниками и ссылками
// на внешние календарные артефакты
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	attendees, err := r.getAttendees(ctx, executor, booking.ID)
	if err != nil {
		return nil, err
	}
	booking.Attendees = attendees

	references, err := r.GetReferences(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	booking.References = references

	return booking, nil
}

// GetByUID получает бронирование по публичному UID
func (r *Repository) GetByUID(ctx context.Context, uid string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"uid": uid}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByUID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	attendees, err := r.getAttendees(ctx, executor, booking.ID)
	if err != nil {
		return nil, err
	}
	booking.Attendees = attendees

	return booking, nil
}

// UpdateOrganizer переписывает организатора, название и локацию бронирования
// Оптимистичная блокировка: запись применяется только при совпадении версии,
// при расхождении возвращается ErrVersionConflict и вызывающий повторяет операцию
func (r *Repository) UpdateOrganizer(ctx context.Context, id int64, newUserID int64, title string, location *string, version int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("user_id", newUserID).
		Set("title", title).
		Set("location", location).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "version": version}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateOrganizer - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateOrganizer - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateOrganizer - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrVersionConflict
	}

	return nil
}

// GetReferences получает все ссылки бронирования на внешние артефакты
func (r *Repository) GetReferences(ctx context.Context, bookingID int64) ([]domain.BookingReference, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"type",
		"uid",
		"meeting_id",
		"meeting_password",
		"meeting_url",
		"external_calendar_id",
		"credential_id",
	).
		From("booking_references").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetReferences - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetReferences - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	references := make([]domain.BookingReference, 0)
	for rows.Next() {
		var ref domain.BookingReference
		err := rows.Scan(
			&ref.ID,
			&ref.BookingID,
			&ref.Type,
			&ref.UID,
			&ref.MeetingID,
			&ref.MeetingPassword,
			&ref.MeetingURL,
			&ref.ExternalCalendarID,
			&ref.CredentialID,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetReferences - scan row: %v", ErrScanRow, err)
		}
		references = append(references, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetReferences - rows error: %v", ErrScanRow, err)
	}

	return references, nil
}

// ReplaceReferences атомарно заменяет все ссылки бронирования новым набором
// Вызывается внутри транзакции (txmanager.Do), чтобы читатели не увидели
// одновременно старые и новые ссылки
func (r *Repository) ReplaceReferences(ctx context.Context, bookingID int64, references []domain.BookingReference) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteQuery, deleteArgs, err := psqlbuilder.Delete("booking_references").
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ReplaceReferences - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: ReplaceReferences - execute delete: %v", ErrExecQuery, err)
	}

	if len(references) == 0 {
		return nil
	}

	insertBuilder := psqlbuilder.Insert("booking_references").
		Columns(
			"booking_id",
			"type",
			"uid",
			"meeting_id",
			"meeting_password",
			"meeting_url",
			"external_calendar_id",
			"credential_id",
		)

	for _, ref := range references {
		insertBuilder = insertBuilder.Values(
			bookingID,
			ref.Type,
			ref.UID,
			ref.MeetingID,
			ref.MeetingPassword,
			ref.MeetingURL,
			ref.ExternalCalendarID,
			ref.CredentialID,
		)
	}

	insertQuery, insertArgs, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceReferences - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("%w: ReplaceReferences - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// getAttendees получает участников бронирования
func (r *Repository) getAttendees(ctx context.Context, executor dbmetrics.Executor, bookingID int64) ([]domain.Attendee, error) {
	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"email",
		"name",
		"time_zone",
		"locale",
		"phone_number",
	).
		From("attendees").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getAttendees - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getAttendees - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	attendees := make([]domain.Attendee, 0)
	for rows.Next() {
		var attendee domain.Attendee
		err := rows.Scan(
			&attendee.ID,
			&attendee.BookingID,
			&attendee.Email,
			&attendee.Name,
			&attendee.TimeZone,
			&attendee.Locale,
			&attendee.PhoneNumber,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: getAttendees - scan row: %v", ErrScanRow, err)
		}
		attendees = append(attendees, attendee)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getAttendees - rows error: %v", ErrScanRow, err)
	}

	return attendees, nil
}

// scanBooking сканирует одну строку бронирования
func (r *Repository) scanBooking(row *sql.Row) (*domain.Booking, error) {
	var booking domain.Booking
	var responsesRaw []byte
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.UID,
		&booking.Title,
		&booking.Description,
		&booking.StartTime,
		&booking.EndTime,
		&booking.UserID,
		&booking.EventTypeID,
		&booking.Location,
		&booking.Status,
		&responsesRaw,
		&booking.Version,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanBooking - scan booking: %v", ErrScanRow, err)
	}

	if len(responsesRaw) > 0 {
		if err := json.Unmarshal(responsesRaw, &booking.Responses); err != nil {
			return nil, fmt.Errorf("%w: scanBooking - unmarshal responses: %v", ErrScanRow, err)
		}
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

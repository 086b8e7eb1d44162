package user

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
	"github.com/calhub/CalHub-ReassignService/pkg/dbmetrics"
	"github.com/calhub/CalHub-ReassignService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с пользователями (организаторами)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория пользователей
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает пользователя по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"email",
		"name",
		"username",
		"time_zone",
		"locale",
		"time_format",
		"default_conferencing_url",
		"created_at",
		"updated_at",
	).
		From("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var user domain.User
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Username,
		&user.TimeZone,
		&user.Locale,
		&user.TimeFormat,
		&user.DefaultConferencingURL,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan user: %v", ErrScanRow, err)
	}

	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time

	return &user, nil
}

// GetDestinationCalendar получает личный календарь назначения пользователя
// Возвращает ErrCalendarNotFound, если календарь не настроен
func (r *Repository) GetDestinationCalendar(ctx context.Context, userID int64) (*domain.DestinationCalendar, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"user_id",
		"event_type_id",
		"integration",
		"external_id",
	).
		From("destination_calendars").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("id ASC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetDestinationCalendar - build select query: %v", ErrBuildQuery, err)
	}

	var calendar domain.DestinationCalendar

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&calendar.ID,
		&calendar.UserID,
		&calendar.EventTypeID,
		&calendar.Integration,
		&calendar.ExternalID,
	)

	if err == sql.ErrNoRows {
		return nil, ErrCalendarNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetDestinationCalendar - scan calendar: %v", ErrScanRow, err)
	}

	return &calendar, nil
}

package eventtype

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
	"github.com/calhub/CalHub-ReassignService/pkg/dbmetrics"
	"github.com/calhub/CalHub-ReassignService/pkg/psqlbuilder"
)

// Repository репозиторий для чтения event types
// Flow переназначения не изменяет event types, поэтому только чтение
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория event types
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает event type по ID вместе с командой и фиксированным
// календарем назначения (если настроены)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.EventType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"et.id",
		"et.title",
		"et.slug",
		"et.description",
		"et.event_name",
		"et.length",
		"et.locations",
		"et.team_id",
		"et.created_at",
		"et.updated_at",
		"t.id",
		"t.name",
		"t.parent_id",
	).
		From("event_types et").
		LeftJoin("teams t ON t.id = et.team_id").
		Where(squirrel.Eq{"et.id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var et domain.EventType
	var description, eventName sql.NullString
	var createdAt, updatedAt sql.NullTime
	var teamID sql.NullInt64
	var teamName sql.NullString
	var teamParentID sql.NullInt64

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&et.ID,
		&et.Title,
		&et.Slug,
		&description,
		&eventName,
		&et.Length,
		pq.Array(&et.Locations),
		&et.TeamID,
		&createdAt,
		&updatedAt,
		&teamID,
		&teamName,
		&teamParentID,
	)

	if err == sql.ErrNoRows {
		return nil, ErrEventTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan event type: %v", ErrScanRow, err)
	}

	if description.Valid {
		et.Description = &description.String
	}
	et.EventName = eventName.String
	et.CreatedAt = createdAt.Time
	et.UpdatedAt = updatedAt.Time

	if teamID.Valid {
		team := domain.Team{
			ID:   teamID.Int64,
			Name: teamName.String,
		}
		if teamParentID.Valid {
			team.ParentID = &teamParentID.Int64
		}
		et.Team = &team
	}

	calendar, err := r.getDestinationCalendar(ctx, executor, et.ID)
	if err != nil {
		return nil, err
	}
	et.DestinationCalendar = calendar

	return &et, nil
}

// getDestinationCalendar получает фиксированный календарь event type
// nil без ошибки, если календарь не настроен
func (r *Repository) getDestinationCalendar(ctx context.Context, executor dbmetrics.Executor, eventTypeID int64) (*domain.DestinationCalendar, error) {
	query, args, err := psqlbuilder.Select(
		"id",
		"user_id",
		"event_type_id",
		"integration",
		"external_id",
	).
		From("destination_calendars").
		Where(squirrel.Eq{"event_type_id": eventTypeID}).
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getDestinationCalendar - build select query: %v", ErrBuildQuery, err)
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
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getDestinationCalendar - scan calendar: %v", ErrScanRow, err)
	}

	return &calendar, nil
}

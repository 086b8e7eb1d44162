package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/calhub/CalHub-ReassignService/internal/domain"
	"github.com/calhub/CalHub-ReassignService/pkg/dbmetrics"
	"github.com/calhub/CalHub-ReassignService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с workflows и напоминаниями
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория workflows
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetOrganizerEmailReminders получает email-напоминания бронирования,
// адресованные организатору (шаг EMAIL_HOST) с триггерами, привязанными
// к жизненному циклу события. Именно эти напоминания перепривязываются
// при смене организатора
func (r *Repository) GetOrganizerEmailReminders(ctx context.Context, bookingUID string) ([]*domain.WorkflowReminder, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	triggers := make([]string, len(domain.OrganizerReminderTriggers))
	for i, t := range domain.OrganizerReminderTriggers {
		triggers[i] = string(t)
	}

	query, args, err := psqlbuilder.Select(
		"r.id",
		"r.booking_uid",
		"r.workflow_step_id",
		"r.method",
		"r.scheduled_date",
		"r.reference_id",
		"r.scheduled",
		"s.id",
		"s.workflow_id",
		"s.action",
		"s.template",
		"w.trigger",
		"w.time",
		"w.time_unit",
	).
		From("workflow_reminders r").
		Join("workflow_steps s ON s.id = r.workflow_step_id").
		Join("workflows w ON w.id = s.workflow_id").
		Where(squirrel.Eq{
			"r.booking_uid": bookingUID,
			"r.method":      string(domain.MethodEmail),
			"s.action":      string(domain.ActionEmailHost),
			"w.trigger":     triggers,
		}).
		OrderBy("r.id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOrganizerEmailReminders - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOrganizerEmailReminders - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanReminders(rows, true)
}

// GetDueEmailReminders получает неотправленные email-напоминания,
// срок которых наступил. Используется воркером отправки
func (r *Repository) GetDueEmailReminders(ctx context.Context, before time.Time, limit int) ([]*domain.WorkflowReminder, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"r.id",
		"r.booking_uid",
		"r.workflow_step_id",
		"r.method",
		"r.scheduled_date",
		"r.reference_id",
		"r.scheduled",
	).
		From("workflow_reminders r").
		Where(squirrel.Eq{
			"r.method":    string(domain.MethodEmail),
			"r.scheduled": false,
		}).
		Where(squirrel.LtOrEq{"r.scheduled_date": before}).
		OrderBy("r.scheduled_date ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetDueEmailReminders - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetDueEmailReminders - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanReminders(rows, false)
}

// CreateReminder создает запланированное напоминание
func (r *Repository) CreateReminder(ctx context.Context, reminder *domain.WorkflowReminder) (*domain.WorkflowReminder, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("workflow_reminders").
		Columns(
			"booking_uid",
			"workflow_step_id",
			"method",
			"scheduled_date",
			"reference_id",
			"scheduled",
		).
		Values(
			reminder.BookingUID,
			reminder.WorkflowStepID,
			reminder.Method,
			reminder.ScheduledDate,
			reminder.ReferenceID,
			reminder.Scheduled,
		).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateReminder - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&reminder.ID); err != nil {
		return nil, fmt.Errorf("%w: CreateReminder - execute insert: %v", ErrExecQuery, err)
	}

	return reminder, nil
}

// DeleteReminder удаляет напоминание
func (r *Repository) DeleteReminder(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("workflow_reminders").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteReminder - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteReminder - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteReminder - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrReminderNotFound
	}

	return nil
}

// MarkScheduled отмечает напоминание переданным провайдеру
func (r *Repository) MarkScheduled(ctx context.Context, id int64, referenceID *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("workflow_reminders").
		Set("scheduled", true).
		Set("reference_id", referenceID).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkScheduled - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkScheduled - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkScheduled - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrReminderNotFound
	}

	return nil
}

// GetNewEventWorkflows получает workflows с триггером NEW_EVENT, применимые
// к event type: активные на всей команде, явно активированные на event type,
// активированные на команде или унаследованные от родительской команды
func (r *Repository) GetNewEventWorkflows(ctx context.Context, eventTypeID int64, teamID, parentTeamID *int64) ([]*domain.Workflow, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	applicability := squirrel.Or{
		squirrel.Eq{"waet.event_type_id": eventTypeID},
	}
	if teamID != nil {
		applicability = append(applicability,
			squirrel.And{
				squirrel.Eq{"w.is_active_on_all": true},
				squirrel.Eq{"w.team_id": *teamID},
			},
			squirrel.Eq{"wat.team_id": *teamID},
		)
	}
	if parentTeamID != nil {
		applicability = append(applicability,
			squirrel.And{
				squirrel.Eq{"w.is_active_on_all": true},
				squirrel.Eq{"w.team_id": *parentTeamID},
			},
		)
	}

	query, args, err := psqlbuilder.Select(
		"DISTINCT w.id",
		"w.name",
		"w.team_id",
		"w.trigger",
		"w.time",
		"w.time_unit",
		"w.is_active_on_all",
	).
		From("workflows w").
		LeftJoin("workflow_active_event_types waet ON waet.workflow_id = w.id").
		LeftJoin("workflow_active_teams wat ON wat.workflow_id = w.id").
		Where(squirrel.Eq{"w.trigger": string(domain.TriggerNewEvent)}).
		Where(applicability).
		OrderBy("w.id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetNewEventWorkflows - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetNewEventWorkflows - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	workflows := make([]*domain.Workflow, 0)
	ids := make([]int64, 0)

	for rows.Next() {
		var wf domain.Workflow
		var offset sql.NullInt64
		var timeUnit sql.NullString

		err := rows.Scan(
			&wf.ID,
			&wf.Name,
			&wf.TeamID,
			&wf.Trigger,
			&offset,
			&timeUnit,
			&wf.IsActiveOnAll,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetNewEventWorkflows - scan row: %v", ErrScanRow, err)
		}

		if offset.Valid {
			v := int(offset.Int64)
			wf.Time = &v
		}
		if timeUnit.Valid {
			u := domain.TimeUnit(timeUnit.String)
			wf.TimeUnit = &u
		}

		workflows = append(workflows, &wf)
		ids = append(ids, wf.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetNewEventWorkflows - rows error: %v", ErrScanRow, err)
	}

	if len(workflows) == 0 {
		return workflows, nil
	}

	steps, err := r.getHostSteps(ctx, executor, ids)
	if err != nil {
		return nil, err
	}

	for _, wf := range workflows {
		wf.Steps = steps[wf.ID]
	}

	return workflows, nil
}

// getHostSteps получает EMAIL_HOST шаги для набора workflows
func (r *Repository) getHostSteps(ctx context.Context, executor dbmetrics.Executor, workflowIDs []int64) (map[int64][]domain.WorkflowStep, error) {
	query, args, err := psqlbuilder.Select(
		"id",
		"workflow_id",
		"action",
		"template",
	).
		From("workflow_steps").
		Where(squirrel.Eq{
			"workflow_id": workflowIDs,
			"action":      string(domain.ActionEmailHost),
		}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: getHostSteps - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getHostSteps - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	steps := make(map[int64][]domain.WorkflowStep)
	for rows.Next() {
		var step domain.WorkflowStep
		if err := rows.Scan(&step.ID, &step.WorkflowID, &step.Action, &step.Template); err != nil {
			return nil, fmt.Errorf("%w: getHostSteps - scan row: %v", ErrScanRow, err)
		}
		steps[step.WorkflowID] = append(steps[step.WorkflowID], step)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getHostSteps - rows error: %v", ErrScanRow, err)
	}

	return steps, nil
}

// scanReminders сканирует результаты запроса напоминаний
// withStep - ожидаются ли в выборке присоединённые поля шага и workflow
func (r *Repository) scanReminders(rows *sql.Rows, withStep bool) ([]*domain.WorkflowReminder, error) {
	reminders := make([]*domain.WorkflowReminder, 0)

	for rows.Next() {
		var reminder domain.WorkflowReminder

		if withStep {
			var step domain.WorkflowStep
			var offset sql.NullInt64
			var timeUnit sql.NullString

			err := rows.Scan(
				&reminder.ID,
				&reminder.BookingUID,
				&reminder.WorkflowStepID,
				&reminder.Method,
				&reminder.ScheduledDate,
				&reminder.ReferenceID,
				&reminder.Scheduled,
				&step.ID,
				&step.WorkflowID,
				&step.Action,
				&step.Template,
				&reminder.Trigger,
				&offset,
				&timeUnit,
			)
			if err != nil {
				return nil, fmt.Errorf("%w: scanReminders - scan row: %v", ErrScanRow, err)
			}

			if offset.Valid {
				v := int(offset.Int64)
				reminder.Time = &v
			}
			if timeUnit.Valid {
				u := domain.TimeUnit(timeUnit.String)
				reminder.TimeUnit = &u
			}
			reminder.Step = &step
		} else {
			err := rows.Scan(
				&reminder.ID,
				&reminder.BookingUID,
				&reminder.WorkflowStepID,
				&reminder.Method,
				&reminder.ScheduledDate,
				&reminder.ReferenceID,
				&reminder.Scheduled,
			)
			if err != nil {
				return nil, fmt.Errorf("%w: scanReminders - scan row: %v", ErrScanRow, err)
			}
		}

		reminders = append(reminders, &reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReminders - rows error: %v", ErrScanRow, err)
	}

	return reminders, nil
}

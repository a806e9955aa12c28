package schedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-ClinicBooking/pkg/psqlbuilder"
)

// scheduleID единственная строка business_hours
const scheduleID = 1

// dayColumns колонки периодов в порядке domain.Weekdays
var dayColumns = map[time.Weekday]string{
	time.Monday:    "monday_periods",
	time.Tuesday:   "tuesday_periods",
	time.Wednesday: "wednesday_periods",
	time.Thursday:  "thursday_periods",
	time.Friday:    "friday_periods",
	time.Saturday:  "saturday_periods",
	time.Sunday:    "sunday_periods",
}

// Repository репозиторий недельного расписания клиники
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// EnsureExists создает закрытое расписание, если строки ещё нет. Идемпотентен
func (r *Repository) EnsureExists(ctx context.Context) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("business_hours").
		Columns("id").
		Values(scheduleID).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: EnsureExists - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: EnsureExists - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// Get возвращает расписание
func (r *Repository) Get(ctx context.Context) (*domain.WeeklySchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	columns := make([]string, 0, len(domain.Weekdays)+1)
	for _, day := range domain.Weekdays {
		columns = append(columns, dayColumns[day])
	}
	columns = append(columns, "updated_at")

	query, args, err := psqlbuilder.Select(columns...).
		From("business_hours").
		Where(squirrel.Eq{"id": scheduleID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	raw := make([][]byte, len(domain.Weekdays))
	dest := make([]interface{}, 0, len(columns))
	for i := range raw {
		dest = append(dest, &raw[i])
	}
	var updatedAt sql.NullTime
	dest = append(dest, &updatedAt)

	err = executor.QueryRowContext(ctx, query, args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan schedule: %w", ErrScanRow, err)
	}

	schedule := domain.WeeklySchedule{UpdatedAt: updatedAt.Time}
	for i, day := range domain.Weekdays {
		periods := make([]domain.Period, 0)
		if len(raw[i]) > 0 {
			if err := json.Unmarshal(raw[i], &periods); err != nil {
				return nil, fmt.Errorf("%w: Get - decode %s: %v", ErrEncodePeriods, dayColumns[day], err)
			}
		}
		schedule.SetWeekday(day, periods)
	}

	return &schedule, nil
}

// Update перезаписывает периоды всех дней недели
func (r *Repository) Update(ctx context.Context, schedule domain.WeeklySchedule) (*domain.WeeklySchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update("business_hours")
	for _, day := range domain.Weekdays {
		periods := schedule.ForWeekday(day)
		if periods == nil {
			periods = []domain.Period{}
		}
		encoded, err := json.Marshal(periods)
		if err != nil {
			return nil, fmt.Errorf("%w: Update - encode %s: %v", ErrEncodePeriods, dayColumns[day], err)
		}
		// строкой: lib/pq передаёт []byte как bytea
		builder = builder.Set(dayColumns[day], string(encoded))
	}

	query, args, err := builder.
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": scheduleID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	schedule.UpdatedAt = updatedAt.Time
	return &schedule, nil
}

package unavailable_date

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-ClinicBooking/pkg/psqlbuilder"
)

// Repository репозиторий закрытых для записи дат.
// Даты передаются строкой YYYY-MM-DD, чтобы часовой пояс сессии не сдвигал день
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// dateLockNamespace первый ключ advisory-блокировки календарного дня
const dateLockNamespace int32 = 0x44415445 // "DATE"

// LockDate захватывает транзакционную блокировку дня.
// Запись на день берёт разделяемую блокировку, закрытие дня берёт исключительную,
// поэтому закрытие и запись на тот же день не выполняются одновременно
func (r *Repository) LockDate(ctx context.Context, date time.Time, exclusive bool) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return fmt.Errorf("%w: LockDate - transaction required", ErrLockDate)
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	fn := "pg_advisory_xact_lock_shared"
	if exclusive {
		fn = "pg_advisory_xact_lock"
	}

	if _, err := executor.ExecContext(ctx,
		"SELECT "+fn+"($1, $2)", dateLockNamespace, dateLockKey(date)); err != nil {
		return fmt.Errorf("%w: LockDate - date=%s: %w", ErrLockDate, date.Format(domain.DateFormat), err)
	}

	return nil
}

// dateLockKey номер дня от начала эпохи
func dateLockKey(date time.Time) int32 {
	return int32(domain.DateOnly(date).Unix() / 86400)
}

// Add добавляет дату. Возвращает false, если дата уже была закрыта
func (r *Repository) Add(ctx context.Context, date time.Time, reason *string) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("unavailable_dates").
		Columns("date", "reason").
		Values(date.Format(domain.DateFormat), reason).
		Suffix("ON CONFLICT (date) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: Add - build insert query: %v", ErrBuildQuery, err)
	}

	res, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: Add - execute insert: %w", ErrExecQuery, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: Add - rows affected: %w", ErrExecQuery, err)
	}

	return affected > 0, nil
}

// Remove удаляет дату. Возвращает false, если даты не было
func (r *Repository) Remove(ctx context.Context, date time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("unavailable_dates").
		Where(squirrel.Eq{"date": date.Format(domain.DateFormat)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: Remove - build delete query: %v", ErrBuildQuery, err)
	}

	res, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: Remove - execute delete: %w", ErrExecQuery, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: Remove - rows affected: %w", ErrExecQuery, err)
	}

	return affected > 0, nil
}

// List возвращает закрытые даты в интервале [from, to] по возрастанию.
// nil-граница не ограничивает
func (r *Repository) List(ctx context.Context, from, to *time.Time) ([]domain.UnavailableDate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select("date", "reason", "created_at").
		From("unavailable_dates").
		OrderBy("date ASC")

	if from != nil {
		builder = builder.Where(squirrel.GtOrEq{"date": from.Format(domain.DateFormat)})
	}
	if to != nil {
		builder = builder.Where(squirrel.LtOrEq{"date": to.Format(domain.DateFormat)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	dates := make([]domain.UnavailableDate, 0)
	for rows.Next() {
		var (
			date      time.Time
			reason    sql.NullString
			createdAt sql.NullTime
		)
		if err := rows.Scan(&date, &reason, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: List - scan: %v", ErrScanRow, err)
		}

		item := domain.UnavailableDate{
			Date:      domain.DateOnly(date),
			CreatedAt: createdAt.Time,
		}
		if reason.Valid {
			item.Reason = &reason.String
		}
		dates = append(dates, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows: %w", ErrExecQuery, err)
	}

	return dates, nil
}

package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-ClinicBooking/pkg/psqlbuilder"
)

// slotLockNamespace первый ключ pg_advisory_xact_lock для блокировок слотов
const slotLockNamespace int32 = 0x534c4f54 // "SLOT"

var bookingColumns = []string{
	"id",
	"type",
	"status",
	"slot",
	"first_name",
	"last_name",
	"phone",
	"email",
	"message",
	"created_at",
	"updated_at",
}

var sortColumns = map[domain.SortField]string{
	domain.SortByID:        "id",
	domain.SortByType:      "type",
	domain.SortByStatus:    "status",
	domain.SortBySlot:      "slot",
	domain.SortByFirstName: "first_name",
	domain.SortByLastName:  "last_name",
	domain.SortByPhone:     "phone",
	domain.SortByEmail:     "email",
	domain.SortByCreatedAt: "created_at",
	domain.SortByUpdatedAt: "updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// LockSlot захватывает транзакционную advisory-блокировку на момент начала слота.
// Должен вызываться внутри транзакции: блокировка снимается при commit/rollback.
// Ожидание ограничено lockTimeout, по истечении postgres вернёт 55P03
func (r *Repository) LockSlot(ctx context.Context, slot time.Time, lockTimeout time.Duration) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return fmt.Errorf("%w: LockSlot - transaction required", ErrLockSlot)
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx,
		fmt.Sprintf("SET LOCAL lock_timeout = %d", lockTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("%w: LockSlot - set lock_timeout: %w", ErrLockSlot, err)
	}

	if _, err := executor.ExecContext(ctx,
		"SELECT pg_advisory_xact_lock($1, $2)", slotLockNamespace, slotLockKey(slot)); err != nil {
		return fmt.Errorf("%w: LockSlot - slot=%s: %w", ErrLockSlot, slot.Format(time.RFC3339), err)
	}

	return nil
}

// slotLockKey номер минуты от начала эпохи, помещается в int32 до 6053 года
func slotLockKey(slot time.Time) int32 {
	return int32(slot.Unix() / 60)
}

// CountActiveAtSlot считает неотменённые бронирования на указанный слот
func (r *Repository) CountActiveAtSlot(ctx context.Context, slot time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"slot": slot}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveAtSlot - build query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveAtSlot - execute: %w", ErrExecQuery, err)
	}

	return count, nil
}

// CountActiveBySlot считает неотменённые бронирования в интервале [from, to)
// с группировкой по слоту. Ключ результата: slot.Unix()
func (r *Repository) CountActiveBySlot(ctx context.Context, from, to time.Time) (map[int64]int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("slot", "COUNT(*)").
		From("bookings").
		Where(squirrel.GtOrEq{"slot": from}).
		Where(squirrel.Lt{"slot": to}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)}).
		GroupBy("slot").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CountActiveBySlot - build query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CountActiveBySlot - execute: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var slot time.Time
		var count int
		if err := rows.Scan(&slot, &count); err != nil {
			return nil, fmt.Errorf("%w: CountActiveBySlot - scan: %v", ErrScanRow, err)
		}
		counts[slot.Unix()] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CountActiveBySlot - rows: %w", ErrExecQuery, err)
	}

	return counts, nil
}

// CountActiveInRange считает неотменённые бронирования со слотом в интервале [from, to)
func (r *Repository) CountActiveInRange(ctx context.Context, from, to time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.GtOrEq{"slot": from}).
		Where(squirrel.Lt{"slot": to}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveInRange - build query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveInRange - execute: %w", ErrExecQuery, err)
	}

	return count, nil
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"type",
			"status",
			"slot",
			"first_name",
			"last_name",
			"phone",
			"email",
			"message",
		).
		Values(
			string(booking.Type),
			string(booking.Status),
			booking.Slot,
			booking.FirstName,
			booking.LastName,
			booking.Phone,
			booking.Email,
			booking.Message,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID.
// forUpdate блокирует строку до конца транзакции
func (r *Repository) GetByID(ctx context.Context, id int64, forUpdate bool) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if forUpdate && dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// UpdateStatus меняет статус бронирования и возвращает обновлённую запись
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", string(status)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// List возвращает страницу бронирований по фильтру, сортировке и пагинации.
// Запрос должен быть нормализован (domain.BookingsQuery.Normalize)
func (r *Repository) List(ctx context.Context, q domain.BookingsQuery) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	column, ok := sortColumns[q.SortField]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if q.SortDirection == domain.SortAsc {
		direction = "ASC"
	}

	orderBy := []string{column + " " + direction}
	if column != "id" {
		// id делает порядок полным, страницы не пересекаются
		orderBy = append(orderBy, "id "+direction)
	}

	builder := applyFilter(psqlbuilder.Select(bookingColumns...).From("bookings"), q.Filter).
		OrderBy(orderBy...).
		Limit(uint64(q.PerPage)).
		Offset(uint64(q.Offset()))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0, q.PerPage)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan booking: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows: %w", ErrExecQuery, err)
	}

	return bookings, nil
}

// Count возвращает количество бронирований по фильтру
func (r *Repository) Count(ctx context.Context, filter domain.BookingsFilter) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := applyFilter(psqlbuilder.Select("COUNT(id)").From("bookings"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: Count - build query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: Count - execute: %w", ErrExecQuery, err)
	}

	return count, nil
}

// applyFilter добавляет условия фильтра через AND
func applyFilter(builder squirrel.SelectBuilder, f domain.BookingsFilter) squirrel.SelectBuilder {
	if f.LastNameContains != "" {
		builder = builder.Where(squirrel.Like{"last_name": "%" + escapeLike(f.LastNameContains) + "%"})
	}
	if f.EmailContains != "" {
		builder = builder.Where(squirrel.Like{"email": "%" + escapeLike(f.EmailContains) + "%"})
	}
	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		builder = builder.Where(squirrel.Eq{"type": types})
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		builder = builder.Where(squirrel.Eq{"status": statuses})
	}
	if f.CreatedFrom != nil {
		builder = builder.Where(squirrel.GtOrEq{"created_at": *f.CreatedFrom})
	}
	if f.CreatedTo != nil {
		// CreatedTo включительно: всё до начала следующего дня
		builder = builder.Where(squirrel.Lt{"created_at": f.CreatedTo.AddDate(0, 0, 1)})
	}
	return builder
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike экранирует спецсимволы LIKE, подстрока ищется буквально
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		booking              domain.Booking
		bookingType, status  string
		message              sql.NullString
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&booking.ID,
		&bookingType,
		&status,
		&booking.Slot,
		&booking.FirstName,
		&booking.LastName,
		&booking.Phone,
		&booking.Email,
		&message,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.Type = domain.BookingType(bookingType)
	booking.Status = domain.BookingStatus(status)
	if message.Valid {
		booking.Message = &message.String
	}
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

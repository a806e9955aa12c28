package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/pkg/dbmetrics"
)

func newRepo(t *testing.T) (*Repository, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), db, mock
}

func bookingRow(id int64, status domain.BookingStatus, slot time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(bookingColumns).AddRow(
		id, "checkup", string(status), slot, "Jan", "Kowalski", "+48123123123", "jan@example.com", nil, slot, slot,
	)
}

func TestRepository_Create(t *testing.T) {
	repo, _, mock := newRepo(t)
	slot := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO bookings \(type,status,slot,first_name,last_name,phone,email,message\) VALUES .* RETURNING id, created_at, updated_at`).
		WithArgs("checkup", "pending", slot, "Jan", "Kowalski", "+48123123123", "jan@example.com", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, now, now))

	created, err := repo.Create(context.Background(), &domain.Booking{
		Type:      domain.TypeCheckup,
		Status:    domain.StatusPending,
		Slot:      slot,
		FirstName: "Jan",
		LastName:  "Kowalski",
		Phone:     "+48123123123",
		Email:     "jan@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, now, created.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	repo, _, mock := newRepo(t)
	slot := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, type, status, slot, .* FROM bookings WHERE id = \$1$`).
		WithArgs(int64(7)).
		WillReturnRows(bookingRow(7, domain.StatusConfirmed, slot))

	booking, err := repo.GetByID(context.Background(), 7, false)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, booking.Status)
	assert.Equal(t, domain.TypeCheckup, booking.Type)
	assert.Nil(t, booking.Message)

	mock.ExpectQuery(`FROM bookings WHERE id = \$1`).
		WithArgs(int64(8)).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByID(context.Background(), 8, false)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_ForUpdateInTransaction(t *testing.T) {
	repo, db, mock := newRepo(t)
	slot := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(bookingRow(7, domain.StatusPending, slot))
	mock.ExpectRollback()

	tx, err := dbmetrics.Wrap(db, nil).BeginTx(context.Background(), nil)
	require.NoError(t, err)
	ctx := dbmetrics.WithTx(context.Background(), tx)

	_, err = repo.GetByID(ctx, 7, true)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_LockSlot(t *testing.T) {
	repo, db, mock := newRepo(t)
	slot := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	err := repo.LockSlot(context.Background(), slot, time.Second)
	assert.ErrorIs(t, err, ErrLockSlot)

	mock.ExpectBegin()
	mock.ExpectExec(`SET LOCAL lock_timeout = 1500`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1, \$2\)`).
		WithArgs(slotLockNamespace, slotLockKey(slot)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	tx, err := dbmetrics.Wrap(db, nil).BeginTx(context.Background(), nil)
	require.NoError(t, err)
	ctx := dbmetrics.WithTx(context.Background(), tx)

	require.NoError(t, repo.LockSlot(ctx, slot, 1500*time.Millisecond))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotLockKey_DistinctPerMinute(t *testing.T) {
	slot := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	assert.NotEqual(t, slotLockKey(slot), slotLockKey(slot.Add(time.Minute)))
	assert.Equal(t, slotLockKey(slot), slotLockKey(slot.In(time.FixedZone("UTC+3", 3*3600))))
}

func TestRepository_CountActiveAtSlot(t *testing.T) {
	repo, _, mock := newRepo(t)
	slot := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE slot = \$1 AND status <> \$2`).
		WithArgs(slot, "cancelled").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	count, err := repo.CountActiveAtSlot(context.Background(), slot)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CountActiveBySlot(t *testing.T) {
	repo, _, mock := newRepo(t)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	nine := from.Add(9 * time.Hour)

	mock.ExpectQuery(`SELECT slot, COUNT\(\*\) FROM bookings WHERE slot >= \$1 AND slot < \$2 AND status <> \$3 GROUP BY slot`).
		WithArgs(from, to, "cancelled").
		WillReturnRows(sqlmock.NewRows([]string{"slot", "count"}).AddRow(nine, 2))

	counts, err := repo.CountActiveBySlot(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{nine.Unix(): 2}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	repo, _, mock := newRepo(t)
	slot := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	q := domain.BookingsQuery{
		Filter: domain.BookingsFilter{
			LastNameContains: "o_c%",
			Types:            []domain.BookingType{domain.TypeCheckup},
			CreatedFrom:      &from,
			CreatedTo:        &to,
		},
		SortField:     domain.SortByLastName,
		SortDirection: domain.SortAsc,
		Page:          2,
		PerPage:       10,
	}.Normalize()

	mock.ExpectQuery(`FROM bookings WHERE last_name LIKE \$1 AND type IN \(\$2\) AND created_at >= \$3 AND created_at < \$4 ORDER BY last_name ASC, id ASC LIMIT 10 OFFSET 10`).
		WithArgs(`%o\_c\%%`, "checkup", from, to.AddDate(0, 0, 1)).
		WillReturnRows(bookingRow(11, domain.StatusPending, slot))

	items, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(11), items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List_DefaultSortById(t *testing.T) {
	repo, _, mock := newRepo(t)

	q := domain.BookingsQuery{SortField: domain.SortByID, SortDirection: domain.SortDesc}.Normalize()

	mock.ExpectQuery(`FROM bookings ORDER BY id DESC LIMIT 10 OFFSET 0`).
		WillReturnRows(sqlmock.NewRows(bookingColumns))

	items, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Count(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(id\) FROM bookings WHERE email LIKE \$1 AND status IN \(\$2,\$3\)`).
		WithArgs("%@clinic%", "pending", "confirmed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	count, err := repo.Count(context.Background(), domain.BookingsFilter{
		EmailContains: "@clinic",
		Statuses:      []domain.BookingStatus{domain.StatusPending, domain.StatusConfirmed},
	})
	require.NoError(t, err)
	assert.Equal(t, 25, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, _, mock := newRepo(t)

	mock.ExpectQuery(`UPDATE bookings SET status = \$1, updated_at = NOW\(\) WHERE id = \$2 RETURNING id`).
		WithArgs("confirmed", int64(5)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateStatus(context.Background(), 5, domain.StatusConfirmed)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}

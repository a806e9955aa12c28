package admit_booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/pkg/logger"
	"github.com/m04kA/SMC-ClinicBooking/pkg/ptr"
	"github.com/m04kA/SMC-ClinicBooking/pkg/txmanager"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

// store моделирует READ COMMITTED: вставки видны другим транзакциям только после коммита,
// блокировка слота держится до конца транзакции
type store struct {
	mu       sync.Mutex
	bookings []*domain.Booking
	nextID   int64

	slotLocks sync.Map

	schedule    domain.WeeklySchedule
	unavailable []domain.UnavailableDate
	lockErr     error
}

type txState struct {
	unlocks []func()
	pending []*domain.Booking
}

type txKey struct{}

func (s *store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	st := &txState{}
	err := fn(context.WithValue(ctx, txKey{}, st))
	if err == nil {
		s.mu.Lock()
		s.bookings = append(s.bookings, st.pending...)
		s.mu.Unlock()
	}
	for i := len(st.unlocks) - 1; i >= 0; i-- {
		st.unlocks[i]()
	}
	return err
}

func (s *store) LockSlot(ctx context.Context, slot time.Time, _ time.Duration) error {
	if s.lockErr != nil {
		return s.lockErr
	}
	st := ctx.Value(txKey{}).(*txState)
	m, _ := s.slotLocks.LoadOrStore(slot.Unix(), &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	st.unlocks = append(st.unlocks, mu.Unlock)
	return nil
}

func (s *store) CountActiveAtSlot(_ context.Context, slot time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, b := range s.bookings {
		if b.Slot.Equal(slot) && b.IsActive() {
			count++
		}
	}
	return count, nil
}

func (s *store) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	st := ctx.Value(txKey{}).(*txState)
	s.mu.Lock()
	s.nextID++
	created := *booking
	created.ID = s.nextID
	s.mu.Unlock()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	st.pending = append(st.pending, &created)
	return &created, nil
}

func (s *store) Get(context.Context) (*domain.WeeklySchedule, error) {
	schedule := s.schedule
	return &schedule, nil
}

func (s *store) LockDate(context.Context, time.Time, bool) error { return nil }

func (s *store) List(_ context.Context, from, to *time.Time) ([]domain.UnavailableDate, error) {
	res := make([]domain.UnavailableDate, 0)
	for _, d := range s.unavailable {
		if from != nil && d.Date.Before(*from) {
			continue
		}
		if to != nil && d.Date.After(*to) {
			continue
		}
		res = append(res, d)
	}
	return res, nil
}

func (s *store) cancel(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.ID == id {
			b.Status = domain.StatusCancelled
		}
	}
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type outcomes struct {
	mu   sync.Mutex
	seen map[string]int
}

func (o *outcomes) ObserveAdmission(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seen == nil {
		o.seen = map[string]int{}
	}
	o.seen[outcome]++
}

var (
	moscow, _ = time.LoadLocation("Europe/Moscow")
	// понедельник
	visitDate = time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)
	// понедельник неделей раньше, 11:00 по Москве
	testNow = time.Date(2025, 10, 13, 8, 0, 0, 0, time.UTC)
)

func newUseCase(t *testing.T, capacity int) (*UseCase, *store, *outcomes) {
	t.Helper()
	require.NotNil(t, moscow)

	s := &store{schedule: domain.NewClosedSchedule()}
	s.schedule.Monday = []domain.Period{{Opening: "09:00", Closing: "12:00"}}

	policy := domain.DefaultPolicy()
	policy.SlotCapacity = capacity
	policy.Location = moscow

	m := &outcomes{}
	uc := NewUseCase(s, s, s, s, policy, Timeouts{}, m, logger.Nop())
	uc.timeProvider = fixedTime{now: testNow}
	return uc, s, m
}

func validRequest(date time.Time, start types.TimeString) *Request {
	return &Request{
		Date:      date,
		StartTime: start,
		Type:      string(domain.TypeConsultation),
		FirstName: "Anna",
		LastName:  "Kowalska",
		Phone:     "+48 600 100 200",
		Email:     "anna@example.com",
		Message:   ptr.Ptr("  первый визит  "),
	}
}

func TestUseCase_Execute_Success(t *testing.T) {
	uc, _, m := newUseCase(t, 1)

	resp, err := uc.Execute(context.Background(), validRequest(visitDate, "09:00"))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, "2025-10-20T06:00:00Z", resp.Slot.UTC().Format(time.RFC3339))
	assert.Equal(t, "09:00", resp.StartTime.String())
	assert.Equal(t, visitDate, resp.Date)
	assert.Equal(t, "первый визит", *resp.Message)
	assert.Equal(t, 1, m.seen[OutcomeAdmitted])
}

func TestUseCase_Execute_SecondAdmissionSlotTaken(t *testing.T) {
	uc, _, m := newUseCase(t, 1)

	_, err := uc.Execute(context.Background(), validRequest(visitDate, "09:00"))
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), validRequest(visitDate, "09:00"))
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Equal(t, 1, m.seen[OutcomeSlotTaken])

	// соседний слот свободен
	_, err = uc.Execute(context.Background(), validRequest(visitDate, "09:30"))
	assert.NoError(t, err)
}

func TestUseCase_Execute_ConcurrentAdmissions(t *testing.T) {
	uc, s, _ := newUseCase(t, 1)

	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		taken   int
		other   []error
	)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := uc.Execute(context.Background(), validRequest(visitDate, "10:00"))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, ErrSlotTaken):
				taken++
			default:
				other = append(other, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, 1, success)
	assert.Equal(t, workers-1, taken)
	assert.Len(t, s.bookings, 1)
}

func TestUseCase_Execute_Capacity(t *testing.T) {
	uc, _, _ := newUseCase(t, 2)

	for i := 0; i < 2; i++ {
		_, err := uc.Execute(context.Background(), validRequest(visitDate, "11:30"))
		require.NoError(t, err)
	}

	_, err := uc.Execute(context.Background(), validRequest(visitDate, "11:30"))
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestUseCase_Execute_CancelFreesSlot(t *testing.T) {
	uc, s, _ := newUseCase(t, 1)

	first, err := uc.Execute(context.Background(), validRequest(visitDate, "09:00"))
	require.NoError(t, err)

	s.cancel(first.ID)

	second, err := uc.Execute(context.Background(), validRequest(visitDate, "09:00"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestUseCase_Execute_SlotNotOffered(t *testing.T) {
	tests := []struct {
		name  string
		date  time.Time
		start types.TimeString
		setup func(s *store)
	}{
		{name: "off grid", date: visitDate, start: "09:15"},
		{name: "slot would end after closing", date: visitDate, start: "12:00"},
		{name: "closed weekday", date: visitDate.AddDate(0, 0, 1), start: "09:00"},
		{name: "past date", date: visitDate.AddDate(0, 0, -14), start: "09:00"},
		// сейчас 11:00, минимальный запас 60 минут
		{name: "today inside notice window", date: time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC), start: "11:30"},
		{
			name:  "unavailable date",
			date:  visitDate,
			start: "09:00",
			setup: func(s *store) {
				s.unavailable = append(s.unavailable, domain.UnavailableDate{Date: visitDate})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, s, m := newUseCase(t, 1)
			if tt.setup != nil {
				tt.setup(s)
			}

			_, err := uc.Execute(context.Background(), validRequest(tt.date, tt.start))
			assert.ErrorIs(t, err, ErrSlotNotOffered)
			assert.Empty(t, s.bookings)
			assert.Equal(t, 1, m.seen[OutcomeSlotNotOffered])
		})
	}
}

func TestUseCase_Execute_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *Request)
		field  string
	}{
		{name: "unknown type", modify: func(r *Request) { r.Type = "surgery" }, field: "type"},
		{name: "missing first name", modify: func(r *Request) { r.FirstName = "  " }, field: "firstName"},
		{name: "bad email", modify: func(r *Request) { r.Email = "anna@" }, field: "email"},
		{name: "bad phone", modify: func(r *Request) { r.Phone = "call me" }, field: "phone"},
		{name: "bad start time", modify: func(r *Request) { r.StartTime = "25:00" }, field: "startTime"},
		{name: "missing date", modify: func(r *Request) { r.Date = time.Time{} }, field: "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _, _ := newUseCase(t, 1)
			req := validRequest(visitDate, "09:00")
			tt.modify(req)

			_, err := uc.Execute(context.Background(), req)
			require.ErrorIs(t, err, ErrInvalidInput)

			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestUseCase_Execute_StorageUnavailable(t *testing.T) {
	uc, s, m := newUseCase(t, 1)
	s.lockErr = fmt.Errorf("%w: lock timeout", txmanager.ErrStorageUnavailable)

	_, err := uc.Execute(context.Background(), validRequest(visitDate, "09:00"))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Equal(t, 1, m.seen[OutcomeStorageUnavailable])
}

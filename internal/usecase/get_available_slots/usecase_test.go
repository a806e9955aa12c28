package get_available_slots

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	scheduleService "github.com/m04kA/SMC-ClinicBooking/internal/service/schedule"
	"github.com/m04kA/SMC-ClinicBooking/pkg/logger"
	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

type fakeProvider struct {
	schedule    domain.WeeklySchedule
	unavailable []time.Time
	err         error
}

func (f *fakeProvider) LoadSchedule(context.Context) (*domain.WeeklySchedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := f.schedule
	return &s, nil
}

func (f *fakeProvider) LoadUnavailableSet(context.Context) (domain.UnavailableSet, error) {
	return domain.NewUnavailableSet(f.unavailable), nil
}

type fakeBookingRepo struct {
	taken    map[int64]int
	from, to time.Time
}

func (f *fakeBookingRepo) CountActiveBySlot(_ context.Context, from, to time.Time) (map[int64]int, error) {
	f.from, f.to = from, to
	return f.taken, nil
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

// понедельник
var visitDate = time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)

func newUseCase(t *testing.T, provider *fakeProvider, repo *fakeBookingRepo, capacity int) *UseCase {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	policy := domain.DefaultPolicy()
	policy.SlotCapacity = capacity
	policy.Location = loc

	uc := NewUseCase(repo, provider, policy, logger.Nop())
	// понедельник неделей раньше, 11:00 по Москве
	uc.timeProvider = fixedTime{now: time.Date(2025, 10, 13, 8, 0, 0, 0, time.UTC)}
	return uc
}

func mondayProvider() *fakeProvider {
	p := &fakeProvider{schedule: domain.NewClosedSchedule()}
	p.schedule.Monday = []domain.Period{{Opening: "09:00", Closing: "12:00"}}
	return p
}

func startTimes(slots []domain.AvailableSlot) []types.TimeString {
	res := make([]types.TimeString, 0, len(slots))
	for _, s := range slots {
		res = append(res, s.StartTime)
	}
	return res
}

func TestUseCase_Execute_AvailableSpots(t *testing.T) {
	// 09:00 по Москве = 06:00 UTC
	nineAM := time.Date(2025, 10, 20, 6, 0, 0, 0, time.UTC).Unix()
	tenAM := time.Date(2025, 10, 20, 7, 0, 0, 0, time.UTC).Unix()

	repo := &fakeBookingRepo{taken: map[int64]int{nineAM: 2, tenAM: 1}}
	uc := newUseCase(t, mondayProvider(), repo, 2)

	resp, err := uc.Execute(context.Background(), &Request{Date: visitDate})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 6)
	assert.Equal(t,
		[]types.TimeString{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"},
		startTimes(resp.Slots))

	assert.Equal(t, 0, resp.Slots[0].AvailableSpots)
	assert.True(t, resp.Slots[0].IsFull())
	assert.Equal(t, 2, resp.Slots[1].AvailableSpots)
	assert.Equal(t, 1, resp.Slots[2].AvailableSpots)
	assert.Equal(t, 1, resp.Slots[2].BookedSpots())
	assert.Equal(t, 2, resp.Slots[2].TotalSpots)
	assert.Equal(t, 30, resp.Slots[2].DurationMinutes)
	assert.Equal(t, types.TimeString("10:30"), resp.Slots[2].EndTime())

	assert.Equal(t, "2025-10-19T21:00:00Z", repo.from.UTC().Format(time.RFC3339))
	assert.Equal(t, "2025-10-20T21:00:00Z", repo.to.UTC().Format(time.RFC3339))
}

func TestUseCase_Execute_TodayRespectsNotice(t *testing.T) {
	uc := newUseCase(t, mondayProvider(), &fakeBookingRepo{}, 1)

	resp, err := uc.Execute(context.Background(), &Request{Date: time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	// сейчас 11:00, запас 60 минут: все слоты дня начинаются раньше 12:00
	assert.Empty(t, resp.Slots)
}

func TestUseCase_Execute_UnavailableDate(t *testing.T) {
	provider := mondayProvider()
	provider.unavailable = []time.Time{visitDate}
	uc := newUseCase(t, provider, &fakeBookingRepo{}, 1)

	resp, err := uc.Execute(context.Background(), &Request{Date: visitDate})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
	assert.NotNil(t, resp.Slots)
}

func TestUseCase_Execute_DateValidation(t *testing.T) {
	t.Run("past date", func(t *testing.T) {
		uc := newUseCase(t, mondayProvider(), &fakeBookingRepo{}, 1)
		_, err := uc.Execute(context.Background(), &Request{Date: visitDate.AddDate(0, 0, -14)})
		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("beyond advance window", func(t *testing.T) {
		uc := newUseCase(t, mondayProvider(), &fakeBookingRepo{}, 1)
		uc.policy.AdvanceBookingDays = 3
		_, err := uc.Execute(context.Background(), &Request{Date: visitDate})
		assert.ErrorIs(t, err, ErrDateTooFarInFuture)
	})

	t.Run("missing date", func(t *testing.T) {
		uc := newUseCase(t, mondayProvider(), &fakeBookingRepo{}, 1)
		_, err := uc.Execute(context.Background(), &Request{})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestUseCase_Execute_StorageUnavailable(t *testing.T) {
	provider := mondayProvider()
	provider.err = fmt.Errorf("%w: connection refused", scheduleService.ErrStorageUnavailable)
	uc := newUseCase(t, provider, &fakeBookingRepo{}, 1)

	_, err := uc.Execute(context.Background(), &Request{Date: visitDate})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

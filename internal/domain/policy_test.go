package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ClinicBooking/pkg/types"
)

func TestBookingPolicy_OfferedSlots(t *testing.T) {
	schedule := mondaySchedule(Period{Opening: "09:00", Closing: "12:00"})
	policy := DefaultPolicy()

	t.Run("future date returns all generated slots", func(t *testing.T) {
		now := monday.AddDate(0, 0, -3).Add(10 * time.Hour)
		got := policy.OfferedSlots(schedule, nil, monday, now)
		assert.Len(t, got, 6)
	})

	t.Run("today respects notice window", func(t *testing.T) {
		now := monday.Add(9*time.Hour + 40*time.Minute)
		got := policy.OfferedSlots(schedule, nil, monday, now)
		assert.Equal(t, []types.TimeString{"11:00", "11:30"}, got)
	})

	t.Run("past date is empty", func(t *testing.T) {
		now := monday.AddDate(0, 0, 1)
		assert.Empty(t, policy.OfferedSlots(schedule, nil, monday, now))
	})

	t.Run("beyond advance window is empty", func(t *testing.T) {
		limited := policy
		limited.AdvanceBookingDays = 7
		now := monday.AddDate(0, 0, -8)
		assert.Empty(t, limited.OfferedSlots(schedule, nil, monday, now))

		now = monday.AddDate(0, 0, -7)
		assert.Len(t, limited.OfferedSlots(schedule, nil, monday, now), 6)
	})
}

func TestBookingPolicy_Today_UsesLocation(t *testing.T) {
	policy := DefaultPolicy()
	policy.Location = time.FixedZone("UTC+3", 3*60*60)

	now := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-02", policy.Today(now).Format(DateFormat))
}

func TestBookingPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.SlotCapacity = 0
	assert.ErrorIs(t, p.Validate(), ErrValidation)

	p = DefaultPolicy()
	p.SlotDurationMinutes = 1
	assert.ErrorIs(t, p.Validate(), ErrValidation)
}

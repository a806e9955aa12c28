package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

// NopCache используется, когда redis выключен: всегда промах
type NopCache struct{}

func (NopCache) GetSchedule(context.Context) (*domain.WeeklySchedule, bool, error) {
	return nil, false, nil
}

func (NopCache) SetSchedule(context.Context, *domain.WeeklySchedule) error { return nil }

func (NopCache) GetUnavailableDates(context.Context) ([]time.Time, bool, error) {
	return nil, false, nil
}

func (NopCache) SetUnavailableDates(context.Context, []time.Time) error { return nil }

func (NopCache) Invalidate(context.Context) error { return nil }

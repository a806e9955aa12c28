package list_unavailable_dates

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/service/schedule/models"
)

type ScheduleService interface {
	ListUnavailableDates(ctx context.Context, from, to *time.Time) ([]models.UnavailableDateResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

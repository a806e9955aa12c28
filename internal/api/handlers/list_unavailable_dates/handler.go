package list_unavailable_dates

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ClinicBooking/internal/api/handlers"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/schedule"
)

const (
	msgInvalidDate   = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidParams = "некорректные параметры запроса"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/unavailable-dates
// Query params: from, to (опционально, YYYY-MM-DD, включительно)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	from, err := handlers.ParseOptionalDate(r.URL.Query().Get("from"))
	if err != nil {
		h.logger.Warn("GET /unavailable-dates - Invalid from: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	to, err := handlers.ParseOptionalDate(r.URL.Query().Get("to"))
	if err != nil {
		h.logger.Warn("GET /unavailable-dates - Invalid to: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.ListUnavailableDates(r.Context(), from, to)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("GET /unavailable-dates - Invalid range: %v", err)
			handlers.RespondValidationError(w, msgInvalidParams, err)

		case errors.Is(err, schedule.ErrStorageUnavailable):
			h.logger.Warn("GET /unavailable-dates - Storage unavailable: %v", err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("GET /unavailable-dates - Failed to list dates: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

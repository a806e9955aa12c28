package remove_unavailable_date

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ClinicBooking/internal/api/handlers"
	"github.com/m04kA/SMC-ClinicBooking/internal/api/middleware"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/schedule"
)

const msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"

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

// Handle DELETE /api/v1/admin/unavailable-dates/{date}
// Удаление отсутствующей даты не ошибка
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.GetAdminID(r.Context())
	dateStr := mux.Vars(r)["date"]

	date, err := handlers.ParseDate(dateStr)
	if err != nil {
		h.logger.Warn("DELETE /admin/unavailable-dates/{date} - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	removed, err := h.service.RemoveUnavailableDate(r.Context(), date)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrStorageUnavailable):
			h.logger.Warn("DELETE /admin/unavailable-dates/{date} - Storage unavailable: %v", err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("DELETE /admin/unavailable-dates/{date} - Failed to remove date: date=%s, error=%v",
				dateStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /admin/unavailable-dates/{date} - Date opened: date=%s, removed=%t, admin_id=%s",
		dateStr, removed, adminID)
	w.WriteHeader(http.StatusNoContent)
}

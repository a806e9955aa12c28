package add_unavailable_date

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ClinicBooking/internal/api/handlers"
	"github.com/m04kA/SMC-ClinicBooking/internal/api/middleware"
	"github.com/m04kA/SMC-ClinicBooking/internal/service/schedule"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidData        = "некорректные данные"
	msgDateHasBookings    = "на эту дату есть активные бронирования, сначала отмените их"
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

// Handle POST /api/v1/admin/unavailable-dates
// 201 если дата закрыта этим запросом, 200 если уже была закрыта
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.GetAdminID(r.Context())

	var req AddUnavailableDateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/unavailable-dates - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest()
	if err != nil {
		h.logger.Warn("POST /admin/unavailable-dates - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	created, err := h.service.AddUnavailableDate(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrDateHasBookings):
			h.logger.Warn("POST /admin/unavailable-dates - Date has bookings: date=%s", req.Date)
			handlers.RespondConflict(w, msgDateHasBookings)

		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("POST /admin/unavailable-dates - Invalid data: %v", err)
			handlers.RespondValidationError(w, msgInvalidData, err)

		case errors.Is(err, schedule.ErrStorageUnavailable):
			h.logger.Warn("POST /admin/unavailable-dates - Storage unavailable: %v", err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("POST /admin/unavailable-dates - Failed to add date: date=%s, error=%v", req.Date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	h.logger.Info("POST /admin/unavailable-dates - Date closed: date=%s, created=%t, admin_id=%s",
		req.Date, created, adminID)
	handlers.RespondJSON(w, status, AddUnavailableDateResponse{Date: req.Date, Created: created})
}

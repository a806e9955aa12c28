package update_schedule

import "github.com/m04kA/SMC-ClinicBooking/internal/service/schedule/models"

// UpdateScheduleRequest HTTP request model, отсутствующий день считается выходным
type UpdateScheduleRequest struct {
	Monday    []models.Period `json:"monday"`
	Tuesday   []models.Period `json:"tuesday"`
	Wednesday []models.Period `json:"wednesday"`
	Thursday  []models.Period `json:"thursday"`
	Friday    []models.Period `json:"friday"`
	Saturday  []models.Period `json:"saturday"`
	Sunday    []models.Period `json:"sunday"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateScheduleRequest) ToServiceRequest() *models.UpdateScheduleRequest {
	return &models.UpdateScheduleRequest{WeeklyPeriods: models.WeeklyPeriods{
		Monday:    r.Monday,
		Tuesday:   r.Tuesday,
		Wednesday: r.Wednesday,
		Thursday:  r.Thursday,
		Friday:    r.Friday,
		Saturday:  r.Saturday,
		Sunday:    r.Sunday,
	}}
}

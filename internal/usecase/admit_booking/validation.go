package admit_booking

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
)

const minPhoneDigits = 5

// validateRequest валидирует входные данные запроса и нормализует строки
func validateRequest(req *Request) error {
	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return domain.NewValidationError("date", "is required")
	}

	// Проверяем, что время начала указано
	if req.StartTime.IsZero() {
		return domain.NewValidationError("startTime", "is required")
	}

	// Валидируем формат времени
	if err := req.StartTime.Validate(); err != nil {
		return domain.NewValidationError("startTime", err.Error())
	}

	if !domain.BookingType(req.Type).IsValid() {
		return domain.NewValidationError("type", fmt.Sprintf("unknown booking type %q", req.Type))
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)

	if err := validateRequired("firstName", req.FirstName, domain.MaxNameLength); err != nil {
		return err
	}
	if err := validateRequired("lastName", req.LastName, domain.MaxNameLength); err != nil {
		return err
	}
	if err := validatePhone(req.Phone); err != nil {
		return err
	}
	if err := validateEmail(req.Email); err != nil {
		return err
	}

	if req.Message != nil {
		msg := strings.TrimSpace(*req.Message)
		if utf8.RuneCountInString(msg) > domain.MaxMessageLength {
			return domain.NewValidationError("message",
				fmt.Sprintf("must be at most %d characters", domain.MaxMessageLength))
		}
		if msg == "" {
			req.Message = nil
		} else {
			req.Message = &msg
		}
	}

	return nil
}

func validateRequired(field, value string, maxLen int) error {
	if value == "" {
		return domain.NewValidationError(field, "is required")
	}
	if utf8.RuneCountInString(value) > maxLen {
		return domain.NewValidationError(field, fmt.Sprintf("must be at most %d characters", maxLen))
	}
	return nil
}

// validatePhone допускает цифры, пробелы, +, -, скобки
func validatePhone(phone string) error {
	if err := validateRequired("phone", phone, domain.MaxPhoneLength); err != nil {
		return err
	}

	digits := 0
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')':
		default:
			return domain.NewValidationError("phone", fmt.Sprintf("unexpected character %q", r))
		}
	}
	if digits < minPhoneDigits {
		return domain.NewValidationError("phone", fmt.Sprintf("must contain at least %d digits", minPhoneDigits))
	}
	return nil
}

func validateEmail(email string) error {
	if err := validateRequired("email", email, domain.MaxEmailLength); err != nil {
		return err
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return domain.NewValidationError("email", "invalid email address")
	}
	return nil
}

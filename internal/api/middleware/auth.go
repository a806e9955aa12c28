package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-ClinicBooking/internal/api/handlers"
)

// HeaderAdminID заголовок с идентификатором администратора,
// проставляется шлюзом после аутентификации
const HeaderAdminID = "X-Admin-ID"

const msgMissingAdminID = "отсутствует ID администратора"

type contextKey string

const (
	adminIDKey   contextKey = "adminID"
	requestIDKey contextKey = "requestID"
)

// AdminAuth пропускает запрос только с непустым X-Admin-ID
func AdminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminID := strings.TrimSpace(r.Header.Get(HeaderAdminID))
		if adminID == "" {
			handlers.RespondUnauthorized(w, msgMissingAdminID)
			return
		}

		ctx := context.WithValue(r.Context(), adminIDKey, adminID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAdminID возвращает ID администратора из контекста
func GetAdminID(ctx context.Context) (string, bool) {
	adminID, ok := ctx.Value(adminIDKey).(string)
	return adminID, ok && adminID != ""
}

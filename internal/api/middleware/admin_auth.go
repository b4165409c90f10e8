package middleware

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/m04kA/SMC-DetailingBooking/internal/api/handlers"
)

// AdminTokenHeader заголовок с токеном администратора
const AdminTokenHeader = "X-Admin-Token"

const msgUnauthorized = "acesso não autorizado"

// AdminAuth проверяет X-Admin-Token по bcrypt хешу.
// Пустой хеш отключает проверку (локальный запуск).
func AdminAuth(tokenHash string, logger Logger) func(http.Handler) http.Handler {
	hash := []byte(tokenHash)

	return func(next http.Handler) http.Handler {
		if len(hash) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(AdminTokenHeader)
			if token == "" {
				logger.Warn("admin auth: missing token: method=%s path=%s", r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, msgUnauthorized)
				return
			}

			if err := bcrypt.CompareHashAndPassword(hash, []byte(token)); err != nil {
				logger.Warn("admin auth: invalid token: method=%s path=%s", r.Method, r.URL.Path)
				handlers.RespondUnauthorized(w, msgUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

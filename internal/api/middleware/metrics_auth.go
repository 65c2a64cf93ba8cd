package middleware

import (
	"crypto/subtle"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// MetricsBasicAuth は/metricsをBasic認証で保護する
// METRICS_USERとMETRICS_PASSWORDの両方が設定されているときだけ認証を要求し、
// 未設定ならパススルーする（ローカル開発向け）
func MetricsBasicAuth() echo.MiddlewareFunc {
	auth := middleware.BasicAuth(func(username, password string, c echo.Context) (bool, error) {
		// タイミング攻撃対策でConstantTimeCompareを使う
		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(os.Getenv("METRICS_USER"))) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(os.Getenv("METRICS_PASSWORD"))) == 1
		return userOK && passOK, nil
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		authed := auth(next)
		return func(c echo.Context) error {
			if os.Getenv("METRICS_USER") == "" || os.Getenv("METRICS_PASSWORD") == "" {
				return next(c)
			}
			return authed(c)
		}
	}
}

package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SetupMiddleware は全ルート共通のミドルウェアチェーンを登録する
// 順序: リクエストID付与 → 構造化ログ → パニックリカバリー → CORS
func SetupMiddleware(e *echo.Echo) {
	e.Use(RequestIDMiddleware())
	e.Use(RequestLogger())
	e.Use(middleware.Recover())

	// 予約ページは外部ドメインに埋め込まれるためCORSを許可する
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.DELETE},
		AllowHeaders: []string{
			echo.HeaderContentType,
			"X-User-ID",
			"X-User-Name",
			"X-User-Email",
		},
	}))
}

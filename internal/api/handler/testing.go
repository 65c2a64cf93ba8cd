package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-slot-booking/internal/api"
)

// NewTestEcho はハンドラーテスト用に本番同等のバリデーターを持つEchoを作成する
func NewTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	return e
}

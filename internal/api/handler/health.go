package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthResponse は死活監視向けのレスポンス
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Service   string `json:"service" example:"slot-booking-api"`
	Timestamp string `json:"timestamp" example:"2026-08-01T10:00:00+09:00"`
}

// Check godoc
// @Summary ヘルスチェック
// @Description APIの稼働状態を返します
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   "slot-booking-api",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

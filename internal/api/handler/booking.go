package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-slot-booking/internal/application"
)

type BookingHandler struct {
	bookingService      BookingServiceInterface
	cancellationService CancellationServiceInterface
}

func NewBookingHandler(bs BookingServiceInterface, cs CancellationServiceInterface) *BookingHandler {
	return &BookingHandler{bookingService: bs, cancellationService: cs}
}

type BookSlotRequest struct {
	EventID       string `json:"event_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	StartTime     string `json:"start_time" validate:"required" example:"2026-09-01T10:00:00+09:00"`
	AttendeeName  string `json:"attendee_name" validate:"required" example:"田中 花子"`
	AttendeeEmail string `json:"attendee_email" validate:"required,email" example:"hanako@example.com"`
}

type CancelBookingRequest struct {
	EventID       string `json:"event_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	StartTime     string `json:"start_time" validate:"required" example:"2026-09-01T10:00:00+09:00"`
	AttendeeEmail string `json:"attendee_email" validate:"required,email" example:"hanako@example.com"`
}

// Book godoc
// @Summary 予約枠を予約
// @Description 空き予約枠を予約します。同一枠への同時予約は片方のみ成功します
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body BookSlotRequest true "予約情報"
// @Success 201 {object} SlotResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "既に予約済み、または定員超過"
// @Router /bookings [post]
func (h *BookingHandler) Book(c echo.Context) error {
	var req BookSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "開始時刻の形式が不正です")
	}

	sl, err := h.bookingService.BookSlot(c.Request().Context(), application.BookSlotInput{
		EventID:       req.EventID,
		StartTime:     startTime,
		AttendeeName:  req.AttendeeName,
		AttendeeEmail: req.AttendeeEmail,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toSlotResponse(sl))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約時のメールアドレスが一致する場合のみキャンセルできます
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body CancelBookingRequest true "キャンセル情報"
// @Success 200 {object} SlotResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string "予約者本人でない"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "枠の状態が変化した"
// @Failure 422 {object} map[string]string "キャンセル不可のイベント"
// @Router /bookings/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	var req CancelBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "開始時刻の形式が不正です")
	}

	sl, err := h.cancellationService.CancelBooking(c.Request().Context(), application.CancelBookingInput{
		EventID:       req.EventID,
		StartTime:     startTime,
		AttendeeEmail: req.AttendeeEmail,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toSlotResponse(sl))
}

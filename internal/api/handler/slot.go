package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-slot-booking/internal/domain/slot"
)

type SlotHandler struct {
	slotService SlotServiceInterface
}

func NewSlotHandler(slotService SlotServiceInterface) *SlotHandler {
	return &SlotHandler{slotService: slotService}
}

type SlotResponse struct {
	ID        string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	EventID   string `json:"event_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	StartTime string `json:"start_time" example:"2026-09-01T10:00:00+09:00"`
	EndTime   string `json:"end_time" example:"2026-09-01T10:30:00+09:00"`
	Available bool   `json:"available" example:"true"`
	BookedBy  string `json:"booked_by,omitempty" example:"田中 花子"`
	BookedAt  string `json:"booked_at,omitempty" example:"2026-08-15T09:00:00+09:00"`
}

func toSlotResponse(s *slot.Slot) SlotResponse {
	resp := SlotResponse{
		ID:        s.ID,
		EventID:   s.EventID,
		StartTime: s.StartTime.Format(time.RFC3339),
		EndTime:   s.EndTime.Format(time.RFC3339),
		Available: s.IsAvailable(),
	}
	if s.BookedByName != nil {
		resp.BookedBy = *s.BookedByName
	}
	if s.BookedAt != nil {
		resp.BookedAt = s.BookedAt.Format(time.RFC3339)
	}
	return resp
}

func toSlotResponses(slots []*slot.Slot) []SlotResponse {
	responses := make([]SlotResponse, len(slots))
	for i, s := range slots {
		responses[i] = toSlotResponse(s)
	}
	return responses
}

// GetByID godoc
// @Summary 予約枠を取得
// @Description 指定IDの予約枠を取得します
// @Tags slots
// @Produce json
// @Param id path string true "予約枠ID"
// @Success 200 {object} SlotResponse
// @Failure 404 {object} map[string]string
// @Router /slots/{id} [get]
func (h *SlotHandler) GetByID(c echo.Context) error {
	s, err := h.slotService.GetSlot(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toSlotResponse(s))
}

// ListByEvent godoc
// @Summary イベントの予約枠一覧を取得
// @Description イベントの全予約枠を開始時刻順で取得します
// @Tags slots
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {array} SlotResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id}/slots [get]
func (h *SlotHandler) ListByEvent(c echo.Context) error {
	slots, err := h.slotService.GetSlotsByEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toSlotResponses(slots))
}

// ListAvailableByEvent godoc
// @Summary 空き予約枠一覧を取得
// @Description イベントの空き予約枠を開始時刻順で取得します
// @Tags slots
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {array} SlotResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id}/slots/available [get]
func (h *SlotHandler) ListAvailableByEvent(c echo.Context) error {
	slots, err := h.slotService.GetAvailableSlotsByEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toSlotResponses(slots))
}

// ListAvailableByShareableID godoc
// @Summary 共有IDで空き予約枠一覧を取得
// @Description 公開イベントの空き予約枠を共有IDから取得します
// @Tags public
// @Produce json
// @Param shareable_id path string true "共有ID"
// @Success 200 {array} SlotResponse
// @Failure 403 {object} map[string]string "非公開イベント"
// @Failure 404 {object} map[string]string
// @Router /public/events/{shareable_id}/slots [get]
func (h *SlotHandler) ListAvailableByShareableID(c echo.Context) error {
	slots, err := h.slotService.GetAvailableSlotsByShareableID(c.Request().Context(), c.Param("shareable_id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toSlotResponses(slots))
}

// ListMyBookings godoc
// @Summary 自分の予約一覧を取得
// @Description 予約時のメールアドレスに紐づく予約済み枠を取得します
// @Tags bookings
// @Produce json
// @Param email query string true "予約者メールアドレス"
// @Success 200 {array} SlotResponse
// @Failure 400 {object} map[string]string
// @Router /bookings [get]
func (h *SlotHandler) ListMyBookings(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "メールアドレスが必要です")
	}
	slots, err := h.slotService.GetBookedSlotsByEmail(c.Request().Context(), email)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toSlotResponses(slots))
}

// CountAvailable godoc
// @Summary 空き予約枠数を取得
// @Description イベントの空き予約枠数を取得します
// @Tags slots
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} map[string]int
// @Router /events/{id}/slots/available/count [get]
func (h *SlotHandler) CountAvailable(c echo.Context) error {
	count, err := h.slotService.CountAvailableSlots(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"available": count})
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-slot-booking/internal/application"
	"github.com/sanosuguru/go-slot-booking/internal/domain/event"
)

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type CreateEventRequest struct {
	Name                string `json:"name" validate:"required" example:"キャリア相談会"`
	Description         string `json:"description" example:"30分の1on1相談"`
	StartAt             string `json:"start_at" validate:"required" example:"2026-09-01T10:00:00+09:00"`
	EndAt               string `json:"end_at" validate:"required" example:"2026-09-01T12:00:00+09:00"`
	TimeZone            string `json:"time_zone" validate:"required" example:"Asia/Tokyo"`
	SlotDurationMinutes int    `json:"slot_duration_minutes" validate:"required,gt=0" example:"30"`
	MaxCapacity         *int   `json:"max_capacity,omitempty" example:"3"`
	AllowsCancellations *bool  `json:"allows_cancellations,omitempty" example:"true"`
	IsPublic            *bool  `json:"is_public,omitempty" example:"true"`
}

type EventResponse struct {
	ID                  string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name                string `json:"name" example:"キャリア相談会"`
	Description         string `json:"description" example:"30分の1on1相談"`
	HostName            string `json:"host_name" example:"佐野 太郎"`
	StartAt             string `json:"start_at" example:"2026-09-01T10:00:00+09:00"`
	EndAt               string `json:"end_at" example:"2026-09-01T12:00:00+09:00"`
	TimeZone            string `json:"time_zone" example:"Asia/Tokyo"`
	ShareableID         string `json:"shareable_id" example:"career-soudan-V1StGXR8_Z"`
	SlotDurationMinutes int    `json:"slot_duration_minutes" example:"30"`
	MaxCapacity         *int   `json:"max_capacity,omitempty" example:"3"`
	AllowsCancellations bool   `json:"allows_cancellations" example:"true"`
	IsPublic            bool   `json:"is_public" example:"true"`
	CreatedAt           string `json:"created_at" example:"2026-08-01T10:00:00+09:00"`
	UpdatedAt           string `json:"updated_at" example:"2026-08-01T10:00:00+09:00"`
}

func toEventResponse(e *event.Event) *EventResponse {
	return &EventResponse{
		ID:                  e.ID,
		Name:                e.Name,
		Description:         e.Description,
		HostName:            e.HostDisplayName(),
		StartAt:             e.StartAt.Format(time.RFC3339),
		EndAt:               e.EndAt.Format(time.RFC3339),
		TimeZone:            e.TimeZone,
		ShareableID:         e.ShareableID,
		SlotDurationMinutes: e.Rules.SlotDurationMinutes,
		MaxCapacity:         e.Rules.MaxCapacity,
		AllowsCancellations: e.Rules.AllowsCancellations,
		IsPublic:            e.Rules.IsPublic,
		CreatedAt:           e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           e.UpdatedAt.Format(time.RFC3339),
	}
}

// hostIdentity はリクエストヘッダーから主催者情報を取り出す
func hostIdentity(c echo.Context) (id, name, email string, err error) {
	id = c.Request().Header.Get("X-User-ID")
	if id == "" {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	return id, c.Request().Header.Get("X-User-Name"), c.Request().Header.Get("X-User-Email"), nil
}

// Create godoc
// @Summary イベントを作成
// @Description イベントを作成し、開催期間を予約枠に分割して生成します
// @Tags events
// @Accept json
// @Produce json
// @Param X-User-ID header string true "主催者ID"
// @Param X-User-Name header string false "主催者名"
// @Param X-User-Email header string false "主催者メールアドレス"
// @Param request body CreateEventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	hostID, hostName, hostEmail, err := hostIdentity(c)
	if err != nil {
		return err
	}

	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "開始時刻の形式が不正です")
	}
	endAt, err := time.Parse(time.RFC3339, req.EndAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "終了時刻の形式が不正です")
	}

	rules := event.DefaultRules()
	rules.SlotDurationMinutes = req.SlotDurationMinutes
	rules.MaxCapacity = req.MaxCapacity
	if req.AllowsCancellations != nil {
		rules.AllowsCancellations = *req.AllowsCancellations
	}
	if req.IsPublic != nil {
		rules.IsPublic = *req.IsPublic
	}

	ev, err := h.eventService.CreateEvent(c.Request().Context(), application.CreateEventInput{
		HostID:      hostID,
		HostName:    hostName,
		HostEmail:   hostEmail,
		Name:        req.Name,
		Description: req.Description,
		StartAt:     startAt,
		EndAt:       endAt,
		TimeZone:    req.TimeZone,
		Rules:       rules,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toEventResponse(ev))
}

// GetByID godoc
// @Summary イベントを取得
// @Description 主催者自身のイベントを取得します
// @Tags events
// @Produce json
// @Param X-User-ID header string true "主催者ID"
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	hostID, _, _, err := hostIdentity(c)
	if err != nil {
		return err
	}
	ev, err := h.eventService.GetEvent(c.Request().Context(), hostID, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(ev))
}

// List godoc
// @Summary イベント一覧を取得
// @Description 主催者のイベント一覧を取得します
// @Tags events
// @Produce json
// @Param X-User-ID header string true "主催者ID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} EventResponse
// @Failure 401 {object} map[string]string
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	hostID, _, _, err := hostIdentity(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	events, err := h.eventService.ListEvents(c.Request().Context(), hostID, limit, offset)
	if err != nil {
		return toHTTPError(err)
	}
	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = toEventResponse(e)
	}
	return c.JSON(http.StatusOK, responses)
}

// GetByShareableID godoc
// @Summary 共有IDでイベントを取得
// @Description 公開イベントを共有IDから取得します
// @Tags public
// @Produce json
// @Param shareable_id path string true "共有ID"
// @Success 200 {object} EventResponse
// @Failure 403 {object} map[string]string "非公開イベント"
// @Failure 404 {object} map[string]string
// @Router /public/events/{shareable_id} [get]
func (h *EventHandler) GetByShareableID(c echo.Context) error {
	ev, err := h.eventService.GetEventByShareableID(c.Request().Context(), c.Param("shareable_id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(ev))
}

// Delete godoc
// @Summary イベントを削除
// @Description イベントと予約枠を削除し、予約者へキャンセル通知を送ります
// @Tags events
// @Param X-User-ID header string true "主催者ID"
// @Param id path string true "イベントID"
// @Success 204
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	hostID, _, _, err := hostIdentity(c)
	if err != nil {
		return err
	}
	if err := h.eventService.DeleteEvent(c.Request().Context(), hostID, c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

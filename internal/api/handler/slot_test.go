package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-slot-booking/internal/domain/event"
	"github.com/sanosuguru/go-slot-booking/internal/domain/slot"
)

// MockSlotService はSlotServiceInterfaceのモック
type MockSlotService struct {
	mock.Mock
}

func (m *MockSlotService) GetSlot(ctx context.Context, id string) (*slot.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*slot.Slot), args.Error(1)
}

func (m *MockSlotService) GetSlotsByEvent(ctx context.Context, eventID string) ([]*slot.Slot, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*slot.Slot), args.Error(1)
}

func (m *MockSlotService) GetAvailableSlotsByEvent(ctx context.Context, eventID string) ([]*slot.Slot, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*slot.Slot), args.Error(1)
}

func (m *MockSlotService) GetAvailableSlotsByShareableID(ctx context.Context, shareableID string) ([]*slot.Slot, error) {
	args := m.Called(ctx, shareableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*slot.Slot), args.Error(1)
}

func (m *MockSlotService) GetBookedSlotsByEmail(ctx context.Context, email string) ([]*slot.Slot, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*slot.Slot), args.Error(1)
}

func (m *MockSlotService) CountAvailableSlots(ctx context.Context, eventID string) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

func TestSlotHandler_ListAvailableByShareableID(t *testing.T) {
	e := NewTestEcho()

	t.Run("公開イベントの空き枠を取得できる", func(t *testing.T) {
		mockService := new(MockSlotService)
		mockService.On("GetAvailableSlotsByShareableID", mock.Anything, "career-soudan-abc123").
			Return([]*slot.Slot{newHandlerTestSlot()}, nil)

		h := NewSlotHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/v1/public/events/:shareable_id/slots")
		c.SetParamNames("shareable_id")
		c.SetParamValues("career-soudan-abc123")

		require.NoError(t, h.ListAvailableByShareableID(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp []SlotResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.True(t, resp[0].Available)
		// 予約者情報は空き枠では返さない
		assert.Empty(t, resp[0].BookedBy)
	})

	t.Run("非公開イベントは403", func(t *testing.T) {
		mockService := new(MockSlotService)
		mockService.On("GetAvailableSlotsByShareableID", mock.Anything, "secret-abc123").
			Return(nil, event.ErrEventPrivate)

		h := NewSlotHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/v1/public/events/:shareable_id/slots")
		c.SetParamNames("shareable_id")
		c.SetParamValues("secret-abc123")

		err := h.ListAvailableByShareableID(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	})
}

func TestSlotHandler_ListMyBookings(t *testing.T) {
	e := NewTestEcho()

	t.Run("メールアドレスに紐づく予約を返す", func(t *testing.T) {
		booked := newHandlerTestSlot()
		name, email := "田中 花子", "hanako@example.com"
		booked.BookedByName = &name
		booked.BookedByEmail = &email

		mockService := new(MockSlotService)
		mockService.On("GetBookedSlotsByEmail", mock.Anything, "hanako@example.com").
			Return([]*slot.Slot{booked}, nil)

		h := NewSlotHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?email=hanako%40example.com", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, h.ListMyBookings(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("メールアドレスがないと400", func(t *testing.T) {
		h := NewSlotHandler(new(MockSlotService))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := h.ListMyBookings(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})
}

func TestSlotHandler_CountAvailable(t *testing.T) {
	e := NewTestEcho()

	mockService := new(MockSlotService)
	mockService.On("CountAvailableSlots", mock.Anything, "event-123").Return(3, nil)

	h := NewSlotHandler(mockService)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/events/:id/slots/available/count")
	c.SetParamNames("id")
	c.SetParamValues("event-123")

	require.NoError(t, h.CountAvailable(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp["available"])
}

func TestSlotHandler_GetByID(t *testing.T) {
	e := NewTestEcho()

	t.Run("存在しない枠は404", func(t *testing.T) {
		mockService := new(MockSlotService)
		mockService.On("GetSlot", mock.Anything, "missing").Return(nil, slot.ErrSlotNotFound)

		h := NewSlotHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/v1/slots/:id")
		c.SetParamNames("id")
		c.SetParamValues("missing")

		err := h.GetByID(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusNotFound, httpErr.Code)
	})
}

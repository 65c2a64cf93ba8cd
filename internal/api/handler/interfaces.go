package handler

import (
	"context"

	"github.com/sanosuguru/go-slot-booking/internal/application"
	"github.com/sanosuguru/go-slot-booking/internal/domain/event"
	"github.com/sanosuguru/go-slot-booking/internal/domain/slot"
)

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	GetEvent(ctx context.Context, hostID, id string) (*event.Event, error)
	ListEvents(ctx context.Context, hostID string, limit, offset int) ([]*event.Event, error)
	GetEventByShareableID(ctx context.Context, shareableID string) (*event.Event, error)
	DeleteEvent(ctx context.Context, hostID, id string) error
}

// SlotServiceInterface は予約枠照会サービスのインターフェース
type SlotServiceInterface interface {
	GetSlot(ctx context.Context, id string) (*slot.Slot, error)
	GetSlotsByEvent(ctx context.Context, eventID string) ([]*slot.Slot, error)
	GetAvailableSlotsByEvent(ctx context.Context, eventID string) ([]*slot.Slot, error)
	GetAvailableSlotsByShareableID(ctx context.Context, shareableID string) ([]*slot.Slot, error)
	GetBookedSlotsByEmail(ctx context.Context, email string) ([]*slot.Slot, error)
	CountAvailableSlots(ctx context.Context, eventID string) (int, error)
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	BookSlot(ctx context.Context, input application.BookSlotInput) (*slot.Slot, error)
}

// CancellationServiceInterface はキャンセルサービスのインターフェース
type CancellationServiceInterface interface {
	CancelBooking(ctx context.Context, input application.CancelBookingInput) (*slot.Slot, error)
}

package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-slot-booking/internal/domain/event"
	"github.com/sanosuguru/go-slot-booking/internal/domain/slot"
	"github.com/sanosuguru/go-slot-booking/internal/pkg/clock"
)

// fixedNow はテストの基準時刻。枠はすべてこれより未来に置く
var fixedNow = time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

func testEvent() *event.Event {
	ev := event.NewEvent("host-1", "佐野 太郎", "taro@example.com", "キャリア相談会", "",
		fixedNow.Add(24*time.Hour), fixedNow.Add(26*time.Hour), "UTC", event.DefaultRules())
	ev.ID = "event-1"
	ev.ShareableID = "career-soudan-abc123"
	return ev
}

func testSlot(ev *event.Event) *slot.Slot {
	s := slot.NewSlot(ev.ID, ev.StartAt, ev.StartAt.Add(30*time.Minute))
	s.ID = "slot-1"
	return s
}

func TestBookingService_BookSlot(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(fixedNow)

	input := func(ev *event.Event) BookSlotInput {
		return BookSlotInput{
			EventID:       ev.ID,
			StartTime:     ev.StartAt,
			AttendeeName:  "田中 花子",
			AttendeeEmail: "hanako@example.com",
		}
	}

	t.Run("空き枠を予約できる", func(t *testing.T) {
		ev := testEvent()
		sl := testSlot(ev)

		slotRepo := new(MockSlotRepository)
		eventRepo := new(MockEventRepository)
		txManager := new(MockTxManager)
		tx := new(MockTx)
		publisher := new(MockPublisher)

		slotRepo.On("GetByEventAndStartTime", ctx, ev.ID, ev.StartAt).Return(sl, nil)
		eventRepo.On("GetByID", ctx, ev.ID).Return(ev, nil)
		txManager.On("Begin", ctx).Return(tx, nil)
		slotRepo.On("Update", ctx, tx, sl).Return(nil)
		tx.On("Commit").Return(nil)
		tx.On("Rollback").Return(nil)
		publisher.On("PublishBookingConfirmed", ctx, mock.Anything).Return(nil)

		svc := NewBookingService(txManager, slotRepo, eventRepo, publisher, nil, clk)
		got, err := svc.BookSlot(ctx, input(ev))
		require.NoError(t, err)

		assert.False(t, got.IsAvailable())
		assert.Equal(t, "hanako@example.com", *got.BookedByEmail)
		assert.Equal(t, fixedNow, *got.BookedAt)
		slotRepo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("存在しない枠", func(t *testing.T) {
		ev := testEvent()
		slotRepo := new(MockSlotRepository)
		slotRepo.On("GetByEventAndStartTime", ctx, ev.ID, ev.StartAt).Return(nil, slot.ErrSlotNotFound)

		svc := NewBookingService(new(MockTxManager), slotRepo, new(MockEventRepository), nil, nil, clk)
		_, err := svc.BookSlot(ctx, input(ev))
		assert.ErrorIs(t, err, slot.ErrSlotNotFound)
	})

	t.Run("予約済み枠は予約できない", func(t *testing.T) {
		ev := testEvent()
		sl := testSlot(ev)
		require.NoError(t, sl.Book("先約 さん", "first@example.com", fixedNow))

		slotRepo := new(MockSlotRepository)
		slotRepo.On("GetByEventAndStartTime", ctx, ev.ID, ev.StartAt).Return(sl, nil)

		svc := NewBookingService(new(MockTxManager), slotRepo, new(MockEventRepository), nil, nil, clk)
		_, err := svc.BookSlot(ctx, input(ev))
		assert.ErrorIs(t, err, slot.ErrSlotAlreadyBooked)
	})

	t.Run("過去の枠は予約できない", func(t *testing.T) {
		ev := testEvent()
		sl := testSlot(ev)
		// クロックを枠の開始時刻より後に進める
		lateClk := clock.NewFixed(ev.StartAt.Add(time.Minute))

		slotRepo := new(MockSlotRepository)
		eventRepo := new(MockEventRepository)
		slotRepo.On("GetByEventAndStartTime", ctx, ev.ID, ev.StartAt).Return(sl, nil)
		eventRepo.On("GetByID", ctx, ev.ID).Return(ev, nil)

		svc := NewBookingService(new(MockTxManager), slotRepo, eventRepo, nil, nil, lateClk)
		_, err := svc.BookSlot(ctx, input(ev))
		assert.ErrorIs(t, err, slot.ErrSlotInPast)
	})

	t.Run("開始時刻ちょうどは予約できない", func(t *testing.T) {
		ev := testEvent()
		sl := testSlot(ev)
		exactClk := clock.NewFixed(ev.StartAt)

		slotRepo := new(MockSlotRepository)
		eventRepo := new(MockEventRepository)
		slotRepo.On("GetByEventAndStartTime", ctx, ev.ID, ev.StartAt).Return(sl, nil)
		eventRepo.On("GetByID", ctx, ev.ID).Return(ev, nil)

		svc := NewBookingService(new(MockTxManager), slotRepo, eventRepo, nil, nil, exactClk)
		_, err := svc.BookSlot(ctx, input(ev))
		assert.ErrorIs(t, err, slot.ErrSlotInPast)
	})

	t.Run("定員超過", func(t *testing.T) {
		ev := testEvent()
		capacity := 2
		ev.Rules.MaxCapacity = &capacity
		sl := testSlot(ev)

		slotRepo := new(MockSlotRepository)
		eventRepo := new(MockEventRepository)
		slotRepo.On("GetByEventAndStartTime", ctx, ev.ID, ev.StartAt).Return(sl, nil)
		eventRepo.On("GetByID", ctx, ev.ID).Return(ev, nil)
		slotRepo.On("CountBookedByEventID", ctx, ev.ID).Return(2, nil)

		svc := NewBookingService(new(MockTxManager), slotRepo, eventRepo, nil, nil, clk)
		_, err := svc.BookSlot(ctx, input(ev))
		assert.ErrorIs(t, err, event.ErrMaxCapacityExceeded)
	})

	t.Run("定員未満なら予約できる", func(t *testing.T) {
		ev := testEvent()
		capacity := 2
		ev.Rules.MaxCapacity = &capacity
		sl := testSlot(ev)

		slotRepo := new(MockSlotRepository)
		eventRepo := new(MockEventRepository)
		txManager := new(MockTxManager)
		tx := new(MockTx)

		slotRepo.On("GetByEventAndStartTime", ctx, ev.ID, ev.StartAt).Return(sl, nil)
		eventRepo.On("GetByID", ctx, ev.ID).Return(ev, nil)
		slotRepo.On("CountBookedByEventID", ctx, ev.ID).Return(1, nil)
		txManager.On("Begin", ctx).Return(tx, nil)
		slotRepo.On("Update", ctx, tx, sl).Return(nil)
		tx.On("Commit").Return(nil)
		tx.On("Rollback").Return(nil)

		svc := NewBookingService(txManager, slotRepo, eventRepo, nil, nil, clk)
		_, err := svc.BookSlot(ctx, input(ev))
		assert.NoError(t, err)
	})

	t.Run("楽観的ロック競合は予約済みエラーになる", func(t *testing.T) {
		ev := testEvent()
		sl := testSlot(ev)

		slotRepo := new(MockSlotRepository)
		eventRepo := new(MockEventRepository)
		txManager := new(MockTxManager)
		tx := new(MockTx)

		slotRepo.On("GetByEventAndStartTime", ctx, ev.ID, ev.StartAt).Return(sl, nil)
		eventRepo.On("GetByID", ctx, ev.ID).Return(ev, nil)
		txManager.On("Begin", ctx).Return(tx, nil)
		slotRepo.On("Update", ctx, tx, sl).Return(slot.ErrOptimisticLockConflict)
		tx.On("Rollback").Return(nil)

		svc := NewBookingService(txManager, slotRepo, eventRepo, nil, nil, clk)
		_, err := svc.BookSlot(ctx, input(ev))
		assert.ErrorIs(t, err, slot.ErrSlotAlreadyBooked)
		tx.AssertNotCalled(t, "Commit")
	})

	t.Run("通知投入の失敗は予約結果に影響しない", func(t *testing.T) {
		ev := testEvent()
		sl := testSlot(ev)

		slotRepo := new(MockSlotRepository)
		eventRepo := new(MockEventRepository)
		txManager := new(MockTxManager)
		tx := new(MockTx)
		publisher := new(MockPublisher)

		slotRepo.On("GetByEventAndStartTime", ctx, ev.ID, ev.StartAt).Return(sl, nil)
		eventRepo.On("GetByID", ctx, ev.ID).Return(ev, nil)
		txManager.On("Begin", ctx).Return(tx, nil)
		slotRepo.On("Update", ctx, tx, sl).Return(nil)
		tx.On("Commit").Return(nil)
		tx.On("Rollback").Return(nil)
		publisher.On("PublishBookingConfirmed", ctx, mock.Anything).Return(errors.New("キュー接続エラー"))

		svc := NewBookingService(txManager, slotRepo, eventRepo, publisher, nil, clk)
		got, err := svc.BookSlot(ctx, input(ev))
		require.NoError(t, err)
		assert.False(t, got.IsAvailable())
	})
}

// 同一枠への並行予約は楽観的ロックにより1件だけ成功する
func TestBookingService_ConcurrentBooking(t *testing.T) {
	ctx := context.Background()
	ev := testEvent()
	sl := testSlot(ev)

	repo := newMemorySlotRepo(sl)
	eventRepo := new(MockEventRepository)
	eventRepo.On("GetByID", mock.Anything, ev.ID).Return(ev, nil)

	svc := NewBookingService(noopTxManager{}, repo, eventRepo, nil, nil, clock.NewFixed(fixedNow))

	const numGoroutines = 20
	var successCount, conflictCount int32
	var wg sync.WaitGroup

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.BookSlot(ctx, BookSlotInput{
				EventID:       ev.ID,
				StartTime:     ev.StartAt,
				AttendeeName:  "並行予約者",
				AttendeeEmail: "attendee@example.com",
			})
			switch {
			case err == nil:
				atomic.AddInt32(&successCount, 1)
			case errors.Is(err, slot.ErrSlotAlreadyBooked):
				atomic.AddInt32(&conflictCount, 1)
			default:
				t.Errorf("想定外のエラー: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), successCount)
	assert.Equal(t, int32(numGoroutines-1), conflictCount)

	stored, err := repo.GetByID(ctx, sl.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsAvailable())
	assert.Equal(t, 1, stored.Version)
}

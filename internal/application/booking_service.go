package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-slot-booking/internal/domain/event"
	"github.com/sanosuguru/go-slot-booking/internal/domain/slot"
	"github.com/sanosuguru/go-slot-booking/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-slot-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-slot-booking/internal/notification"
	"github.com/sanosuguru/go-slot-booking/internal/pkg/clock"
	"github.com/sanosuguru/go-slot-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-slot-booking/internal/pkg/metrics"
)

// BookingService は予約枠の予約を調停するサービス
// 並行アクセスに対する安全性は予約枠の楽観的ロックのみで担保する
type BookingService struct {
	txManager transaction.Manager
	slotRepo  slot.Repository
	eventRepo event.Repository
	publisher notification.Publisher
	cache     *redisinfra.SlotCache
	clk       clock.Clock
}

// NewBookingService はBookingServiceを作成する
func NewBookingService(txManager transaction.Manager, sr slot.Repository, er event.Repository, pub notification.Publisher, cache *redisinfra.SlotCache, clk clock.Clock) *BookingService {
	return &BookingService{txManager: txManager, slotRepo: sr, eventRepo: er, publisher: pub, cache: cache, clk: clk}
}

type BookSlotInput struct {
	EventID       string
	StartTime     time.Time
	AttendeeName  string
	AttendeeEmail string
}

// BookSlot は予約枠を予約する
// 同一枠への同時予約は楽観的ロックで検出し、片方だけが成功する
func (s *BookingService) BookSlot(ctx context.Context, input BookSlotInput) (*slot.Slot, error) {
	// 予約枠を取得
	sl, err := s.slotRepo.GetByEventAndStartTime(ctx, input.EventID, input.StartTime)
	if err != nil {
		s.recordBooking("not_found")
		return nil, err
	}

	if !sl.IsAvailable() {
		s.recordBooking("already_booked")
		return nil, slot.ErrSlotAlreadyBooked
	}

	ev, err := s.eventRepo.GetByID(ctx, sl.EventID)
	if err != nil {
		s.recordBooking("error")
		return nil, fmt.Errorf("イベント取得に失敗: %w", err)
	}

	// イベントのタイムゾーンで過去枠を拒否
	loc, err := ev.Location()
	if err != nil {
		s.recordBooking("error")
		return nil, err
	}
	now := clock.NowIn(s.clk, loc)
	if !sl.StartTime.After(now) {
		s.recordBooking("invalid")
		return nil, slot.ErrSlotInPast
	}

	// 定員チェック
	// 読み取りと後続の書き込みはアトミックではないため、境界付近の高負荷では
	// 一時的に定員を超えて受け付ける可能性がある
	if ev.Rules.MaxCapacity != nil {
		booked, err := s.slotRepo.CountBookedByEventID(ctx, sl.EventID)
		if err != nil {
			s.recordBooking("error")
			return nil, fmt.Errorf("予約済み枠数の取得に失敗: %w", err)
		}
		if booked >= *ev.Rules.MaxCapacity {
			s.recordBooking("capacity_exceeded")
			return nil, event.ErrMaxCapacityExceeded
		}
	}

	if err := sl.Book(input.AttendeeName, input.AttendeeEmail, s.clk.Now()); err != nil {
		s.recordBooking("invalid")
		return nil, err
	}

	// 条件付き書き込み（楽観的ロック）
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		s.recordBooking("error")
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.slotRepo.Update(ctx, tx, sl); err != nil {
		if errors.Is(err, slot.ErrOptimisticLockConflict) {
			// 同一枠への競合は「既に予約済み」として返す。自動リトライはしない
			s.recordBooking("already_booked")
			return nil, slot.ErrSlotAlreadyBooked
		}
		s.recordBooking("error")
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.recordBooking("error")
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	// コミット後の副作用。失敗してもログに残すだけで予約は成立している
	s.invalidateCache(ctx, sl.EventID)
	s.publishBookingConfirmed(ctx, ev, sl)

	s.recordBooking("success")
	return sl, nil
}

// publishBookingConfirmed はコミット後に予約確定通知を投入する
func (s *BookingService) publishBookingConfirmed(ctx context.Context, ev *event.Event, sl *slot.Slot) {
	if s.publisher == nil {
		return
	}
	payload := notification.BookingConfirmedPayload{
		SlotID:          sl.ID,
		EventName:       ev.Name,
		HostDisplayName: ev.HostDisplayName(),
		HostEmail:       ev.HostEmail,
		AttendeeName:    *sl.BookedByName,
		AttendeeEmail:   *sl.BookedByEmail,
		StartTime:       sl.StartTime,
		EndTime:         sl.EndTime,
		TimeZone:        ev.TimeZone,
	}
	if err := s.publisher.PublishBookingConfirmed(ctx, payload); err != nil {
		logger.Error("予約確定通知の投入に失敗", zap.String("slot_id", sl.ID), zap.Error(err))
		s.recordNotification(notification.TypeBookingConfirmed, "failed")
		return
	}
	s.recordNotification(notification.TypeBookingConfirmed, "enqueued")
}

func (s *BookingService) invalidateCache(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.Error(err))
	}
}

func (s *BookingService) recordBooking(status string) {
	if m := metrics.Get(); m != nil {
		m.BookingsTotal.WithLabelValues(status).Inc()
	}
}

func (s *BookingService) recordNotification(taskType, status string) {
	if m := metrics.Get(); m != nil {
		m.NotificationsTotal.WithLabelValues(taskType, status).Inc()
	}
}

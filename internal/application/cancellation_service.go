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

// CancellationService は予約の取り消しを調停するサービス
// 認可はログインではなく、予約時に登録したメールアドレスの一致のみで行う
type CancellationService struct {
	txManager transaction.Manager
	slotRepo  slot.Repository
	eventRepo event.Repository
	publisher notification.Publisher
	cache     *redisinfra.SlotCache
	clk       clock.Clock
}

// NewCancellationService はCancellationServiceを作成する
func NewCancellationService(txManager transaction.Manager, sr slot.Repository, er event.Repository, pub notification.Publisher, cache *redisinfra.SlotCache, clk clock.Clock) *CancellationService {
	return &CancellationService{txManager: txManager, slotRepo: sr, eventRepo: er, publisher: pub, cache: cache, clk: clk}
}

type CancelBookingInput struct {
	EventID       string
	StartTime     time.Time
	AttendeeEmail string
}

// CancelBooking は予約を取り消し、枠を再び予約可能にする
func (s *CancellationService) CancelBooking(ctx context.Context, input CancelBookingInput) (*slot.Slot, error) {
	// 予約枠を取得
	sl, err := s.slotRepo.GetByEventAndStartTime(ctx, input.EventID, input.StartTime)
	if err != nil {
		s.recordCancellation("not_found")
		return nil, err
	}

	ev, err := s.eventRepo.GetByID(ctx, sl.EventID)
	if err != nil {
		s.recordCancellation("error")
		return nil, fmt.Errorf("イベント取得に失敗: %w", err)
	}

	// イベントのポリシーでキャンセルが許可されているか
	if !ev.Rules.AllowsCancellations {
		s.recordCancellation("invalid")
		return nil, slot.ErrCancellationNotAllowed
	}

	// イベントのタイムゾーンで過去枠を拒否
	loc, err := ev.Location()
	if err != nil {
		s.recordCancellation("error")
		return nil, err
	}
	now := clock.NowIn(s.clk, loc)
	if !sl.StartTime.After(now) {
		s.recordCancellation("invalid")
		return nil, slot.ErrSlotInPast
	}

	if sl.IsAvailable() {
		s.recordCancellation("invalid")
		return nil, slot.ErrSlotNotBooked
	}

	// 予約時のメールアドレス一致が唯一の認可チェック
	if !sl.IsBookedBy(input.AttendeeEmail) {
		s.recordCancellation("unauthorized")
		return nil, slot.ErrUnauthorizedAccess
	}

	// 通知用に解除前の予約者情報を保持
	attendeeName := *sl.BookedByName
	attendeeEmail := *sl.BookedByEmail

	sl.Release()

	// 条件付き書き込み（楽観的ロック）
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		s.recordCancellation("error")
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.slotRepo.Update(ctx, tx, sl); err != nil {
		if errors.Is(err, slot.ErrOptimisticLockConflict) {
			// 競合はリトライ可能なエラーとして返す。黙って握りつぶさない
			s.recordCancellation("conflict")
			return nil, slot.ErrSlotStateChanged
		}
		s.recordCancellation("error")
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.recordCancellation("error")
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	// コミット後の副作用
	s.invalidateCache(ctx, sl.EventID)
	s.publishBookingCancelled(ctx, ev, sl, attendeeName, attendeeEmail)

	s.recordCancellation("success")
	return sl, nil
}

// publishBookingCancelled はコミット後にキャンセル通知を投入する
func (s *CancellationService) publishBookingCancelled(ctx context.Context, ev *event.Event, sl *slot.Slot, attendeeName, attendeeEmail string) {
	if s.publisher == nil {
		return
	}
	payload := notification.BookingCancelledPayload{
		SlotID:          sl.ID,
		EventName:       ev.Name,
		HostDisplayName: ev.HostDisplayName(),
		HostEmail:       ev.HostEmail,
		AttendeeName:    attendeeName,
		AttendeeEmail:   attendeeEmail,
		StartTime:       sl.StartTime,
		EndTime:         sl.EndTime,
		TimeZone:        ev.TimeZone,
	}
	if err := s.publisher.PublishBookingCancelled(ctx, payload); err != nil {
		logger.Error("キャンセル通知の投入に失敗", zap.String("slot_id", sl.ID), zap.Error(err))
		s.recordNotification(notification.TypeBookingCancelled, "failed")
		return
	}
	s.recordNotification(notification.TypeBookingCancelled, "enqueued")
}

func (s *CancellationService) invalidateCache(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("キャッシュ無効化エラー", zap.Error(err))
	}
}

func (s *CancellationService) recordCancellation(status string) {
	if m := metrics.Get(); m != nil {
		m.CancellationsTotal.WithLabelValues(status).Inc()
	}
}

func (s *CancellationService) recordNotification(taskType, status string) {
	if m := metrics.Get(); m != nil {
		m.NotificationsTotal.WithLabelValues(taskType, status).Inc()
	}
}

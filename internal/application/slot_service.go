package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-slot-booking/internal/domain/event"
	"github.com/sanosuguru/go-slot-booking/internal/domain/slot"
	redisinfra "github.com/sanosuguru/go-slot-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-slot-booking/internal/pkg/logger"
)

const (
	availableCountCacheTTL = 30 * time.Second
)

// SlotService は予約枠の照会を提供するサービス
type SlotService struct {
	slotRepo  slot.Repository
	eventRepo event.Repository
	cache     *redisinfra.SlotCache
}

// NewSlotService はSlotServiceを作成する
func NewSlotService(sr slot.Repository, er event.Repository, cache *redisinfra.SlotCache) *SlotService {
	return &SlotService{slotRepo: sr, eventRepo: er, cache: cache}
}

// GetSlot はIDから予約枠を取得する
func (s *SlotService) GetSlot(ctx context.Context, id string) (*slot.Slot, error) {
	return s.slotRepo.GetByID(ctx, id)
}

// GetSlotsByEvent はイベントの予約枠一覧を取得する（主催者向け）
func (s *SlotService) GetSlotsByEvent(ctx context.Context, eventID string) ([]*slot.Slot, error) {
	return s.slotRepo.GetByEventID(ctx, eventID)
}

// GetAvailableSlotsByEvent はイベントの空き枠一覧を取得する
func (s *SlotService) GetAvailableSlotsByEvent(ctx context.Context, eventID string) ([]*slot.Slot, error) {
	return s.slotRepo.GetAvailableByEventID(ctx, eventID)
}

// GetAvailableSlotsByShareableID は共有IDから公開イベントの空き枠一覧を取得する
// 非公開イベントは共有IDを知っていても参照できない
func (s *SlotService) GetAvailableSlotsByShareableID(ctx context.Context, shareableID string) ([]*slot.Slot, error) {
	ev, err := s.eventRepo.GetByShareableID(ctx, shareableID)
	if err != nil {
		return nil, err
	}
	if !ev.Rules.IsPublic {
		return nil, event.ErrEventPrivate
	}
	return s.slotRepo.GetAvailableByEventID(ctx, ev.ID)
}

// GetBookedSlotsByEmail は予約者のメールアドレスから予約済み枠一覧を取得する
func (s *SlotService) GetBookedSlotsByEmail(ctx context.Context, email string) ([]*slot.Slot, error) {
	return s.slotRepo.GetByBookedEmail(ctx, email)
}

// CountAvailableSlots はイベントの空き枠数を取得する
// 公開ページ向けのためキャッシュを優先し、ミス時にDBから取得して保存する
func (s *SlotService) CountAvailableSlots(ctx context.Context, eventID string) (int, error) {
	if s.cache != nil {
		count, err := s.cache.GetAvailableCount(ctx, eventID)
		if err == nil {
			logger.Debug("キャッシュヒット", zap.String("event_id", eventID), zap.Int("count", count))
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	available, err := s.slotRepo.GetAvailableByEventID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	count := len(available)

	if s.cache != nil {
		if cacheErr := s.cache.SetAvailableCount(ctx, eventID, count, availableCountCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}

	return count, nil
}

// CountBookedSlots はイベントの予約済み枠数を取得する
// 定員判定にも使われるためキャッシュは介さず常にDBの値を返す
func (s *SlotService) CountBookedSlots(ctx context.Context, eventID string) (int, error) {
	return s.slotRepo.CountBookedByEventID(ctx, eventID)
}

package application

import (
	"context"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-slot-booking/internal/domain/event"
	"github.com/sanosuguru/go-slot-booking/internal/domain/slot"
	"github.com/sanosuguru/go-slot-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-slot-booking/internal/notification"
	"github.com/sanosuguru/go-slot-booking/internal/pkg/clock"
	"github.com/sanosuguru/go-slot-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-slot-booking/internal/pkg/metrics"
)

// shareableIDTokenLength は共有IDのランダムトークン長
const shareableIDTokenLength = 10

// EventService はイベントの作成・削除と予約枠の一括生成を調停するサービス
type EventService struct {
	txManager transaction.Manager
	eventRepo event.Repository
	slotRepo  slot.Repository
	publisher notification.Publisher
	clk       clock.Clock
}

// NewEventService はEventServiceを作成する
func NewEventService(txManager transaction.Manager, er event.Repository, sr slot.Repository, pub notification.Publisher, clk clock.Clock) *EventService {
	return &EventService{txManager: txManager, eventRepo: er, slotRepo: sr, publisher: pub, clk: clk}
}

type CreateEventInput struct {
	HostID      string
	HostName    string
	HostEmail   string
	Name        string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	TimeZone    string
	Rules       event.AvailabilityRules
}

// CreateEvent はイベントを作成し、開催期間を予約枠に分割して一括保存する
// イベントと予約枠は同一トランザクションで保存し、枠は作成後に再生成しない
func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	ev := event.NewEvent(input.HostID, input.HostName, input.HostEmail, input.Name, input.Description,
		input.StartAt, input.EndAt, input.TimeZone, input.Rules)
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	// イベントのタイムゾーンで未来開始を検証
	loc, err := ev.Location()
	if err != nil {
		return nil, err
	}
	now := clock.NowIn(s.clk, loc)
	if !ev.StartAt.After(now) {
		return nil, event.ErrEventStartInPast
	}

	// 分割を先に計算し、枠長が不正ならイベント自体を作らない
	windows, err := slot.Partition(ev.StartAt, ev.EndAt, ev.Rules.SlotDurationMinutes)
	if err != nil {
		return nil, err
	}

	// 公開用の共有IDは作成時に一度だけ生成する
	shareableID, err := generateShareableID(ev.Name)
	if err != nil {
		return nil, fmt.Errorf("共有IDの生成に失敗: %w", err)
	}
	ev.ShareableID = shareableID

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.eventRepo.Create(ctx, tx, ev); err != nil {
		return nil, err
	}

	slots := make([]*slot.Slot, len(windows))
	for i, w := range windows {
		slots[i] = slot.NewSlot(ev.ID, w.Start, w.End)
	}
	if err := s.slotRepo.CreateBulk(ctx, tx, slots); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	if m := metrics.Get(); m != nil {
		m.SlotsGenerated.Observe(float64(len(slots)))
	}

	logger.Info("イベント作成",
		zap.String("event_id", ev.ID),
		zap.String("shareable_id", ev.ShareableID),
		zap.Int("slot_count", len(slots)),
	)
	return ev, nil
}

// GetEvent は主催者自身のイベントを取得する
func (s *EventService) GetEvent(ctx context.Context, hostID, id string) (*event.Event, error) {
	ev, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ev.IsOwnedBy(hostID) {
		return nil, event.ErrUnauthorizedAccess
	}
	return ev, nil
}

// ListEvents は主催者のイベント一覧を取得する
func (s *EventService) ListEvents(ctx context.Context, hostID string, limit, offset int) ([]*event.Event, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.eventRepo.ListByHostID(ctx, hostID, limit, offset)
}

// GetEventByShareableID は共有IDから公開イベントを取得する
func (s *EventService) GetEventByShareableID(ctx context.Context, shareableID string) (*event.Event, error) {
	ev, err := s.eventRepo.GetByShareableID(ctx, shareableID)
	if err != nil {
		return nil, err
	}
	if !ev.Rules.IsPublic {
		return nil, event.ErrEventPrivate
	}
	return ev, nil
}

// DeleteEvent はイベントを削除する
// 予約枠はDB側でカスケード削除され、削除時点で予約済みだった予約者へ
// コミット後にキャンセル通知を送る
func (s *EventService) DeleteEvent(ctx context.Context, hostID, id string) error {
	ev, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ev.IsOwnedBy(hostID) {
		return event.ErrUnauthorizedAccess
	}

	// 削除前に予約済み枠の連絡先を収集しておく
	slots, err := s.slotRepo.GetByEventID(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("予約枠一覧取得に失敗: %w", err)
	}
	var attendeeEmails []string
	for _, sl := range slots {
		if !sl.IsAvailable() {
			attendeeEmails = append(attendeeEmails, *sl.BookedByEmail)
		}
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.eventRepo.Delete(ctx, tx, ev.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}

	s.publishEventCancelled(ctx, ev, attendeeEmails)
	return nil
}

// publishEventCancelled はコミット後にイベント削除通知を投入する
func (s *EventService) publishEventCancelled(ctx context.Context, ev *event.Event, attendeeEmails []string) {
	if s.publisher == nil || len(attendeeEmails) == 0 {
		return
	}
	payload := notification.EventCancelledPayload{
		EventID:        ev.ID,
		EventName:      ev.Name,
		AttendeeEmails: attendeeEmails,
	}
	if err := s.publisher.PublishEventCancelled(ctx, payload); err != nil {
		logger.Error("イベント削除通知の投入に失敗", zap.String("event_id", ev.ID), zap.Error(err))
		if m := metrics.Get(); m != nil {
			m.NotificationsTotal.WithLabelValues(notification.TypeEventCancelled, "failed").Inc()
		}
		return
	}
	if m := metrics.Get(); m != nil {
		m.NotificationsTotal.WithLabelValues(notification.TypeEventCancelled, "enqueued").Inc()
	}
}

// generateShareableID はイベント名のスラッグとランダムトークンから公開用IDを生成する
func generateShareableID(name string) (string, error) {
	token, err := gonanoid.New(shareableIDTokenLength)
	if err != nil {
		return "", err
	}
	base := slug.Make(name)
	if base == "" {
		base = "event"
	}
	return base + "-" + token, nil
}

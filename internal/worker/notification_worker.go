package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-slot-booking/internal/config"
	"github.com/sanosuguru/go-slot-booking/internal/notification"
	"github.com/sanosuguru/go-slot-booking/internal/pkg/logger"
)

// NotificationWorker は通知キューを消費するワーカー
// メールテンプレートの描画と実際の配信は外部サービスの責務のため、
// ここでは配信依頼の内容を構造化ログとして出力する
type NotificationWorker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewNotificationWorker は新しいワーカーを作成する
func NewNotificationWorker(redisCfg *config.RedisConfig, cfg *config.NotificationConfig) *NotificationWorker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisCfg.Addr(), Password: redisCfg.Password, DB: redisCfg.DB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      map[string]int{cfg.Queue: 1},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeBookingConfirmed, handleBookingConfirmed)
	mux.HandleFunc(notification.TypeBookingCancelled, handleBookingCancelled)
	mux.HandleFunc(notification.TypeEventCancelled, handleEventCancelled)

	return &NotificationWorker{server: server, mux: mux}
}

// Start はワーカーを開始する（ブロックしない）
func (w *NotificationWorker) Start() error {
	logger.Info("通知ワーカー開始")
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("通知ワーカーの起動に失敗: %w", err)
	}
	return nil
}

// Shutdown はワーカーを停止する
func (w *NotificationWorker) Shutdown() {
	logger.Info("通知ワーカーを停止しています")
	w.server.Shutdown()
}

// handleBookingConfirmed は予約確定通知を処理する
// 予約者向け確認と主催者向け通知の2通を配信する
func handleBookingConfirmed(ctx context.Context, t *asynq.Task) error {
	var p notification.BookingConfirmedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("予約確定通知のデシリアライズに失敗: %w", err)
	}

	logger.Info("予約確定通知を配信",
		zap.String("slot_id", p.SlotID),
		zap.String("event_name", p.EventName),
		zap.String("attendee_email", p.AttendeeEmail),
		zap.String("host_email", p.HostEmail),
		zap.Time("start_time", p.StartTime),
		zap.String("time_zone", p.TimeZone),
	)
	return nil
}

// handleBookingCancelled は予約キャンセル通知を処理する
func handleBookingCancelled(ctx context.Context, t *asynq.Task) error {
	var p notification.BookingCancelledPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("キャンセル通知のデシリアライズに失敗: %w", err)
	}

	logger.Info("予約キャンセル通知を配信",
		zap.String("slot_id", p.SlotID),
		zap.String("event_name", p.EventName),
		zap.String("attendee_email", p.AttendeeEmail),
		zap.String("host_email", p.HostEmail),
	)
	return nil
}

// handleEventCancelled はイベント削除通知を処理する
// 削除時点で予約済みだった全予約者へ送る
func handleEventCancelled(ctx context.Context, t *asynq.Task) error {
	var p notification.EventCancelledPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("イベント削除通知のデシリアライズに失敗: %w", err)
	}

	logger.Info("イベント削除通知を配信",
		zap.String("event_id", p.EventID),
		zap.String("event_name", p.EventName),
		zap.Int("attendee_count", len(p.AttendeeEmails)),
	)
	return nil
}

package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Publisher は通知タスクの投入インターフェース
// トランザクションのコミット後にのみ呼び出す
// 失敗は呼び出し側でログに残すだけで、元の操作には影響させない
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, p BookingConfirmedPayload) error
	PublishBookingCancelled(ctx context.Context, p BookingCancelledPayload) error
	PublishEventCancelled(ctx context.Context, p EventCancelledPayload) error
}

// AsynqPublisher はasynq（Redisキュー）ベースのPublisher実装
type AsynqPublisher struct {
	client   *asynq.Client
	queue    string
	maxRetry int
}

// NewAsynqPublisher はAsynqPublisherを作成する
func NewAsynqPublisher(client *asynq.Client, queue string, maxRetry int) *AsynqPublisher {
	return &AsynqPublisher{client: client, queue: queue, maxRetry: maxRetry}
}

// PublishBookingConfirmed は予約確定通知タスクを投入する
func (p *AsynqPublisher) PublishBookingConfirmed(ctx context.Context, payload BookingConfirmedPayload) error {
	return p.enqueue(ctx, TypeBookingConfirmed, payload)
}

// PublishBookingCancelled は予約キャンセル通知タスクを投入する
func (p *AsynqPublisher) PublishBookingCancelled(ctx context.Context, payload BookingCancelledPayload) error {
	return p.enqueue(ctx, TypeBookingCancelled, payload)
}

// PublishEventCancelled はイベント削除通知タスクを投入する
func (p *AsynqPublisher) PublishEventCancelled(ctx context.Context, payload EventCancelledPayload) error {
	return p.enqueue(ctx, TypeEventCancelled, payload)
}

func (p *AsynqPublisher) enqueue(ctx context.Context, taskType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("通知ペイロードのシリアライズに失敗: %w", err)
	}

	task := asynq.NewTask(taskType, data)
	_, err = p.client.EnqueueContext(ctx, task,
		asynq.Queue(p.queue),
		asynq.MaxRetry(p.maxRetry),
		asynq.TaskID(uuid.New().String()),
	)
	if err != nil {
		return fmt.Errorf("通知タスクの投入に失敗: %w", err)
	}
	return nil
}

var _ Publisher = (*AsynqPublisher)(nil)

package event

import (
	"context"

	"github.com/sanosuguru/go-slot-booking/internal/domain/transaction"
)

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// Create は新しいイベントを作成する（予約枠の一括作成と同一トランザクション）
	Create(ctx context.Context, tx transaction.Tx, e *Event) error

	// GetByID はIDからイベントを取得する
	GetByID(ctx context.Context, id string) (*Event, error)

	// GetByShareableID は共有IDからイベントを取得する
	GetByShareableID(ctx context.Context, shareableID string) (*Event, error)

	// ListByHostID は主催者のイベント一覧を取得する
	ListByHostID(ctx context.Context, hostID string, limit, offset int) ([]*Event, error)

	// Delete はイベントを削除する（予約枠はDB側でカスケード削除）
	Delete(ctx context.Context, tx transaction.Tx, id string) error
}

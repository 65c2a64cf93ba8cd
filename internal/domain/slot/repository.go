package slot

import (
	"context"
	"time"

	"github.com/sanosuguru/go-slot-booking/internal/domain/transaction"
)

// Repository は予約枠リポジトリのインターフェース
type Repository interface {
	// CreateBulk は複数の予約枠を一括作成する（イベント生成時のみ、トランザクション必須）
	CreateBulk(ctx context.Context, tx transaction.Tx, slots []*Slot) error

	// GetByID はIDから予約枠を取得する
	GetByID(ctx context.Context, id string) (*Slot, error)

	// GetByEventAndStartTime はイベントIDと開始時刻から予約枠を取得する
	GetByEventAndStartTime(ctx context.Context, eventID string, startTime time.Time) (*Slot, error)

	// GetByEventID はイベントIDから予約枠一覧を取得する
	GetByEventID(ctx context.Context, eventID string) ([]*Slot, error)

	// GetAvailableByEventID はイベントIDから空いている予約枠一覧を取得する
	GetAvailableByEventID(ctx context.Context, eventID string) ([]*Slot, error)

	// GetByBookedEmail は予約者メールアドレスから予約済み枠一覧を取得する
	GetByBookedEmail(ctx context.Context, email string) ([]*Slot, error)

	// CountBookedByEventID はイベントの予約済み枠数を取得する
	CountBookedByEventID(ctx context.Context, eventID string) (int, error)

	// Update は予約枠を条件付きで更新する（楽観的ロック、トランザクション必須）
	// 読み取り時のバージョンと一致しない場合は ErrOptimisticLockConflict を返す
	Update(ctx context.Context, tx transaction.Tx, s *Slot) error
}

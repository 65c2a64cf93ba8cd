package slot

import "errors"

// Slot ドメインのエラー定義
var (
	ErrSlotNotFound           = errors.New("予約枠が見つかりません")
	ErrSlotAlreadyBooked      = errors.New("この予約枠は既に予約されています")
	ErrSlotNotBooked          = errors.New("この予約枠は予約されていません")
	ErrSlotInPast             = errors.New("過去の予約枠は操作できません")
	ErrSlotStateChanged       = errors.New("予約枠の状態が変更されました。再度お試しください")
	ErrCancellationNotAllowed = errors.New("このイベントはキャンセルを許可していません")
	ErrUnauthorizedAccess     = errors.New("この予約を操作する権限がありません")
	ErrInvalidDuration        = errors.New("枠の長さは1分以上である必要があります")
	ErrInvalidSlotTime        = errors.New("終了時刻は開始時刻より後である必要があります")
	ErrEventIDRequired        = errors.New("イベントIDは必須です")
	ErrAttendeeNameRequired   = errors.New("予約者名は必須です")
	ErrAttendeeEmailRequired  = errors.New("予約者メールアドレスは必須です")
	ErrOptimisticLockConflict = errors.New("楽観的ロックの競合が発生しました")
)

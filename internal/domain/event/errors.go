package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound       = errors.New("イベントが見つかりません")
	ErrEventNameRequired   = errors.New("イベント名は必須です")
	ErrHostIDRequired      = errors.New("主催者IDは必須です")
	ErrInvalidEventTime    = errors.New("終了時刻は開始時刻より後である必要があります")
	ErrEventStartInPast    = errors.New("イベントは未来の時刻に開始する必要があります")
	ErrInvalidTimeZone     = errors.New("タイムゾーンが不正です")
	ErrMaxCapacityExceeded = errors.New("このイベントは最大予約数に達しています")
	ErrEventPrivate        = errors.New("このイベントは非公開です")
	ErrUnauthorizedAccess  = errors.New("他のユーザーのイベントを操作する権限がありません")
)

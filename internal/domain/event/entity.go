package event

import (
	"strings"
	"time"
)

// AvailabilityRules はイベントごとの予約ポリシーを表す値オブジェクト
// Eventに埋め込まれ、独立したライフサイクルを持たない
type AvailabilityRules struct {
	SlotDurationMinutes int
	MaxSlotsPerUser     int
	MaxCapacity         *int // nil は無制限
	AllowsCancellations bool
	IsPublic            bool
}

// DefaultRules は予約ポリシーのデフォルト値を返す
func DefaultRules() AvailabilityRules {
	return AvailabilityRules{
		SlotDurationMinutes: 30,
		MaxSlotsPerUser:     1,
		AllowsCancellations: true,
		IsPublic:            true,
	}
}

// Event は主催者が公開する予約受付期間を表すエンティティ
// 主催者(User)は参照のみで、このドメインでは所有しない
// 通知用の主催者名とメールアドレスは作成時に非正規化して保持する
type Event struct {
	ID          string
	Name        string
	Description string
	HostID      string
	HostName    string
	HostEmail   string
	StartAt     time.Time
	EndAt       time.Time
	TimeZone    string
	ShareableID string
	Rules       AvailabilityRules
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int // 楽観的ロック用
}

// NewEvent は新しいイベントを作成する
func NewEvent(hostID, hostName, hostEmail, name, description string, startAt, endAt time.Time, timeZone string, rules AvailabilityRules) *Event {
	now := time.Now()
	return &Event{
		Name:        name,
		Description: description,
		HostID:      hostID,
		HostName:    hostName,
		HostEmail:   hostEmail,
		StartAt:     startAt,
		EndAt:       endAt,
		TimeZone:    timeZone,
		Rules:       rules,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     0,
	}
}

// Location はイベントのタイムゾーンを返す
func (e *Event) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(e.TimeZone)
	if err != nil {
		return nil, ErrInvalidTimeZone
	}
	return loc, nil
}

// HostDisplayName は通知に使う主催者の表示名を返す
// 名前が未設定の場合はメールアドレスのローカル部を使う
func (e *Event) HostDisplayName() string {
	if e.HostName != "" {
		return e.HostName
	}
	if i := strings.Index(e.HostEmail, "@"); i > 0 {
		return e.HostEmail[:i]
	}
	return e.HostEmail
}

// IsOwnedBy は指定主催者のイベントかを返す
func (e *Event) IsOwnedBy(hostID string) bool {
	return e.HostID == hostID
}

// Validate はイベントの検証を行う
func (e *Event) Validate() error {
	if e.Name == "" {
		return ErrEventNameRequired
	}
	if e.HostID == "" {
		return ErrHostIDRequired
	}
	if _, err := time.LoadLocation(e.TimeZone); err != nil {
		return ErrInvalidTimeZone
	}
	if !e.EndAt.After(e.StartAt) {
		return ErrInvalidEventTime
	}
	return nil
}

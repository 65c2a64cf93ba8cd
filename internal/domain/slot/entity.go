package slot

import "time"

// Slot はイベント枠内の個別に予約できる時間枠を表すエンティティ
type Slot struct {
	ID            string
	EventID       string
	StartTime     time.Time
	EndTime       time.Time
	BookedByName  *string
	BookedByEmail *string
	BookedAt      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int // 楽観的ロック用
}

// NewSlot は新しい予約枠を作成する
func NewSlot(eventID string, startTime, endTime time.Time) *Slot {
	now := time.Now()
	return &Slot{
		EventID:   eventID,
		StartTime: startTime,
		EndTime:   endTime,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   0,
	}
}

// IsAvailable は枠が予約可能かを返す
// 予約者名とメールアドレスは常に両方nilか両方非nil
func (s *Slot) IsAvailable() bool {
	return s.BookedByName == nil && s.BookedByEmail == nil
}

// Book は枠を予約状態にする
func (s *Slot) Book(name, email string, bookedAt time.Time) error {
	if !s.IsAvailable() {
		return ErrSlotAlreadyBooked
	}
	if name == "" {
		return ErrAttendeeNameRequired
	}
	if email == "" {
		return ErrAttendeeEmailRequired
	}
	s.BookedByName = &name
	s.BookedByEmail = &email
	s.BookedAt = &bookedAt
	s.UpdatedAt = bookedAt
	return nil
}

// Release は予約を解除する
// 予約者名・メールアドレス・予約時刻を同時にクリアする
func (s *Slot) Release() {
	s.BookedByName = nil
	s.BookedByEmail = nil
	s.BookedAt = nil
	s.UpdatedAt = time.Now()
}

// IsBookedBy は指定メールアドレスの予約者による予約かを返す
func (s *Slot) IsBookedBy(email string) bool {
	return s.BookedByEmail != nil && *s.BookedByEmail == email
}

// Validate は枠の検証を行う
func (s *Slot) Validate() error {
	if s.EventID == "" {
		return ErrEventIDRequired
	}
	if !s.EndTime.After(s.StartTime) {
		return ErrInvalidSlotTime
	}
	return nil
}

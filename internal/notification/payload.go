package notification

import "time"

// 通知タスクの種別
const (
	TypeBookingConfirmed = "notification:booking_confirmed"
	TypeBookingCancelled = "notification:booking_cancelled"
	TypeEventCancelled   = "notification:event_cancelled"
)

// BookingConfirmedPayload は予約確定通知のペイロード
// 予約者向け確認と主催者向け通知の両方をワーカー側で送り分ける
type BookingConfirmedPayload struct {
	SlotID          string    `json:"slot_id"`
	EventName       string    `json:"event_name"`
	HostDisplayName string    `json:"host_display_name"`
	HostEmail       string    `json:"host_email"`
	AttendeeName    string    `json:"attendee_name"`
	AttendeeEmail   string    `json:"attendee_email"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	TimeZone        string    `json:"time_zone"`
}

// BookingCancelledPayload は予約キャンセル通知のペイロード
type BookingCancelledPayload struct {
	SlotID          string    `json:"slot_id"`
	EventName       string    `json:"event_name"`
	HostDisplayName string    `json:"host_display_name"`
	HostEmail       string    `json:"host_email"`
	AttendeeName    string    `json:"attendee_name"`
	AttendeeEmail   string    `json:"attendee_email"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	TimeZone        string    `json:"time_zone"`
}

// EventCancelledPayload はイベント削除時の一斉キャンセル通知のペイロード
// 削除時点で予約済みだった全枠の予約者メールアドレスを含む
type EventCancelledPayload struct {
	EventID        string   `json:"event_id"`
	EventName      string   `json:"event_name"`
	AttendeeEmails []string `json:"attendee_emails"`
}

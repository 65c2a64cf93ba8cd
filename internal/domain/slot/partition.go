package slot

import "time"

// Window は分割された予約枠の時間範囲を表す
type Window struct {
	Start time.Time
	End   time.Time
}

// Partition はイベントの開催期間を指定分数の予約枠に分割する
// 終了時刻ちょうどに収まる枠までを生成し、端数の枠は生成しない
// 期間より枠が長い場合は空のスライスを返す
func Partition(eventStart, eventEnd time.Time, durationMinutes int) ([]Window, error) {
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	d := time.Duration(durationMinutes) * time.Minute
	windows := make([]Window, 0)
	for cursor := eventStart; !cursor.Add(d).After(eventEnd); cursor = cursor.Add(d) {
		windows = append(windows, Window{Start: cursor, End: cursor.Add(d)})
	}
	return windows, nil
}

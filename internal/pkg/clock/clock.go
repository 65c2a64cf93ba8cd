package clock

import "time"

// Clock は現在時刻の取得を抽象化するインターフェース
// タイムゾーンを考慮した時刻判定をテスト可能にするための注入点
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem はtime.Nowを返すクロックを作成する
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

type fixedClock struct {
	now time.Time
}

// NewFixed は常に同じ時刻を返すクロックを作成する（テスト用）
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t}
}

func (f fixedClock) Now() time.Time {
	return f.now
}

// NowIn は指定タイムゾーンでの現在時刻を返す
func NowIn(c Clock, loc *time.Location) time.Time {
	return c.Now().In(loc)
}

package attendance

import "time"

// Clock 可替换的当前时间来源
type Clock interface {
	Now() time.Time
}

// SystemClock 以指定时区返回系统时间
type SystemClock struct {
	Loc *time.Location
}

// Now 返回当前时间
func (c SystemClock) Now() time.Time {
	if c.Loc == nil {
		return time.Now()
	}
	return time.Now().In(c.Loc)
}

// Today 返回时钟所在时区的当天日期（UTC 零点表示）
func Today(c Clock) time.Time {
	now := c.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Package attendance 考勤核心规则：班次时间校验、年度排班日历、日期多选状态机、
// 工时对账与每日打卡状态推导。包内均为纯函数，不依赖存储与网络。
package attendance

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DateLayout 对外交换的日期格式
	DateLayout = "2006-01-02"
	// TimeLayout 对外交换的时刻格式
	TimeLayout = "15:04"
)

// ── 班次校验错误 ──

var (
	ErrInvalidTimeFormat = errors.New("时间格式无效，应为 HH:MM")
	ErrInvalidDateFormat = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrStartNotBeforeEnd = errors.New("开始时间必须早于结束时间")
	ErrIncompleteBreak   = errors.New("休息开始与结束时间必须同时填写")
	ErrBreakOrder        = errors.New("休息开始时间必须早于休息结束时间")
	ErrBreakOutsideShift = errors.New("休息时间必须位于班次时间范围内")
)

// ScheduleType 班次类型
type ScheduleType string

const (
	ScheduleTotal ScheduleType = "total" // 连续班
	ScheduleSplit ScheduleType = "split" // 中间有休息的分段班
)

// TimeOfDay 一天内的时刻，单位为自零点起的分钟数
type TimeOfDay int

// ParseTimeOfDay 解析 HH:MM
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// String 格式化为 HH:MM
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Shift 经过校验的班次：start < end；休息可选，存在时须满足 start ≤ startBreak < endBreak ≤ end
type Shift struct {
	Start      TimeOfDay
	End        TimeOfDay
	BreakStart *TimeOfDay
	BreakEnd   *TimeOfDay
}

// ParseShift 解析并校验班次时间
// startBreak/endBreak 为 nil 或空串均视为未填写
func ParseShift(start, end string, startBreak, endBreak *string) (Shift, error) {
	var s Shift
	var err error

	if s.Start, err = ParseTimeOfDay(start); err != nil {
		return Shift{}, err
	}
	if s.End, err = ParseTimeOfDay(end); err != nil {
		return Shift{}, err
	}
	if s.Start >= s.End {
		return Shift{}, ErrStartNotBeforeEnd
	}

	hasStart := startBreak != nil && *startBreak != ""
	hasEnd := endBreak != nil && *endBreak != ""
	if hasStart != hasEnd {
		return Shift{}, ErrIncompleteBreak
	}
	if !hasStart {
		return s, nil
	}

	bs, err := ParseTimeOfDay(*startBreak)
	if err != nil {
		return Shift{}, err
	}
	be, err := ParseTimeOfDay(*endBreak)
	if err != nil {
		return Shift{}, err
	}
	if bs >= be {
		return Shift{}, ErrBreakOrder
	}
	if bs < s.Start || be > s.End {
		return Shift{}, ErrBreakOutsideShift
	}
	s.BreakStart, s.BreakEnd = &bs, &be
	return s, nil
}

// HasBreak 是否包含休息
func (s Shift) HasBreak() bool {
	return s.BreakStart != nil && s.BreakEnd != nil
}

// BreakMinutes 休息分钟数
func (s Shift) BreakMinutes() int {
	if !s.HasBreak() {
		return 0
	}
	return int(*s.BreakEnd - *s.BreakStart)
}

// WorkMinutes 应出勤分钟数 = (end − start) − 休息时长
func (s Shift) WorkMinutes() int {
	return int(s.End-s.Start) - s.BreakMinutes()
}

// Type 推导班次类型：有休息为 split，否则为 total
func (s Shift) Type() ScheduleType {
	if s.HasBreak() {
		return ScheduleSplit
	}
	return ScheduleTotal
}

// Segments 返回班次的工作时段（分段班为休息前后两段）
func (s Shift) Segments() [][2]TimeOfDay {
	if !s.HasBreak() {
		return [][2]TimeOfDay{{s.Start, s.End}}
	}
	segs := make([][2]TimeOfDay, 0, 2)
	if *s.BreakStart > s.Start {
		segs = append(segs, [2]TimeOfDay{s.Start, *s.BreakStart})
	}
	if s.End > *s.BreakEnd {
		segs = append(segs, [2]TimeOfDay{*s.BreakEnd, s.End})
	}
	return segs
}

// ── 日期 ──

// ParseDate 解析 YYYY-MM-DD，结果为 UTC 零点
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return d, nil
}

// FormatDate 格式化为 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// YearBounds 返回 [1月1日, 次年1月1日) 的 UTC 边界
func YearBounds(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}

// ISOWeekday 返回 1=周一 … 7=周日
func ISOWeekday(t time.Time) int {
	return (int(t.Weekday())+6)%7 + 1
}

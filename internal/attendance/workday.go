package attendance

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// WorkdayStatus 每日工作状态
type WorkdayStatus string

const (
	StatusNotStarted WorkdayStatus = "not_started"
	StatusClockedIn  WorkdayStatus = "clocked_in"
	StatusOnBreak    WorkdayStatus = "on_break"
	StatusCompleted  WorkdayStatus = "completed"
)

// EntryType 打卡事件类型
type EntryType string

const (
	EntryClockIn    EntryType = "clock_in"
	EntryBreakStart EntryType = "break_start"
	EntryBreakEnd   EntryType = "break_end"
	EntryClockOut   EntryType = "clock_out"
)

var (
	ErrInvalidTransition = errors.New("当前状态下不允许该打卡操作")
	ErrClockOutBeforeIn  = errors.New("下班时间必须晚于上班时间")
	ErrBreakTooLong      = errors.New("休息时长不能超过在岗时长")
	ErrEventOutOfOrder   = errors.New("打卡时间不能早于上一次打卡")
)

// DeriveStatus 由字段存在性推导工作状态
// 有下班打卡即为 completed；无上班打卡为 not_started；否则按是否休息中区分
func DeriveStatus(hasClockIn, hasClockOut, onBreak bool) WorkdayStatus {
	switch {
	case hasClockOut:
		return StatusCompleted
	case !hasClockIn:
		return StatusNotStarted
	case onBreak:
		return StatusOnBreak
	default:
		return StatusClockedIn
	}
}

// Transition 状态迁移
//
//	not_started --clock_in-->    clocked_in
//	clocked_in  --break_start--> on_break
//	on_break    --break_end-->   clocked_in
//	clocked_in  --clock_out-->   completed
func Transition(from WorkdayStatus, event EntryType) (WorkdayStatus, error) {
	switch {
	case from == StatusNotStarted && event == EntryClockIn:
		return StatusClockedIn, nil
	case from == StatusClockedIn && event == EntryBreakStart:
		return StatusOnBreak, nil
	case from == StatusOnBreak && event == EntryBreakEnd:
		return StatusClockedIn, nil
	case from == StatusClockedIn && event == EntryClockOut:
		return StatusCompleted, nil
	}
	return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, event)
}

// ClockEvent 一次打卡
type ClockEvent struct {
	Type EntryType
	At   time.Time
}

// WorkdayTally 由打卡序列汇总出的工作日数据
type WorkdayTally struct {
	ClockIn       *time.Time
	ClockOut      *time.Time
	BreakMinutes  int
	WorkedMinutes int
	Status        WorkdayStatus
}

// Tally 按时间顺序回放打卡事件，计算休息与工作分钟数
// 只统计已结束的休息；未下班时 WorkedMinutes 为 0
func Tally(events []ClockEvent) (WorkdayTally, error) {
	sorted := make([]ClockEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	t := WorkdayTally{Status: StatusNotStarted}
	var breakStart time.Time
	var breakDur time.Duration

	for _, ev := range sorted {
		next, err := Transition(t.Status, ev.Type)
		if err != nil {
			return WorkdayTally{}, err
		}
		switch ev.Type {
		case EntryClockIn:
			at := ev.At
			t.ClockIn = &at
		case EntryBreakStart:
			breakStart = ev.At
		case EntryBreakEnd:
			breakDur += ev.At.Sub(breakStart)
		case EntryClockOut:
			at := ev.At
			t.ClockOut = &at
		}
		t.Status = next
	}

	t.BreakMinutes = int(breakDur / time.Minute)
	if t.ClockIn != nil && t.ClockOut != nil {
		worked, err := WorkedMinutes(*t.ClockIn, *t.ClockOut, t.BreakMinutes)
		if err != nil {
			return WorkdayTally{}, err
		}
		t.WorkedMinutes = worked
	}
	return t, nil
}

// WorkedMinutes (clockOut − clockIn) − breakMinutes，用于手工录入校验
func WorkedMinutes(clockIn, clockOut time.Time, breakMinutes int) (int, error) {
	if !clockOut.After(clockIn) {
		return 0, ErrClockOutBeforeIn
	}
	if breakMinutes < 0 {
		return 0, ErrBreakTooLong
	}
	span := int(clockOut.Sub(clockIn) / time.Minute)
	if breakMinutes >= span {
		return 0, ErrBreakTooLong
	}
	return span - breakMinutes, nil
}

package attendance

import (
	"errors"
	"sort"
)

// SelectionState 日期多选状态
type SelectionState string

const (
	NoSelection              SelectionState = "no_selection"
	SelectingWithSchedule    SelectionState = "selecting_with_schedule"
	SelectingWithoutSchedule SelectionState = "selecting_without_schedule"
)

var (
	// ErrMixedSelection 已排班与未排班的日期不能同时选中
	ErrMixedSelection = errors.New("不能同时选择已排班和未排班的日期")
	// ErrDayNotSelectable 占位单元格不可点击
	ErrDayNotSelectable = errors.New("该日期不可选择")
	// ErrEmptySelection 未选择任何日期
	ErrEmptySelection = errors.New("请至少选择一个日期")
)

// Selection 同质日期多选：选中的日期要么全部已排班，要么全部未排班
// 零值不可用，使用 NewSelection 创建
type Selection struct {
	state SelectionState
	dates map[string]struct{}
}

// NewSelection 创建空选择
func NewSelection() *Selection {
	return &Selection{state: NoSelection, dates: make(map[string]struct{})}
}

// Toggle 点击一个日期
//   - 已选中：取消选中，清空后回到 NoSelection
//   - 空选择：按该日期是否已排班进入对应状态
//   - 与当前状态类型不一致：返回 ErrMixedSelection，选择保持不变
func (s *Selection) Toggle(date string, hasSchedule bool) error {
	if _, ok := s.dates[date]; ok {
		delete(s.dates, date)
		if len(s.dates) == 0 {
			s.state = NoSelection
		}
		return nil
	}

	want := SelectingWithoutSchedule
	if hasSchedule {
		want = SelectingWithSchedule
	}

	switch s.state {
	case NoSelection:
		s.state = want
	case want:
	default:
		return ErrMixedSelection
	}
	s.dates[date] = struct{}{}
	return nil
}

// ToggleCell 点击日历单元格，nil 占位与非本月单元格不可点击
func (s *Selection) ToggleCell(c *DayCell) error {
	if c == nil || !c.InMonth {
		return ErrDayNotSelectable
	}
	return s.Toggle(c.Date, c.HasSchedule)
}

// Clear 清空选择
func (s *Selection) Clear() {
	s.state = NoSelection
	s.dates = make(map[string]struct{})
}

// State 当前状态
func (s *Selection) State() SelectionState {
	return s.state
}

// Len 已选日期数
func (s *Selection) Len() int {
	return len(s.dates)
}

// Contains 是否已选中
func (s *Selection) Contains(date string) bool {
	_, ok := s.dates[date]
	return ok
}

// Dates 已选日期（升序）
func (s *Selection) Dates() []string {
	out := make([]string, 0, len(s.dates))
	for d := range s.dates {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Set 以 map 形式返回已选日期，供日历构建使用
func (s *Selection) Set() map[string]bool {
	out := make(map[string]bool, len(s.dates))
	for d := range s.dates {
		out[d] = true
	}
	return out
}

// SelectionFromDates 依次点击 dates 构建选择，重复日期只计一次
// scheduled 为已排班日期集合；日期格式非法返回 ErrInvalidDateFormat
func SelectionFromDates(dates []string, scheduled map[string]bool) (*Selection, error) {
	if len(dates) == 0 {
		return nil, ErrEmptySelection
	}
	sel := NewSelection()
	for _, d := range dates {
		if _, err := ParseDate(d); err != nil {
			return nil, err
		}
		if sel.Contains(d) {
			continue
		}
		if err := sel.Toggle(d, scheduled[d]); err != nil {
			return nil, err
		}
	}
	return sel, nil
}

package attendance

import "time"

// DaySchedule 日历单元格上挂载的排班信息
type DaySchedule struct {
	ID           string       `json:"id"`
	Date         string       `json:"date"`
	StartTime    string       `json:"start_time"`
	EndTime      string       `json:"end_time"`
	StartBreak   *string      `json:"start_break,omitempty"`
	EndBreak     *string      `json:"end_break,omitempty"`
	ScheduleType ScheduleType `json:"schedule_type"`
}

// DayCell 日历中的一天；前后补位使用 nil 占位，不会出现相邻月份的日期
type DayCell struct {
	Date        string       `json:"date"`
	Day         int          `json:"day"`
	Weekday     int          `json:"weekday"` // 1=周一 … 7=周日
	InMonth     bool         `json:"in_month"`
	IsToday     bool         `json:"is_today"`
	IsSelected  bool         `json:"is_selected"`
	HasSchedule bool         `json:"has_schedule"`
	Schedule    *DaySchedule `json:"schedule,omitempty"`
}

// MonthCalendar 一个月的单元格，长度为 7 的整数倍，周一为每周第一天
type MonthCalendar struct {
	Month          int        `json:"month"`
	Name           string     `json:"name"`
	Cells          []*DayCell `json:"cells"`
	DaysInMonth    int        `json:"days_in_month"`
	ScheduledCount int        `json:"scheduled_count"`
}

// Weeks 按周切分单元格
func (m MonthCalendar) Weeks() [][]*DayCell {
	weeks := make([][]*DayCell, 0, len(m.Cells)/7)
	for i := 0; i+7 <= len(m.Cells); i += 7 {
		weeks = append(weeks, m.Cells[i:i+7])
	}
	return weeks
}

// YearCalendar 全年 12 个月的日历
type YearCalendar struct {
	Year          int             `json:"year"`
	Months        []MonthCalendar `json:"months"`
	ScheduledDays int             `json:"scheduled_days"`
}

// BuildYearCalendar 构建全年排班日历
//
// schedules 为同一员工的排班（按日期唯一），selected 为当前选中的日期集合，
// today 只比较年月日。
func BuildYearCalendar(year int, schedules []DaySchedule, selected map[string]bool, today time.Time) YearCalendar {
	byDate := make(map[string]*DaySchedule, len(schedules))
	for i := range schedules {
		if _, dup := byDate[schedules[i].Date]; !dup {
			byDate[schedules[i].Date] = &schedules[i]
		}
	}
	todayISO := FormatDate(today)

	cal := YearCalendar{Year: year, Months: make([]MonthCalendar, 0, 12)}
	for m := time.January; m <= time.December; m++ {
		month := buildMonth(year, m, byDate, selected, todayISO)
		cal.ScheduledDays += month.ScheduledCount
		cal.Months = append(cal.Months, month)
	}
	return cal
}

func buildMonth(year int, month time.Month, byDate map[string]*DaySchedule, selected map[string]bool, todayISO string) MonthCalendar {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	offset := (int(first.Weekday()) + 6) % 7

	total := offset + daysInMonth
	if rem := total % 7; rem != 0 {
		total += 7 - rem
	}

	mc := MonthCalendar{
		Month:       int(month),
		Name:        month.String(),
		Cells:       make([]*DayCell, total),
		DaysInMonth: daysInMonth,
	}

	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		iso := FormatDate(date)
		cell := &DayCell{
			Date:       iso,
			Day:        d,
			Weekday:    ISOWeekday(date),
			InMonth:    true,
			IsToday:    iso == todayISO,
			IsSelected: selected[iso],
		}
		if s, ok := byDate[iso]; ok {
			cell.HasSchedule = true
			cell.Schedule = s
			mc.ScheduledCount++
		}
		mc.Cells[offset+d-1] = cell
	}
	return mc
}

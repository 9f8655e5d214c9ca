package attendance

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus_AllCombinations(t *testing.T) {
	tests := []struct {
		in, out, onBreak bool
		want             WorkdayStatus
	}{
		{false, false, false, StatusNotStarted},
		{false, false, true, StatusNotStarted},
		{false, true, false, StatusCompleted},
		{false, true, true, StatusCompleted},
		{true, false, false, StatusClockedIn},
		{true, false, true, StatusOnBreak},
		{true, true, false, StatusCompleted},
		{true, true, true, StatusCompleted},
	}
	for _, tt := range tests {
		name := fmt.Sprintf("in=%v,out=%v,break=%v", tt.in, tt.out, tt.onBreak)
		assert.Equal(t, tt.want, DeriveStatus(tt.in, tt.out, tt.onBreak), name)
	}
}

func TestTransition(t *testing.T) {
	valid := []struct {
		from  WorkdayStatus
		event EntryType
		to    WorkdayStatus
	}{
		{StatusNotStarted, EntryClockIn, StatusClockedIn},
		{StatusClockedIn, EntryBreakStart, StatusOnBreak},
		{StatusOnBreak, EntryBreakEnd, StatusClockedIn},
		{StatusClockedIn, EntryClockOut, StatusCompleted},
	}
	for _, tt := range valid {
		got, err := Transition(tt.from, tt.event)
		require.NoError(t, err)
		assert.Equal(t, tt.to, got)
	}

	allStatus := []WorkdayStatus{StatusNotStarted, StatusClockedIn, StatusOnBreak, StatusCompleted}
	allEvents := []EntryType{EntryClockIn, EntryBreakStart, EntryBreakEnd, EntryClockOut}
	validCount := 0
	for _, s := range allStatus {
		for _, e := range allEvents {
			if _, err := Transition(s, e); err == nil {
				validCount++
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		}
	}
	assert.Equal(t, 4, validCount, "只有四种合法迁移")
}

func at(hhmm string) time.Time {
	t, _ := time.Parse("2006-01-02 15:04", "2024-06-03 "+hhmm)
	return t
}

func TestTally_FullDay(t *testing.T) {
	events := []ClockEvent{
		{EntryClockOut, at("17:05")},
		{EntryClockIn, at("08:55")},
		{EntryBreakStart, at("13:00")},
		{EntryBreakEnd, at("13:45")},
	}
	tally, err := Tally(events)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, tally.Status)
	assert.Equal(t, 45, tally.BreakMinutes)
	assert.Equal(t, 490-45, tally.WorkedMinutes)
	require.NotNil(t, tally.ClockIn)
	assert.True(t, tally.ClockIn.Equal(at("08:55")))
}

func TestTally_MultipleBreaks(t *testing.T) {
	tally, err := Tally([]ClockEvent{
		{EntryClockIn, at("09:00")},
		{EntryBreakStart, at("11:00")},
		{EntryBreakEnd, at("11:15")},
		{EntryBreakStart, at("14:00")},
		{EntryBreakEnd, at("14:30")},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusClockedIn, tally.Status)
	assert.Equal(t, 45, tally.BreakMinutes)
	assert.Zero(t, tally.WorkedMinutes, "未下班时不计算工作分钟")
	assert.Nil(t, tally.ClockOut)
}

func TestTally_OnBreak(t *testing.T) {
	tally, err := Tally([]ClockEvent{
		{EntryClockIn, at("09:00")},
		{EntryBreakStart, at("11:00")},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOnBreak, tally.Status)
	assert.Zero(t, tally.BreakMinutes, "未结束的休息不计入")
}

func TestTally_InvalidSequence(t *testing.T) {
	_, err := Tally([]ClockEvent{
		{EntryClockIn, at("09:00")},
		{EntryBreakStart, at("11:00")},
		{EntryClockOut, at("17:00")},
	})
	assert.ErrorIs(t, err, ErrInvalidTransition, "休息中不能直接下班")

	tally, err := Tally(nil)
	require.NoError(t, err)
	assert.Equal(t, StatusNotStarted, tally.Status)
}

func TestWorkedMinutes(t *testing.T) {
	m, err := WorkedMinutes(at("09:00"), at("17:00"), 60)
	require.NoError(t, err)
	assert.Equal(t, 420, m)

	_, err = WorkedMinutes(at("17:00"), at("09:00"), 0)
	assert.ErrorIs(t, err, ErrClockOutBeforeIn)

	_, err = WorkedMinutes(at("09:00"), at("10:00"), 60)
	assert.ErrorIs(t, err, ErrBreakTooLong)

	_, err = WorkedMinutes(at("09:00"), at("10:00"), -1)
	assert.ErrorIs(t, err, ErrBreakTooLong)
}

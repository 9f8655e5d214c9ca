package attendance

import "github.com/shopspring/decimal"

// HoursTier 完成度分档（仅用于展示）
type HoursTier string

const (
	TierGood    HoursTier = "good"    // ≥ 90%
	TierFair    HoursTier = "fair"    // ≥ 70%
	TierWarning HoursTier = "warning" // ≥ 50%
	TierPoor    HoursTier = "poor"
)

var (
	sixty   = decimal.NewFromInt(60)
	hundred = decimal.NewFromInt(100)
)

// MinutesToHours 分钟换算为小时，保留两位小数
func MinutesToHours(minutes int) float64 {
	return minutesToHours(minutes).InexactFloat64()
}

func minutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(2)
}

// PercentageWorked round(hoursWorked / conventionHours × 100, 2)
// conventionHours ≤ 0 时返回 0
func PercentageWorked(hoursWorked float64, conventionHours int) float64 {
	if conventionHours <= 0 {
		return 0
	}
	return decimal.NewFromFloat(hoursWorked).
		Div(decimal.NewFromInt(int64(conventionHours))).
		Mul(hundred).
		Round(2).
		InexactFloat64()
}

// TierFor 按完成百分比分档
func TierFor(percentage float64) HoursTier {
	switch {
	case percentage >= 90:
		return TierGood
	case percentage >= 70:
		return TierFair
	case percentage >= 50:
		return TierWarning
	default:
		return TierPoor
	}
}

// AssignedMinutes 汇总班次应出勤分钟数
func AssignedMinutes(shifts []Shift) int {
	total := 0
	for _, s := range shifts {
		total += s.WorkMinutes()
	}
	return total
}

// YearHours 员工年度工时对账结果
type YearHours struct {
	WorkedMinutes   int       `json:"worked_minutes"`
	WorkedHours     float64   `json:"worked_hours"`
	AssignedMinutes int       `json:"assigned_minutes"`
	AssignedHours   float64   `json:"assigned_hours"`
	ConventionHours int       `json:"convention_hours"`
	Percentage      float64   `json:"percentage_worked"`
	RemainingHours  float64   `json:"remaining_hours"`
	Tier            HoursTier `json:"tier"`
	DaysWorked      int       `json:"days_worked"`
	DaysScheduled   int       `json:"days_scheduled"`
}

// Reconcile 计算年度工时对账
// workedMinutes 为每个工作日记录的实际工作分钟数，shifts 为当年全部排班
func Reconcile(conventionHours int, workedMinutes []int, shifts []Shift) YearHours {
	yh := YearHours{ConventionHours: conventionHours, DaysScheduled: len(shifts)}

	for _, m := range workedMinutes {
		yh.WorkedMinutes += m
		if m > 0 {
			yh.DaysWorked++
		}
	}
	yh.AssignedMinutes = AssignedMinutes(shifts)

	worked := minutesToHours(yh.WorkedMinutes)
	yh.WorkedHours = worked.InexactFloat64()
	yh.AssignedHours = MinutesToHours(yh.AssignedMinutes)
	yh.Percentage = PercentageWorked(yh.WorkedHours, conventionHours)
	yh.Tier = TierFor(yh.Percentage)

	remaining := decimal.NewFromInt(int64(conventionHours)).Sub(worked)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	yh.RemainingHours = remaining.Round(2).InexactFloat64()

	return yh
}

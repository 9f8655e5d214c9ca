package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timetrack/backend/internal/attendance"
	"timetrack/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

const icsProductID = "-//timetrack//schedule export//ZH"

// ExportService 导出业务接口
//
// 设计说明：
//   - 工时汇总导出为 Excel (.xlsx) 与 PDF，数据来自 HoursService.Summary
//   - 员工年度排班导出为 iCalendar (.ics)，分段班在休息前后各生成一个事件
//   - 导出内容以字节返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// HoursXLSX 导出年度工时汇总为 Excel
	HoursXLSX(ctx context.Context, year int) (*bytes.Buffer, string, error)
	// HoursPDF 导出年度工时汇总为 PDF
	HoursPDF(ctx context.Context, year int) ([]byte, string, error)
	// ScheduleICS 导出员工年度排班为 iCalendar
	ScheduleICS(ctx context.Context, employeeID string, year int) ([]byte, string, error)
}

type exportService struct {
	repo   *repository.Repository
	hours  HoursService
	clock  attendance.Clock
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, hours HoursService, clock attendance.Clock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, hours: hours, clock: clock, logger: logger}
}

// hoursColumns 工时表表头（Excel 用中文，PDF 内置字体仅支持拉丁字符）
var hoursColumns = []struct {
	zh    string
	en    string
	width float64
}{
	{"员工", "Employee", 20},
	{"部门", "Department", 16},
	{"实际工时", "Worked", 12},
	{"排班工时", "Assigned", 12},
	{"协议工时", "Convention", 12},
	{"完成率(%)", "Worked %", 12},
	{"剩余工时", "Remaining", 12},
	{"出勤天数", "Days", 10},
	{"分档", "Tier", 10},
}

// ────────────────────── HoursXLSX ──────────────────────

func (s *exportService) HoursXLSX(ctx context.Context, year int) (*bytes.Buffer, string, error) {
	summary, err := s.hours.Summary(ctx, year)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "工时汇总"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	for i, c := range hoursColumns {
		name := colName(i)
		f.SetColWidth(sheetName, name, name, c.width)
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 13},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	totalStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})

	// 标题行
	last := colName(len(hoursColumns) - 1)
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%d 年度工时汇总", summary.Year))
	f.MergeCell(sheetName, "A1", cell(last, 1))
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	// 表头
	for i, c := range hoursColumns {
		f.SetCellValue(sheetName, cell(colName(i), 2), c.zh)
	}
	f.SetCellStyle(sheetName, "A2", cell(last, 2), headerStyle)

	// 数据行
	r := 3
	for _, e := range summary.Employees {
		values := []interface{}{
			e.Name, e.Department, e.WorkedHours, e.AssignedHours, e.ConventionHours,
			e.Percentage, e.RemainingHours, e.DaysWorked, string(e.Tier),
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), r), v)
		}
		r++
	}

	// 合计行
	t := summary.Totals
	totals := []interface{}{
		fmt.Sprintf("合计（%d 人）", t.Employees), "", t.WorkedHours, t.AssignedHours,
		t.ConventionHours, t.AveragePercentage, "", "", "",
	}
	for i, v := range totals {
		f.SetCellValue(sheetName, cell(colName(i), r), v)
	}
	f.SetCellStyle(sheetName, cell("A", r), cell(last, r), totalStyle)

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("工时汇总_%d.xlsx", summary.Year)
	return buf, filename, nil
}

// ────────────────────── HoursPDF ──────────────────────

var (
	pdfPrimary = &props.Color{Red: 68, Green: 114, Blue: 196}
	pdfGray    = &props.Color{Red: 110, Green: 110, Blue: 110}
)

// pdfColumnSizes 每列栅格宽度，合计 12
var pdfColumnSizes = []int{2, 2, 1, 1, 1, 1, 1, 1, 2}

func (s *exportService) HoursPDF(ctx context.Context, year int) ([]byte, string, error) {
	summary, err := s.hours.Summary(ctx, year)
	if err != nil {
		return nil, "", err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(fmt.Sprintf("Hours summary %d", summary.Year), false).
		Build()

	m := maroto.New(cfg)

	m.AddRows(row.New(12).Add(
		col.New(8).Add(text.New(fmt.Sprintf("Yearly hours summary %d", summary.Year), props.Text{
			Size: 14, Style: fontstyle.Bold, Color: pdfPrimary,
		})),
		col.New(4).Add(text.New("Generated "+s.clock.Now().Format("2006-01-02 15:04"), props.Text{
			Size: 8, Align: align.Right, Color: pdfGray, Top: 3,
		})),
	))
	m.AddRows(line.NewRow(1, props.Line{Color: pdfPrimary, Thickness: 0.5}))

	header := make([]string, 0, len(hoursColumns))
	for _, c := range hoursColumns {
		header = append(header, c.en)
	}
	m.AddRows(pdfTableRow(header, true))

	for _, e := range summary.Employees {
		m.AddRows(pdfTableRow([]string{
			e.Name,
			e.Department,
			formatHours(e.WorkedHours),
			formatHours(e.AssignedHours),
			strconv.Itoa(e.ConventionHours),
			formatHours(e.Percentage),
			formatHours(e.RemainingHours),
			strconv.Itoa(e.DaysWorked),
			string(e.Tier),
		}, false))
	}

	t := summary.Totals
	m.AddRows(line.NewRow(1, props.Line{Color: pdfPrimary, Thickness: 0.3}))
	m.AddRows(pdfTableRow([]string{
		fmt.Sprintf("Total (%d)", t.Employees),
		"",
		formatHours(t.WorkedHours),
		formatHours(t.AssignedHours),
		strconv.Itoa(t.ConventionHours),
		formatHours(t.AveragePercentage),
		"", "", "",
	}, true))

	doc, err := m.Generate()
	if err != nil {
		s.logger.Error("生成 PDF 失败", zap.Int("year", summary.Year), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("hours_summary_%d.pdf", summary.Year)
	return doc.GetBytes(), filename, nil
}

func pdfTableRow(values []string, bold bool) core.Row {
	cols := make([]core.Col, 0, len(values))
	for i, v := range values {
		p := props.Text{Size: 8, Top: 1.5, Left: 1, Right: 1, Align: align.Right}
		if i < 2 {
			p.Align = align.Left
		}
		if bold {
			p.Style = fontstyle.Bold
		}
		cols = append(cols, col.New(pdfColumnSizes[i]).Add(text.New(v, p)))
	}
	return row.New(7).Add(cols...)
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// ────────────────────── ScheduleICS ──────────────────────

func (s *exportService) ScheduleICS(ctx context.Context, employeeID string, year int) ([]byte, string, error) {
	year = resolveYear(s.clock, year)

	emp, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("id", employeeID), zap.Error(err))
		return nil, "", err
	}

	from, to := yearRange(year)
	schedules, err := s.repo.DateSchedule.ListByEmployeeRange(ctx, employeeID, from, to)
	if err != nil {
		s.logger.Error("查询员工排班失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, "", err
	}

	now := s.clock.Now()
	loc := now.Location()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(fmt.Sprintf("%s %d 排班", emp.Name, year))
	cal.SetXWRTimezone(loc.String())

	events := 0
	for i := range schedules {
		ds := &schedules[i]
		shift, err := scheduleShift(ds)
		if err != nil {
			s.logger.Warn("排班时间无效，已跳过",
				zap.String("id", ds.DateScheduleID),
				zap.Error(err))
			continue
		}
		segments := shift.Segments()
		for n, seg := range segments {
			uid := ds.DateScheduleID
			if len(segments) > 1 {
				uid = fmt.Sprintf("%s-%d", ds.DateScheduleID, n+1)
			}
			event := cal.AddEvent(uid + "@timetrack")
			event.SetDtStampTime(now.UTC())
			event.SetStartAt(segmentTime(ds.ScheduleDate, seg[0], loc))
			event.SetEndAt(segmentTime(ds.ScheduleDate, seg[1], loc))
			event.SetSummary(segmentSummary(n, len(segments)))
			event.SetDescription(fmt.Sprintf("%s-%s，应出勤 %s 小时",
				shift.Start, shift.End, formatHours(attendance.MinutesToHours(shift.WorkMinutes()))))
			events++
		}
	}

	s.logger.Info("导出排班日历",
		zap.String("employee_id", employeeID),
		zap.Int("year", year),
		zap.Int("events", events))

	filename := fmt.Sprintf("schedule_%s_%d.ics", employeeID, year)
	return []byte(cal.Serialize()), filename, nil
}

func segmentTime(day time.Time, tod attendance.TimeOfDay, loc *time.Location) time.Time {
	minutes := int(tod)
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, loc)
}

func segmentSummary(n, total int) string {
	if total == 1 {
		return "排班"
	}
	return fmt.Sprintf("排班（第%d段）", n+1)
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

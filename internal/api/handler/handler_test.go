package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"timetrack/backend/internal/attendance"
	"timetrack/backend/internal/dto"
	"timetrack/backend/internal/service"
	pkgerrors "timetrack/backend/pkg/errors"
	"timetrack/backend/pkg/jwt"
	"timetrack/backend/pkg/response"
	"timetrack/backend/pkg/validate"
)

const (
	adminID = "8d0c3f0e-7d4a-4a8e-9a55-1f0c2b7d6e01"
	aliceID = "2b1e5a9c-3c6f-4d1e-8f2a-6c9d0e7b4a12"
	bobID   = "5f7a2c1d-9e8b-4a3c-b6d5-0e1f2a3b4c23"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validate.Setup(); err != nil {
		panic(err)
	}
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	logoutErr     error
	logoutClaims  *jwt.Claims
	meResult      *dto.EmployeeResponse
	meErr         error
	changePassErr error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, claims *jwt.Claims) error {
	m.logoutClaims = claims
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.EmployeeResponse, error) {
	return m.meResult, m.meErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock DateScheduleService ──

type mockDateScheduleService struct {
	calendarResult *dto.CalendarResponse
	calendarReq    *dto.CalendarRequest
	bulkResult     *dto.BulkScheduleResponse
	getResult      *dto.DateScheduleResponse
	err            error
}

func (m *mockDateScheduleService) Calendar(_ context.Context, req *dto.CalendarRequest) (*dto.CalendarResponse, error) {
	m.calendarReq = req
	return m.calendarResult, m.err
}
func (m *mockDateScheduleService) List(_ context.Context, _ *dto.ScheduleListRequest) ([]dto.DateScheduleResponse, error) {
	return nil, m.err
}
func (m *mockDateScheduleService) GetByID(_ context.Context, _ string) (*dto.DateScheduleResponse, error) {
	return m.getResult, m.err
}
func (m *mockDateScheduleService) Delete(_ context.Context, _, _ string) error {
	return m.err
}
func (m *mockDateScheduleService) BulkCreate(_ context.Context, _ *dto.BulkScheduleRequest, _ string) (*dto.BulkScheduleResponse, error) {
	return m.bulkResult, m.err
}
func (m *mockDateScheduleService) BulkModify(_ context.Context, _ *dto.BulkScheduleRequest, _ string) (*dto.BulkScheduleResponse, error) {
	return m.bulkResult, m.err
}
func (m *mockDateScheduleService) BulkDelete(_ context.Context, _ *dto.BulkDeleteRequest, _ string) (*dto.BulkDeleteResponse, error) {
	return &dto.BulkDeleteResponse{}, m.err
}
func (m *mockDateScheduleService) CopyTargets(_ context.Context, _ *dto.CopyTargetsRequest) ([]dto.CopyTargetResponse, error) {
	return nil, m.err
}
func (m *mockDateScheduleService) Copy(_ context.Context, _ *dto.CopyScheduleRequest, _ string) (*dto.CopyScheduleResponse, error) {
	return &dto.CopyScheduleResponse{}, m.err
}

// ── Mock WorkdayService ──

type mockWorkdayService struct {
	result    *dto.WorkdayResponse
	err       error
	lastEvent attendance.EntryType
	lastEmpID string
	lastForce bool
	listReq   *dto.WorkdayListRequest
}

func (m *mockWorkdayService) Clock(_ context.Context, employeeID string, event attendance.EntryType) (*dto.WorkdayResponse, error) {
	m.lastEmpID, m.lastEvent = employeeID, event
	return m.result, m.err
}
func (m *mockWorkdayService) Today(_ context.Context, employeeID string) (*dto.WorkdayResponse, error) {
	m.lastEmpID = employeeID
	return m.result, m.err
}
func (m *mockWorkdayService) Entries(_ context.Context, employeeID, _ string) ([]dto.ClockEntryResponse, error) {
	m.lastEmpID = employeeID
	return []dto.ClockEntryResponse{}, m.err
}
func (m *mockWorkdayService) List(_ context.Context, req *dto.WorkdayListRequest) ([]dto.WorkdayResponse, error) {
	m.listReq = req
	return []dto.WorkdayResponse{}, m.err
}
func (m *mockWorkdayService) GetByID(_ context.Context, _ string) (*dto.WorkdayResponse, error) {
	return m.result, m.err
}
func (m *mockWorkdayService) CreateManual(_ context.Context, _ *dto.ManualWorkdayRequest, force bool, _ string) (*dto.WorkdayResponse, error) {
	m.lastForce = force
	return m.result, m.err
}
func (m *mockWorkdayService) Update(_ context.Context, _ string, _ *dto.UpdateWorkdayRequest, force bool, _ string) (*dto.WorkdayResponse, error) {
	m.lastForce = force
	return m.result, m.err
}
func (m *mockWorkdayService) Delete(_ context.Context, _ string, force bool, _ string) error {
	m.lastForce = force
	return m.err
}

// ── Mock IncidentService ──

type mockIncidentService struct {
	result    *dto.IncidentResponse
	err       error
	deleteErr error
	reviewReq *dto.ReviewIncidentRequest
	deleted   bool
}

func (m *mockIncidentService) Create(_ context.Context, _ *dto.CreateIncidentRequest, _ string) (*dto.IncidentResponse, error) {
	return m.result, m.err
}
func (m *mockIncidentService) GetByID(_ context.Context, _ string) (*dto.IncidentResponse, error) {
	return m.result, m.err
}
func (m *mockIncidentService) List(_ context.Context, _ *dto.IncidentListRequest) ([]dto.IncidentResponse, int64, error) {
	return []dto.IncidentResponse{}, 0, m.err
}
func (m *mockIncidentService) Approve(_ context.Context, _ string, req *dto.ReviewIncidentRequest, _ string) (*dto.IncidentResponse, error) {
	m.reviewReq = req
	return m.result, m.err
}
func (m *mockIncidentService) Reject(_ context.Context, _ string, req *dto.ReviewIncidentRequest, _ string) (*dto.IncidentResponse, error) {
	m.reviewReq = req
	return m.result, m.err
}
func (m *mockIncidentService) Delete(_ context.Context, _, _ string) error {
	m.deleted = true
	return m.deleteErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	data     []byte
	filename string
	err      error
	empID    string
}

func (m *mockExportService) HoursXLSX(_ context.Context, _ int) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) HoursPDF(_ context.Context, _ int) ([]byte, string, error) {
	return m.data, m.filename, m.err
}
func (m *mockExportService) ScheduleICS(_ context.Context, employeeID string, _ int) ([]byte, string, error) {
	m.empID = employeeID
	return m.data, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set(ctxEmployeeID, adminID)
	c.Set(ctxRole, "admin")
	c.Set(ctxClaims, &jwt.Claims{EmployeeID: adminID, Role: "admin"})
}

func setEmployeeAuth(c *gin.Context) {
	c.Set(ctxEmployeeID, aliceID)
	c.Set(ctxRole, "employee")
	c.Set(ctxClaims, &jwt.Claims{EmployeeID: aliceID, Role: "employee"})
}

// withAuth 在处理函数前注入认证信息
func withAuth(set func(*gin.Context), h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		set(c)
		h(c)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(method, route, target string, body io.Reader, h gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r := gin.New()
	r.Handle(method, route, h)
	r.ServeHTTP(w, req)
	return w
}

func bulkBody() io.Reader {
	return jsonBody(dto.BulkScheduleRequest{
		EmployeeID:    aliceID,
		Dates:         []string{"2025-03-10", "2025-03-11"},
		ScheduleTimes: dto.ScheduleTimes{StartTime: "09:00", EndTime: "17:00"},
	})
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{AccessToken: "test-access-token", ExpiresIn: 900},
	}
	h := NewAuthHandler(mock)

	w := serve("POST", "/auth/login", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "Test1234",
	}), h.Login)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_Validation(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := serve("POST", "/auth/login", "/auth/login", jsonBody(map[string]string{
		"email": "not-an-email",
	}), h.Login)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10001 {
		t.Errorf("expected error code 10001, got %d", resp.Code)
	}
	if resp.Details == "" {
		t.Error("expected translated validation details")
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, 11001},
		{"inactive", service.ErrEmployeeInactive, http.StatusForbidden, 11003},
		{"unknown", errors.New("db down"), http.StatusInternalServerError, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{loginErr: tt.err})
			w := serve("POST", "/auth/login", "/auth/login", jsonBody(dto.LoginRequest{
				Email: "alice@example.com", Password: "wrong",
			}), h.Login)

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected error code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAuthHandler_Logout_PassesClaims(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	w := serve("POST", "/auth/logout", "/auth/logout", nil, withAuth(setAuth, h.Logout))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.logoutClaims == nil || mock.logoutClaims.EmployeeID != adminID {
		t.Errorf("expected claims of current token, got %+v", mock.logoutClaims)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := serve("GET", "/auth/me", "/auth/me", nil, h.Me)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 10002 {
		t.Errorf("expected error code 10002, got %d", resp.Code)
	}
}

func TestAuthHandler_ChangePassword_WrongOld(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{changePassErr: service.ErrWrongPassword})

	w := serve("PUT", "/auth/password", "/auth/password", jsonBody(dto.ChangePasswordRequest{
		OldPassword: "Old12345",
		NewPassword: "New12345",
	}), withAuth(setAuth, h.ChangePassword))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11002 {
		t.Errorf("expected error code 11002, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// DateScheduleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestDateScheduleHandler_BulkCreate_Success(t *testing.T) {
	mock := &mockDateScheduleService{bulkResult: &dto.BulkScheduleResponse{Count: 2}}
	h := NewDateScheduleHandler(mock)

	w := serve("POST", "/date-schedules/bulk", "/date-schedules/bulk", bulkBody(), withAuth(setAuth, h.BulkCreate))

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestDateScheduleHandler_BulkCreate_BadTime(t *testing.T) {
	h := NewDateScheduleHandler(&mockDateScheduleService{})

	w := serve("POST", "/date-schedules/bulk", "/date-schedules/bulk", jsonBody(map[string]interface{}{
		"employee_id": aliceID,
		"dates":       []string{"2025-03-10"},
		"start_time":  "9am",
		"end_time":    "17:00",
	}), withAuth(setAuth, h.BulkCreate))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10001 || !strings.Contains(resp.Details, "start_time") {
		t.Errorf("expected start_time validation detail, got %d %q", resp.Code, resp.Details)
	}
}

func TestDateScheduleHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"mixed selection", attendance.ErrMixedSelection, http.StatusBadRequest, 15002},
		{"already scheduled", service.ErrDatesAlreadyScheduled, http.StatusBadRequest, 15003},
		{"not scheduled", service.ErrDatesNotScheduled, http.StatusBadRequest, 15004},
		{"conflict", service.ErrScheduleConflict, http.StatusConflict, 15005},
		{"type mismatch", service.ErrScheduleTypeMismatch, http.StatusBadRequest, 15006},
		{"break outside shift", attendance.ErrBreakOutsideShift, http.StatusBadRequest, 15010},
		{"stale version", pkgerrors.ErrOptimisticLock, http.StatusConflict, 10006},
		{"inactive employee", service.ErrEmployeeInactive, http.StatusBadRequest, 12003},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewDateScheduleHandler(&mockDateScheduleService{err: tt.err})
			w := serve("PUT", "/date-schedules/bulk", "/date-schedules/bulk", bulkBody(), withAuth(setAuth, h.BulkModify))

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected error code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestDateScheduleHandler_Calendar_Scope(t *testing.T) {
	tests := []struct {
		name       string
		auth       func(*gin.Context)
		employeeID string
		wantStatus int
	}{
		{"admin any employee", setAuth, bobID, http.StatusOK},
		{"employee self", setEmployeeAuth, aliceID, http.StatusOK},
		{"employee other", setEmployeeAuth, bobID, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockDateScheduleService{calendarResult: &dto.CalendarResponse{}}
			h := NewDateScheduleHandler(mock)
			w := serve("GET", "/date-schedules/calendar",
				"/date-schedules/calendar?employee_id="+tt.employeeID+"&year=2025&selected=2025-03-10",
				nil, withAuth(tt.auth, h.Calendar))

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == http.StatusOK && (mock.calendarReq == nil || mock.calendarReq.Selected != "2025-03-10") {
				t.Errorf("expected selected dates to be forwarded, got %+v", mock.calendarReq)
			}
		})
	}
}

func TestDateScheduleHandler_GetByID_OtherEmployee(t *testing.T) {
	mock := &mockDateScheduleService{getResult: &dto.DateScheduleResponse{EmployeeID: bobID}}
	h := NewDateScheduleHandler(mock)

	w := serve("GET", "/date-schedules/:id", "/date-schedules/ds-1", nil, withAuth(setEmployeeAuth, h.GetByID))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// WorkdayHandler Tests
// ═══════════════════════════════════════════════════════════

func TestWorkdayHandler_ClockEvents(t *testing.T) {
	mock := &mockWorkdayService{result: &dto.WorkdayResponse{Status: "working"}}
	h := NewWorkdayHandler(mock)

	routes := []struct {
		path    string
		handler gin.HandlerFunc
		want    attendance.EntryType
	}{
		{"/time-entries/clock-in", h.ClockIn, attendance.EntryClockIn},
		{"/time-entries/break-start", h.BreakStart, attendance.EntryBreakStart},
		{"/time-entries/break-end", h.BreakEnd, attendance.EntryBreakEnd},
		{"/time-entries/clock-out", h.ClockOut, attendance.EntryClockOut},
	}
	for _, rt := range routes {
		w := serve("POST", rt.path, rt.path, nil, withAuth(setEmployeeAuth, rt.handler))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", rt.path, w.Code)
		}
		if mock.lastEvent != rt.want || mock.lastEmpID != aliceID {
			t.Errorf("%s: expected %s for caller, got %s for %s", rt.path, rt.want, mock.lastEvent, mock.lastEmpID)
		}
	}
}

func TestWorkdayHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"invalid transition", attendance.ErrInvalidTransition, http.StatusConflict, 17005},
		{"out of order", attendance.ErrEventOutOfOrder, http.StatusBadRequest, 17006},
		{"clock conflict", service.ErrClockConflict, http.StatusConflict, 17004},
		{"inactive", service.ErrEmployeeInactive, http.StatusForbidden, 12003},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWorkdayHandler(&mockWorkdayService{err: tt.err})
			w := serve("POST", "/time-entries/clock-in", "/time-entries/clock-in", nil, withAuth(setEmployeeAuth, h.ClockIn))

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected error code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestWorkdayHandler_Delete_Force(t *testing.T) {
	mock := &mockWorkdayService{err: service.ErrWorkdayLocked}
	h := NewWorkdayHandler(mock)

	w := serve("DELETE", "/daily-workday/:id", "/daily-workday/wd-1", nil, withAuth(setAuth, h.Delete))
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 17002 {
		t.Errorf("expected error code 17002, got %d", resp.Code)
	}

	mock.err = nil
	w = serve("DELETE", "/daily-workday/:id", "/daily-workday/wd-1?force=true", nil, withAuth(setAuth, h.Delete))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !mock.lastForce {
		t.Error("expected force flag to be forwarded")
	}
}

func TestWorkdayHandler_List_EmployeeScopedToSelf(t *testing.T) {
	mock := &mockWorkdayService{}
	h := NewWorkdayHandler(mock)

	w := serve("GET", "/daily-workday", "/daily-workday?from=2025-03-01&to=2025-03-31", nil, withAuth(setEmployeeAuth, h.List))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.listReq == nil || mock.listReq.EmployeeID != aliceID {
		t.Errorf("expected list scoped to caller, got %+v", mock.listReq)
	}
}

// ═══════════════════════════════════════════════════════════
// IncidentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestIncidentHandler_Approve_EmptyBody(t *testing.T) {
	mock := &mockIncidentService{result: &dto.IncidentResponse{ID: "inc-1", Status: "approved"}}
	h := NewIncidentHandler(mock)

	w := serve("POST", "/incidents/:id/approve", "/incidents/inc-1/approve", nil, withAuth(setAuth, h.Approve))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.reviewReq == nil {
		t.Error("expected review request to be passed")
	}
}

func TestIncidentHandler_Reject_NotPending(t *testing.T) {
	h := NewIncidentHandler(&mockIncidentService{err: service.ErrIncidentNotPending})

	w := serve("POST", "/incidents/:id/reject", "/incidents/inc-1/reject",
		jsonBody(dto.ReviewIncidentRequest{Note: "late"}), withAuth(setAuth, h.Reject))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 18002 {
		t.Errorf("expected error code 18002, got %d", resp.Code)
	}
}

func TestIncidentHandler_Create_ForOtherEmployee(t *testing.T) {
	h := NewIncidentHandler(&mockIncidentService{result: &dto.IncidentResponse{}})

	w := serve("POST", "/incidents", "/incidents", jsonBody(dto.CreateIncidentRequest{
		EmployeeID:   bobID,
		Date:         "2025-03-10",
		IncidentType: "absence",
	}), withAuth(setEmployeeAuth, h.Create))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestIncidentHandler_Delete_OtherEmployee(t *testing.T) {
	mock := &mockIncidentService{result: &dto.IncidentResponse{ID: "inc-1", EmployeeID: bobID}}
	h := NewIncidentHandler(mock)

	w := serve("DELETE", "/incidents/:id", "/incidents/inc-1", nil, withAuth(setEmployeeAuth, h.Delete))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if mock.deleted {
		t.Error("delete must not be called for another employee's incident")
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_HoursXLSX_Success(t *testing.T) {
	buf := bytes.NewBufferString("fake-excel-content")
	h := NewExportHandler(&mockExportService{buf: buf, filename: "工时汇总_2025.xlsx"})

	w := serve("GET", "/export/hours", "/export/hours?year=2025", nil, withAuth(setAuth, h.HoursXLSX))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeXLSX {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment; filename*=UTF-8''") {
		t.Errorf("unexpected content disposition: %s", cd)
	}
	if w.Body.String() != "fake-excel-content" {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestExportHandler_HoursXLSX_BadYear(t *testing.T) {
	h := NewExportHandler(&mockExportService{})

	w := serve("GET", "/export/hours", "/export/hours?year=1800", nil, withAuth(setAuth, h.HoursXLSX))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestExportHandler_ScheduleICS_DefaultsToCaller(t *testing.T) {
	mock := &mockExportService{data: []byte("BEGIN:VCALENDAR"), filename: "schedule_2025.ics"}
	h := NewExportHandler(mock)

	w := serve("GET", "/export/schedule.ics", "/export/schedule.ics?year=2025", nil, withAuth(setEmployeeAuth, h.ScheduleICS))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.empID != aliceID {
		t.Errorf("expected export for caller, got %s", mock.empID)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("unexpected content type: %s", ct)
	}
}

func TestExportHandler_GenerateFail(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportGenerateFail})

	w := serve("GET", "/export/hours.pdf", "/export/hours.pdf", nil, withAuth(setAuth, h.HoursPDF))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 19001 {
		t.Errorf("expected error code 19001, got %d", resp.Code)
	}
}

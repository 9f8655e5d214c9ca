package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"timetrack/backend/internal/dto"
)

func setupTestJobRoleService() (JobRoleService, *testRepos, *recordingNotifier) {
	r := newTestRepos()
	n := &recordingNotifier{}
	return NewJobRoleService(r.repo, n, zap.NewNop()), r, n
}

func TestJobRoleService_Create(t *testing.T) {
	svc, _, _ := setupTestJobRoleService()

	resp, err := svc.Create(context.Background(), &dto.JobRoleRequest{Name: "收银员", Description: "前台"}, "admin-1")
	if err != nil {
		t.Fatalf("Create 应成功，但返回错误: %v", err)
	}
	if resp.ID == "" || resp.Name != "收银员" {
		t.Errorf("响应不符合预期: %+v", resp)
	}

	if _, err := svc.Create(context.Background(), &dto.JobRoleRequest{Name: "收银员"}, "admin-1"); !errors.Is(err, ErrJobRoleNameExists) {
		t.Errorf("期望 ErrJobRoleNameExists，实际=%v", err)
	}
}

func TestJobRoleService_Update(t *testing.T) {
	svc, _, _ := setupTestJobRoleService()
	a, _ := svc.Create(context.Background(), &dto.JobRoleRequest{Name: "收银员"}, "admin-1")
	_, _ = svc.Create(context.Background(), &dto.JobRoleRequest{Name: "店长"}, "admin-1")

	if _, err := svc.Update(context.Background(), a.ID, &dto.JobRoleRequest{Name: "店长"}, "admin-1"); !errors.Is(err, ErrJobRoleNameExists) {
		t.Errorf("期望 ErrJobRoleNameExists，实际=%v", err)
	}
	resp, err := svc.Update(context.Background(), a.ID, &dto.JobRoleRequest{Name: "收银员", Description: "夜班"}, "admin-1")
	if err != nil {
		t.Fatalf("名称不变时应可更新描述，实际=%v", err)
	}
	if resp.Description != "夜班" {
		t.Errorf("期望描述=夜班，实际=%s", resp.Description)
	}
	if _, err := svc.Update(context.Background(), "role-404", &dto.JobRoleRequest{Name: "x"}, "admin-1"); !errors.Is(err, ErrJobRoleNotFound) {
		t.Errorf("期望 ErrJobRoleNotFound，实际=%v", err)
	}
}

func TestJobRoleService_Delete_UnassignsEmployees(t *testing.T) {
	svc, r, n := setupTestJobRoleService()
	role, _ := svc.Create(context.Background(), &dto.JobRoleRequest{Name: "收银员"}, "admin-1")
	alice := createTestEmployee(r, "Alice")
	bob := createTestEmployee(r, "Bob")
	r.employees.emps[alice.EmployeeID].JobRoleID = &role.ID
	r.employees.emps[bob.EmployeeID].JobRoleID = &role.ID

	resp, err := svc.Delete(context.Background(), role.ID, "admin-1")
	if err != nil {
		t.Fatalf("Delete 应成功，但返回错误: %v", err)
	}
	if resp.UnassignedEmployees != 2 {
		t.Errorf("期望 2 名员工被置为未分配，实际=%d", resp.UnassignedEmployees)
	}
	if r.employees.emps[alice.EmployeeID].JobRoleID != nil {
		t.Error("员工岗位应被清空")
	}
	if r.tx.calls != 1 {
		t.Errorf("删除应在事务内完成，实际事务次数=%d", r.tx.calls)
	}
	if n.last().Entity != EntityJobRole || n.last().Action != ActionDeleted {
		t.Errorf("期望岗位删除通知，实际=%+v", n.last())
	}

	list, _ := svc.List(context.Background())
	if len(list) != 0 {
		t.Errorf("删除后列表应为空，实际=%d", len(list))
	}
}

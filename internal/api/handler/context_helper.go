package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"timetrack/backend/internal/attendance"
	"timetrack/backend/internal/model"
	"timetrack/backend/pkg/jwt"
	pkgerrors "timetrack/backend/pkg/errors"
	"timetrack/backend/pkg/response"
	"timetrack/backend/pkg/validate"
)

// 上下文键，由 JWTAuth 中间件写入
const (
	ctxEmployeeID   = "employee_id"
	ctxRole         = "role"
	ctxDepartmentID = "department_id"
	ctxClaims       = "claims"
)

// MustGetEmployeeID 从 Gin 上下文中安全提取 employee_id。
// 如果 JWT 中间件未正确注入 employee_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetEmployeeID(c *gin.Context) (string, bool) {
	s := c.GetString(ctxEmployeeID)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	s := c.GetString(ctxRole)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetClaims 提取当前 Token 的声明（登出时使用）
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ctxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

func isAdmin(c *gin.Context) bool {
	return c.GetString(ctxRole) == model.RoleAdmin
}

// scopeEmployee 管理员可访问任意员工；普通员工只能访问本人，未指定时默认为本人
func scopeEmployee(c *gin.Context, requested string) (string, bool) {
	callerID, ok := MustGetEmployeeID(c)
	if !ok {
		return "", false
	}
	if requested == "" {
		if isAdmin(c) {
			return "", true
		}
		return callerID, true
	}
	if requested != callerID && !isAdmin(c) {
		response.Forbidden(c, 10003, "无权限访问其他员工的数据")
		return "", false
	}
	return requested, true
}

// bindFailed 参数绑定失败时返回逐字段的中文说明
func bindFailed(c *gin.Context, err error) {
	response.ValidationFailed(c, validate.Translate(err))
}

// handleCommonError 处理跨模块共享的错误；已处理返回 true
func handleCommonError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "数据已被其他操作修改，请刷新后重试")
	case errors.Is(err, attendance.ErrInvalidDateFormat):
		response.BadRequest(c, 15011, err.Error())
	case errors.Is(err, attendance.ErrInvalidTimeFormat),
		errors.Is(err, attendance.ErrStartNotBeforeEnd),
		errors.Is(err, attendance.ErrIncompleteBreak),
		errors.Is(err, attendance.ErrBreakOrder),
		errors.Is(err, attendance.ErrBreakOutsideShift):
		response.ErrorWithDetails(c, http.StatusBadRequest, 15010, "班次时间无效", err.Error())
	default:
		return false
	}
	return true
}

package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ── 变更通知 ──
//
// 写操作成功提交后调用 Notify，由订阅方各自处理（清理工时缓存、发布事件）。
// 通知失败只记录日志，不影响写操作结果。

// 变更实体
const (
	EntityDateSchedule   = "date_schedule"
	EntityWeeklySchedule = "weekly_schedule"
	EntityWorkday        = "workday"
	EntityIncident       = "incident"
	EntityEmployee       = "employee"
	EntityDepartment     = "department"
	EntityJobRole        = "job_role"
)

// 变更动作
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionCopied  = "copied"
)

// Change 一次已提交的数据变更
type Change struct {
	Entity      string    `json:"entity"`
	Action      string    `json:"action"`
	EmployeeIDs []string  `json:"employee_ids,omitempty"`
	Year        int       `json:"year,omitempty"` // 0 表示影响所有年份
	ActorID     string    `json:"actor_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// RoutingKey 消息路由键 <entity>.<action>
func (c Change) RoutingKey() string {
	return c.Entity + "." + c.Action
}

// ChangeNotifier 变更订阅方
type ChangeNotifier interface {
	Notify(ctx context.Context, change Change) error
}

// MultiNotifier 依次通知所有订阅方，单个失败不影响其他订阅方
type MultiNotifier struct {
	notifiers []ChangeNotifier
	logger    *zap.Logger
}

// NewMultiNotifier 创建组合通知器，nil 订阅方会被忽略
func NewMultiNotifier(logger *zap.Logger, notifiers ...ChangeNotifier) *MultiNotifier {
	list := make([]ChangeNotifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			list = append(list, n)
		}
	}
	return &MultiNotifier{notifiers: list, logger: logger}
}

// Notify 通知全部订阅方，返回最后一个错误（仅用于测试观察）
func (m *MultiNotifier) Notify(ctx context.Context, change Change) error {
	if change.OccurredAt.IsZero() {
		change.OccurredAt = time.Now().UTC()
	}
	var lastErr error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, change); err != nil {
			m.logger.Warn("变更通知失败",
				zap.String("entity", change.Entity),
				zap.String("action", change.Action),
				zap.Strings("employee_ids", change.EmployeeIDs),
				zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

// ── 工时缓存失效 ──

// HoursCache 工时汇总缓存（由 pkg/redis.Client 实现）
type HoursCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const hoursCachePrefix = "hours:"

func hoursSummaryKey(year int) string {
	return fmt.Sprintf("%ssummary:%d", hoursCachePrefix, year)
}

func hoursEmployeeKey(employeeID string, year int) string {
	return fmt.Sprintf("%semployee:%s:%d", hoursCachePrefix, employeeID, year)
}

// CacheInvalidator 根据变更删除受影响的工时缓存
type CacheInvalidator struct {
	cache  HoursCache
	logger *zap.Logger
}

// NewCacheInvalidator 创建缓存失效订阅方
func NewCacheInvalidator(cache HoursCache, logger *zap.Logger) *CacheInvalidator {
	return &CacheInvalidator{cache: cache, logger: logger}
}

// Notify 删除变更涉及的年度汇总与员工工时缓存
// 未指定年份时删除当前年份前后各一年的键
func (c *CacheInvalidator) Notify(ctx context.Context, change Change) error {
	years := []int{change.Year}
	if change.Year == 0 {
		now := time.Now().Year()
		years = []int{now - 1, now, now + 1}
	}

	keys := make([]string, 0, len(years)*(1+len(change.EmployeeIDs)))
	for _, y := range years {
		keys = append(keys, hoursSummaryKey(y))
		for _, id := range change.EmployeeIDs {
			keys = append(keys, hoursEmployeeKey(id, y))
		}
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("清理工时缓存失败: %w", err)
	}
	c.logger.Debug("工时缓存已失效", zap.Strings("keys", keys))
	return nil
}

// ── 事件发布 ──

// EventPublisher 消息发布接口（由 pkg/mq.Publisher 实现）
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// EventNotifier 将变更发布为消息
type EventNotifier struct {
	publisher EventPublisher
}

// NewEventNotifier 创建事件发布订阅方
func NewEventNotifier(publisher EventPublisher) *EventNotifier {
	return &EventNotifier{publisher: publisher}
}

// Notify 以 <entity>.<action> 为路由键发布变更
func (e *EventNotifier) Notify(ctx context.Context, change Change) error {
	return e.publisher.Publish(ctx, change.RoutingKey(), change)
}

// notifyChange 统一的写后通知入口
func notifyChange(ctx context.Context, n ChangeNotifier, change Change) {
	if n == nil {
		return
	}
	_ = n.Notify(ctx, change)
}

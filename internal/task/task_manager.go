package task

import (
	"log"
	"time"

	"viralyst_dev_v1_202608/internal/repository"
	"viralyst_dev_v1_202608/internal/service"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台清理任务
// 管理范围：会话回收、调用日志清理
type TaskManager struct {
	sessionTask *SessionCleanupTask
	callLogTask *CallLogCleanupTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	SessionService *service.SessionService
	CallLogRepo    repository.AICallLogRepository
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	// 会话回收
	SessionCleanupEnabled bool
	SessionTTL            time.Duration

	// 日志清理
	CallLogCleanupEnabled bool
	CallLogRetention      time.Duration
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		SessionCleanupEnabled: true,
		SessionTTL:            24 * time.Hour,

		CallLogCleanupEnabled: true,
		CallLogRetention:      90 * 24 * time.Hour,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}

	if cfg.SessionCleanupEnabled && deps.SessionService != nil {
		tm.sessionTask = NewSessionCleanupTask(deps.SessionService, cfg.SessionTTL)
	}

	if cfg.CallLogCleanupEnabled && deps.CallLogRepo != nil {
		tm.callLogTask = NewCallLogCleanupTask(deps.CallLogRepo, cfg.CallLogRetention)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	log.Println("[TaskManager] 正在启动后台任务...")

	if tm.sessionTask != nil {
		tm.sessionTask.Start()
	}
	if tm.callLogTask != nil {
		tm.callLogTask.Start()
	}

	log.Println("[TaskManager] 后台任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止后台任务...")

	if tm.sessionTask != nil {
		tm.sessionTask.Stop()
	}
	if tm.callLogTask != nil {
		tm.callLogTask.Stop()
	}

	log.Println("[TaskManager] 后台任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerSessionCleanup 立即回收闲置会话
func (tm *TaskManager) TriggerSessionCleanup() error {
	if tm.sessionTask == nil {
		return ErrTaskDisabled
	}
	tm.sessionTask.CleanupNow()
	return nil
}

// TriggerCallLogCleanup 立即清理过期日志
func (tm *TaskManager) TriggerCallLogCleanup() error {
	if tm.callLogTask == nil {
		return ErrTaskDisabled
	}
	tm.callLogTask.CleanupNow()
	return nil
}

// ==================== 状态查询 ====================

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"session_cleanup":  tm.sessionTask != nil,
		"call_log_cleanup": tm.callLogTask != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)

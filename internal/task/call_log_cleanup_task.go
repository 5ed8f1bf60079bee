package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"viralyst_dev_v1_202608/internal/repository"
)

// ==================== 调用日志清理任务 ====================

// CallLogCleanupTask 按保留期清理 AI 调用日志
type CallLogCleanupTask struct {
	callLogRepo repository.AICallLogRepository
	cron        *cron.Cron

	retention time.Duration
}

// NewCallLogCleanupTask 创建日志清理任务
func NewCallLogCleanupTask(callLogRepo repository.AICallLogRepository, retention time.Duration) *CallLogCleanupTask {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	return &CallLogCleanupTask{
		callLogRepo: callLogRepo,
		cron:        cron.New(cron.WithSeconds()),
		retention:   retention,
	}
}

// Start 启动定时任务
func (t *CallLogCleanupTask) Start() {
	// 每日凌晨 4 点
	_, _ = t.cron.AddFunc("0 0 4 * * *", func() {
		t.CleanupNow()
	})

	t.cron.Start()
	log.Printf("[CallLogCleanupTask] 已启动，日志保留 %v", t.retention)
}

// Stop 停止定时任务
func (t *CallLogCleanupTask) Stop() {
	t.cron.Stop()
	log.Println("[CallLogCleanupTask] 已停止")
}

// CleanupNow 立即执行一次清理
func (t *CallLogCleanupTask) CleanupNow() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	before := time.Now().Add(-t.retention)
	removed, err := t.callLogRepo.DeleteBefore(ctx, before)
	if err != nil {
		log.Printf("[CallLogCleanupTask] 清理失败: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("[CallLogCleanupTask] 清理 %d 条过期日志", removed)
	}
}

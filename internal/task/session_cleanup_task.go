package task

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"viralyst_dev_v1_202608/internal/service"
)

// ==================== 会话清理任务 ====================

// SessionCleanupTask 定时回收闲置会话
// 会话只存在内存里，不清会一直涨
type SessionCleanupTask struct {
	sessionService *service.SessionService
	cron           *cron.Cron

	ttl time.Duration
}

// NewSessionCleanupTask 创建会话清理任务
func NewSessionCleanupTask(sessionService *service.SessionService, ttl time.Duration) *SessionCleanupTask {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionCleanupTask{
		sessionService: sessionService,
		cron:           cron.New(cron.WithSeconds()), // 支持秒级控制
		ttl:            ttl,
	}
}

// Start 启动定时任务
func (t *SessionCleanupTask) Start() {
	// 每 10 分钟清一次
	_, _ = t.cron.AddFunc("0 */10 * * * *", func() {
		t.CleanupNow()
	})

	t.cron.Start()
	log.Printf("[SessionCleanupTask] 已启动，闲置超过 %v 的会话将被回收", t.ttl)
}

// Stop 停止定时任务
func (t *SessionCleanupTask) Stop() {
	t.cron.Stop()
	log.Println("[SessionCleanupTask] 已停止")
}

// CleanupNow 立即执行一次清理
func (t *SessionCleanupTask) CleanupNow() {
	removed := t.sessionService.CleanupIdle(t.ttl)
	if removed > 0 {
		log.Printf("[SessionCleanupTask] 回收 %d 个闲置会话，存活 %d 个",
			removed, t.sessionService.SessionCount())
	}
}

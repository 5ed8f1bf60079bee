package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== SyncRateLimiter 同步限流器 ====================

// SyncRateLimiter 操作限流器
// 防止用户连点生成/润色把 Gemini 配额打穿
type SyncRateLimiter struct {
	locks sync.Map // key -> *lockEntry
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// 全局限流器实例
var globalLimiter = &SyncRateLimiter{}

// GetLimiter 获取全局限流器
func GetLimiter() *SyncRateLimiter {
	return globalLimiter
}

// ==================== 限流检查 ====================

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行
// key: 限流键，如 "session:abc123:generate"
// interval: 冷却间隔
func (r *SyncRateLimiter) Check(key string, interval time.Duration) CheckResult {
	// 获取或创建锁条目
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	// 更新最后执行时间
	entry.lastTime = now
	return CheckResult{
		Allowed:    true,
		RetryAfter: 0,
	}
}

// CheckOnly 仅检查，不更新时间
func (r *SyncRateLimiter) CheckOnly(key string, interval time.Duration) CheckResult {
	actual, ok := r.locks.Load(key)
	if !ok {
		return CheckResult{Allowed: true}
	}

	entry := actual.(*lockEntry)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	elapsed := time.Since(entry.lastTime)
	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	return CheckResult{Allowed: true}
}

// Reset 重置指定 key 的限流
func (r *SyncRateLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// ==================== Key 生成工具 ====================

// OpType 受限操作类型
type OpType string

const (
	OpTypeGenerate OpType = "generate"
	OpTypeRefine   OpType = "refine"
	OpTypeImage    OpType = "image"
	OpTypeSegment  OpType = "segment"
)

// SessionOpKey 生成会话级限流 Key
func SessionOpKey(sessionID string, op OpType) string {
	return fmt.Sprintf("session:%s:%s", sessionID, op)
}

// GlobalOpKey 生成全局限流 Key
func GlobalOpKey(op OpType) string {
	return fmt.Sprintf("global:%s", op)
}

// ==================== 默认限流间隔 ====================

// DefaultIntervals 默认限流间隔配置
var DefaultIntervals = map[OpType]time.Duration{
	OpTypeGenerate: 5 * time.Second,  // 整批生成
	OpTypeRefine:   2 * time.Second,  // 单卡润色
	OpTypeImage:    2 * time.Second,  // 单卡配图
	OpTypeSegment:  10 * time.Second, // 客户表分析
}

// GetInterval 获取操作的默认间隔
func GetInterval(op OpType) time.Duration {
	if interval, ok := DefaultIntervals[op]; ok {
		return interval
	}
	return 5 * time.Second
}

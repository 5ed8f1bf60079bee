package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"viralyst_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// AICallLogRepository AI调用日志仓储接口
type AICallLogRepository interface {
	Create(ctx context.Context, log *model.AICallLog) error
	GetByID(ctx context.Context, id int64) (*model.AICallLog, error)

	// 统计查询
	GetUsageBySession(ctx context.Context, sessionID string) (*AIUsageStats, error)
	GetTotalUsage(ctx context.Context, startTime, endTime time.Time) (*AIUsageStats, error)
	GetDailyUsage(ctx context.Context, startDate, endDate time.Time) ([]DailyUsageStats, error)

	// 保留期清理
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// ==================== 统计结构 ====================

// AIUsageStats AI用量统计
type AIUsageStats struct {
	TotalCalls       int64   `json:"total_calls"`
	TextCalls        int64   `json:"text_calls"`
	ImageCalls       int64   `json:"image_calls"`
	RefineCalls      int64   `json:"refine_calls"`
	TotalPromptChars int64   `json:"total_prompt_chars"`
	TotalOutputChars int64   `json:"total_output_chars"`
	TotalImages      int64   `json:"total_images"`
	AvgDurationMs    float64 `json:"avg_duration_ms"`
	SuccessCount     int64   `json:"success_count"`
	FailedCount      int64   `json:"failed_count"`
}

// DailyUsageStats 每日用量统计
type DailyUsageStats struct {
	Date       string `json:"date"`
	TotalCalls int64  `json:"total_calls"`
	TextCalls  int64  `json:"text_calls"`
	ImageCalls int64  `json:"image_calls"`
}

// ==================== 仓储实现 ====================

type aiCallLogRepo struct {
	db *gorm.DB
}

// NewAICallLogRepository 创建AI调用日志仓储
func NewAICallLogRepository(db *gorm.DB) AICallLogRepository {
	return &aiCallLogRepo{db: db}
}

func (r *aiCallLogRepo) Create(ctx context.Context, log *model.AICallLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *aiCallLogRepo) GetByID(ctx context.Context, id int64) (*model.AICallLog, error) {
	var log model.AICallLog
	if err := r.db.WithContext(ctx).First(&log, id).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// usageSelect 统计字段（sqlite 与 postgres 通用写法）
const usageSelect = `
	COUNT(*) as total_calls,
	SUM(CASE WHEN call_type = 'text' THEN 1 ELSE 0 END) as text_calls,
	SUM(CASE WHEN call_type = 'image' THEN 1 ELSE 0 END) as image_calls,
	SUM(CASE WHEN call_type = 'refine' THEN 1 ELSE 0 END) as refine_calls,
	COALESCE(SUM(prompt_chars), 0) as total_prompt_chars,
	COALESCE(SUM(output_chars), 0) as total_output_chars,
	COALESCE(SUM(image_count), 0) as total_images,
	COALESCE(AVG(duration_ms), 0) as avg_duration_ms,
	SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END) as success_count,
	SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END) as failed_count
`

func (r *aiCallLogRepo) GetUsageBySession(ctx context.Context, sessionID string) (*AIUsageStats, error) {
	var stats AIUsageStats

	err := r.db.WithContext(ctx).Model(&model.AICallLog{}).
		Where("session_id = ?", sessionID).
		Select(usageSelect).
		Scan(&stats).Error

	return &stats, err
}

func (r *aiCallLogRepo) GetTotalUsage(ctx context.Context, startTime, endTime time.Time) (*AIUsageStats, error) {
	var stats AIUsageStats

	query := r.db.WithContext(ctx).Model(&model.AICallLog{})
	if !startTime.IsZero() {
		query = query.Where("created_at >= ?", startTime)
	}
	if !endTime.IsZero() {
		query = query.Where("created_at <= ?", endTime)
	}

	err := query.Select(usageSelect).Scan(&stats).Error
	return &stats, err
}

func (r *aiCallLogRepo) GetDailyUsage(ctx context.Context, startDate, endDate time.Time) ([]DailyUsageStats, error) {
	var stats []DailyUsageStats

	err := r.db.WithContext(ctx).Model(&model.AICallLog{}).
		Where("created_at >= ? AND created_at <= ?", startDate, endDate).
		Select(`
			DATE(created_at) as date,
			COUNT(*) as total_calls,
			SUM(CASE WHEN call_type = 'text' THEN 1 ELSE 0 END) as text_calls,
			SUM(CASE WHEN call_type = 'image' THEN 1 ELSE 0 END) as image_calls
		`).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&stats).Error

	return stats, err
}

// DeleteBefore 删除保留期之外的日志，返回删除行数
func (r *aiCallLogRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Unscoped().
		Where("created_at < ?", before).
		Delete(&model.AICallLog{})
	return result.RowsAffected, result.Error
}

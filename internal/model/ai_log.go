package model

// AICallLog AI调用日志
type AICallLog struct {
	BaseModel

	// 关联
	SessionID string `gorm:"size:64;index;comment:生成会话ID"`
	BatchID   string `gorm:"size:64;index;comment:生成批次ID"`

	// 调用信息
	CallType  string `gorm:"size:32;index;comment:调用类型(text/image/refine)"`
	ModelName string `gorm:"size:64;comment:模型名称"`

	// 用量统计
	PromptChars int `gorm:"default:0;comment:提示词字符数"`
	OutputChars int `gorm:"default:0;comment:输出字符数"`
	ImageCount  int `gorm:"default:0;comment:生成图片数量"`

	// 性能
	DurationMs int64 `gorm:"comment:耗时(毫秒)"`

	// 状态
	Status   string `gorm:"size:32;index;default:success;comment:状态(success/failed)"`
	ErrorMsg string `gorm:"size:1024;comment:错误信息"`
}

func (AICallLog) TableName() string {
	return "ai_call_logs"
}

// ==================== 调用类型常量 ====================

const (
	AICallTypeText   = "text"
	AICallTypeImage  = "image"
	AICallTypeRefine = "refine"
)

// ==================== 状态常量 ====================

const (
	AICallStatusSuccess = "success"
	AICallStatusFailed  = "failed"
)

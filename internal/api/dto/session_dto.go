package dto

import (
	"time"

	"viralyst_dev_v1_202608/internal/model"
)

// ==================== 请求 DTO ====================

// CategoryOption 启用的内容类别及篇幅（词数，梗图类忽略）
type CategoryOption struct {
	Key    string `json:"key" binding:"required"`
	Length string `json:"length,omitempty"`
}

// GenerateRequest 发起一批生成
type GenerateRequest struct {
	Mode       string           `json:"mode" binding:"required,oneof=text link persona"`
	Input      string           `json:"input"`
	PersonaID  int64            `json:"persona_id,omitempty"` // persona 模式必填
	Platforms  []string         `json:"platforms,omitempty"`  // 缺省启用全部平台
	Categories []CategoryOption `json:"categories,omitempty"` // 缺省启用全部类别
	Notes      string           `json:"notes,omitempty"`
	UserImage  string           `json:"user_image,omitempty"` // data URL，提供后非梗图卡片直接使用
}

// UpdateCardRequest 手工编辑卡片字段（nil 表示不动）
type UpdateCardRequest struct {
	Text            *string `json:"text,omitempty"`
	MemeOverlayText *string `json:"meme_overlay_text,omitempty"`
	ImagePrompt     *string `json:"image_prompt,omitempty"`
}

// RefineRequest 润色请求：预设指令或自定义指令二选一
type RefineRequest struct {
	Preset      string `json:"preset,omitempty" binding:"omitempty,oneof=shorten lengthen punch_up add_hashtags"`
	Instruction string `json:"instruction,omitempty"`
}

// RegenerateImageRequest 重新生成配图
type RegenerateImageRequest struct {
	Prompt string `json:"prompt,omitempty"` // 非空则覆盖卡片现有的 image_prompt
}

// SetUserImageRequest 用户自传图片
type SetUserImageRequest struct {
	Image string `json:"image" binding:"required"` // data URL
}

// ==================== 响应 DTO ====================

// SessionResponse 会话快照
type SessionResponse struct {
	ID           string                 `json:"id"`
	Status       string                 `json:"status"`
	BatchID      string                 `json:"batch_id,omitempty"`
	Truncated    bool                   `json:"truncated"` // 源内容是否被截断
	ErrorMessage string                 `json:"error_message,omitempty"`
	Results      model.ResultCollection `json:"results"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// RefineResponse 润色结果
type RefineResponse struct {
	Refined bool   `json:"refined"` // false 表示服务返回空、原文未动
	Text    string `json:"text,omitempty"`
}

// ==================== 进度事件 ====================

// ProgressEvent 生成进度事件（SSE 推送）
type ProgressEvent struct {
	SessionID string `json:"session_id"`
	BatchID   string `json:"batch_id"`
	Stage     string `json:"stage"`
	Progress  int    `json:"progress"`
	Message   string `json:"message"`
}

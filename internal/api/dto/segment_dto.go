package dto

// ==================== 响应 DTO ====================

// PersonaResponse 单个受众画像
type PersonaResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Size        int    `json:"size"`
	Pct         int    `json:"pct"`
}

// AnalyzeSegmentsResponse 客户表细分结果
type AnalyzeSegmentsResponse struct {
	UploadID string            `json:"upload_id"`
	RowCount int               `json:"row_count"`
	Personas []PersonaResponse `json:"personas"`
}

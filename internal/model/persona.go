package model

import "gorm.io/datatypes"

// Persona 受众画像（由客户数据聚类得到的细分人群）
type Persona struct {
	BaseModel

	Name        string `gorm:"size:128;not null;comment:画像名称" json:"name"`
	Description string `gorm:"type:text;comment:画像描述(用于提示词)" json:"description"`
	Size        int    `gorm:"default:0;comment:人群样本数" json:"size"`
	Pct         int    `gorm:"default:0;comment:占总受众百分比" json:"pct"`
	UploadID    string `gorm:"size:64;index;comment:来源上传批次" json:"-"`
	SourceFile  string `gorm:"size:255;comment:来源文件名" json:"-"`

	// 聚类统计明细（列名 -> 均值/众数），展示与调试用
	Stats datatypes.JSONMap `gorm:"comment:聚类统计" json:"stats,omitempty"`
}

func (Persona) TableName() string {
	return "personas"
}

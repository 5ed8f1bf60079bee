package model

import "strings"

// ==================== 平台 ====================

// Platform 发布平台
type Platform string

const (
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
)

// AllPlatforms 支持的全部平台（顺序固定）
func AllPlatforms() []Platform {
	return []Platform{PlatformLinkedIn, PlatformTwitter, PlatformInstagram}
}

// ParsePlatform 解析平台标识
func ParsePlatform(s string) (Platform, bool) {
	switch Platform(strings.ToLower(strings.TrimSpace(s))) {
	case PlatformLinkedIn:
		return PlatformLinkedIn, true
	case PlatformTwitter:
		return PlatformTwitter, true
	case PlatformInstagram:
		return PlatformInstagram, true
	}
	return "", false
}

// ==================== 内容类目 ====================

// CategoryKey 内容类目（枚举键）
// 归一化时就把服务返回的原始标签映射到枚举，后续寻址全部走枚举，
// 不再做子串匹配（原始标签匹配只发生在归一化这一个入口）
type CategoryKey string

const (
	CategoryOfficial      CategoryKey = "official"
	CategoryThoughtLeader CategoryKey = "thought_leader"
	CategoryViralMeme     CategoryKey = "viral_meme"
)

// AllCategories 支持的全部类目（顺序固定）
func AllCategories() []CategoryKey {
	return []CategoryKey{CategoryOfficial, CategoryThoughtLeader, CategoryViralMeme}
}

// Label 类目对生成服务展示的标签
func (c CategoryKey) Label() string {
	switch c {
	case CategoryOfficial:
		return "Official"
	case CategoryThoughtLeader:
		return "Thought Leader"
	case CategoryViralMeme:
		return "Viral Meme"
	}
	return string(c)
}

// ParseCategoryKey 解析类目键（接受枚举值或展示标签）
func ParseCategoryKey(s string) (CategoryKey, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	norm = strings.ReplaceAll(norm, " ", "_")
	switch CategoryKey(norm) {
	case CategoryOfficial, CategoryThoughtLeader, CategoryViralMeme:
		return CategoryKey(norm), true
	}
	return "", false
}

// MapCategoryLabel 把生成服务返回的类目标签映射到枚举键
// 服务偶尔会改写标签（如 "Official Post"），所以按关键词宽松匹配；
// 完全认不出来的标签返回 false，由调用方决定如何处理
func MapCategoryLabel(label string) (CategoryKey, bool) {
	norm := strings.ToLower(label)
	switch {
	case strings.Contains(norm, "meme"):
		return CategoryViralMeme, true
	case strings.Contains(norm, "thought"):
		return CategoryThoughtLeader, true
	case strings.Contains(norm, "official"):
		return CategoryOfficial, true
	}
	return "", false
}

// ==================== 卡片 ====================

// 图片来源
type ImageSource string

const (
	ImageSourceUser ImageSource = "user" // 用户自传图片
	ImageSourceAI   ImageSource = "ai"   // AI 生成
)

// Card 单张内容卡片（某平台 × 某类目的一条生成结果）
type Card struct {
	Category        CategoryKey `json:"category"`
	Label           string      `json:"type"` // 服务返回的原始标签，展示用
	Text            string      `json:"text"`
	MemeOverlayText string      `json:"meme_overlay_text,omitempty"`
	ImagePrompt     string      `json:"image_prompt"`
	ImageURL        string      `json:"image_url,omitempty"`
	ImageLoading    bool        `json:"is_image_loading"`
	ImageSource     ImageSource `json:"source"`
}

// CardUpdate 卡片部分更新
// nil 字段表示不动；ImageURL 指向空串表示清除图片（生成失败后无图状态）
type CardUpdate struct {
	Text            *string
	MemeOverlayText *string
	ImagePrompt     *string
	ImageURL        *string
	ImageLoading    *bool
	ImageSource     *ImageSource
}

// Apply 把部分更新合并到卡片上
func (u CardUpdate) Apply(c *Card) {
	if u.Text != nil {
		c.Text = *u.Text
	}
	if u.MemeOverlayText != nil {
		c.MemeOverlayText = *u.MemeOverlayText
	}
	if u.ImagePrompt != nil {
		c.ImagePrompt = *u.ImagePrompt
	}
	if u.ImageURL != nil {
		c.ImageURL = *u.ImageURL
	}
	if u.ImageLoading != nil {
		c.ImageLoading = *u.ImageLoading
	}
	if u.ImageSource != nil {
		c.ImageSource = *u.ImageSource
	}
}

// Empty 是否为空更新
func (u CardUpdate) Empty() bool {
	return u.Text == nil && u.MemeOverlayText == nil && u.ImagePrompt == nil &&
		u.ImageURL == nil && u.ImageLoading == nil && u.ImageSource == nil
}

// ==================== 结果集合 ====================

// ResultCollection 平台 -> 卡片列表
// 由会话层独占持有，外部只能拿到 Clone 出来的快照
type ResultCollection map[Platform][]Card

// Clone 深拷贝（卡片是纯值类型，逐槽复制即可）
func (rc ResultCollection) Clone() ResultCollection {
	if rc == nil {
		return nil
	}
	out := make(ResultCollection, len(rc))
	for p, cards := range rc {
		cp := make([]Card, len(cards))
		copy(cp, cards)
		out[p] = cp
	}
	return out
}

// Find 按平台+类目定位卡片，返回索引；找不到返回 -1
func (rc ResultCollection) Find(platform Platform, category CategoryKey) int {
	for i, c := range rc[platform] {
		if c.Category == category {
			return i
		}
	}
	return -1
}

// CardCount 卡片总数
func (rc ResultCollection) CardCount() int {
	n := 0
	for _, cards := range rc {
		n += len(cards)
	}
	return n
}

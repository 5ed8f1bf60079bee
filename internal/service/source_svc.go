package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"viralyst_dev_v1_202608/pkg/utils"
)

// ==================== 常量与错误 ====================

const (
	// MaxSourceChars 送入模型前的源内容硬上限（字符数）
	MaxSourceChars = 8000
	// MinScrapedChars 抓取结果低于此长度视为抓取失败（反爬页 / 空壳页）
	MinScrapedChars = 50

	// TruncationNotice 截断时附加给用户的提示
	TruncationNotice = "内容过长，已截取前 8000 字符参与生成"
)

var (
	// ErrEmptySource 源内容去除空白后为空
	ErrEmptySource = errors.New("source content is empty")
	// ErrScrapeFailed 链接抓取失败或内容过短
	ErrScrapeFailed = errors.New("scrape failed")
)

// ==================== 输入模式 ====================

const (
	SourceModeText    = "text"
	SourceModeLink    = "link"
	SourceModePersona = "persona"
)

// ==================== 配置 ====================

// SourceConfig 源内容解析配置
type SourceConfig struct {
	ReaderBaseURL string // 网页转纯文本的阅读器端点，抓取时拼在目标 URL 前
	Timeout       time.Duration
	CacheTTL      time.Duration // 抓取结果的记忆时长
}

// ==================== 服务 ====================

// SourceService 把三种输入模式统一解析为一段源文本
type SourceService struct {
	Config *SourceConfig
	client *resty.Client
}

// NewSourceService 创建源内容解析服务
func NewSourceService(cfg *SourceConfig) *SourceService {
	if cfg.ReaderBaseURL == "" {
		cfg.ReaderBaseURL = "https://r.jina.ai"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Minute
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "text/plain")

	return &SourceService{
		Config: cfg,
		client: client,
	}
}

// Resolve 按模式解析源文本
// 返回值：解析后的文本、是否发生截断、错误
// link 模式走阅读器抓取，text/persona 模式原样采用输入
func (s *SourceService) Resolve(ctx context.Context, mode, input string) (string, bool, error) {
	var text string
	var err error

	switch mode {
	case SourceModeLink:
		text, err = s.scrape(ctx, strings.TrimSpace(input))
		if err != nil {
			return "", false, err
		}
	case SourceModeText, SourceModePersona:
		text = input
	default:
		return "", false, fmt.Errorf("未知输入模式: %s", mode)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", false, ErrEmptySource
	}

	// 超长内容硬截断，调用方负责向用户提示
	// 按 rune 截，避免把多字节字符劈成两半
	if runes := []rune(text); len(runes) > MaxSourceChars {
		return string(runes[:MaxSourceChars]), true, nil
	}

	return text, false, nil
}

// scrape 通过阅读器端点抓取网页正文
func (s *SourceService) scrape(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", ErrEmptySource
	}

	cacheKey := "scrape:" + url
	if cached, ok := utils.GetCache(cacheKey); ok {
		return cached, nil
	}

	readerURL := strings.TrimSuffix(s.Config.ReaderBaseURL, "/") + "/" + url

	resp, err := s.client.R().
		SetContext(ctx).
		Get(readerURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrScrapeFailed, err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("%w: HTTP %d", ErrScrapeFailed, resp.StatusCode())
	}

	body := strings.TrimSpace(string(resp.Body()))

	// 过短视为抓到了反爬壳或空页面
	if len(body) < MinScrapedChars {
		return "", fmt.Errorf("%w: 正文过短 (%d 字符)", ErrScrapeFailed, len(body))
	}

	utils.SetCache(cacheKey, body, s.Config.CacheTTL)

	return body, nil
}

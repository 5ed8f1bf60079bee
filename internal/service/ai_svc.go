package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"viralyst_dev_v1_202608/internal/model"
	"viralyst_dev_v1_202608/internal/repository"
)

// ==================== 配置 ====================

// AIConfig AI 服务配置
type AIConfig struct {
	ApiKey     string
	TextModel  string
	ImageModel string
	BaseURL    string // 留空使用官方端点，测试时指向 httptest
}

// ==================== 服务 ====================

type AIService struct {
	Config      *AIConfig
	callLogRepo repository.AICallLogRepository
	client      *http.Client
}

// NewAIService 创建 AI 服务
func NewAIService(cfg *AIConfig, callLogRepo repository.AICallLogRepository) *AIService {
	// 固定模型配置
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-2.5-flash"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "imagen-3.0-generate-002"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	return &AIService{
		Config:      cfg,
		callLogRepo: callLogRepo,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
}

// ==================== 文案生成 ====================

// RawCard 模型返回的单张卡片（归一化之前的原始形态）
type RawCard struct {
	Type            string `json:"type"`
	Text            string `json:"text"`
	MemeOverlayText string `json:"meme_overlay_text"`
	ImagePrompt     string `json:"image_prompt"`
}

// GeneratePosts 调用文本模型生成整批文案
// 返回 平台key -> 卡片列表 的原始映射，归一化交给调用方
func (s *AIService) GeneratePosts(ctx context.Context, sessionID, batchID, sysInstruction, userPrompt string) (map[string][]RawCard, error) {
	if s.Config.ApiKey == "" {
		return nil, fmt.Errorf("Gemini API Key 未配置")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		s.Config.BaseURL, s.Config.TextModel, s.Config.ApiKey)

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]interface{}{{"text": userPrompt}}},
		},
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]interface{}{{"text": sysInstruction}},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	startTime := time.Now()

	jsonText, err := s.postGenerateContent(ctx, url, reqBody)

	logEntry := &model.AICallLog{
		SessionID:   sessionID,
		BatchID:     batchID,
		CallType:    model.AICallTypeText,
		ModelName:   s.Config.TextModel,
		PromptChars: len(sysInstruction) + len(userPrompt),
		OutputChars: len(jsonText),
		DurationMs:  time.Since(startTime).Milliseconds(),
		Status:      model.AICallStatusSuccess,
	}
	if err != nil {
		logEntry.Status = model.AICallStatusFailed
		logEntry.ErrorMsg = err.Error()
	}
	s.recordCall(ctx, logEntry)

	if err != nil {
		return nil, err
	}

	// 解析生成结果
	var result map[string][]RawCard
	cleaned := cleanJSONPayload(jsonText)
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("解析生成结果失败: %v, raw: %s", err, jsonText)
	}

	return result, nil
}

// ==================== 文案润色 ====================

// RefineText 按指令改写单张卡片的正文，只返回纯文本
func (s *AIService) RefineText(ctx context.Context, sessionID, batchID, text, instruction string) (string, error) {
	if s.Config.ApiKey == "" {
		return "", fmt.Errorf("Gemini API Key 未配置")
	}

	prompt := fmt.Sprintf(`Rewrite this social media post. Instruction: %s.
Return ONLY the rewritten post text, no commentary, no quotes.

POST:
%s`, instruction, text)

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		s.Config.BaseURL, s.Config.TextModel, s.Config.ApiKey)

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]interface{}{{"text": prompt}}},
		},
	}

	startTime := time.Now()

	refined, err := s.postGenerateContent(ctx, url, reqBody)

	logEntry := &model.AICallLog{
		SessionID:   sessionID,
		BatchID:     batchID,
		CallType:    model.AICallTypeRefine,
		ModelName:   s.Config.TextModel,
		PromptChars: len(prompt),
		OutputChars: len(refined),
		DurationMs:  time.Since(startTime).Milliseconds(),
		Status:      model.AICallStatusSuccess,
	}
	if err != nil {
		logEntry.Status = model.AICallStatusFailed
		logEntry.ErrorMsg = err.Error()
	}
	s.recordCall(ctx, logEntry)

	if err != nil {
		return "", err
	}

	return strings.TrimSpace(refined), nil
}

// postGenerateContent 发送 generateContent 请求并提取首个文本 part
func (s *AIService) postGenerateContent(ctx context.Context, url string, reqBody map[string]interface{}) (string, error) {
	bodyBytes, _ := json.Marshal(reqBody)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API 错误 [%d]: %s", resp.StatusCode, string(respBody))
	}

	// 解析响应
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %v", err)
	}

	if len(geminiResp.Candidates) == 0 {
		return "", fmt.Errorf("无生成结果")
	}

	for _, candidate := range geminiResp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}

	return "", fmt.Errorf("响应中未找到文本内容")
}

// ==================== 图片生成 ====================

// GenerateImage 调用 Imagen 生成单张配图
// 返回内嵌 data URL，可直接塞进卡片的 image_url
func (s *AIService) GenerateImage(ctx context.Context, sessionID, batchID, prompt string) (string, error) {
	if s.Config.ApiKey == "" {
		return "", fmt.Errorf("Gemini API Key 未配置")
	}

	url := fmt.Sprintf("%s/models/%s:predict?key=%s",
		s.Config.BaseURL, s.Config.ImageModel, s.Config.ApiKey)

	reqBody := map[string]interface{}{
		"instances": []map[string]interface{}{
			{"prompt": prompt},
		},
		"parameters": map[string]interface{}{
			"sampleCount": 1,
			"aspectRatio": "1:1",
		},
	}

	startTime := time.Now()

	dataURL, err := s.callImagenPredict(ctx, url, reqBody)

	logEntry := &model.AICallLog{
		SessionID:   sessionID,
		BatchID:     batchID,
		CallType:    model.AICallTypeImage,
		ModelName:   s.Config.ImageModel,
		PromptChars: len(prompt),
		ImageCount:  1,
		DurationMs:  time.Since(startTime).Milliseconds(),
		Status:      model.AICallStatusSuccess,
	}
	if err != nil {
		logEntry.ImageCount = 0
		logEntry.Status = model.AICallStatusFailed
		logEntry.ErrorMsg = err.Error()
	}
	s.recordCall(ctx, logEntry)

	return dataURL, err
}

func (s *AIService) callImagenPredict(ctx context.Context, url string, reqBody map[string]interface{}) (string, error) {
	bodyBytes, _ := json.Marshal(reqBody)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("请求失败: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Imagen API 错误 [%d]: %s", resp.StatusCode, string(respBody))
	}

	var imagenResp struct {
		Predictions []struct {
			BytesBase64Encoded string `json:"bytesBase64Encoded"`
			MimeType           string `json:"mimeType"`
		} `json:"predictions"`
	}

	if err := json.Unmarshal(respBody, &imagenResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %v", err)
	}

	for _, pred := range imagenResp.Predictions {
		if pred.BytesBase64Encoded != "" {
			mimeType := pred.MimeType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return "data:" + mimeType + ";base64," + pred.BytesBase64Encoded, nil
		}
	}

	return "", fmt.Errorf("响应中未找到图片数据")
}

// ==================== 工具函数 ====================

// cleanJSONPayload 剥掉模型偶尔带上的 markdown 围栏，截取首个 { 到末个 }
func cleanJSONPayload(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	first := strings.Index(cleaned, "{")
	last := strings.LastIndex(cleaned, "}")
	if first >= 0 && last > first {
		cleaned = cleaned[first : last+1]
	}

	return cleaned
}

// recordCall 写调用日志，失败只打日志不影响主流程
func (s *AIService) recordCall(ctx context.Context, entry *model.AICallLog) {
	if s.callLogRepo == nil {
		return
	}
	if err := s.callLogRepo.Create(ctx, entry); err != nil {
		log.Printf("记录 AI 调用日志失败: %v", err)
	}
}

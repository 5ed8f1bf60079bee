package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"viralyst_dev_v1_202608/internal/model"
	"viralyst_dev_v1_202608/internal/repository"
)

// ==================== 测试辅助函数 ====================

func setupAITestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.AICallLog{}); err != nil {
		t.Fatalf("迁移表结构失败: %v", err)
	}
	return db
}

// geminiTextResponse 构造 generateContent 响应
func geminiTextResponse(text string) string {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]interface{}{{"text": text}},
			}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

// ==================== 配置测试 ====================

func TestNewAIService_DefaultConfig(t *testing.T) {
	svc := NewAIService(&AIConfig{}, nil)

	if svc.Config.TextModel != "gemini-2.5-flash" {
		t.Errorf("默认 TextModel 不正确: got %s", svc.Config.TextModel)
	}
	if svc.Config.ImageModel != "imagen-3.0-generate-002" {
		t.Errorf("默认 ImageModel 不正确: got %s", svc.Config.ImageModel)
	}
	if svc.Config.BaseURL == "" {
		t.Error("默认 BaseURL 不应为空")
	}
}

func TestAIService_MissingApiKey(t *testing.T) {
	svc := NewAIService(&AIConfig{}, nil)

	if _, err := svc.GeneratePosts(context.Background(), "s1", "b1", "sys", "user"); err == nil {
		t.Error("未配置 Key 应直接报错")
	}
	if _, err := svc.RefineText(context.Background(), "s1", "b1", "text", "inst"); err == nil {
		t.Error("未配置 Key 应直接报错")
	}
	if _, err := svc.GenerateImage(context.Background(), "s1", "b1", "prompt"); err == nil {
		t.Error("未配置 Key 应直接报错")
	}
}

// ==================== 文案生成测试 ====================

func TestAIService_GeneratePosts(t *testing.T) {
	payload := `{"linkedin":[{"type":"Official","text":"文案","image_prompt":"scene"}]}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("请求路径不对: %s", r.URL.Path)
		}

		var req map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if _, ok := req["systemInstruction"]; !ok {
			t.Error("请求缺少 systemInstruction")
		}
		if gc, ok := req["generationConfig"].(map[string]interface{}); !ok || gc["responseMimeType"] != "application/json" {
			t.Error("请求应强制 JSON 响应格式")
		}

		// 模型带 markdown 围栏也要能解析
		_, _ = w.Write([]byte(geminiTextResponse("```json\n" + payload + "\n```")))
	}))
	defer server.Close()

	db := setupAITestDB(t)
	repo := repository.NewAICallLogRepository(db)

	svc := NewAIService(&AIConfig{ApiKey: "test-key", BaseURL: server.URL}, repo)

	result, err := svc.GeneratePosts(context.Background(), "sess-1", "batch-1", "sys", "user")
	if err != nil {
		t.Fatalf("GeneratePosts() error = %v", err)
	}

	cards := result["linkedin"]
	if len(cards) != 1 || cards[0].Type != "Official" || cards[0].Text != "文案" {
		t.Errorf("解析结果不对: %+v", cards)
	}

	// 调用日志落库
	var logs []model.AICallLog
	db.Find(&logs)
	if len(logs) != 1 {
		t.Fatalf("日志条数 = %d, want 1", len(logs))
	}
	entry := logs[0]
	if entry.SessionID != "sess-1" || entry.BatchID != "batch-1" {
		t.Errorf("日志归属不对: %+v", entry)
	}
	if entry.CallType != model.AICallTypeText || entry.Status != model.AICallStatusSuccess {
		t.Errorf("日志类型/状态不对: %s/%s", entry.CallType, entry.Status)
	}
	if entry.PromptChars == 0 || entry.OutputChars == 0 {
		t.Error("日志应记录字符数")
	}
}

func TestAIService_GeneratePosts_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"quota"}`))
	}))
	defer server.Close()

	db := setupAITestDB(t)
	repo := repository.NewAICallLogRepository(db)

	svc := NewAIService(&AIConfig{ApiKey: "test-key", BaseURL: server.URL}, repo)

	if _, err := svc.GeneratePosts(context.Background(), "s1", "b1", "sys", "user"); err == nil {
		t.Fatal("非 200 响应应报错")
	}

	// 失败同样落日志
	var entry model.AICallLog
	db.First(&entry)
	if entry.Status != model.AICallStatusFailed || entry.ErrorMsg == "" {
		t.Errorf("失败日志不对: %+v", entry)
	}
}

// ==================== 文案润色测试 ====================

func TestAIService_RefineText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&req)
		// 润色走纯文本，不应带 systemInstruction
		if _, ok := req["systemInstruction"]; ok {
			t.Error("润色请求不应带 systemInstruction")
		}
		_, _ = w.Write([]byte(geminiTextResponse("  改写后的文案  ")))
	}))
	defer server.Close()

	svc := NewAIService(&AIConfig{ApiKey: "test-key", BaseURL: server.URL}, nil)

	refined, err := svc.RefineText(context.Background(), "s1", "b1", "原文案", "make it shorter")
	if err != nil {
		t.Fatalf("RefineText() error = %v", err)
	}
	if refined != "改写后的文案" {
		t.Errorf("refined = %q, 应去除首尾空白", refined)
	}
}

// ==================== 图片生成测试 ====================

func TestAIService_GenerateImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":predict") {
			t.Errorf("请求路径不对: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"predictions":[{"bytesBase64Encoded":"aW1n","mimeType":"image/png"}]}`))
	}))
	defer server.Close()

	db := setupAITestDB(t)
	repo := repository.NewAICallLogRepository(db)

	svc := NewAIService(&AIConfig{ApiKey: "test-key", BaseURL: server.URL}, repo)

	dataURL, err := svc.GenerateImage(context.Background(), "s1", "b1", "surprised cat")
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}
	if dataURL != "data:image/png;base64,aW1n" {
		t.Errorf("dataURL = %q", dataURL)
	}

	var entry model.AICallLog
	db.First(&entry)
	if entry.CallType != model.AICallTypeImage || entry.ImageCount != 1 {
		t.Errorf("生图日志不对: %+v", entry)
	}
}

func TestAIService_GenerateImage_EmptyPredictions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[]}`))
	}))
	defer server.Close()

	svc := NewAIService(&AIConfig{ApiKey: "test-key", BaseURL: server.URL}, nil)

	if _, err := svc.GenerateImage(context.Background(), "s1", "b1", "prompt"); err == nil {
		t.Error("空预测结果应报错")
	}
}

// ==================== JSON 清洗测试 ====================

func TestCleanJSONPayload(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"纯JSON", `{"a":1}`, `{"a":1}`},
		{"json围栏", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"裸围栏", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"前后杂音", "Here you go:\n{\"a\":1}\nHope it helps!", `{"a":1}`},
		{"带空白", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONPayload(tt.input); got != tt.want {
				t.Errorf("cleanJSONPayload(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

package controller

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"viralyst_dev_v1_202608/internal/model"
	"viralyst_dev_v1_202608/internal/repository"
	"viralyst_dev_v1_202608/internal/service"
)

// ==================== 请求构造辅助 ====================

func setupSegmentRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Persona{}); err != nil {
		t.Fatalf("迁移表结构失败: %v", err)
	}

	svc := service.NewSegmentService(repository.NewPersonaRepository(db))
	ctrl := NewSegmentController(svc)

	r := gin.New()
	segments := r.Group("/api/segments")
	{
		segments.POST("/analyze", ctrl.AnalyzeSegments)
		segments.GET("/personas", ctrl.ListPersonas)
	}
	return r
}

// uploadFile 构造 multipart 上传请求
func uploadFile(t *testing.T, r http.Handler, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("构造上传请求失败: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("写入上传内容失败: %v", err)
	}
	_ = writer.Close()

	req, _ := http.NewRequest(http.MethodPost, "/api/segments/analyze", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// customerWorkbook 构造一份客户表 xlsx
func customerWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Age", "Plan"},
		{22, "Free"}, {24, "Free"}, {23, "Free"}, {25, "Free"},
		{51, "Pro"}, {48, "Pro"}, {53, "Pro"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("写入测试表格失败: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("导出测试表格失败: %v", err)
	}
	return buf.Bytes()
}

// ==================== 上传验证测试 ====================

func TestSegmentAPI_AnalyzeValidation(t *testing.T) {
	r := setupSegmentRouter(t)

	// 缺文件
	req, _ := http.NewRequest(http.MethodPost, "/api/segments/analyze", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 扩展名不对
	w = uploadFile(t, r, "customers.csv", []byte("Age,Plan\n30,Free"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 扩展名对但内容不是 xlsx
	w = uploadFile(t, r, "customers.xlsx", []byte("not an xlsx"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ==================== 分析流程测试 ====================

func TestSegmentAPI_AnalyzeAndList(t *testing.T) {
	r := setupSegmentRouter(t)

	w := uploadFile(t, r, "customers.xlsx", customerWorkbook(t))
	assert.Equal(t, http.StatusOK, w.Code)

	var analyzeResp struct {
		Code int `json:"code"`
		Data struct {
			RowCount int `json:"row_count"`
			Personas []struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
				Size int    `json:"size"`
			} `json:"personas"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &analyzeResp))
	assert.Equal(t, 0, analyzeResp.Code)
	assert.Equal(t, 7, analyzeResp.Data.RowCount)
	assert.NotEmpty(t, analyzeResp.Data.Personas)

	// 画像列表能查回来
	req, _ := http.NewRequest(http.MethodGet, "/api/segments/personas", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var listResp struct {
		Code int `json:"code"`
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Len(t, listResp.Data, len(analyzeResp.Data.Personas))
}

func TestSegmentAPI_ListEmptyPersonas(t *testing.T) {
	r := setupSegmentRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/segments/personas", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int           `json:"code"`
		Data []interface{} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data)
}

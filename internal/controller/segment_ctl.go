package controller

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"viralyst_dev_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// SegmentController 受众细分控制器
type SegmentController struct {
	segmentService *service.SegmentService
}

func NewSegmentController(segmentService *service.SegmentService) *SegmentController {
	return &SegmentController{segmentService: segmentService}
}

// 上传文件大小上限 10MB
const maxUploadBytes = 10 << 20

// ==================== API 方法 ====================

// AnalyzeSegments 上传客户表并生成受众画像
// @Summary 上传 xlsx 客户表，聚类生成受众画像
// @Tags Segment
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "客户数据表 (.xlsx)"
// @Success 200 {object} dto.AnalyzeSegmentsResponse
// @Router /api/segments/analyze [post]
func (ctrl *SegmentController) AnalyzeSegments(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "缺少上传文件: " + err.Error(),
		})
		return
	}

	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "文件过大，上限 10MB",
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "仅支持 .xlsx 文件",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "读取文件失败: " + err.Error(),
		})
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	result, err := ctrl.segmentService.AnalyzeWorkbook(ctx, file, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":    422,
			"message": "分析失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// ListPersonas 列出当前全部受众画像
// @Summary 获取最近一次细分得到的受众画像
// @Tags Segment
// @Produce json
// @Success 200 {array} dto.PersonaResponse
// @Router /api/segments/personas [get]
func (ctrl *SegmentController) ListPersonas(c *gin.Context) {
	ctx := c.Request.Context()
	result, err := ctrl.segmentService.ListPersonas(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "查询失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

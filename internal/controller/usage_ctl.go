package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"viralyst_dev_v1_202608/internal/repository"
)

// ==================== 控制器 ====================

// UsageController AI 用量统计控制器
type UsageController struct {
	callLogRepo repository.AICallLogRepository
}

func NewUsageController(callLogRepo repository.AICallLogRepository) *UsageController {
	return &UsageController{callLogRepo: callLogRepo}
}

// ==================== API 方法 ====================

// GetUsage 总用量统计
// @Summary 获取 AI 调用总量统计
// @Tags Usage
// @Produce json
// @Param start query string false "起始时间 (RFC3339)"
// @Param end query string false "结束时间 (RFC3339)"
// @Success 200 {object} repository.AIUsageStats
// @Router /api/usage [get]
func (ctrl *UsageController) GetUsage(c *gin.Context) {
	var startTime, endTime time.Time

	if s := c.Query("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的起始时间: " + s,
			})
			return
		}
		startTime = t
	}
	if s := c.Query("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的结束时间: " + s,
			})
			return
		}
		endTime = t
	}

	ctx := c.Request.Context()
	stats, err := ctrl.callLogRepo.GetTotalUsage(ctx, startTime, endTime)
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
		"data":    stats,
	})
}

// GetSessionUsage 单会话用量统计
// @Summary 获取单个会话的 AI 调用统计
// @Tags Usage
// @Produce json
// @Param session_id path string true "会话ID"
// @Success 200 {object} repository.AIUsageStats
// @Router /api/usage/sessions/{session_id} [get]
func (ctrl *UsageController) GetSessionUsage(c *gin.Context) {
	sessionID := c.Param("session_id")

	ctx := c.Request.Context()
	stats, err := ctrl.callLogRepo.GetUsageBySession(ctx, sessionID)
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
		"data":    stats,
	})
}

// GetDailyUsage 每日用量统计
// @Summary 获取最近 N 天的每日 AI 调用量
// @Tags Usage
// @Produce json
// @Param days query int false "天数，默认 7"
// @Success 200 {array} repository.DailyUsageStats
// @Router /api/usage/daily [get]
func (ctrl *UsageController) GetDailyUsage(c *gin.Context) {
	days := 7
	if s := c.Query("days"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 90 {
			days = n
		}
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	ctx := c.Request.Context()
	stats, err := ctrl.callLogRepo.GetDailyUsage(ctx, start, end)
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
		"data":    stats,
	})
}

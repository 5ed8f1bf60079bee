package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 操作限流中间件 ====================

// OpRateLimit 操作限流中间件
// 按会话 + 操作类型维度进行限流
//
// 使用示例:
//
//	router.POST("/api/sessions/:session_id/generate",
//	    middleware.OpRateLimit(middleware.OpTypeGenerate, 0),
//	    controller.Generate,
//	)
//
// 参数:
//   - op: 操作类型
//   - interval: 冷却间隔，0 表示使用默认值
func OpRateLimit(op OpType, interval time.Duration) gin.HandlerFunc {
	if interval == 0 {
		interval = GetInterval(op)
	}

	return func(c *gin.Context) {
		sessionID := c.Param("session_id")

		var key string
		if sessionID != "" {
			key = SessionOpKey(sessionID, op)
		} else {
			// 无会话维度的操作走全局限流
			key = GlobalOpKey(op)
		}

		// 检查限流
		result := GetLimiter().Check(key, interval)
		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": formatRetryMessage(result.RetryAfter),
				"data": gin.H{
					"retry_after": retryAfter,
					"op_type":     op,
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ==================== 辅助函数 ====================

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := int(d.Seconds())

	if seconds < 60 {
		return fmt.Sprintf("操作冷却中，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60

	if remainingSeconds == 0 {
		return fmt.Sprintf("操作冷却中，请 %d 分钟后重试", minutes)
	}

	return fmt.Sprintf("操作冷却中，请 %d 分 %d 秒后重试", minutes, remainingSeconds)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 限流器测试 ====================

func TestSyncRateLimiter_Check(t *testing.T) {
	limiter := &SyncRateLimiter{}

	first := limiter.Check("session:s1:generate", 100*time.Millisecond)
	if !first.Allowed {
		t.Fatal("首次请求应放行")
	}

	second := limiter.Check("session:s1:generate", 100*time.Millisecond)
	if second.Allowed {
		t.Fatal("冷却期内应被拦截")
	}
	if second.RetryAfter <= 0 || second.RetryAfter > 100*time.Millisecond {
		t.Errorf("RetryAfter = %v, 应在冷却窗口内", second.RetryAfter)
	}

	// 不同 key 互不影响
	other := limiter.Check("session:s2:generate", 100*time.Millisecond)
	if !other.Allowed {
		t.Error("不同会话的请求不应被拦截")
	}

	time.Sleep(120 * time.Millisecond)
	third := limiter.Check("session:s1:generate", 100*time.Millisecond)
	if !third.Allowed {
		t.Error("冷却结束后应放行")
	}
}

func TestSyncRateLimiter_CheckOnly(t *testing.T) {
	limiter := &SyncRateLimiter{}

	// 未记录过的 key 直接放行
	if !limiter.CheckOnly("fresh", time.Second).Allowed {
		t.Error("未知 key 应放行")
	}

	limiter.Check("k1", time.Second)

	// CheckOnly 不应刷新冷却时间
	if limiter.CheckOnly("k1", time.Second).Allowed {
		t.Error("冷却期内 CheckOnly 应返回不允许")
	}
}

func TestSyncRateLimiter_Reset(t *testing.T) {
	limiter := &SyncRateLimiter{}

	limiter.Check("k1", time.Minute)
	limiter.Reset("k1")

	if !limiter.Check("k1", time.Minute).Allowed {
		t.Error("Reset 后应重新放行")
	}
}

func TestOpKeys(t *testing.T) {
	if got := SessionOpKey("abc", OpTypeGenerate); got != "session:abc:generate" {
		t.Errorf("SessionOpKey = %s", got)
	}
	if got := GlobalOpKey(OpTypeSegment); got != "global:segment" {
		t.Errorf("GlobalOpKey = %s", got)
	}
}

func TestGetInterval(t *testing.T) {
	if GetInterval(OpTypeGenerate) != 5*time.Second {
		t.Error("generate 默认间隔不对")
	}
	if GetInterval(OpType("unknown")) != 5*time.Second {
		t.Error("未知操作应落到兜底间隔")
	}
}

// ==================== 中间件测试 ====================

func TestOpRateLimit_Middleware(t *testing.T) {
	r := gin.New()
	r.POST("/api/sessions/:session_id/generate",
		OpRateLimit(OpTypeGenerate, 200*time.Millisecond),
		func(c *gin.Context) {
			c.JSON(http.StatusAccepted, gin.H{"code": 0})
		},
	)

	do := func(sessionID string) int {
		req, _ := http.NewRequest(http.MethodPost, "/api/sessions/"+sessionID+"/generate", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := do("rl-sess-1"); code != http.StatusAccepted {
		t.Fatalf("首次请求 code = %d, want 202", code)
	}
	if code := do("rl-sess-1"); code != http.StatusTooManyRequests {
		t.Fatalf("连续请求 code = %d, want 429", code)
	}
	// 其他会话不受影响
	if code := do("rl-sess-2"); code != http.StatusAccepted {
		t.Fatalf("其他会话 code = %d, want 202", code)
	}
}

func TestFormatRetryMessage(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "操作冷却中，请 30 秒后重试"},
		{2 * time.Minute, "操作冷却中，请 2 分钟后重试"},
		{90 * time.Second, "操作冷却中，请 1 分 30 秒后重试"},
	}
	for _, tt := range tests {
		if got := formatRetryMessage(tt.d); got != tt.want {
			t.Errorf("formatRetryMessage(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

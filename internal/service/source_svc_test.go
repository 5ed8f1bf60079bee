package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newTestSourceService(readerURL string) *SourceService {
	return NewSourceService(&SourceConfig{ReaderBaseURL: readerURL})
}

func TestSourceService_ResolveText(t *testing.T) {
	svc := newTestSourceService("")

	text, truncated, err := svc.Resolve(context.Background(), SourceModeText, "  一段源内容  ")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if text != "一段源内容" {
		t.Errorf("text = %q, 应去除首尾空白", text)
	}
	if truncated {
		t.Error("短内容不应标记截断")
	}
}

func TestSourceService_ResolveEmpty(t *testing.T) {
	svc := newTestSourceService("")

	_, _, err := svc.Resolve(context.Background(), SourceModeText, "   \n\t  ")
	if !errors.Is(err, ErrEmptySource) {
		t.Errorf("空白输入应返回 ErrEmptySource, got %v", err)
	}
}

func TestSourceService_ResolveUnknownMode(t *testing.T) {
	svc := newTestSourceService("")

	if _, _, err := svc.Resolve(context.Background(), "voice", "x"); err == nil {
		t.Error("未知模式应报错")
	}
}

func TestSourceService_Truncation(t *testing.T) {
	svc := newTestSourceService("")

	// 多字节字符验证按 rune 截断
	long := strings.Repeat("长", MaxSourceChars+500)

	text, truncated, err := svc.Resolve(context.Background(), SourceModeText, long)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !truncated {
		t.Error("超长内容应标记截断")
	}
	if got := len([]rune(text)); got != MaxSourceChars {
		t.Errorf("截断后字符数 = %d, want %d", got, MaxSourceChars)
	}
}

func TestSourceService_ScrapeLink(t *testing.T) {
	body := strings.Repeat("文章正文段落。", 20)

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if !strings.HasPrefix(r.URL.Path, "/https://example.com/post-1") {
			t.Errorf("阅读器路径不对: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	svc := newTestSourceService(server.URL)

	text, _, err := svc.Resolve(context.Background(), SourceModeLink, "https://example.com/post-1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if text != body {
		t.Error("抓取正文与响应不一致")
	}

	// 第二次命中缓存，不再回源
	_, _, err = svc.Resolve(context.Background(), SourceModeLink, "https://example.com/post-1")
	if err != nil {
		t.Fatalf("Resolve() 缓存命中出错: %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("回源次数 = %d, want 1", n)
	}
}

func TestSourceService_ScrapeShortBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("403"))
	}))
	defer server.Close()

	svc := newTestSourceService(server.URL)

	_, _, err := svc.Resolve(context.Background(), SourceModeLink, "https://example.com/blocked")
	if !errors.Is(err, ErrScrapeFailed) {
		t.Errorf("过短正文应返回 ErrScrapeFailed, got %v", err)
	}
}

func TestSourceService_ScrapeHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := newTestSourceService(server.URL)

	_, _, err := svc.Resolve(context.Background(), SourceModeLink, "https://example.com/down")
	if !errors.Is(err, ErrScrapeFailed) {
		t.Errorf("非 200 响应应返回 ErrScrapeFailed, got %v", err)
	}
}

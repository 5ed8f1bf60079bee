package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"viralyst_dev_v1_202608/pkg/utils"
)

func newLocalStorageService(t *testing.T) (*StorageService, string) {
	t.Helper()

	dir := t.TempDir()
	svc, err := NewStorageService(&StorageConfig{
		Provider: "local",
		BasePath: dir,
		Endpoint: "http://localhost:8080/uploads",
	})
	if err != nil {
		t.Fatalf("NewStorageService() error = %v", err)
	}
	return svc, dir
}

func TestNewStorageProvider_Unknown(t *testing.T) {
	if _, err := NewStorageProvider(&StorageConfig{Provider: "ftp"}); err == nil {
		t.Error("未知提供者应报错")
	}
}

func TestStorageService_SaveDataURL(t *testing.T) {
	svc, dir := newLocalStorageService(t)

	dataURL := utils.ToDataURL([]byte("fake png bytes"), "image/png")

	url, err := svc.SaveDataURL(dataURL, "sessions/s1/linkedin_official")
	if err != nil {
		t.Fatalf("SaveDataURL() error = %v", err)
	}

	if !strings.HasPrefix(url, "http://localhost:8080/uploads/sessions/s1/linkedin_official_") {
		t.Errorf("url = %q", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Errorf("扩展名不对: %q", url)
	}

	// 文件真实落盘
	rel := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("读取落盘文件失败: %v", err)
	}
	if string(data) != "fake png bytes" {
		t.Error("落盘内容与原始字节不一致")
	}
}

func TestStorageService_SaveDataURL_Invalid(t *testing.T) {
	svc, _ := newLocalStorageService(t)

	if _, err := svc.SaveDataURL("https://example.com/a.png", "p"); err == nil {
		t.Error("非 data URL 应报错")
	}
}

func TestLocalStorage_Delete(t *testing.T) {
	svc, dir := newLocalStorageService(t)

	url, err := svc.Upload(context.Background(), []byte("x"), "a/b.png", "image/png")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if err := svc.Delete(context.Background(), url); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "a", "b.png")); !os.IsNotExist(err) {
		t.Error("文件应已删除")
	}
}

func TestExtensionFor(t *testing.T) {
	if got := extensionFor("application/x-totally-unknown"); got != ".png" {
		t.Errorf("未知类型应兜底 .png, got %s", got)
	}
}

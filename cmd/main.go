package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"viralyst_dev_v1_202608/internal/controller"
	"viralyst_dev_v1_202608/internal/model"
	"viralyst_dev_v1_202608/internal/repository"
	"viralyst_dev_v1_202608/internal/router"
	"viralyst_dev_v1_202608/internal/service"
	"viralyst_dev_v1_202608/internal/task"
	"viralyst_dev_v1_202608/pkg/database"
)

// @title Viralyst API
// @version 1.0
// @description 社媒内容生成编排服务
// @BasePath /
func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	tm := initTasks(deps)
	defer tm.Stop()

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers.Session, deps.Controllers.Segment, deps.Controllers.Usage)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	AiCallLog repository.AICallLogRepository
	Persona   repository.PersonaRepository
}

// Services 服务集合
type Services struct {
	AI      *service.AIService
	Source  *service.SourceService
	Storage *service.StorageService
	Session *service.SessionService
	Segment *service.SegmentService
}

// Controllers 控制器集合
type Controllers struct {
	Session *controller.SessionController
	Segment *controller.SegmentController
	Usage   *controller.UsageController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	return database.InitDB(
		getEnv("DATABASE_URL", ""),
		&model.AICallLog{},
		&model.Persona{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		AiCallLog: repository.NewAICallLogRepository(db),
		Persona:   repository.NewPersonaRepository(db),
	}

	// -------- 存储 & AI 服务 --------
	storageSvc := initStorageService()
	aiSvc := service.NewAIService(&service.AIConfig{
		ApiKey:     getEnv("GEMINI_API_KEY", ""),
		TextModel:  getEnv("GEMINI_TEXT_MODEL", ""),
		ImageModel: getEnv("GEMINI_IMAGE_MODEL", ""),
	}, repos.AiCallLog)

	sourceSvc := service.NewSourceService(&service.SourceConfig{
		ReaderBaseURL: getEnv("READER_BASE_URL", ""),
	})

	// -------- 业务服务 --------
	segmentSvc := service.NewSegmentService(repos.Persona)

	var store service.ImageStore
	if storageSvc != nil {
		store = storageSvc
	}
	sessionSvc := service.NewSessionService(aiSvc, aiSvc, sourceSvc, store, segmentSvc)
	if n := getEnvInt("IMAGE_CONCURRENCY", 0); n > 0 {
		sessionSvc.SetImageConcurrency(n)
	}

	services := &Services{
		AI:      aiSvc,
		Source:  sourceSvc,
		Storage: storageSvc,
		Session: sessionSvc,
		Segment: segmentSvc,
	}

	// -------- Controller 层 --------
	controllers := &Controllers{
		Session: controller.NewSessionController(sessionSvc),
		Segment: controller.NewSegmentController(segmentSvc),
		Usage:   controller.NewUsageController(repos.AiCallLog),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// initStorageService 初始化存储服务
// 未配置 STORAGE_PROVIDER 时图片以 data URL 形式直接内嵌在卡片里
func initStorageService() *service.StorageService {
	provider := getEnv("STORAGE_PROVIDER", "")
	if provider == "" {
		return nil
	}

	storageSvc, err := service.NewStorageService(&service.StorageConfig{
		Provider:  provider,
		Bucket:    getEnv("AWS_BUCKET", ""),
		Region:    getEnv("AWS_REGION", ""),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
		CDNDomain: getEnv("AWS_CDN_DOMAIN", ""),
		BasePath:  getEnv("STORAGE_BASE_PATH", "viralyst"),
	})
	if err != nil {
		log.Printf("警告: 存储服务初始化失败: %v", err)
		return nil
	}
	return storageSvc
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) *task.TaskManager {
	cfg := task.DefaultConfig()
	if hours := getEnvInt("SESSION_TTL_HOURS", 0); hours > 0 {
		cfg.SessionTTL = time.Duration(hours) * time.Hour
	}
	if days := getEnvInt("CALL_LOG_RETENTION_DAYS", 0); days > 0 {
		cfg.CallLogRetention = time.Duration(days) * 24 * time.Hour
	}

	tm := task.NewTaskManager(&task.TaskManagerDeps{
		SessionService: deps.Services.Session,
		CallLogRepo:    deps.Repos.AiCallLog,
	}, cfg)
	tm.Start()

	return tm
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

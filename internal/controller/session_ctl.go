package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"viralyst_dev_v1_202608/internal/api/dto"
	"viralyst_dev_v1_202608/internal/model"
	"viralyst_dev_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// SessionController 创作会话控制器
type SessionController struct {
	sessionService *service.SessionService
}

func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{sessionService: sessionService}
}

// ==================== API 方法 ====================

// CreateSession 新建创作会话
// @Summary 新建创作会话
// @Tags Session
// @Produce json
// @Success 201 {object} dto.SessionResponse
// @Router /api/sessions [post]
func (ctrl *SessionController) CreateSession(c *gin.Context) {
	result := ctrl.sessionService.CreateSession()

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// GetSession 获取会话快照
// @Summary 获取会话当前状态与全部卡片
// @Tags Session
// @Param session_id path string true "会话ID"
// @Success 200 {object} dto.SessionResponse
// @Router /api/sessions/{session_id} [get]
func (ctrl *SessionController) GetSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	result, err := ctrl.sessionService.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// Generate 发起一批生成
// @Summary 发起一批内容生成
// @Tags Session
// @Accept json
// @Produce json
// @Param session_id path string true "会话ID"
// @Param body body dto.GenerateRequest true "生成请求"
// @Success 202 {object} dto.SessionResponse
// @Router /api/sessions/{session_id}/generate [post]
func (ctrl *SessionController) Generate(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	spec, err := buildGenerationSpec(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	result, err := ctrl.sessionService.StartGeneration(sessionID, *spec)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"code":    0,
		"message": "生成已启动",
		"data":    result,
	})
}

// UpdateCard 手工编辑卡片
// @Summary 编辑单张卡片的文案字段
// @Tags Session
// @Accept json
// @Param session_id path string true "会话ID"
// @Param platform path string true "平台"
// @Param category path string true "内容类别"
// @Param body body dto.UpdateCardRequest true "更新内容"
// @Success 200 {object} dto.SessionResponse
// @Router /api/sessions/{session_id}/cards/{platform}/{category} [patch]
func (ctrl *SessionController) UpdateCard(c *gin.Context) {
	sessionID := c.Param("session_id")

	platform, category, ok := parseCardPath(c)
	if !ok {
		return
	}

	var req dto.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	update := model.CardUpdate{
		Text:            req.Text,
		MemeOverlayText: req.MemeOverlayText,
		ImagePrompt:     req.ImagePrompt,
	}

	result, err := ctrl.sessionService.UpdateCard(sessionID, platform, category, update)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// RefineCard 润色卡片文案
// @Summary 按预设或自定义指令改写卡片正文
// @Tags Session
// @Accept json
// @Produce json
// @Param session_id path string true "会话ID"
// @Param platform path string true "平台"
// @Param category path string true "内容类别"
// @Param body body dto.RefineRequest true "润色指令"
// @Success 200 {object} dto.RefineResponse
// @Router /api/sessions/{session_id}/cards/{platform}/{category}/refine [post]
func (ctrl *SessionController) RefineCard(c *gin.Context) {
	sessionID := c.Param("session_id")

	platform, category, ok := parseCardPath(c)
	if !ok {
		return
	}

	var req dto.RefineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	instruction, err := service.ResolveRefineInstruction(req.Preset, req.Instruction)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	result, err := ctrl.sessionService.RefineCard(ctx, sessionID, platform, category, instruction)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// RegenerateImage 重新生成卡片配图
// @Summary 重新生成单张卡片的配图（异步）
// @Tags Session
// @Accept json
// @Param session_id path string true "会话ID"
// @Param platform path string true "平台"
// @Param category path string true "内容类别"
// @Param body body dto.RegenerateImageRequest false "可选的提示词覆盖"
// @Success 202 {object} dto.SessionResponse
// @Router /api/sessions/{session_id}/cards/{platform}/{category}/image [post]
func (ctrl *SessionController) RegenerateImage(c *gin.Context) {
	sessionID := c.Param("session_id")

	platform, category, ok := parseCardPath(c)
	if !ok {
		return
	}

	var req dto.RegenerateImageRequest
	// body 可省略
	_ = c.ShouldBindJSON(&req)

	result, err := ctrl.sessionService.RegenerateImage(sessionID, platform, category, req.Prompt)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"code":    0,
		"message": "配图重新生成已启动",
		"data":    result,
	})
}

// SetUserImage 用户上传卡片图片
// @Summary 给单张卡片设置用户自传图片
// @Tags Session
// @Accept json
// @Param session_id path string true "会话ID"
// @Param platform path string true "平台"
// @Param category path string true "内容类别"
// @Param body body dto.SetUserImageRequest true "图片 data URL"
// @Success 200 {object} dto.SessionResponse
// @Router /api/sessions/{session_id}/cards/{platform}/{category}/upload [post]
func (ctrl *SessionController) SetUserImage(c *gin.Context) {
	sessionID := c.Param("session_id")

	platform, category, ok := parseCardPath(c)
	if !ok {
		return
	}

	var req dto.SetUserImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	result, err := ctrl.sessionService.SetUserImage(sessionID, platform, category, req.Image)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// StreamProgress SSE 订阅会话进度
// @Summary SSE 实时推送生成进度
// @Tags Session
// @Param session_id path string true "会话ID"
// @Produce text/event-stream
// @Router /api/sessions/{session_id}/stream [get]
func (ctrl *SessionController) StreamProgress(c *gin.Context) {
	sessionID := c.Param("session_id")

	if _, err := ctrl.sessionService.GetSession(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")

	// 订阅进度
	progressCh := ctrl.sessionService.Subscribe(sessionID)
	defer ctrl.sessionService.Unsubscribe(sessionID, progressCh)

	// 发送心跳和进度
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			return
		case <-ticker.C:
			// 心跳
			c.SSEvent("heartbeat", gin.H{"time": time.Now().Unix()})
			c.Writer.Flush()
		case event, ok := <-progressCh:
			if !ok {
				return
			}
			data, _ := json.Marshal(event)
			c.SSEvent("progress", string(data))
			c.Writer.Flush()
		}
	}
}

// ==================== 辅助函数 ====================

// parseCardPath 解析 platform/category 路径参数，非法时直接写 400
func parseCardPath(c *gin.Context) (model.Platform, model.CategoryKey, bool) {
	platform, ok := model.ParsePlatform(c.Param("platform"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的平台: " + c.Param("platform"),
		})
		return "", "", false
	}

	category, ok := model.ParseCategoryKey(c.Param("category"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的内容类别: " + c.Param("category"),
		})
		return "", "", false
	}

	return platform, category, true
}

// buildGenerationSpec 把请求 DTO 转为生成规格
func buildGenerationSpec(req *dto.GenerateRequest) (*service.GenerationSpec, error) {
	spec := &service.GenerationSpec{
		Mode:      req.Mode,
		Input:     req.Input,
		PersonaID: req.PersonaID,
		Notes:     req.Notes,
		UserImage: req.UserImage,
	}

	switch req.Mode {
	case service.SourceModePersona:
		if req.PersonaID <= 0 {
			return nil, fmt.Errorf("persona 模式需要 persona_id")
		}
	default:
		if req.Input == "" {
			return nil, fmt.Errorf("input 不能为空")
		}
	}

	for _, p := range req.Platforms {
		platform, ok := model.ParsePlatform(p)
		if !ok {
			return nil, fmt.Errorf("无效的平台: %s", p)
		}
		spec.Platforms = append(spec.Platforms, platform)
	}

	for _, cat := range req.Categories {
		key, ok := model.ParseCategoryKey(cat.Key)
		if !ok {
			return nil, fmt.Errorf("无效的内容类别: %s", cat.Key)
		}
		spec.Categories = append(spec.Categories, service.CategoryLength{
			Key:    key,
			Length: cat.Length,
		})
	}

	return spec, nil
}

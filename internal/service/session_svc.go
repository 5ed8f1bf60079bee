package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"viralyst_dev_v1_202608/internal/api/dto"
	"viralyst_dev_v1_202608/internal/model"
)

// ==================== 会话状态 ====================

const (
	SessionStatusIdle       = "idle"
	SessionStatusGenerating = "generating"
	SessionStatusReady      = "ready"
	SessionStatusFailed     = "failed"
)

// Session 一次创作会话
// 结果集合由会话独占持有，所有写入都走 applyCardUpdate 单一入口；
// 外部读取只能拿到 Clone 出来的快照
type Session struct {
	ID string

	mu           sync.Mutex
	status       string
	batchID      string // 当前批次，旧批次的异步回写会被丢弃
	results      model.ResultCollection
	truncated    bool
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
	lastActive   time.Time
}

// ==================== 依赖接口 ====================

// TextGenerator 文案生成与润色
type TextGenerator interface {
	GeneratePosts(ctx context.Context, sessionID, batchID, sysInstruction, userPrompt string) (map[string][]RawCard, error)
	RefineText(ctx context.Context, sessionID, batchID, text, instruction string) (string, error)
}

// ImageGenerator 配图生成
type ImageGenerator interface {
	GenerateImage(ctx context.Context, sessionID, batchID, prompt string) (string, error)
}

// SourceResolver 源内容解析
type SourceResolver interface {
	Resolve(ctx context.Context, mode, input string) (string, bool, error)
}

// ImageStore 可选的图片落地存储（nil 时卡片直接持有 data URL）
type ImageStore interface {
	SaveDataURL(dataURL, prefix string) (string, error)
}

// PersonaLookup 受众画像查询（persona 模式取描述文本）
type PersonaLookup interface {
	GetPersona(ctx context.Context, id int64) (*model.Persona, error)
}

// ==================== 生成规格 ====================

// GenerationSpec 一批生成的全部参数（控制器解析后传入）
type GenerationSpec struct {
	Mode       string
	Input      string
	PersonaID  int64
	Platforms  []model.Platform
	Categories []CategoryLength
	Notes      string
	UserImage  string
}

// 归一化缺省值：空平台/类别列表视为全部启用
func (g *GenerationSpec) normalize() {
	if len(g.Platforms) == 0 {
		g.Platforms = model.AllPlatforms()
	}
	if len(g.Categories) == 0 {
		for _, key := range model.AllCategories() {
			g.Categories = append(g.Categories, CategoryLength{Key: key})
		}
	}
}

func (g *GenerationSpec) categoryEnabled(key model.CategoryKey) bool {
	for _, cat := range g.Categories {
		if cat.Key == key {
			return true
		}
	}
	return false
}

// ==================== 服务 ====================

// SessionService 创作会话编排
type SessionService struct {
	ai       TextGenerator
	images   ImageGenerator
	source   SourceResolver
	storage  ImageStore // 可为 nil
	personas PersonaLookup

	sessions     map[string]*Session
	sessionMutex sync.RWMutex

	subscribers     map[string][]chan dto.ProgressEvent
	subscriberMutex sync.RWMutex

	// 配图并发上限（0 表示不限）
	imageConcurrency int
}

// NewSessionService 创建会话服务
func NewSessionService(ai TextGenerator, images ImageGenerator, source SourceResolver, storage ImageStore, personas PersonaLookup) *SessionService {
	return &SessionService{
		ai:               ai,
		images:           images,
		source:           source,
		storage:          storage,
		personas:         personas,
		sessions:         make(map[string]*Session),
		subscribers:      make(map[string][]chan dto.ProgressEvent),
		imageConcurrency: 4,
	}
}

// SetImageConcurrency 设置配图并发上限
func (s *SessionService) SetImageConcurrency(n int) {
	s.imageConcurrency = n
}

// ==================== 会话生命周期 ====================

// CreateSession 新建会话
func (s *SessionService) CreateSession() *dto.SessionResponse {
	now := time.Now()
	sess := &Session{
		ID:         uuid.NewString(),
		status:     SessionStatusIdle,
		results:    make(model.ResultCollection),
		createdAt:  now,
		updatedAt:  now,
		lastActive: now,
	}

	s.sessionMutex.Lock()
	s.sessions[sess.ID] = sess
	s.sessionMutex.Unlock()

	return s.snapshot(sess)
}

// GetSession 读取会话快照
func (s *SessionService) GetSession(sessionID string) (*dto.SessionResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(sess), nil
}

// CleanupIdle 清理闲置超过 ttl 的会话，返回清理数量
func (s *SessionService) CleanupIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.sessionMutex.Lock()
	defer s.sessionMutex.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastActive.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// SessionCount 当前会话数
func (s *SessionService) SessionCount() int {
	s.sessionMutex.RLock()
	defer s.sessionMutex.RUnlock()
	return len(s.sessions)
}

func (s *SessionService) lookup(sessionID string) (*Session, error) {
	s.sessionMutex.RLock()
	sess, ok := s.sessions[sessionID]
	s.sessionMutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("会话不存在: %s", sessionID)
	}

	sess.mu.Lock()
	sess.lastActive = time.Now()
	sess.mu.Unlock()

	return sess, nil
}

// snapshot 在锁内克隆出只读快照
func (s *SessionService) snapshot(sess *Session) *dto.SessionResponse {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	return &dto.SessionResponse{
		ID:           sess.ID,
		Status:       sess.status,
		BatchID:      sess.batchID,
		Truncated:    sess.truncated,
		ErrorMessage: sess.errorMessage,
		Results:      sess.results.Clone(),
		CreatedAt:    sess.createdAt,
		UpdatedAt:    sess.updatedAt,
	}
}

// ==================== 进度订阅 ====================

// Subscribe 订阅会话进度
func (s *SessionService) Subscribe(sessionID string) chan dto.ProgressEvent {
	s.subscriberMutex.Lock()
	defer s.subscriberMutex.Unlock()

	ch := make(chan dto.ProgressEvent, 10)
	s.subscribers[sessionID] = append(s.subscribers[sessionID], ch)
	return ch
}

// Unsubscribe 取消订阅
func (s *SessionService) Unsubscribe(sessionID string, ch chan dto.ProgressEvent) {
	s.subscriberMutex.Lock()
	defer s.subscriberMutex.Unlock()

	subs := s.subscribers[sessionID]
	for i, sub := range subs {
		if sub == ch {
			s.subscribers[sessionID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}

	if len(s.subscribers[sessionID]) == 0 {
		delete(s.subscribers, sessionID)
	}
}

// notifyProgress 通知进度
func (s *SessionService) notifyProgress(sessionID string, event dto.ProgressEvent) {
	s.subscriberMutex.RLock()
	defer s.subscriberMutex.RUnlock()

	for _, ch := range s.subscribers[sessionID] {
		select {
		case ch <- event:
		default:
			// channel 已满，跳过
		}
	}
}

// ==================== 发起生成 ====================

// StartGeneration 发起一批生成
// 同步部分：立即清空旧结果、换新批次、置为生成中；重活全部异步。
// 旧批次还在路上的异步回写会因批次号不符被丢弃。
func (s *SessionService) StartGeneration(sessionID string, spec GenerationSpec) (*dto.SessionResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	spec.normalize()

	batchID := uuid.NewString()

	sess.mu.Lock()
	sess.batchID = batchID
	sess.status = SessionStatusGenerating
	sess.results = make(model.ResultCollection)
	sess.truncated = false
	sess.errorMessage = ""
	sess.updatedAt = time.Now()
	sess.mu.Unlock()

	go s.processGeneration(sess, batchID, spec)

	return s.snapshot(sess), nil
}

// processGeneration 异步处理一批生成
func (s *SessionService) processGeneration(sess *Session, batchID string, spec GenerationSpec) {
	ctx := context.Background()

	// 1. 解析源内容
	s.notifyProgress(sess.ID, dto.ProgressEvent{
		SessionID: sess.ID,
		BatchID:   batchID,
		Stage:     "resolving",
		Progress:  5,
		Message:   "正在准备源内容...",
	})

	var personaDesc string
	if spec.Mode == SourceModePersona {
		if s.personas == nil {
			s.failBatch(sess, batchID, "画像服务未配置")
			return
		}
		persona, err := s.personas.GetPersona(ctx, spec.PersonaID)
		if err != nil {
			s.failBatch(sess, batchID, "受众画像不存在: "+err.Error())
			return
		}
		personaDesc = persona.Description
		if spec.Input == "" {
			spec.Input = persona.Description
		}
	}

	sourceText, truncated, err := s.source.Resolve(ctx, spec.Mode, spec.Input)
	if err != nil {
		// 源内容有问题时不发任何生成请求，直接判失败
		s.failBatch(sess, batchID, "源内容解析失败: "+err.Error())
		return
	}

	if truncated {
		sess.mu.Lock()
		if sess.batchID == batchID {
			sess.truncated = true
		}
		sess.mu.Unlock()

		s.notifyProgress(sess.ID, dto.ProgressEvent{
			SessionID: sess.ID,
			BatchID:   batchID,
			Stage:     "resolving",
			Progress:  10,
			Message:   TruncationNotice,
		})
	}

	// 2. 组装提示词并调用文案生成
	s.notifyProgress(sess.ID, dto.ProgressEvent{
		SessionID: sess.ID,
		BatchID:   batchID,
		Stage:     "generating",
		Progress:  25,
		Message:   "正在生成文案...",
	})

	sysInstruction, userPrompt := ComposePrompts(ComposeInput{
		SourceText:  sourceText,
		Platforms:   spec.Platforms,
		Categories:  spec.Categories,
		Notes:       spec.Notes,
		PersonaDesc: personaDesc,
	})

	raw, err := s.ai.GeneratePosts(ctx, sess.ID, batchID, sysInstruction, userPrompt)
	if err != nil {
		s.failBatch(sess, batchID, "文案生成失败: "+err.Error())
		return
	}

	// 3. 归一化并提交结果
	collection := normalizeBatch(raw, spec)

	sess.mu.Lock()
	if sess.batchID != batchID {
		// 已被更新的批次取代，整批丢弃
		sess.mu.Unlock()
		return
	}
	sess.results = collection
	sess.status = SessionStatusReady
	sess.updatedAt = time.Now()
	// 提交后 collection 就是会话持有的活 map，后续只能在锁内读；
	// 通知用到的数据在这里一次性取出
	pending := pendingImages(collection)
	cardCount := collection.CardCount()
	sess.mu.Unlock()

	s.notifyProgress(sess.ID, dto.ProgressEvent{
		SessionID: sess.ID,
		BatchID:   batchID,
		Stage:     "normalized",
		Progress:  60,
		Message:   fmt.Sprintf("文案就绪，共 %d 张卡片", cardCount),
	})

	// 4. 并发生成配图
	s.fanOutImages(sess, batchID, pending)

	s.notifyProgress(sess.ID, dto.ProgressEvent{
		SessionID: sess.ID,
		BatchID:   batchID,
		Stage:     "done",
		Progress:  100,
		Message:   "生成完成",
	})
}

// failBatch 标记批次失败（批次已被取代时静默放弃）
func (s *SessionService) failBatch(sess *Session, batchID, errMsg string) {
	sess.mu.Lock()
	if sess.batchID != batchID {
		sess.mu.Unlock()
		return
	}
	sess.status = SessionStatusFailed
	sess.errorMessage = errMsg
	sess.updatedAt = time.Now()
	sess.mu.Unlock()

	log.Printf("会话 %s 批次 %s 失败: %s", sess.ID, batchID, errMsg)

	s.notifyProgress(sess.ID, dto.ProgressEvent{
		SessionID: sess.ID,
		BatchID:   batchID,
		Stage:     "failed",
		Progress:  0,
		Message:   errMsg,
	})
}

// ==================== 批次归一化 ====================

// normalizeBatch 把服务返回的原始映射整形为结果集合
// 原始标签到枚举键的匹配只发生在这里；认不出的标签跳过。
// 梗图类卡片一律走 AI 生图，即使用户提供了自传图片。
func normalizeBatch(raw map[string][]RawCard, spec GenerationSpec) model.ResultCollection {
	collection := make(model.ResultCollection, len(spec.Platforms))

	for _, platform := range spec.Platforms {
		rawCards := raw[string(platform)]
		cards := make([]model.Card, 0, len(rawCards))

		for _, rc := range rawCards {
			key, ok := model.MapCategoryLabel(rc.Type)
			if !ok {
				continue
			}
			if !spec.categoryEnabled(key) {
				continue
			}

			card := model.Card{
				Category:    key,
				Label:       rc.Type,
				Text:        rc.Text,
				ImagePrompt: rc.ImagePrompt,
			}

			switch {
			case key == model.CategoryViralMeme:
				// 梗图必须是 AI 生成的底图，叠字才有意义
				card.MemeOverlayText = rc.MemeOverlayText
				card.ImageSource = model.ImageSourceAI
				card.ImageLoading = true
			case spec.UserImage != "":
				// 用户自传图片直接短路，不发生图请求
				card.ImageSource = model.ImageSourceUser
				card.ImageURL = spec.UserImage
				card.ImageLoading = false
			default:
				card.ImageSource = model.ImageSourceAI
				card.ImageLoading = true
			}

			cards = append(cards, card)
		}

		collection[platform] = cards
	}

	return collection
}

// cardRef 待生图卡片的定位
type cardRef struct {
	Platform model.Platform
	Category model.CategoryKey
	Prompt   string
}

// pendingImages 收集所有等待配图的卡片
func pendingImages(collection model.ResultCollection) []cardRef {
	var refs []cardRef
	for _, platform := range model.AllPlatforms() {
		for _, card := range collection[platform] {
			if card.ImageLoading {
				refs = append(refs, cardRef{
					Platform: platform,
					Category: card.Category,
					Prompt:   card.ImagePrompt,
				})
			}
		}
	}
	return refs
}

// ==================== 配图扇出 ====================

// fanOutImages 并发为每张待图卡片生成配图，全部完成后返回
func (s *SessionService) fanOutImages(sess *Session, batchID string, refs []cardRef) {
	if len(refs) == 0 {
		return
	}

	var sem chan struct{}
	if s.imageConcurrency > 0 {
		sem = make(chan struct{}, s.imageConcurrency)
	}

	var wg sync.WaitGroup
	var done int
	var doneMutex sync.Mutex

	for _, ref := range refs {
		wg.Add(1)
		go func(ref cardRef) {
			defer wg.Done()

			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}

			s.generateCardImage(sess, batchID, ref)

			doneMutex.Lock()
			done++
			current := done
			doneMutex.Unlock()

			s.notifyProgress(sess.ID, dto.ProgressEvent{
				SessionID: sess.ID,
				BatchID:   batchID,
				Stage:     "images",
				Progress:  60 + 40*current/len(refs),
				Message:   fmt.Sprintf("配图进度 %d/%d", current, len(refs)),
			})
		}(ref)
	}

	wg.Wait()
}

// generateCardImage 为单张卡片生成配图并回写
// 任何失败都坍缩为无图状态（image_url 清空、loading 结束），不影响其他卡片
func (s *SessionService) generateCardImage(sess *Session, batchID string, ref cardRef) {
	ctx := context.Background()

	imageURL, err := s.images.GenerateImage(ctx, sess.ID, batchID, ref.Prompt)
	if err != nil {
		log.Printf("会话 %s 卡片 %s/%s 配图失败: %v", sess.ID, ref.Platform, ref.Category, err)
		imageURL = ""
	}

	// 可选落地：转存成功用外部 URL，失败退回内嵌 data URL
	if imageURL != "" && s.storage != nil {
		prefix := fmt.Sprintf("sessions/%s/%s_%s", sess.ID, ref.Platform, ref.Category)
		if stored, storeErr := s.storage.SaveDataURL(imageURL, prefix); storeErr == nil {
			imageURL = stored
		} else {
			log.Printf("会话 %s 图片落地失败: %v", sess.ID, storeErr)
		}
	}

	loading := false
	s.applyCardUpdate(sess, batchID, ref.Platform, ref.Category, model.CardUpdate{
		ImageURL:     &imageURL,
		ImageLoading: &loading,
	})
}

// ==================== 卡片变更引擎 ====================

// applyCardUpdate 卡片写入的唯一入口
// batchID 非空且与当前批次不符：过期回写，静默丢弃；
// 卡片不存在：静默忽略（异步完成落在已被替换的集合上属于正常时序）。
// 写入采用整槽替换，未动的卡片保持原值。
func (s *SessionService) applyCardUpdate(sess *Session, batchID string, platform model.Platform, category model.CategoryKey, update model.CardUpdate) bool {
	if update.Empty() {
		return false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if batchID != "" && batchID != sess.batchID {
		return false
	}

	idx := sess.results.Find(platform, category)
	if idx < 0 {
		return false
	}

	cards := make([]model.Card, len(sess.results[platform]))
	copy(cards, sess.results[platform])
	update.Apply(&cards[idx])
	sess.results[platform] = cards
	sess.updatedAt = time.Now()

	return true
}

// UpdateCard 手工编辑卡片（不带批次号：作用于当前批次）
func (s *SessionService) UpdateCard(sessionID string, platform model.Platform, category model.CategoryKey, update model.CardUpdate) (*dto.SessionResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	s.applyCardUpdate(sess, "", platform, category, update)
	return s.snapshot(sess), nil
}

// SetUserImage 用户给单张卡片上传图片（data URL）
func (s *SessionService) SetUserImage(sessionID string, platform model.Platform, category model.CategoryKey, dataURL string) (*dto.SessionResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	loading := false
	source := model.ImageSourceUser
	s.applyCardUpdate(sess, "", platform, category, model.CardUpdate{
		ImageURL:     &dataURL,
		ImageLoading: &loading,
		ImageSource:  &source,
	})
	return s.snapshot(sess), nil
}

// RegenerateImage 重新生成单张卡片的配图
// promptOverride 非空时先覆盖卡片的 image_prompt 再生图；立即返回，生图异步完成
func (s *SessionService) RegenerateImage(sessionID string, platform model.Platform, category model.CategoryKey, promptOverride string) (*dto.SessionResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	idx := sess.results.Find(platform, category)
	if idx < 0 {
		sess.mu.Unlock()
		return s.snapshot(sess), nil
	}

	card := sess.results[platform][idx]
	prompt := card.ImagePrompt
	if promptOverride != "" {
		prompt = promptOverride
	}
	batchID := sess.batchID
	sess.mu.Unlock()

	loading := true
	source := model.ImageSourceAI
	update := model.CardUpdate{
		ImageLoading: &loading,
		ImageSource:  &source,
	}
	if promptOverride != "" {
		update.ImagePrompt = &promptOverride
	}
	s.applyCardUpdate(sess, batchID, platform, category, update)

	go s.generateCardImage(sess, batchID, cardRef{
		Platform: platform,
		Category: category,
		Prompt:   prompt,
	})

	return s.snapshot(sess), nil
}

// ==================== 文案润色 ====================

// 预设润色指令
var refinePresets = map[string]string{
	"shorten":      "Make it shorter and punchier while keeping the core message",
	"lengthen":     "Expand it with more detail and depth, keep the same voice",
	"punch_up":     "Make it more engaging, bold and attention-grabbing",
	"add_hashtags": "Add 3-5 relevant hashtags at the end, keep the text unchanged otherwise",
}

// ResolveRefineInstruction 把预设键或自定义指令解析为最终指令
func ResolveRefineInstruction(preset, custom string) (string, error) {
	if custom != "" {
		return custom, nil
	}
	if instruction, ok := refinePresets[preset]; ok {
		return instruction, nil
	}
	return "", fmt.Errorf("未知润色预设: %s", preset)
}

// RefineCard 润色单张卡片的正文
// 只改 text，图片与其他字段不动；服务返回空文本时原文保持不变。
// 批次号在发起时采样，润色期间若用户重新生成，结果会被静默丢弃。
func (s *SessionService) RefineCard(ctx context.Context, sessionID string, platform model.Platform, category model.CategoryKey, instruction string) (*dto.RefineResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	idx := sess.results.Find(platform, category)
	if idx < 0 {
		sess.mu.Unlock()
		return &dto.RefineResponse{Refined: false}, nil
	}
	text := sess.results[platform][idx].Text
	batchID := sess.batchID
	sess.mu.Unlock()

	refined, err := s.ai.RefineText(ctx, sess.ID, batchID, text, instruction)
	if err != nil {
		return nil, fmt.Errorf("润色失败: %v", err)
	}

	// 空结果静默放弃，保留原文
	if refined == "" {
		return &dto.RefineResponse{Refined: false}, nil
	}

	applied := s.applyCardUpdate(sess, batchID, platform, category, model.CardUpdate{Text: &refined})

	return &dto.RefineResponse{Refined: applied, Text: refined}, nil
}

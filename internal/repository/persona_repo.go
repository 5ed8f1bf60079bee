package repository

import (
	"context"

	"gorm.io/gorm"

	"viralyst_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// PersonaRepository 受众画像仓储接口
type PersonaRepository interface {
	Create(ctx context.Context, persona *model.Persona) error
	CreateBatch(ctx context.Context, personas []model.Persona) error
	GetByID(ctx context.Context, id int64) (*model.Persona, error)
	List(ctx context.Context) ([]model.Persona, error)
	ListByUpload(ctx context.Context, uploadID string) ([]model.Persona, error)
	DeleteByUpload(ctx context.Context, uploadID string) error
	ReplaceAll(ctx context.Context, personas []model.Persona) error
}

// ==================== 仓储实现 ====================

type personaRepo struct {
	db *gorm.DB
}

// NewPersonaRepository 创建受众画像仓储
func NewPersonaRepository(db *gorm.DB) PersonaRepository {
	return &personaRepo{db: db}
}

func (r *personaRepo) Create(ctx context.Context, persona *model.Persona) error {
	return r.db.WithContext(ctx).Create(persona).Error
}

func (r *personaRepo) CreateBatch(ctx context.Context, personas []model.Persona) error {
	if len(personas) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&personas).Error
}

func (r *personaRepo) GetByID(ctx context.Context, id int64) (*model.Persona, error) {
	var persona model.Persona
	if err := r.db.WithContext(ctx).First(&persona, id).Error; err != nil {
		return nil, err
	}
	return &persona, nil
}

func (r *personaRepo) List(ctx context.Context) ([]model.Persona, error) {
	var personas []model.Persona
	err := r.db.WithContext(ctx).Order("id ASC").Find(&personas).Error
	return personas, err
}

func (r *personaRepo) ListByUpload(ctx context.Context, uploadID string) ([]model.Persona, error) {
	var personas []model.Persona
	err := r.db.WithContext(ctx).Where("upload_id = ?", uploadID).Order("id ASC").Find(&personas).Error
	return personas, err
}

func (r *personaRepo) DeleteByUpload(ctx context.Context, uploadID string) error {
	return r.db.WithContext(ctx).Where("upload_id = ?", uploadID).Delete(&model.Persona{}).Error
}

// ReplaceAll 事务内用新一批画像整体替换旧数据
// 每次重新上传客户表都会生成全新的细分结果，旧画像直接作废
func (r *personaRepo) ReplaceAll(ctx context.Context, personas []model.Persona) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Persona{}).Error; err != nil {
			return err
		}
		if len(personas) == 0 {
			return nil
		}
		return tx.Create(&personas).Error
	})
}

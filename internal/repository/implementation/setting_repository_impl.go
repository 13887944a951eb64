package implementation

import (
	"context"
	"errors"

	"spinach-be/internal/entity"
	"spinach-be/internal/mapper"
	"spinach-be/internal/model"
	"spinach-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SettingMapper
}

func NewSettingRepository(db *gorm.DB) contract.SettingRepository {
	return &SettingRepositoryImpl{
		db:     db,
		mapper: mapper.NewSettingMapper(),
	}
}

func (r *SettingRepositoryImpl) Set(ctx context.Context, setting *entity.Setting) error {
	m := r.mapper.ToModel(setting)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*setting = *r.mapper.ToEntity(m)
	return nil
}

func (r *SettingRepositoryImpl) Get(ctx context.Context, key string) (*entity.Setting, error) {
	var m model.Setting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SettingRepositoryImpl) GetAll(ctx context.Context) ([]*entity.Setting, error) {
	var models []*model.Setting
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Setting, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *SettingRepositoryImpl) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("key = ?", key).Delete(&model.Setting{}).Error
}

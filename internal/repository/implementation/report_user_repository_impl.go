package implementation

import (
	"context"
	"errors"

	"spinach-be/internal/entity"
	"spinach-be/internal/mapper"
	"spinach-be/internal/model"
	"spinach-be/internal/repository/contract"
	"spinach-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportUserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReportMapper
}

func NewReportUserRepository(db *gorm.DB) contract.ReportUserRepository {
	return &ReportUserRepositoryImpl{
		db:     db,
		mapper: mapper.NewReportMapper(),
	}
}

func (r *ReportUserRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ReportUserRepositoryImpl) Create(ctx context.Context, user *entity.ReportUser) error {
	m := r.mapper.UserToModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*user = *r.mapper.UserToEntity(m)
	return nil
}

func (r *ReportUserRepositoryImpl) Update(ctx context.Context, user *entity.ReportUser) error {
	m := r.mapper.UserToModel(user)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*user = *r.mapper.UserToEntity(m)
	return nil
}

func (r *ReportUserRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ReportUser{}, id).Error
}

func (r *ReportUserRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ReportUser, error) {
	var m model.ReportUser
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UserToEntity(&m), nil
}

func (r *ReportUserRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReportUser, error) {
	var models []*model.ReportUser
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ReportUser, len(models))
	for i, m := range models {
		entities[i] = r.mapper.UserToEntity(m)
	}
	return entities, nil
}

func (r *ReportUserRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ReportUser{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

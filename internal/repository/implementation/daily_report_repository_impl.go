package implementation

import (
	"context"
	"errors"
	"time"

	"spinach-be/internal/entity"
	"spinach-be/internal/mapper"
	"spinach-be/internal/model"
	"spinach-be/internal/repository/contract"
	"spinach-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DailyReportRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReportMapper
}

func NewDailyReportRepository(db *gorm.DB) contract.DailyReportRepository {
	return &DailyReportRepositoryImpl{
		db:     db,
		mapper: mapper.NewReportMapper(),
	}
}

func (r *DailyReportRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Upsert relies on the (report_user_id, report_date) unique index: a second
// report for the same pair updates the stored conversation instead of
// inserting a duplicate. The entity is refreshed from the winning row so the
// caller sees the original id and created_at on the update path.
func (r *DailyReportRepositoryImpl) Upsert(ctx context.Context, report *entity.DailyReport) error {
	m := r.mapper.ReportToModel(report)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "report_user_id"}, {Name: "report_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"messages":   m.Messages,
			"summary":    m.Summary,
			"updated_at": time.Now(),
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}

	persisted, err := r.FindByUserAndDate(ctx, report.ReportUserId, report.ReportDate)
	if err != nil {
		return err
	}
	if persisted != nil {
		*report = *persisted
	}
	return nil
}

func (r *DailyReportRepositoryImpl) Update(ctx context.Context, report *entity.DailyReport) error {
	m := r.mapper.ReportToModel(report)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*report = *r.mapper.ReportToEntity(m)
	return nil
}

func (r *DailyReportRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.DailyReport{}, id).Error
}

func (r *DailyReportRepositoryImpl) FindByUserAndDate(ctx context.Context, userId uuid.UUID, date time.Time) (*entity.DailyReport, error) {
	var m model.DailyReport
	err := r.db.WithContext(ctx).
		Where("report_user_id = ?", userId).
		Where("report_date = ?", datatypes.Date(date)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ReportToEntity(&m), nil
}

func (r *DailyReportRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DailyReport, error) {
	var m model.DailyReport
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ReportToEntity(&m), nil
}

func (r *DailyReportRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DailyReport, error) {
	var models []*model.DailyReport
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.DailyReport, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ReportToEntity(m)
	}
	return entities, nil
}

func (r *DailyReportRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.DailyReport{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

package contract

import (
	"context"
	"time"

	"spinach-be/internal/entity"
	"spinach-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DailyReportRepository interface {
	// Upsert creates the report, or updates it in place when a report for the
	// same (user, date) pair already exists. The entity is refreshed with the
	// persisted row either way.
	Upsert(ctx context.Context, report *entity.DailyReport) error
	Update(ctx context.Context, report *entity.DailyReport) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByUserAndDate(ctx context.Context, userId uuid.UUID, date time.Time) (*entity.DailyReport, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DailyReport, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DailyReport, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

package contract

import (
	"context"

	"spinach-be/internal/entity"
	"spinach-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ReportUserRepository interface {
	Create(ctx context.Context, user *entity.ReportUser) error
	Update(ctx context.Context, user *entity.ReportUser) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ReportUser, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReportUser, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

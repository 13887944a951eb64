package contract

import (
	"context"

	"spinach-be/internal/entity"
)

type SettingRepository interface {
	// Set writes the key, inserting or overwriting.
	Set(ctx context.Context, setting *entity.Setting) error
	Get(ctx context.Context, key string) (*entity.Setting, error)
	GetAll(ctx context.Context) ([]*entity.Setting, error)
	Delete(ctx context.Context, key string) error
}

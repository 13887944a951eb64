package unitofwork

import (
	"context"

	"spinach-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
	ReportUserRepository() contract.ReportUserRepository
	DailyReportRepository() contract.DailyReportRepository
	SettingRepository() contract.SettingRepository
}

package service

import (
	"context"
	"testing"

	"spinach-be/internal/dto"
	"spinach-be/internal/model"
	"spinach-be/internal/repository/unitofwork"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newReportService(t *testing.T, provider *stubLLM) IReportService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.ReportUser{},
		&model.DailyReport{},
	))

	return NewReportService(unitofwork.NewRepositoryFactory(db), provider, nopLogger{})
}

func TestUpsertReportReplacesSameDay(t *testing.T) {
	svc := newReportService(t, &stubLLM{})
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, &dto.CreateReportUserRequest{Name: "田中", Department: "開発部"})
	require.NoError(t, err)

	first, err := svc.UpsertReport(ctx, &dto.UpsertReportRequest{
		ReportUserId: user.Id,
		ReportDate:   "2026-08-28",
		Messages:     []dto.ReportMessageDTO{{Role: "user", Content: "本日の業務"}},
	})
	require.NoError(t, err)

	second, err := svc.UpsertReport(ctx, &dto.UpsertReportRequest{
		ReportUserId: user.Id,
		ReportDate:   "2026-08-28",
		Messages: []dto.ReportMessageDTO{
			{Role: "user", Content: "本日の業務"},
			{Role: "assistant", Content: "記録しました"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
	assert.Len(t, second.Messages, 2)

	userId := user.Id
	reports, err := svc.ListReports(ctx, ReportFilter{ReportUserId: &userId})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "2026-08-28", reports[0].ReportDate)
}

func TestUpsertReportValidations(t *testing.T) {
	svc := newReportService(t, &stubLLM{})
	ctx := context.Background()

	_, err := svc.UpsertReport(ctx, &dto.UpsertReportRequest{
		ReportUserId: uuid.New(),
		ReportDate:   "not-a-date",
		Messages:     []dto.ReportMessageDTO{{Role: "user", Content: "x"}},
	})
	require.Error(t, err)

	// Unknown user
	_, err = svc.UpsertReport(ctx, &dto.UpsertReportRequest{
		ReportUserId: uuid.New(),
		ReportDate:   "2026-08-28",
		Messages:     []dto.ReportMessageDTO{{Role: "user", Content: "x"}},
	})
	require.Error(t, err)
}

func TestExtractSummaryStoresParsedFields(t *testing.T) {
	stub := &stubLLM{reply: "承知しました。\n```json\n{\"業務内容\": \"API実装\", \"成果\": \"完了\", \"課題\": \"\", \"明日の予定\": \"レビュー\"}\n```"}
	svc := newReportService(t, stub)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, &dto.CreateReportUserRequest{Name: "佐藤"})
	require.NoError(t, err)

	report, err := svc.UpsertReport(ctx, &dto.UpsertReportRequest{
		ReportUserId: user.Id,
		ReportDate:   "2026-08-28",
		Messages:     []dto.ReportMessageDTO{{Role: "user", Content: "今日はAPIを実装しました"}},
	})
	require.NoError(t, err)

	summarized, err := svc.ExtractSummary(ctx, report.Id)
	require.NoError(t, err)
	assert.Equal(t, "API実装", summarized.Summary["業務内容"])
	assert.Equal(t, "レビュー", summarized.Summary["明日の予定"])

	// The extraction prompt is the final turn sent upstream.
	require.NotEmpty(t, stub.lastHistory)
	last := stub.lastHistory[len(stub.lastHistory)-1]
	assert.Contains(t, last.Content, "日報の要約")

	// Summary survives a reload.
	reloaded, err := svc.GetReport(ctx, report.Id)
	require.NoError(t, err)
	assert.Equal(t, "API実装", reloaded.Summary["業務内容"])
}

func TestExtractSummaryWithoutJSONBlock(t *testing.T) {
	svc := newReportService(t, &stubLLM{reply: "すみません、要約できませんでした。"})
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, &dto.CreateReportUserRequest{Name: "鈴木"})
	require.NoError(t, err)

	report, err := svc.UpsertReport(ctx, &dto.UpsertReportRequest{
		ReportUserId: user.Id,
		ReportDate:   "2026-08-28",
		Messages:     []dto.ReportMessageDTO{{Role: "user", Content: "x"}},
	})
	require.NoError(t, err)

	_, err = svc.ExtractSummary(ctx, report.Id)
	require.Error(t, err)
}

func TestReportUserUpdateAndDelete(t *testing.T) {
	svc := newReportService(t, &stubLLM{})
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, &dto.CreateReportUserRequest{Name: "高橋", Department: "営業部"})
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, &dto.UpdateReportUserRequest{
		Id:         user.Id,
		Name:       "高橋（異動）",
		Department: "企画部",
	})
	require.NoError(t, err)
	assert.Equal(t, "企画部", updated.Department)

	require.NoError(t, svc.DeleteUser(ctx, user.Id))

	users, err := svc.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

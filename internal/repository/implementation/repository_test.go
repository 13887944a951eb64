package implementation

import (
	"context"
	"testing"
	"time"

	"spinach-be/internal/entity"
	"spinach-be/internal/model"
	"spinach-be/internal/repository/specification"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.ReportUser{},
		&model.DailyReport{},
		&model.Setting{},
	))

	return db
}

func TestChatSessionLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	sessions := NewChatSessionRepository(db)
	messages := NewChatMessageRepository(db)

	sess := &entity.ChatSession{
		Id:        uuid.New(),
		Title:     "New Chat",
		CreatedAt: time.Now(),
	}
	require.NoError(t, sessions.Create(ctx, sess))

	for i, content := range []string{"hello", "hi there"} {
		require.NoError(t, messages.Create(ctx, &entity.ChatMessage{
			Id:            uuid.New(),
			ChatSessionId: sess.Id,
			Role:          "user",
			Content:       content,
			CreatedAt:     time.Now().Add(time.Duration(i) * time.Millisecond),
		}))
	}

	// Rename
	sess.Title = "Renamed"
	require.NoError(t, sessions.Update(ctx, sess))

	found, err := sessions.FindOne(ctx, specification.ByID{ID: sess.Id})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Renamed", found.Title)

	history, err := messages.FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sess.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[0].Content)

	// Delete removes messages and takes the session out of listings
	require.NoError(t, messages.DeleteBySessionId(ctx, sess.Id))
	require.NoError(t, sessions.Delete(ctx, sess.Id))

	gone, err := sessions.FindOne(ctx, specification.ByID{ID: sess.Id})
	require.NoError(t, err)
	assert.Nil(t, gone)

	remaining, err := messages.FindAll(ctx, specification.ByChatSessionID{ChatSessionID: sess.Id})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDailyReportUpsertSameUserAndDate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewReportUserRepository(db)
	reports := NewDailyReportRepository(db)

	user := &entity.ReportUser{Id: uuid.New(), Name: "田中", CreatedAt: time.Now()}
	require.NoError(t, users.Create(ctx, user))

	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	first := &entity.DailyReport{
		Id:           uuid.New(),
		ReportUserId: user.Id,
		ReportDate:   date,
		Messages:     []entity.ReportMessage{{Role: "user", Content: "本日の業務です"}},
		CreatedAt:    time.Now(),
	}
	require.NoError(t, reports.Upsert(ctx, first))

	// Second submit for the same (user, date) must update, not duplicate.
	second := &entity.DailyReport{
		Id:           uuid.New(),
		ReportUserId: user.Id,
		ReportDate:   date,
		Messages: []entity.ReportMessage{
			{Role: "user", Content: "本日の業務です"},
			{Role: "assistant", Content: "お疲れ様です"},
		},
		CreatedAt: time.Now(),
	}
	require.NoError(t, reports.Upsert(ctx, second))

	count, err := reports.Count(ctx, specification.ByReportUserID{ReportUserID: user.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// The winning row keeps the original id but carries the new messages.
	assert.Equal(t, first.Id, second.Id)
	require.Len(t, second.Messages, 2)

	// A different date is a separate report.
	other := &entity.DailyReport{
		Id:           uuid.New(),
		ReportUserId: user.Id,
		ReportDate:   date.AddDate(0, 0, 1),
		Messages:     []entity.ReportMessage{{Role: "user", Content: "翌日の業務です"}},
		CreatedAt:    time.Now(),
	}
	require.NoError(t, reports.Upsert(ctx, other))

	count, err = reports.Count(ctx, specification.ByReportUserID{ReportUserID: user.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestDailyReportSummaryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewReportUserRepository(db)
	reports := NewDailyReportRepository(db)

	user := &entity.ReportUser{Id: uuid.New(), Name: "佐藤", CreatedAt: time.Now()}
	require.NoError(t, users.Create(ctx, user))

	report := &entity.DailyReport{
		Id:           uuid.New(),
		ReportUserId: user.Id,
		ReportDate:   time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Messages:     []entity.ReportMessage{{Role: "user", Content: "資料を作成しました"}},
		CreatedAt:    time.Now(),
	}
	require.NoError(t, reports.Upsert(ctx, report))

	report.Summary = map[string]string{"業務内容": "資料作成", "成果": "完了"}
	require.NoError(t, reports.Update(ctx, report))

	found, err := reports.FindOne(ctx, specification.ByID{ID: report.Id})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "資料作成", found.Summary["業務内容"])
	require.Len(t, found.Messages, 1)
}

func TestSettingSetOverwrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	settings := NewSettingRepository(db)

	require.NoError(t, settings.Set(ctx, &entity.Setting{Key: "llm.model", Value: "model-a"}))
	require.NoError(t, settings.Set(ctx, &entity.Setting{Key: "llm.model", Value: "model-b"}))
	require.NoError(t, settings.Set(ctx, &entity.Setting{Key: "rag.top_k", Value: "5"}))

	got, err := settings.Get(ctx, "llm.model")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "model-b", got.Value)

	all, err := settings.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, settings.Delete(ctx, "rag.top_k"))
	missing, err := settings.Get(ctx, "rag.top_k")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReportUserSoftDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewReportUserRepository(db)

	user := &entity.ReportUser{Id: uuid.New(), Name: "鈴木", Department: "営業部", CreatedAt: time.Now()}
	require.NoError(t, users.Create(ctx, user))
	require.NoError(t, users.Delete(ctx, user.Id))

	found, err := users.FindOne(ctx, specification.ByID{ID: user.Id})
	require.NoError(t, err)
	assert.Nil(t, found)

	all, err := users.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

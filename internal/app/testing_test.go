package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studybuddy/internal/model"
	"studybuddy/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// In-memory sqlite vanishes per connection; keep a single one.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.ChatSession{},
		&model.FlashcardSet{},
		&model.Flashcard{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, plan string) *model.User {
	t.Helper()

	user := &model.User{
		Email:        email,
		PasswordHash: "x",
		Plan:         plan,
		Role:         model.RoleUser,
		DailyQuota:   5,
	}
	require.NoError(t, repository.NewUserRepository(db).Create(user))
	return user
}

type stubGenerator struct {
	raw string
	err error
}

func (g stubGenerator) GenerateCards(_ context.Context, _ string) (string, error) {
	return g.raw, g.err
}

type recordingPublisher struct {
	updates []model.ResponseUpdate
}

func (p *recordingPublisher) Publish(_ context.Context, update model.ResponseUpdate) error {
	p.updates = append(p.updates, update)
	return nil
}

type memoryStatsCache struct {
	total int64
	set   bool
}

func (c *memoryStatsCache) GetTotalUsers(_ context.Context) (int64, bool, error) {
	return c.total, c.set, nil
}

func (c *memoryStatsCache) SetTotalUsers(_ context.Context, total int64) error {
	c.total = total
	c.set = true
	return nil
}

package merge

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/victorydiv/fojournapp-sub002/internal/model"
	"github.com/victorydiv/fojournapp-sub002/pkg/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// stubSettings is a fixed-value settings provider for tests
type stubSettings struct {
	expiryDays  int
	coolingDays int
}

func (s stubSettings) InvitationExpiryDays() int     { return s.expiryDays }
func (s stubSettings) UnmergeCoolingPeriodDays() int { return s.coolingDays }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every session on the same in-memory
	// database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedAccount(t *testing.T, db *gorm.DB, username, firstName string) *model.Account {
	t.Helper()

	account := &model.Account{
		Username:       username,
		Email:          username + "@example.com",
		FirstName:      firstName,
		PublicUsername: username,
		ProfilePublic:  true,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func reloadAccount(t *testing.T, db *gorm.DB, id uint) *model.Account {
	t.Helper()

	var account model.Account
	require.NoError(t, db.First(&account, id).Error)
	return &account
}

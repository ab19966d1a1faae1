package profile

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/victorydiv/fojournapp-sub002/internal/merge"
	"github.com/victorydiv/fojournapp-sub002/internal/model"
	"github.com/victorydiv/fojournapp-sub002/pkg/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedAccount(t *testing.T, db *gorm.DB, username, firstName, bio string) *model.Account {
	t.Helper()

	account := &model.Account{
		Username:       username,
		Email:          username + "@example.com",
		FirstName:      firstName,
		PublicUsername: username,
		Bio:            bio,
		AvatarURL:      "https://cdn.example.com/" + username + ".jpg",
		HeroImageURL:   "https://cdn.example.com/" + username + "-hero.jpg",
		ProfilePublic:  true,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func seedEntries(t *testing.T, db *gorm.DB, accountID uint, public, photos, videos int) {
	t.Helper()

	for i := 0; i < public; i++ {
		entry := model.TravelEntry{
			AccountID:  accountID,
			Title:      "trip",
			IsPublic:   true,
			PhotoCount: photos,
			VideoCount: videos,
		}
		require.NoError(t, db.Create(&entry).Error)
	}
	// One private entry that must never count
	require.NoError(t, db.Create(&model.TravelEntry{
		AccountID: accountID,
		Title:     "draft",
		IsPublic:  false,
	}).Error)
}

// mergeAccounts runs the full invitation round between two accounts
func mergeAccounts(t *testing.T, db *gorm.DB, a, b *model.Account) *model.Merge {
	t.Helper()

	im := merge.NewInvitationManager(stubSettings{expiryDays: 7})
	inv, err := im.Send(db, a.ID, b.Username, "")
	require.NoError(t, err)
	m, err := im.Accept(db, inv.ID, b.ID)
	require.NoError(t, err)
	return m
}

func unmergeAccounts(t *testing.T, db *gorm.DB, requesterID uint, reason string) {
	t.Helper()

	uc := merge.NewUnmergeCoordinator(stubSettings{})
	_, err := uc.Execute(db, requesterID, reason)
	require.NoError(t, err)
}

package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/victorydiv/fojournapp-sub002/internal/merge"
	"github.com/victorydiv/fojournapp-sub002/internal/model"
)

func TestGetDisplaySettingsDefaults(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "john", "John", "")
	b := seedAccount(t, db, "maria", "Maria", "")
	mergeAccounts(t, db, a, b)

	display, err := GetDisplaySettings(db, a.ID)
	require.NoError(t, err)

	assert.Equal(t, model.DisplayUser1, display.AvatarDisplay)
	assert.Equal(t, model.DisplayUser1, display.HeroImageDisplay)
	assert.Equal(t, model.DisplayCombine, display.BioDisplay)
}

func TestGetDisplaySettingsNotMerged(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "john", "John", "")

	_, err := GetDisplaySettings(db, a.ID)
	assert.ErrorIs(t, err, merge.ErrNotMerged)
}

func TestUpdateDisplaySettings(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "john", "John", "bio one")
	b := seedAccount(t, db, "maria", "Maria", "bio two")
	m := mergeAccounts(t, db, a, b)

	updated, err := UpdateDisplaySettings(db, b.ID, model.ProfileDisplaySettings{
		AvatarDisplay:    model.DisplayUser2,
		HeroImageDisplay: model.DisplayUser2,
		BioDisplay:       model.DisplayUser2,
	})
	require.NoError(t, err)
	assert.Equal(t, model.DisplayUser2, updated.AvatarDisplay)

	// The persisted document reflects the change and keeps its version
	var stored model.Merge
	require.NoError(t, db.First(&stored, m.ID).Error)
	assert.Equal(t, model.DisplayUser2, stored.Settings.ProfileDisplay.BioDisplay)
	assert.Equal(t, model.MergeSettingsVersion, stored.Settings.Version)

	// The merged profile now renders user2's assets and bio
	res, err := Resolve(db, m.Slug)
	require.NoError(t, err)
	require.Equal(t, TypeMerged, res.Type)
	assert.Equal(t, "bio two", res.Merged.Bio)
	assert.Contains(t, res.Merged.AvatarURL, "maria")
}

func TestUpdateDisplaySettingsRejectsUnknownValues(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "john", "John", "")
	b := seedAccount(t, db, "maria", "Maria", "")
	mergeAccounts(t, db, a, b)

	_, err := UpdateDisplaySettings(db, a.ID, model.ProfileDisplaySettings{
		AvatarDisplay:    "user3",
		HeroImageDisplay: model.DisplayUser1,
		BioDisplay:       model.DisplayCombine,
	})
	assert.ErrorIs(t, err, merge.ErrInvalidSetting)
}

func TestUpdateDisplaySettingsNotMerged(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "john", "John", "")

	_, err := UpdateDisplaySettings(db, a.ID, model.ProfileDisplaySettings{
		AvatarDisplay:    model.DisplayUser1,
		HeroImageDisplay: model.DisplayUser1,
		BioDisplay:       model.DisplayCombine,
	})
	assert.ErrorIs(t, err, merge.ErrNotMerged)
}

package profile

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/victorydiv/fojournapp-sub002/internal/merge"
	"github.com/victorydiv/fojournapp-sub002/internal/model"
)

func TestResolveIndividual(t *testing.T) {
	db := newTestDB(t)
	account := seedAccount(t, db, "john", "John", "wanderer")
	seedEntries(t, db, account.ID, 3, 2, 1)

	res, err := Resolve(db, "john")
	require.NoError(t, err)

	assert.Equal(t, TypeIndividual, res.Type)
	require.NotNil(t, res.Individual)
	assert.Equal(t, "John", res.Individual.DisplayName)
	assert.Equal(t, "wanderer", res.Individual.Bio)
	assert.Equal(t, int64(3), res.Individual.Stats.PublicEntries)
	assert.Equal(t, int64(6), res.Individual.Stats.Photos)
	assert.Equal(t, int64(3), res.Individual.Stats.Videos)
}

func TestResolveUnknownKey(t *testing.T) {
	db := newTestDB(t)

	_, err := Resolve(db, "ghost")
	assert.ErrorIs(t, err, merge.ErrNotFound)
}

func TestResolveMergedSlug(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "john", "John", "likes mountains")
	b := seedAccount(t, db, "maria", "Maria", "likes oceans")
	seedEntries(t, db, a.ID, 2, 1, 0)
	seedEntries(t, db, b.ID, 3, 2, 1)

	m := mergeAccounts(t, db, a, b)

	res, err := Resolve(db, m.Slug)
	require.NoError(t, err)

	assert.Equal(t, TypeMerged, res.Type)
	require.NotNil(t, res.Merged)
	assert.Equal(t, m.Slug, res.Merged.Slug)
	assert.Equal(t, "John & Maria", res.Merged.DisplayName)
	assert.Equal(t, "likes mountains\n\nlikes oceans", res.Merged.Bio)
	require.Len(t, res.Merged.Members, 2)

	// Aggregate stats span both accounts' public content
	assert.Equal(t, int64(5), res.Merged.Stats.PublicEntries)
	assert.Equal(t, int64(8), res.Merged.Stats.Photos)
	assert.Equal(t, int64(3), res.Merged.Stats.Videos)
}

func TestResolveMergedUsernameRedirects(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "john", "John", "")
	b := seedAccount(t, db, "maria", "Maria", "")

	m := mergeAccounts(t, db, a, b)

	// A currently-merged individual username is never a terminal resource
	for _, key := range []string{"john", "maria"} {
		res, err := Resolve(db, key)
		require.NoError(t, err)
		assert.Equal(t, TypeRedirectToMerge, res.Type)
		assert.Equal(t, m.Slug, res.MergeSlug)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "john", "John", "bio")
	b := seedAccount(t, db, "maria", "Maria", "")
	m := mergeAccounts(t, db, a, b)

	first, err := Resolve(db, m.Slug)
	require.NoError(t, err)
	second, err := Resolve(db, m.Slug)
	require.NoError(t, err)

	assert.True(t, reflect.DeepEqual(first, second))
}

func TestResolveAfterUnmerge(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "john", "John", "")
	b := seedAccount(t, db, "maria", "Maria", "")

	m := mergeAccounts(t, db, a, b)
	unmergeAccounts(t, db, a.ID, "test")

	// The old slug now names the choice page
	res, err := Resolve(db, m.Slug)
	require.NoError(t, err)
	assert.Equal(t, TypeUnmergedChoice, res.Type)
	require.Len(t, res.Choice, 2)
	usernames := []string{res.Choice[0].Username, res.Choice[1].Username}
	assert.ElementsMatch(t, []string{"john", "maria"}, usernames)

	// Original usernames are individual profiles again, not stale redirects
	for _, key := range []string{"john", "maria"} {
		res, err := Resolve(db, key)
		require.NoError(t, err)
		assert.Equal(t, TypeIndividual, res.Type)
	}
}

func TestChoicePageMarksPrivateProfiles(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "john", "John", "")
	b := seedAccount(t, db, "maria", "Maria", "")

	m := mergeAccounts(t, db, a, b)
	unmergeAccounts(t, db, b.ID, "")

	// Maria went private after the unmerge
	require.NoError(t, db.Model(&model.Account{}).
		Where("id = ?", b.ID).
		Update("profile_public", false).Error)

	res, err := Resolve(db, m.Slug)
	require.NoError(t, err)
	require.Equal(t, TypeUnmergedChoice, res.Type)

	available := map[string]bool{}
	for _, card := range res.Choice {
		available[card.Username] = card.Available
	}
	assert.True(t, available["john"])
	assert.False(t, available["maria"])
}

func TestMergeLifecycleScenario(t *testing.T) {
	db := newTestDB(t)
	a := seedAccount(t, db, "john", "John", "")
	b := seedAccount(t, db, "maria", "Maria", "")

	// A invites B, B accepts
	m := mergeAccounts(t, db, a, b)

	res, err := Resolve(db, m.Slug)
	require.NoError(t, err)
	require.Equal(t, TypeMerged, res.Type)
	require.Len(t, res.Merged.Members, 2)

	// A unmerges with a reason
	unmergeAccounts(t, db, a.ID, "test")

	res, err = Resolve(db, m.Slug)
	require.NoError(t, err)
	assert.Equal(t, TypeUnmergedChoice, res.Type)

	res, err = Resolve(db, a.Username)
	require.NoError(t, err)
	assert.Equal(t, TypeIndividual, res.Type)
}

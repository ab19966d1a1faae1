package profile

import (
	"errors"
	"strings"

	"github.com/victorydiv/fojournapp-sub002/internal/merge"
	"github.com/victorydiv/fojournapp-sub002/internal/model"
	"gorm.io/gorm"
)

// Resolution types returned by Resolve
const (
	TypeMerged          = "merged"
	TypeUnmergedChoice  = "unmerged_choice"
	TypeIndividual      = "individual"
	TypeRedirectToMerge = "redirect_to_merge"
)

// Stats aggregates the public content of one or two accounts
type Stats struct {
	PublicEntries int64 `json:"public_entries"`
	Photos        int64 `json:"photos"`
	Videos        int64 `json:"videos"`
}

// MergedProfile is the joint public identity rendered at an active merge
// slug
type MergedProfile struct {
	Slug         string       `json:"slug"`
	DisplayName  string       `json:"display_name"`
	Bio          string       `json:"bio"`
	AvatarURL    string       `json:"avatar_url,omitempty"`
	HeroImageURL string       `json:"hero_image_url,omitempty"`
	MergedAt     string       `json:"merged_at"`
	Members      []MemberCard `json:"members"`
	Stats        Stats        `json:"stats"`
}

// MemberCard is one account's public summary within a merged or choice view
type MemberCard struct {
	Username       string `json:"username"`
	PublicUsername string `json:"public_username"`
	DisplayName    string `json:"display_name"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	Available      bool   `json:"available"`
}

// IndividualProfile is the ordinary single-account public profile
type IndividualProfile struct {
	Username       string `json:"username"`
	PublicUsername string `json:"public_username"`
	DisplayName    string `json:"display_name"`
	Bio            string `json:"bio,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
	HeroImageURL   string `json:"hero_image_url,omitempty"`
	Stats          Stats  `json:"stats"`
}

// Resolution is the outcome of resolving a public path segment. Exactly one
// of the payload fields is set, matching Type.
type Resolution struct {
	Type       string             `json:"type"`
	Merged     *MergedProfile     `json:"merged,omitempty"`
	Choice     []MemberCard       `json:"accounts,omitempty"`
	Individual *IndividualProfile `json:"individual,omitempty"`
	MergeSlug  string             `json:"merge_slug,omitempty"`
}

// Resolve determines what a public path segment names. Resolution order:
// residual redirect slug (live merge or choice page), then a
// currently-merged account's username (redirect, never terminal), then an
// individual profile. Pure reads; resolving the same key twice without an
// intervening state change yields the same resolution.
func Resolve(db *gorm.DB, key string) (*Resolution, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, merge.ErrNotFound
	}

	var redirect model.MergeURLRedirect
	err := db.Where("merge_slug = ?", key).First(&redirect).Error
	if err == nil {
		return resolveRedirect(db, &redirect)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var account model.Account
	err = db.Where("username = ? OR public_username = ?", key, key).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, merge.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if account.IsMerged && account.MergeID != nil {
		var m model.Merge
		if err := db.First(&m, *account.MergeID).Error; err == nil {
			return &Resolution{Type: TypeRedirectToMerge, MergeSlug: m.Slug}, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// Fall through: a dangling merge id renders as individual
		// rather than a dead redirect.
	}

	individual, err := buildIndividualProfile(db, &account)
	if err != nil {
		return nil, err
	}
	return &Resolution{Type: TypeIndividual, Individual: individual}, nil
}

func resolveRedirect(db *gorm.DB, redirect *model.MergeURLRedirect) (*Resolution, error) {
	var m model.Merge
	err := db.First(&m, redirect.MergeID).Error
	if err == nil {
		merged, buildErr := buildMergedProfile(db, &m)
		if buildErr != nil {
			return nil, buildErr
		}
		return &Resolution{Type: TypeMerged, Merged: merged}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// The merge is gone but the redirect remembers the pair: render the
	// choice page.
	cards, err := buildChoiceCards(db, redirect.User1ID, redirect.User2ID)
	if err != nil {
		return nil, err
	}
	return &Resolution{Type: TypeUnmergedChoice, Choice: cards}, nil
}

func buildMergedProfile(db *gorm.DB, m *model.Merge) (*MergedProfile, error) {
	var user1, user2 model.Account
	if err := db.First(&user1, m.User1ID).Error; err != nil {
		return nil, err
	}
	if err := db.First(&user2, m.User2ID).Error; err != nil {
		return nil, err
	}

	stats, err := aggregateStats(db, m.User1ID, m.User2ID)
	if err != nil {
		return nil, err
	}

	display := m.Settings.ProfileDisplay
	return &MergedProfile{
		Slug:         m.Slug,
		DisplayName:  user1.DisplayName() + " & " + user2.DisplayName(),
		Bio:          combineBios(&user1, &user2, display.BioDisplay),
		AvatarURL:    pickAsset(user1.AvatarURL, user2.AvatarURL, display.AvatarDisplay),
		HeroImageURL: pickAsset(user1.HeroImageURL, user2.HeroImageURL, display.HeroImageDisplay),
		MergedAt:     m.MergedAt.UTC().Format("2006-01-02"),
		Members: []MemberCard{
			memberCard(&user1),
			memberCard(&user2),
		},
		Stats: stats,
	}, nil
}

func buildChoiceCards(db *gorm.DB, user1ID, user2ID uint) ([]MemberCard, error) {
	cards := make([]MemberCard, 0, 2)
	for _, id := range []uint{user1ID, user2ID} {
		var account model.Account
		if err := db.First(&account, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		cards = append(cards, memberCard(&account))
	}
	return cards, nil
}

func buildIndividualProfile(db *gorm.DB, account *model.Account) (*IndividualProfile, error) {
	stats, err := aggregateStats(db, account.ID)
	if err != nil {
		return nil, err
	}
	return &IndividualProfile{
		Username:       account.Username,
		PublicUsername: account.PublicUsername,
		DisplayName:    account.DisplayName(),
		Bio:            account.Bio,
		AvatarURL:      account.AvatarURL,
		HeroImageURL:   account.HeroImageURL,
		Stats:          stats,
	}, nil
}

func memberCard(account *model.Account) MemberCard {
	return MemberCard{
		Username:       account.Username,
		PublicUsername: account.PublicUsername,
		DisplayName:    account.DisplayName(),
		AvatarURL:      account.AvatarURL,
		Available:      account.ProfilePublic,
	}
}

func aggregateStats(db *gorm.DB, accountIDs ...uint) (Stats, error) {
	var stats Stats
	err := db.Model(&model.TravelEntry{}).
		Select("COUNT(*) AS public_entries, COALESCE(SUM(photo_count), 0) AS photos, COALESCE(SUM(video_count), 0) AS videos").
		Where("account_id IN ? AND is_public = ?", accountIDs, true).
		Scan(&stats).Error
	return stats, err
}

func combineBios(user1, user2 *model.Account, strategy string) string {
	switch strategy {
	case model.DisplayUser1:
		return user1.Bio
	case model.DisplayUser2:
		return user2.Bio
	default:
		parts := make([]string, 0, 2)
		if user1.Bio != "" {
			parts = append(parts, user1.Bio)
		}
		if user2.Bio != "" {
			parts = append(parts, user2.Bio)
		}
		return strings.Join(parts, "\n\n")
	}
}

func pickAsset(user1Asset, user2Asset, strategy string) string {
	if strategy == model.DisplayUser2 {
		if user2Asset != "" {
			return user2Asset
		}
		return user1Asset
	}
	if user1Asset != "" {
		return user1Asset
	}
	return user2Asset
}

package merge

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/victorydiv/fojournapp-sub002/internal/model"
	"gorm.io/gorm"
)

const (
	// slugSuffix is appended to every merge slug
	slugSuffix = "-travels"

	// maxBaseSlugLen bounds the base candidate before any collision
	// suffix is appended
	maxBaseSlugLen = 80

	// maxSlugProbes bounds the collision probe loop
	maxSlugProbes = 1000
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9-]`)

// BaseSlug derives the base slug candidate for two display names: lowercase,
// lexicographic order, joined with the travels suffix, stripped to
// [a-z0-9-], and truncated.
func BaseSlug(name1, name2 string) string {
	a := strings.ToLower(name1)
	b := strings.ToLower(name2)
	if b < a {
		a, b = b, a
	}

	slug := slugInvalidChars.ReplaceAllString(a+"-"+b+slugSuffix, "")
	if len(slug) > maxBaseSlugLen {
		slug = slug[:maxBaseSlugLen]
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = strings.TrimPrefix(slugSuffix, "-")
	}

	return slug
}

// GenerateSlug returns a globally unique slug for the two accounts. The base
// candidate is probed against live merges and residual redirects; if taken,
// numeric suffixes are appended until a free slug is found. Residual
// redirect slugs must be avoided too: a reused slug would route new visitors
// to a dissolved pair's choice page.
func GenerateSlug(tx *gorm.DB, a, b *model.Account) (string, error) {
	base := BaseSlug(a.DisplayName(), b.DisplayName())

	slug := base
	for i := 2; i <= maxSlugProbes; i++ {
		taken, err := slugTaken(tx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}

	return "", fmt.Errorf("no free slug found for %q after %d probes", base, maxSlugProbes)
}

func slugTaken(tx *gorm.DB, slug string) (bool, error) {
	var count int64
	if err := tx.Model(&model.Merge{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	if err := tx.Model(&model.MergeURLRedirect{}).Where("merge_slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

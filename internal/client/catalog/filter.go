package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/client/models"
)

// CabinetRange buckets venues by cabinet count.
type CabinetRange string

const (
	CabinetsAll    CabinetRange = ""
	CabinetsFew    CabinetRange = "few"    // 1-3
	CabinetsMedium CabinetRange = "medium" // 4-6
	CabinetsMany   CabinetRange = "many"   // 7+
)

func ParseCabinetRange(s string) (CabinetRange, error) {
	switch r := CabinetRange(strings.ToLower(strings.TrimSpace(s))); r {
	case CabinetsAll, CabinetsFew, CabinetsMedium, CabinetsMany:
		return r, nil
	case "all":
		return CabinetsAll, nil
	default:
		return "", fmt.Errorf("unknown cabinet range %q (few, medium, many)", s)
	}
}

func (r CabinetRange) contains(n int) bool {
	switch r {
	case CabinetsFew:
		return n >= 1 && n <= 3
	case CabinetsMedium:
		return n >= 4 && n <= 6
	case CabinetsMany:
		return n >= 7
	default:
		return true
	}
}

// SortKey orders filter results.
type SortKey string

const (
	// SortRelevance orders by keyword match score; it is the default and
	// falls back to name order without a keyword.
	SortRelevance SortKey = ""
	SortName      SortKey = "name"
	SortCabinets  SortKey = "cabinets"
	SortUpdated   SortKey = "updated"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortRelevance, SortName, SortCabinets, SortUpdated:
		return k, nil
	case "relevance":
		return SortRelevance, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (name, cabinets, updated, relevance)", s)
	}
}

// Filter selects venues from the catalogue. Zero values match everything.
type Filter struct {
	Keyword       string
	Versions      []string
	Facilities    []string
	Cabinets      CabinetRange
	OpenNow       bool
	FavoritesOnly bool
	SortBy        SortKey
}

// Apply returns the venues matching f, sorted by f.SortBy. favorites is the
// user's favorite set and now is the time OpenNow is judged at. The input
// slice is not modified.
func Apply(venues []models.Venue, f Filter, favorites []string, now time.Time) []models.Venue {
	keyword := strings.ToLower(strings.TrimSpace(f.Keyword))

	type scored struct {
		v     models.Venue
		score int
	}
	var out []scored

	for _, v := range venues {
		if len(f.Versions) > 0 && !anyIn(v.Versions, f.Versions) {
			continue
		}
		if len(f.Facilities) > 0 && !anyIn(v.Facilities, f.Facilities) {
			continue
		}
		if !f.Cabinets.contains(v.Cabinets) {
			continue
		}
		if f.OpenNow && !v.OpenAt(now) {
			continue
		}
		if f.FavoritesOnly && !slices.Contains(favorites, v.ID) {
			continue
		}
		score := MatchScore(v, keyword)
		if score == 0 {
			continue
		}
		out = append(out, scored{v: v, score: score})
	}

	slices.SortStableFunc(out, func(a, b scored) int {
		switch f.SortBy {
		case SortName:
			return strings.Compare(a.v.Name, b.v.Name)
		case SortCabinets:
			return cmp.Compare(b.v.Cabinets, a.v.Cabinets)
		case SortUpdated:
			return b.v.UpdatedAt.Compare(a.v.UpdatedAt)
		default:
			if c := cmp.Compare(b.score, a.score); c != 0 {
				return c
			}
			return strings.Compare(a.v.Name, b.v.Name)
		}
	})

	result := make([]models.Venue, len(out))
	for i, s := range out {
		result[i] = s.v
	}
	return result
}

// MatchScore rates how well v matches keyword, case-insensitively. A name
// match scores 100 at the start of the name and 80 elsewhere; address,
// version and facility matches add 60, 40 and 30. An empty keyword scores 1
// so that everything matches.
func MatchScore(v models.Venue, keyword string) int {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return 1
	}

	score := 0
	name := strings.ToLower(v.Name)
	if i := strings.Index(name, keyword); i == 0 {
		score += 100
	} else if i > 0 {
		score += 80
	}
	if strings.Contains(strings.ToLower(v.Address), keyword) {
		score += 60
	}
	if containsFold(v.Versions, keyword) {
		score += 40
	}
	if containsFold(v.Facilities, keyword) {
		score += 30
	}
	return score
}

func containsFold(values []string, lowerKeyword string) bool {
	return slices.ContainsFunc(values, func(s string) bool {
		return strings.Contains(strings.ToLower(s), lowerKeyword)
	})
}

func anyIn(have, want []string) bool {
	return slices.ContainsFunc(have, func(s string) bool {
		return slices.ContainsFunc(want, func(w string) bool { return strings.EqualFold(s, w) })
	})
}

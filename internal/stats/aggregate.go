package stats

import (
	"cmp"
	"slices"

	"github.com/go-enry/go-enry/v2"

	"github.com/j-veylop/langstats-tui/internal/models"
)

// TopN is the number of languages on the "Programming" card.
const TopN = 5

// LanguageShare is one row of the top languages list.
type LanguageShare struct {
	Name    string
	Color   string // linguist hex colour
	Kind    string
	Bytes   int64
	Percent int
}

// CategoryShare is one category card.
type CategoryShare struct {
	Category
	Bytes   int64
	Percent int
}

// Merge adds every byte count of src into dst. Summation is per key, so the
// order in which repositories are merged does not matter.
func Merge(dst, src models.LanguageStats) {
	for lang, b := range src {
		dst[lang] += b
	}
}

// Percent returns round(100 * part / total), rounding halves up in integer
// arithmetic. A zero total yields 0. Byte counts must stay below 2^55 so
// 200*part cannot overflow.
func Percent(part, total int64) int {
	if total <= 0 || part <= 0 {
		return 0
	}
	return int((200*part + total) / (2 * total))
}

// CategoryBytes sums the bytes of every language mapped to tag.
func CategoryBytes(s models.LanguageStats, tag string) int64 {
	var sum int64
	for lang, b := range s {
		if CategoryMap[lang] == tag {
			sum += b
		}
	}
	return sum
}

// CategoryPercent returns the share of tag in s as an integer in [0,100].
// The denominator is the grand total of s, including languages that belong
// to no category.
func CategoryPercent(s models.LanguageStats, tag string) int {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return Percent(CategoryBytes(s, tag), total)
}

// CategoryShares returns one entry per category in display order.
func CategoryShares(s models.LanguageStats) []CategoryShare {
	total := s.Total()
	shares := make([]CategoryShare, 0, len(categories))
	for _, c := range categories {
		b := CategoryBytes(s, c.Tag)
		shares = append(shares, CategoryShare{
			Category: c,
			Bytes:    b,
			Percent:  Percent(b, total),
		})
	}
	return shares
}

// ShareMap returns the category percentages keyed by tag.
func ShareMap(s models.LanguageStats) map[string]int {
	out := make(map[string]int, len(categories))
	for _, c := range CategoryShares(s) {
		out[c.Tag] = c.Percent
	}
	return out
}

// Uncategorized returns the bytes of languages that have no category.
func Uncategorized(s models.LanguageStats) int64 {
	var sum int64
	for lang, b := range s {
		if _, ok := CategoryMap[lang]; !ok {
			sum += b
		}
	}
	return sum
}

// TopLanguages returns up to n languages ordered by bytes descending. Equal
// byte counts are ordered by name ascending.
func TopLanguages(s models.LanguageStats, n int) []LanguageShare {
	if n <= 0 || len(s) == 0 {
		return nil
	}
	total := s.Total()

	all := make([]LanguageShare, 0, len(s))
	for lang, b := range s {
		all = append(all, LanguageShare{Name: lang, Bytes: b})
	}
	slices.SortFunc(all, func(a, b LanguageShare) int {
		if c := cmp.Compare(b.Bytes, a.Bytes); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	if len(all) > n {
		all = all[:n]
	}
	for i := range all {
		all[i].Percent = Percent(all[i].Bytes, total)
		all[i].Color = enry.GetColor(all[i].Name)
		all[i].Kind = Kind(all[i].Name)
	}
	return all
}

// Kind returns the linguist type of a language: programming, markup, data,
// prose or unknown.
func Kind(language string) string {
	switch enry.GetLanguageType(language) {
	case enry.Programming:
		return "programming"
	case enry.Markup:
		return "markup"
	case enry.Data:
		return "data"
	case enry.Prose:
		return "prose"
	default:
		return "unknown"
	}
}

// TopLanguage returns the language with the most bytes, or "" when empty.
func TopLanguage(s models.LanguageStats) string {
	top := TopLanguages(s, 1)
	if len(top) == 0 {
		return ""
	}
	return top[0].Name
}

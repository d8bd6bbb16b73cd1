package tabular

import (
	"strings"
)

// TitleCache resolves user-supplied sheet names against the real titles of
// one spreadsheet. Settings rows carry short or slightly misspelled month
// names, so an exact match is tried first and a whitespace-insensitive
// substring match second. The cache is built once per cycle from
// ListSheetTitles and is not shared across cycles.
type TitleCache struct {
	titles []string
}

func NewTitleCache(titles []string) *TitleCache {
	return &TitleCache{titles: titles}
}

// Resolve maps a requested name to a real sheet title. ok is false when
// nothing matches; callers surface that inside the report instead of failing
// the run.
func (c *TitleCache) Resolve(requested string) (string, bool) {
	search := strings.TrimSpace(requested)
	if search == "" {
		return "", false
	}

	for _, t := range c.titles {
		if t == search {
			return t, true
		}
	}

	searchClean := stripSpace(strings.ToLower(search))
	for _, t := range c.titles {
		clean := stripSpace(strings.ToLower(t))
		if strings.Contains(clean, searchClean) || strings.Contains(searchClean, clean) {
			return t, true
		}
	}

	return "", false
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

package analyze

import (
	"strings"

	"github.com/877555666zzz-ai/Checking-15sTR/internal/model"
)

// HeaderIndex holds the resolved column position of each semantic field.
// -1 means the column was not found.
type HeaderIndex struct {
	Manager   int
	LegalForm int
	Contract  int
	Accept    int
	Tags      int
}

// LocateHeader resolves the header layout from the first row of a sheet.
// When the manager column is missing there (an extra title row above the real
// header is common), the second row is tried as well. ok is false when the
// manager column cannot be resolved at all; the sheet is unanalyzable then.
func LocateHeader(rows []model.Row) (HeaderIndex, bool) {
	if len(rows) == 0 {
		return HeaderIndex{Manager: -1, LegalForm: -1, Contract: -1, Accept: -1, Tags: -1}, false
	}

	headers := normalizeHeaders(rows[0])
	idx := HeaderIndex{
		Manager:   findIndex(headers, managerKeywords),
		LegalForm: findIndex(headers, legalFormKeywords),
		Contract:  findIndex(headers, contractKeywords),
		Accept:    findIndex(headers, acceptKeywords),
		Tags:      findIndex(headers, tagKeywords),
	}

	if idx.Manager == -1 && len(rows) > 2 {
		idx.Manager = findIndex(normalizeHeaders(rows[1]), managerKeywords)
	}

	return idx, idx.Manager != -1
}

// findIndex returns the index of the first header containing any keyword.
func findIndex(headers []string, keywords []string) int {
	for i, h := range headers {
		for _, k := range keywords {
			if strings.Contains(h, k) {
				return i
			}
		}
	}
	return -1
}

func normalizeHeaders(row model.Row) []string {
	out := make([]string, len(row))
	for i, h := range row {
		out[i] = strings.TrimSpace(strings.ToLower(h))
	}
	return out
}

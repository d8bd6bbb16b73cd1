// Package analyze turns the raw rows of one source sheet into per-manager
// statistics. Header columns are located by keyword containment because the
// source sheets are hand-maintained and their layout drifts between months.
package analyze

// Keyword sets for the semantic columns. Matching is substring containment
// over lower-cased, trimmed header text.
var (
	managerKeywords   = []string{"менеджер", "сотрудник", "manager"}
	legalFormKeywords = []string{"опф", "форма"}
	contractKeywords  = []string{"договор", "контракт"}
	acceptKeywords    = []string{"акцепт", "платежки", "оплата", "поехали"}
	tagKeywords       = []string{"метки", "наличие метки", "nib"}
)

// headerEcho is the manager header label; data rows repeating it mid-sheet
// are skipped.
const headerEcho = "менеджер"

// Package tabular abstracts the spreadsheet transport behind a small
// key-range store: values are addressed by (store id, sheet, A1 range) and
// read back as display-formatted strings. Backends exist for Google Sheets
// (production) and local xlsx workbooks (tests, dry runs).
package tabular

import (
	"context"
	"errors"
	"fmt"
)

// ErrSheetNotFound is returned when a range names a sheet that does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Store is the transport contract consumed by the sync service.
type Store interface {
	// GetValues reads a range as display-formatted strings. Rows may be
	// shorter than the requested width when trailing cells are empty.
	GetValues(ctx context.Context, storeID, rangeSpec string) ([][]string, error)

	// UpdateValues overwrites the range in place with raw value semantics
	// (no formula evaluation on the receiving side).
	UpdateValues(ctx context.Context, storeID, rangeSpec string, values [][]any) error

	// ClearRange clears cell contents strictly inside the given rectangle.
	// Whole-sheet clears are deliberately not part of the contract: the
	// destination sheets carry manual formatting outside the report area.
	ClearRange(ctx context.Context, storeID, rangeSpec string) error

	// ListSheetTitles returns the sheet titles of a spreadsheet in order.
	ListSheetTitles(ctx context.Context, storeID string) ([]string, error)

	// EnsureSheetExists creates the sheet when absent and returns the actual
	// title, matching existing titles case-insensitively. It must tolerate a
	// concurrent create of the same title.
	EnsureSheetExists(ctx context.Context, storeID, title string) (string, error)
}

// RetryableError wraps a transport failure worth retrying: rate limits and
// server-error class responses. Everything else is treated as fatal.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is marked as a transient transport failure.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

package sheetsync

import "context"

// Sheet is the minimal surface of one worksheet tab the Store needs.
// Keeping it an interface allows for assertions and tests against an
// in-memory implementation.
//
// Rows and columns are 1-based, matching spreadsheet conventions.
type Sheet interface {
	// ReadRow reads one row, nil when the row is empty or out of range.
	ReadRow(ctx context.Context, row int) ([]string, error)
	// ReadColumn reads one column top to bottom, header included.
	// Trailing empty cells may be omitted.
	ReadColumn(ctx context.Context, col int) ([]string, error)
	// WriteRow overwrites a row starting at column A.
	WriteRow(ctx context.Context, row int, values []string) error
	// Append adds a row after the last non-empty row and returns the row
	// number it landed on.
	Append(ctx context.Context, values []string) (int, error)
}

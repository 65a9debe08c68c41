package sheetsync

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// GoogleSheet implements Sheet on top of the Google Sheets API, one
// instance per worksheet tab.
type GoogleSheet struct {
	svc           *sheets.Service
	spreadsheetId string
	worksheet     string
}

type GoogleSheetOptions struct {
	SpreadsheetId string
	// Worksheet is the tab name, created when missing.
	Worksheet string
	// CredentialsFile is the path to a service account JSON file.
	CredentialsFile string
}

func NewGoogleSheet(ctx context.Context, opts GoogleSheetOptions) (*GoogleSheet, error) {
	if opts.SpreadsheetId == "" {
		return nil, fmt.Errorf("spreadsheet id missing")
	}
	if opts.CredentialsFile == "" {
		return nil, fmt.Errorf("service account credentials file missing")
	}
	if opts.Worksheet == "" {
		opts.Worksheet = "master"
	}

	svc, err := sheets.NewService(
		ctx,
		option.WithCredentialsFile(opts.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize sheets service: %w", err)
	}

	g := &GoogleSheet{
		svc:           svc,
		spreadsheetId: opts.SpreadsheetId,
		worksheet:     opts.Worksheet,
	}
	if err := g.ensureWorksheet(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *GoogleSheet) ensureWorksheet(ctx context.Context) error {
	spreadsheet, err := g.svc.Spreadsheets.Get(g.spreadsheetId).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == g.worksheet {
			return nil
		}
	}

	_, err = g.svc.Spreadsheets.BatchUpdate(g.spreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: g.worksheet},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add worksheet %q: %w", g.worksheet, err)
	}
	return nil
}

// colLetter converts a 1-based column number to its A1 letter form.
func colLetter(col int) string {
	out := ""
	for col > 0 {
		col--
		out = string(rune('A'+col%26)) + out
		col /= 26
	}
	return out
}

func cellsToStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, cell := range cells {
		out[i] = fmt.Sprint(cell)
	}
	return out
}

func stringsToCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func (g *GoogleSheet) ReadRow(ctx context.Context, row int) ([]string, error) {
	rangeStr := fmt.Sprintf("'%s'!%d:%d", g.worksheet, row, row)
	res, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetId, rangeStr).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read row %d: %w", row, err)
	}
	if len(res.Values) == 0 {
		return nil, nil
	}
	return cellsToStrings(res.Values[0]), nil
}

func (g *GoogleSheet) ReadColumn(ctx context.Context, col int) ([]string, error) {
	letter := colLetter(col)
	rangeStr := fmt.Sprintf("'%s'!%s:%s", g.worksheet, letter, letter)
	res, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetId, rangeStr).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read column %s: %w", letter, err)
	}
	var out []string
	for _, cells := range res.Values {
		if len(cells) == 0 {
			out = append(out, "")
			continue
		}
		out = append(out, fmt.Sprint(cells[0]))
	}
	return out, nil
}

func (g *GoogleSheet) WriteRow(ctx context.Context, row int, values []string) error {
	rangeStr := fmt.Sprintf("'%s'!A%d", g.worksheet, row)
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetId, rangeStr, &sheets.ValueRange{
		Values: [][]interface{}{stringsToCells(values)},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

var updatedRangeRow = regexp.MustCompile(`![A-Z]+(\d+)`)

func (g *GoogleSheet) Append(ctx context.Context, values []string) (int, error) {
	rangeStr := fmt.Sprintf("'%s'!A1", g.worksheet)
	res, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetId, rangeStr, &sheets.ValueRange{
		Values: [][]interface{}{stringsToCells(values)},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("append row: %w", err)
	}

	if res.Updates == nil {
		return 0, fmt.Errorf("append row: response carried no updated range")
	}
	groups := updatedRangeRow.FindStringSubmatch(res.Updates.UpdatedRange)
	if len(groups) < 2 {
		return 0, fmt.Errorf("append row: unparseable updated range %q", res.Updates.UpdatedRange)
	}
	row, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0, fmt.Errorf("append row: %w", err)
	}
	return row, nil
}

// Package backup writes the run's accumulated records to a dated local
// spreadsheet, a durable secondary copy independent of the sync table.
package backup

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"catalogsync/lib/scrapers/storefront/catalog"

	"github.com/xuri/excelize/v2"
)

const worksheet = "Sheet1"

// Write exports the records as scraped_products_YYYYMMDD.xlsx under dir,
// creating the directory when needed. Nothing is written for an empty
// record set; the returned path is "" in that case.
func Write(dir string, now time.Time, records []catalog.ProductRecord) (string, error) {
	if len(records) == 0 {
		slog.Info("no rows collected; nothing to save")
		return "", nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("scraped_products_%s.xlsx", now.Format("20060102")))

	file := excelize.NewFile()
	defer file.Close()

	header := catalog.FieldNames()
	if err := writeRow(file, 1, header); err != nil {
		return "", err
	}
	for i, record := range records {
		if err := writeRow(file, i+2, record.Values(header)); err != nil {
			return "", err
		}
	}

	if err := file.SaveAs(path); err != nil {
		return "", fmt.Errorf("save backup: %w", err)
	}
	slog.Info("saved backup export", "rows", len(records), "path", path)
	return path, nil
}

func writeRow(file *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := file.SetSheetRow(worksheet, cell, &cells); err != nil {
		return fmt.Errorf("write backup row %d: %w", row, err)
	}
	return nil
}

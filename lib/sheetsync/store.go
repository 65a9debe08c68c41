package sheetsync

import (
	"context"
	"slices"
	"strings"

	"catalogsync/lib/scrapers/storefront/catalog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sheetsync")

// Result of one upsert.
type Result string

const (
	Updated  Result = "updated"
	Inserted Result = "inserted"
	Skipped  Result = "skipped"
)

// Store keeps the external table keyed by product identifier (url as a
// fallback). The key -> row index is built once at open and refreshed on
// append, so upserts don't rescan columns per call. Concurrent external
// writers can still race the index, that is accepted at this scale.
type Store struct {
	sheet   Sheet
	header  []string
	colOf   map[string]int // field name -> 1-based column
	skuRows map[string]int // trimmed sku -> 1-based row
	urlRows map[string]int
}

// Open connects the store to a worksheet: writes the fixed field list as
// the header when the tab is empty, appends any missing fixed fields to
// the header without disturbing existing columns, and indexes the key
// columns.
func Open(ctx context.Context, sheet Sheet) (*Store, error) {
	ctx, span := tracer.Start(ctx, "store:Open")
	defer span.End()

	header, err := sheet.ReadRow(ctx, 1)
	if err != nil {
		span.SetStatus(codes.Error, "failed to read header row")
		return nil, err
	}
	if len(header) == 0 {
		header = catalog.FieldNames()
		if err := sheet.WriteRow(ctx, 1, header); err != nil {
			span.SetStatus(codes.Error, "failed to write header row")
			return nil, err
		}
	} else {
		merged := slices.Clone(header)
		for _, field := range catalog.FieldNames() {
			if !slices.Contains(merged, field) {
				merged = append(merged, field)
			}
		}
		if len(merged) != len(header) {
			if err := sheet.WriteRow(ctx, 1, merged); err != nil {
				span.SetStatus(codes.Error, "failed to extend header row")
				return nil, err
			}
			header = merged
		}
	}

	s := &Store{
		sheet:  sheet,
		header: header,
		colOf:  map[string]int{},
	}
	for i, field := range header {
		s.colOf[field] = i + 1
	}

	s.skuRows, err = s.indexColumn(ctx, s.colOf["sku"])
	if err != nil {
		span.SetStatus(codes.Error, "failed to index sku column")
		return nil, err
	}
	s.urlRows, err = s.indexColumn(ctx, s.colOf["url"])
	if err != nil {
		span.SetStatus(codes.Error, "failed to index url column")
		return nil, err
	}
	return s, nil
}

// indexColumn maps each trimmed non-empty cell value to its row. The
// first occurrence wins, matching a top-to-bottom scan.
func (s *Store) indexColumn(ctx context.Context, col int) (map[string]int, error) {
	index := map[string]int{}
	values, err := s.sheet.ReadColumn(ctx, col)
	if err != nil {
		return nil, err
	}
	for i, value := range values {
		row := i + 1
		if row == 1 {
			continue
		}
		key := strings.TrimSpace(value)
		if key == "" {
			continue
		}
		if _, taken := index[key]; !taken {
			index[key] = row
		}
	}
	return index, nil
}

// Header returns the table's current column order.
func (s *Store) Header() []string {
	return slices.Clone(s.header)
}

// Upsert writes one record: overwrite the row whose key matches, append
// when no row does, skip when the record carries no key at all. The row
// is always written whole in current header order, fields the record
// doesn't supply render as "".
func (s *Store) Upsert(ctx context.Context, record catalog.ProductRecord) (Result, error) {
	ctx, span := tracer.Start(ctx, "store:Upsert")
	defer span.End()

	key := strings.TrimSpace(record.Sku)
	index := s.skuRows
	if key == "" {
		key = strings.TrimSpace(record.Url)
		index = s.urlRows
	}
	if key == "" {
		span.SetAttributes(attribute.String("result", string(Skipped)))
		return Skipped, nil
	}
	span.SetAttributes(attribute.String("key", key))

	values := record.Values(s.header)

	if row, ok := index[key]; ok {
		if err := s.sheet.WriteRow(ctx, row, values); err != nil {
			span.SetStatus(codes.Error, "failed to overwrite row")
			return Skipped, err
		}
		span.SetAttributes(attribute.String("result", string(Updated)))
		return Updated, nil
	}

	row, err := s.sheet.Append(ctx, values)
	if err != nil {
		span.SetStatus(codes.Error, "failed to append row")
		return Skipped, err
	}
	if sku := strings.TrimSpace(record.Sku); sku != "" {
		if _, taken := s.skuRows[sku]; !taken {
			s.skuRows[sku] = row
		}
	}
	if u := strings.TrimSpace(record.Url); u != "" {
		if _, taken := s.urlRows[u]; !taken {
			s.urlRows[u] = row
		}
	}
	span.SetAttributes(attribute.String("result", string(Inserted)))
	return Inserted, nil
}

package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"restaurant-orders/internal/domain"
	"github.com/shopspring/decimal"
)

// MenuWriter persists imported menu rows.
type MenuWriter interface {
	UpsertMenuItem(ctx context.Context, row MenuRow) error
	UpsertSpecial(ctx context.Context, row MenuRow) error
}

// MenuRow is one parsed line of a menu CSV export.
type MenuRow struct {
	Kind            domain.ItemKind
	Title           string
	Category        string
	Price           decimal.Decimal
	DiscountedPrice *decimal.Decimal
}

// CSVImporter reads menu CSV exports and inserts/updates menu items and specials.
type CSVImporter struct {
	reader *csv.Reader
	writer MenuWriter
}

func NewCSVImporter(r io.Reader, writer MenuWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader: csvr,
		writer: writer,
	}
}

// Run parses CSV rows and upserts them keyed by title.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row, err := parseRow(record, index)
		if err != nil {
			return imported, err
		}
		if row == nil {
			continue
		}

		if err := i.save(ctx, row); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *MenuRow) error {
	var err error
	switch row.Kind {
	case domain.ItemKindPromotional:
		err = i.writer.UpsertSpecial(ctx, *row)
	default:
		err = i.writer.UpsertMenuItem(ctx, *row)
	}
	if err != nil {
		return fmt.Errorf("upsert %q: %w", row.Title, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*MenuRow, error) {
	title := pick(record, index, "title")
	if title == "" {
		return nil, nil
	}

	priceStr := pick(record, index, "price")
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q for %q", priceStr, title)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("negative price for %q", title)
	}

	row := &MenuRow{
		Kind:     domain.ItemKindRegular,
		Title:    title,
		Category: pick(record, index, "category"),
		Price:    price,
	}

	if kindStr := pick(record, index, "kind"); kindStr != "" {
		kind, err := domain.ParseItemKind(kindStr)
		if err != nil {
			return nil, fmt.Errorf("row %q: %w", title, err)
		}
		row.Kind = kind
	}

	if discStr := pick(record, index, "discounted_price"); discStr != "" {
		disc, err := decimal.NewFromString(discStr)
		if err != nil {
			return nil, fmt.Errorf("invalid discounted_price %q for %q", discStr, title)
		}
		if row.Kind != domain.ItemKindPromotional {
			return nil, fmt.Errorf("discounted_price on non-promotional row %q", title)
		}
		row.DiscountedPrice = &disc
	}

	return row, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/mamadbah2/butchershop/internal/domain/models"
)

// ProductsRange holds id, name, unit and description columns below a header row.
const ProductsRange = "Christmas Products!A2:D"

// RangeReader is the slice of the spreadsheet repository the product source needs.
type RangeReader interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// SheetSource reads seasonal products from the shop spreadsheet.
type SheetSource struct {
	sheet RangeReader
}

// NewSheetSource returns a source backed by sheet. A nil sheet is never connected.
func NewSheetSource(sheet RangeReader) *SheetSource {
	return &SheetSource{sheet: sheet}
}

func (s *SheetSource) Connected() bool {
	return s != nil && s.sheet != nil
}

// FetchProducts skips rows without a name.
func (s *SheetSource) FetchProducts(ctx context.Context) ([]models.SeasonalProduct, error) {
	rows, err := s.sheet.ReadRange(ctx, ProductsRange)
	if err != nil {
		return nil, err
	}

	out := make([]models.SeasonalProduct, 0, len(rows))
	for i, row := range rows {
		p := models.SeasonalProduct{
			ID:          cell(row, 0),
			Name:        cell(row, 1),
			Unit:        cell(row, 2),
			Description: cell(row, 3),
		}
		if p.Name == "" {
			continue
		}
		if p.ID == "" {
			p.ID = fmt.Sprintf("row-%d", i+2)
		}
		out = append(out, p)
	}
	return out, nil
}

func cell(row []interface{}, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

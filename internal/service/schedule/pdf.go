package schedule

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// RenderPDF prints the schedule as an A4 document.
func RenderPDF(shopName string, s Schedule) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(8, shopName, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Left}),
		text.NewCol(4, "Collections "+s.Date, props.Text{Size: 11, Align: align.Right, Top: 3}),
	)
	m.AddRow(8,
		text.NewCol(12, fmt.Sprintf("%d orders to collect", len(s.Rows)), props.Text{Size: 9}),
	)

	m.AddRow(8,
		text.NewCol(1, "Time", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Order", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Customer", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(5, "Items", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Status", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, r := range s.Rows {
		collection := r.CollectionTime
		if collection == "" {
			collection = "-"
		}
		status := string(r.Status)
		if r.Christmas {
			status += " (xmas)"
		}

		itemsCol := col.New(5)
		for i, line := range r.Items {
			itemsCol.Add(text.New(line, props.Text{Size: 9, Top: float64(i * 4)}))
		}
		if r.Notes != "" {
			itemsCol.Add(text.New("Note: "+r.Notes, props.Text{Size: 8, Style: fontstyle.Italic, Top: float64(len(r.Items) * 4)}))
		}

		m.AddRow(rowHeight(r),
			text.NewCol(1, collection, props.Text{Size: 9}),
			text.NewCol(1, "#"+r.OrderID, props.Text{Size: 9}),
			text.NewCol(3, r.CustomerName, props.Text{Size: 9}),
			itemsCol,
			text.NewCol(2, capitalize(status), props.Text{Size: 9, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render schedule: %w", err)
	}
	return doc.GetBytes(), nil
}

func rowHeight(r Row) float64 {
	lines := len(r.Items)
	if r.Notes != "" {
		lines++
	}
	return float64(max(lines, 1))*4 + 4
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pdiddy/scholar-metrics/internal/schema"
	"github.com/pdiddy/scholar-metrics/pkg/types"
)

// previewColumns are the base columns shown in the terminal preview, with
// their display headers.
var previewColumns = []struct{ column, header string }{
	{schema.ColORCID, "ORCID"},
	{schema.ColPutCode, "Put-code"},
	{schema.ColTitle, "Title"},
	{schema.ColDOI, "DOI"},
	{schema.ColIsReferencedByCount, "Cited by"},
}

// Preview renders the first n rows of t as a table on w. Mention columns
// are summed into one "Mentions" column.
func Preview(w io.Writer, t *types.Table, n int) {
	if n <= 0 || t.Len() == 0 {
		return
	}
	n = min(n, t.Len())

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: 48},
		{Name: "Cited by", Align: text.AlignRight},
		{Name: "Mentions", Align: text.AlignRight},
	})

	header := table.Row{}
	for _, pc := range previewColumns {
		header = append(header, pc.header)
	}
	header = append(header, "Mentions")
	tw.AppendHeader(header)

	for i := 0; i < n; i++ {
		row := table.Row{}
		for _, pc := range previewColumns {
			row = append(row, cellString(t.Cell(i, pc.column)))
		}
		row = append(row, MentionTotal(t, i))
		tw.AppendRow(row)
	}
	if n < t.Len() {
		tw.AppendFooter(table.Row{"", "", "", "", "", text.FgHiBlack.Sprintf("+%d more", t.Len()-n)})
	}
	tw.Render()
}

// MentionTotal sums the mention-source columns of row i.
func MentionTotal(t *types.Table, i int) int {
	total := 0
	for j, c := range t.Columns {
		if !schema.IsMentionColumn(c) {
			continue
		}
		if n, ok := t.Rows[i][j].(int); ok {
			total += n
		}
	}
	return total
}

package util

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// NewTableWriter returns a borderless, left aligned table writing to w.
func NewTableWriter(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)

	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetRowSeparator("")
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")

	return table
}

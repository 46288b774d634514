package observability

import (
	"backup-courier/domain"
	"backup-courier/domain/event"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// PrintSummary renders the delivery totals collected since startup.
func PrintSummary(w io.Writer, counter *event.Counter) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	count := func(t event.Type) string {
		return strconv.FormatUint(counter.Get(t), 10)
	}
	table.AppendBulk([][]string{
		{"Files detected", count(event.FileDetectedType)},
		{"Delivered", count(event.DeliverySucceededType)},
		{"Failed", count(event.DeliveryFailedType)},
		{"Abandoned", count(event.DeliveryAbandonedType)},
		{"Split parts uploaded", count(event.PartUploadedType)},
		{"Detected MB", fmt.Sprintf("%.1f", domain.SizeInMB(int64(counter.BytesDetected())))},
		{"Delivered MB", fmt.Sprintf("%.1f", domain.SizeInMB(int64(counter.BytesDelivered())))},
	})
	table.Render()
}

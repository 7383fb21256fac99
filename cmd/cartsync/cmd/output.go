package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	domain "github.com/donaldgifford/cartsync/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printWidgetTable(w io.Writer, widgets []domain.Widget) error {
	tw := newTabWriter(w)
	tw.writef("WIDGET\tMINI CART\tITEMS\tLOCKED\tEMPTY\n")
	for i := range widgets {
		mini := widgets[i].MiniCartID
		if mini == "" {
			mini = "-"
		}
		items := strings.Join(widgets[i].Items, ",")
		if items == "" {
			items = "-"
		}
		tw.writef("%s\t%s\t%s\t%v\t%v\n",
			widgets[i].ID,
			mini,
			items,
			widgets[i].Locked,
			widgets[i].Empty,
		)
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

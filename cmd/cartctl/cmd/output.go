package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/donaldgifford/cartsync/internal/engine"
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

func printState(w io.Writer, s *engine.Snapshot) error {
	tw := newTabWriter(w)
	tw.writef("Cart:\t%s\n", orDash(s.CartID))
	tw.writef("Items:\t%d\n", s.ItemCount)
	tw.writef("Fetching:\t%v\n", s.Fetching)
	tw.writef("Pending edits:\t%d\n", s.PendingEdits)
	tw.writef("\n")
	tw.writef("WIDGET\tMINI CART\tITEMS\tLOCKED\tEMPTY\n")
	for i := range s.Widgets {
		wd := &s.Widgets[i]
		tw.writef("%s\t%s\t%s\t%v\t%v\n",
			wd.ID,
			orDash(wd.MiniCartID),
			orDash(strings.Join(wd.Items, ",")),
			wd.Locked,
			wd.Empty,
		)
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

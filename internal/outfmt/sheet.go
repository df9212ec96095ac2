package outfmt

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

const ruleWidth = 40

// Sheet renders labelled detail fields and tables in aligned columns.
// Output is buffered until Flush.
type Sheet struct {
	tw *tabwriter.Writer
}

func NewSheet(w io.Writer) *Sheet {
	return &Sheet{tw: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
}

// Title writes a heading followed by a rule.
func (s *Sheet) Title(title string) {
	_, _ = fmt.Fprintln(s.tw, title)
	_, _ = fmt.Fprintln(s.tw, strings.Repeat("-", ruleWidth))
}

// Field writes "label: value". Empty values are skipped.
func (s *Sheet) Field(label, value string) {
	if value == "" {
		return
	}
	_, _ = fmt.Fprintf(s.tw, "%s:\t%s\n", label, value)
}

func (s *Sheet) Fieldf(label, format string, args ...any) {
	s.Field(label, fmt.Sprintf(format, args...))
}

// Gap writes an empty line.
func (s *Sheet) Gap() {
	_, _ = fmt.Fprintln(s.tw)
}

// Columns writes one tab-aligned table row.
func (s *Sheet) Columns(cells ...string) {
	_, _ = fmt.Fprintln(s.tw, strings.Join(cells, "\t"))
}

func (s *Sheet) Flush() error {
	return s.tw.Flush()
}

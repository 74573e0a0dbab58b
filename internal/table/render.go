package table

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Render writes the current page as tab-aligned text: header with sort
// markers, rows (or the empty message), then the summary and pager.
func (t *Table[T]) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	actions := t.actions.names()

	header := make([]string, 0, len(t.columns)+1)
	for _, c := range t.columns {
		label := c.Label
		if c.Key == t.sortKey {
			if t.sortDir == Desc {
				label += " v"
			} else {
				label += " ^"
			}
		}
		header = append(header, label)
	}
	if len(actions) > 0 {
		header = append(header, "Actions")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	rows := t.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(tw, t.opts.EmptyMessage)
	}
	for _, row := range rows {
		cells := make([]string, 0, len(t.columns)+1)
		for _, c := range t.columns {
			cells = append(cells, cell(c, row))
		}
		if len(actions) > 0 {
			cells = append(cells, strings.Join(actions, " "))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !t.opts.Paginate {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s  %s\n", t.Summary(), t.pager())
	return err
}

func cell[T Record](c Column[T], row T) string {
	v := row.Field(c.Key)
	if c.Render != nil {
		return c.Render(v, row)
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// pager marks the current page in the window, e.g. "1 [2] 3".
func (t *Table[T]) pager() string {
	window := t.PageWindow()
	parts := make([]string, 0, len(window))
	for _, p := range window {
		if p == t.page {
			parts = append(parts, fmt.Sprintf("[%d]", p))
		} else {
			parts = append(parts, fmt.Sprint(p))
		}
	}
	return strings.Join(parts, " ")
}

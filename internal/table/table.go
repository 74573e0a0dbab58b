// Package table is a searchable, sortable, paginated view over a slice of
// records, rendered as aligned text.
package table

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Record is a row the table can search and sort.
type Record interface {
	// Field returns the value of the named column, or nil.
	Field(key string) any
	// Fields returns every value the search box matches against.
	Fields() []any
}

// Column describes one rendered column. Render, when set, replaces the
// default fmt.Sprint of the cell value.
type Column[T Record] struct {
	Key      string
	Label    string
	Sortable bool
	Render   func(value any, row T) string
}

// Options tunes table behavior. Start from DefaultOptions: the zero value
// disables searching and pagination.
type Options struct {
	PageSize     int
	Searchable   bool
	Paginate     bool
	EmptyMessage string
}

const (
	DefaultPageSize     = 10
	DefaultEmptyMessage = "No data available"
)

func DefaultOptions() Options {
	return Options{
		PageSize:     DefaultPageSize,
		Searchable:   true,
		Paginate:     true,
		EmptyMessage: DefaultEmptyMessage,
	}
}

// Actions are the per-row callbacks. The table only invokes them; any
// confirmation or network call is the callback's business.
type Actions[T Record] struct {
	OnView   func(T)
	OnEdit   func(T)
	OnDelete func(T)
}

func (a Actions[T]) names() []string {
	var out []string
	if a.OnView != nil {
		out = append(out, string(ActionView))
	}
	if a.OnEdit != nil {
		out = append(out, string(ActionEdit))
	}
	if a.OnDelete != nil {
		out = append(out, string(ActionDelete))
	}
	return out
}

// Action names a row callback.
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Direction is a sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

var (
	ErrNoAction      = errors.New("table: action not configured")
	ErrRowOutOfRange = errors.New("table: row index out of range")
)

// Table holds the view state over data. It is not safe for concurrent use.
type Table[T Record] struct {
	columns []Column[T]
	data    []T
	opts    Options
	actions Actions[T]

	search  string
	sortKey string
	sortDir Direction
	page    int
}

// New builds a table on page 1 with no search and no sort.
func New[T Record](columns []Column[T], data []T, opts Options, actions Actions[T]) *Table[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.EmptyMessage == "" {
		opts.EmptyMessage = DefaultEmptyMessage
	}
	return &Table[T]{
		columns: columns,
		data:    data,
		opts:    opts,
		actions: actions,
		page:    1,
	}
}

// SetData replaces the rows, keeping search, sort and page.
func (t *Table[T]) SetData(data []T) { t.data = data }

func (t *Table[T]) Search() string { return t.search }

// SetSearch filters rows to those with any field containing q, ignoring
// case, and returns to page 1. It is a no-op on non-searchable tables.
func (t *Table[T]) SetSearch(q string) {
	if !t.opts.Searchable {
		return
	}
	t.search = q
	t.page = 1
}

// Sort returns the active sort column and direction; key is empty when
// unsorted.
func (t *Table[T]) Sort() (string, Direction) { return t.sortKey, t.sortDir }

// ToggleSort sorts by key ascending, or flips the direction when key is
// already the sort column. Unknown and non-sortable keys are ignored.
func (t *Table[T]) ToggleSort(key string) {
	col, ok := t.column(key)
	if !ok || !col.Sortable {
		return
	}
	if t.sortKey == key {
		if t.sortDir == Asc {
			t.sortDir = Desc
		} else {
			t.sortDir = Asc
		}
		return
	}
	t.sortKey = key
	t.sortDir = Asc
}

func (t *Table[T]) column(key string) (Column[T], bool) {
	for _, c := range t.columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

func (t *Table[T]) Page() int { return t.page }

// SetPage stores n as is. Pages past the end render no rows.
func (t *Table[T]) SetPage(n int) { t.page = n }

// Next and Prev move one page within [1, TotalPages].
func (t *Table[T]) Next() { t.page = clamp(t.page+1, 1, max(t.TotalPages(), 1)) }
func (t *Table[T]) Prev() { t.page = clamp(t.page-1, 1, max(t.TotalPages(), 1)) }

// Filtered returns every row matching the search, in sort order.
func (t *Table[T]) Filtered() []T {
	out := make([]T, 0, len(t.data))
	needle := strings.ToLower(t.search)
	for _, row := range t.data {
		if needle == "" || matches(row, needle) {
			out = append(out, row)
		}
	}

	if t.sortKey != "" {
		key, desc := t.sortKey, t.sortDir == Desc
		values := make([]any, len(out))
		for i, row := range out {
			values[i] = row.Field(key)
		}
		compare := comparatorFor(values)
		sort.SliceStable(out, func(i, j int) bool {
			c := compare(out[i].Field(key), out[j].Field(key))
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	return out
}

func matches[T Record](row T, needle string) bool {
	for _, v := range row.Fields() {
		if v == nil {
			continue
		}
		if strings.Contains(strings.ToLower(fmt.Sprint(v)), needle) {
			return true
		}
	}
	return false
}

// bounds returns the slice window of the current page over n rows.
func (t *Table[T]) bounds(n int) (start, end int) {
	if !t.opts.Paginate {
		return 0, n
	}
	page := max(t.page, 1)
	start = (page - 1) * t.opts.PageSize
	if start >= n {
		return start, start
	}
	return start, min(start+t.opts.PageSize, n)
}

// Rows returns the rows of the current page.
func (t *Table[T]) Rows() []T {
	rows := t.Filtered()
	start, end := t.bounds(len(rows))
	if start >= len(rows) {
		return []T{}
	}
	return rows[start:end]
}

// TotalPages is ceil(filtered rows / page size).
func (t *Table[T]) TotalPages() int {
	n := len(t.Filtered())
	if !t.opts.Paginate {
		if n == 0 {
			return 0
		}
		return 1
	}
	return (n + t.opts.PageSize - 1) / t.opts.PageSize
}

// Summary reads "Showing a to b of n results". A page with no rows
// reports 0 to 0.
func (t *Table[T]) Summary() string {
	n := len(t.Filtered())
	start, _ := t.bounds(n)
	if start >= n {
		return fmt.Sprintf("Showing 0 to 0 of %d results", n)
	}
	end := n
	if t.opts.Paginate {
		end = min(start+t.opts.PageSize, n)
	}
	return fmt.Sprintf("Showing %d to %d of %d results", start+1, end, n)
}

// PageWindow returns up to five page numbers centred on the current page.
func (t *Table[T]) PageWindow() []int {
	total := t.TotalPages()
	if total == 0 {
		return nil
	}
	const width = 5
	first := 1
	switch {
	case total <= width:
	case t.page <= 3:
	case t.page >= total-2:
		first = total - width + 1
	default:
		first = t.page - 2
	}
	last := min(first+width-1, total)

	out := make([]int, 0, last-first+1)
	for p := first; p <= last; p++ {
		out = append(out, p)
	}
	return out
}

// Act invokes the callback for the row at index on the current page.
func (t *Table[T]) Act(action Action, index int) error {
	var fn func(T)
	switch action {
	case ActionView:
		fn = t.actions.OnView
	case ActionEdit:
		fn = t.actions.OnEdit
	case ActionDelete:
		fn = t.actions.OnDelete
	}
	if fn == nil {
		return ErrNoAction
	}
	rows := t.Rows()
	if index < 0 || index >= len(rows) {
		return ErrRowOutOfRange
	}
	fn(rows[index])
	return nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

package table

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stemsi/srms/internal/model"
)

type person struct {
	name string
	age  int
}

func (p person) Field(key string) any {
	switch key {
	case "name":
		return p.name
	case "age":
		return p.age
	}
	return nil
}

func (p person) Fields() []any { return []any{p.name, p.age} }

var personColumns = []Column[person]{
	{Key: "name", Label: "Name", Sortable: true},
	{Key: "age", Label: "Age", Sortable: true},
	{Key: "note", Label: "Note"},
}

func names(rows []person) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.name
	}
	return out
}

func numbered(n int) []person {
	out := make([]person, n)
	for i := range out {
		out[i] = person{name: fmt.Sprintf("row%02d", i+1), age: i + 1}
	}
	return out
}

func TestToggleSort(t *testing.T) {
	tbl := New(personColumns, []person{{"B", 2}, {"A", 1}, {"C", 3}}, DefaultOptions(), Actions[person]{})

	tbl.ToggleSort("name")
	if got := names(tbl.Rows()); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("asc = %v", got)
	}
	tbl.ToggleSort("name")
	if got := names(tbl.Rows()); !reflect.DeepEqual(got, []string{"C", "B", "A"}) {
		t.Errorf("desc = %v", got)
	}

	tbl.ToggleSort("note")
	tbl.ToggleSort("missing")
	if key, dir := tbl.Sort(); key != "name" || dir != Desc {
		t.Errorf("non-sortable keys changed sort to %s %s", key, dir)
	}

	tbl.ToggleSort("age")
	if key, dir := tbl.Sort(); key != "age" || dir != Asc {
		t.Errorf("new key sort = %s %s, want age asc", key, dir)
	}
}

func TestPagination(t *testing.T) {
	tbl := New(personColumns, numbered(25), DefaultOptions(), Actions[person]{})

	if got := names(tbl.Rows()); len(got) != 10 || got[0] != "row01" || got[9] != "row10" {
		t.Errorf("page 1 = %v", got)
	}
	tbl.SetPage(3)
	if got := names(tbl.Rows()); len(got) != 5 || got[0] != "row21" || got[4] != "row25" {
		t.Errorf("page 3 = %v", got)
	}
	for _, p := range []int{4, 9} {
		tbl.SetPage(p)
		if got := tbl.Rows(); len(got) != 0 {
			t.Errorf("page %d = %d rows, want 0", p, len(got))
		}
	}
	if tbl.Page() != 9 {
		t.Errorf("SetPage must store the page as given, got %d", tbl.Page())
	}
	if tbl.TotalPages() != 3 {
		t.Errorf("TotalPages = %d", tbl.TotalPages())
	}

	tbl.SetPage(0)
	if got := names(tbl.Rows()); len(got) != 10 || got[0] != "row01" {
		t.Errorf("page 0 renders %v, want page 1", got)
	}

	tbl.SetPage(3)
	tbl.Next()
	if tbl.Page() != 3 {
		t.Errorf("Next past end = %d", tbl.Page())
	}
	tbl.SetPage(1)
	tbl.Prev()
	if tbl.Page() != 1 {
		t.Errorf("Prev before start = %d", tbl.Page())
	}
}

func TestSearch(t *testing.T) {
	rows := []person{{"Asha Verma", 16}, {"Ravi Kumar", 17}, {"John Smith", 15}}
	tbl := New(personColumns, rows, DefaultOptions(), Actions[person]{})
	tbl.SetPage(2)

	tbl.SetSearch("VERM")
	if got := names(tbl.Rows()); !reflect.DeepEqual(got, []string{"Asha Verma"}) {
		t.Errorf("search = %v", got)
	}
	if tbl.Page() != 1 {
		t.Errorf("search did not reset page, got %d", tbl.Page())
	}

	tbl.SetSearch("17")
	if got := names(tbl.Rows()); !reflect.DeepEqual(got, []string{"Ravi Kumar"}) {
		t.Errorf("numeric field search = %v", got)
	}

	opts := DefaultOptions()
	opts.Searchable = false
	plain := New(personColumns, rows, opts, Actions[person]{})
	plain.SetSearch("asha")
	if len(plain.Rows()) != 3 {
		t.Error("non-searchable table filtered rows")
	}
}

func TestSummaryAndWindow(t *testing.T) {
	tbl := New(personColumns, numbered(95), DefaultOptions(), Actions[person]{})

	if got := tbl.Summary(); got != "Showing 1 to 10 of 95 results" {
		t.Errorf("summary = %q", got)
	}
	tbl.SetPage(10)
	if got := tbl.Summary(); got != "Showing 91 to 95 of 95 results" {
		t.Errorf("last page summary = %q", got)
	}

	tests := []struct {
		page int
		want []int
	}{
		{1, []int{1, 2, 3, 4, 5}},
		{3, []int{1, 2, 3, 4, 5}},
		{6, []int{4, 5, 6, 7, 8}},
		{9, []int{6, 7, 8, 9, 10}},
		{10, []int{6, 7, 8, 9, 10}},
	}
	for _, tt := range tests {
		tbl.SetPage(tt.page)
		if got := tbl.PageWindow(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("window(page %d) = %v, want %v", tt.page, got, tt.want)
		}
	}

	small := New(personColumns, numbered(12), DefaultOptions(), Actions[person]{})
	if got := small.PageWindow(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("small window = %v", got)
	}
}

func TestAct(t *testing.T) {
	var edited person
	tbl := New(personColumns, numbered(12), DefaultOptions(), Actions[person]{
		OnEdit: func(p person) { edited = p },
	})
	tbl.SetPage(2)

	if err := tbl.Act(ActionEdit, 1); err != nil {
		t.Fatalf("Act: %v", err)
	}
	if edited.name != "row12" {
		t.Errorf("edited %v, want row12", edited)
	}
	if err := tbl.Act(ActionDelete, 0); !errors.Is(err, ErrNoAction) {
		t.Errorf("unconfigured action err = %v", err)
	}
	if err := tbl.Act(ActionEdit, 2); !errors.Is(err, ErrRowOutOfRange) {
		t.Errorf("out of range err = %v", err)
	}
}

func TestRender(t *testing.T) {
	cols := []Column[person]{
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "age", Label: "Age", Render: func(v any, _ person) string { return fmt.Sprintf("%d yrs", v) }},
	}
	tbl := New(cols, []person{{"B", 2}, {"A", 1}}, DefaultOptions(), Actions[person]{
		OnView:   func(person) {},
		OnDelete: func(person) {},
	})
	tbl.ToggleSort("name")

	var buf bytes.Buffer
	if err := tbl.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("rendered %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "Name ^") || !strings.Contains(lines[0], "Actions") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "A ") || !strings.Contains(lines[1], "1 yrs") || !strings.HasSuffix(lines[1], "view delete") {
		t.Errorf("first row = %q", lines[1])
	}
	if lines[3] != "Showing 1 to 2 of 2 results  [1]" {
		t.Errorf("footer = %q", lines[3])
	}

	empty := New(cols, nil, DefaultOptions(), Actions[person]{})
	buf.Reset()
	if err := empty.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), DefaultEmptyMessage) {
		t.Errorf("empty render = %q", buf.String())
	}
}

func TestCompare(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		a, b any
		want int
	}{
		{nil, nil, 0},
		{nil, "a", -1},
		{"a", nil, 1},
		{2, 10, -1},
		{int64(3), 2.5, 1},
		{uint8(7), 7.0, 0},
		{"B", "a", -1},
		{false, true, -1},
		{true, true, 0},
		{t0, t0.Add(time.Hour), -1},
		{"10", 9, -1},
	}
	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestModelRecords(t *testing.T) {
	phone := "555-0100"
	students := []model.Student{
		{Name: "Zed", RollNumber: "2", Phone: &phone},
		{Name: "Amy", RollNumber: "1"},
	}
	tbl := New([]Column[model.Student]{
		{Key: "roll_number", Label: "Roll", Sortable: true},
		{Key: "name", Label: "Name", Sortable: true},
	}, students, DefaultOptions(), Actions[model.Student]{})

	tbl.ToggleSort("roll_number")
	if got := tbl.Rows(); got[0].Name != "Amy" {
		t.Errorf("sorted first = %s", got[0].Name)
	}
	tbl.SetSearch("0100")
	if got := tbl.Rows(); len(got) != 1 || got[0].Name != "Zed" {
		t.Errorf("search by optional field = %+v", got)
	}
}

type mixedRow struct {
	label string
	value any
}

func (m mixedRow) Field(key string) any {
	switch key {
	case "label":
		return m.label
	case "value":
		return m.value
	}
	return nil
}

func (m mixedRow) Fields() []any { return []any{m.label, m.value} }

func TestSortMixedColumnOrdersByText(t *testing.T) {
	rows := []mixedRow{{"a", 2}, {"b", "10"}, {"c", 10}, {"d", nil}, {"e", "9"}}
	tbl := New([]Column[mixedRow]{{Key: "value", Label: "Value", Sortable: true}}, rows, DefaultOptions(), Actions[mixedRow]{})

	labels := func() string {
		var b strings.Builder
		for _, r := range tbl.Filtered() {
			b.WriteString(r.label)
		}
		return b.String()
	}

	tbl.ToggleSort("value")
	if got := labels(); got != "dbcae" {
		t.Errorf("ascending = %q, want dbcae", got)
	}
	tbl.ToggleSort("value")
	if got := labels(); got != "eabcd" {
		t.Errorf("descending = %q, want eabcd", got)
	}
}

func TestComparatorFor(t *testing.T) {
	if got := comparatorFor([]any{2, nil, 10.5, uint8(1)})(2, 10); got != -1 {
		t.Errorf("numeric column: Compare(2, 10) = %d, want -1", got)
	}
	mixed := comparatorFor([]any{2, "10", 10})
	if got := mixed(2, 10); got != 1 {
		t.Errorf("mixed column: compare(2, 10) = %d, want 1 (text order)", got)
	}
	if got := mixed(nil, "10"); got != -1 {
		t.Errorf("mixed column: nil must sort first, got %d", got)
	}
}

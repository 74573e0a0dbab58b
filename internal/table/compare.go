package table

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Compare orders two cell values and returns -1, 0 or 1.
//
// nil sorts first. Numbers compare numerically across Go numeric kinds,
// strings bytewise, false before true, and times chronologically. Values of
// different kinds fall back to comparing their fmt.Sprint text.
//
// Pairwise, that mix is not transitive: 2 < 10 numerically but "10" ties
// with 10 and sorts before 2 as text. Sorting a column goes through
// comparatorFor, which orders a mixed column by text throughout.
func Compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}

	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return cmp3(fa < fb, fa > fb)
		}
	}

	switch va := a.(type) {
	case string:
		if vb, ok := b.(string); ok {
			return strings.Compare(va, vb)
		}
	case bool:
		if vb, ok := b.(bool); ok {
			return cmp3(!va && vb, va && !vb)
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// comparatorFor picks the ordering for one column's values. A column whose
// non-nil values span more than one kind is compared as text.
func comparatorFor(values []any) func(a, b any) int {
	first := kindNone
	for _, v := range values {
		k := kindOf(v)
		if k == kindNone {
			continue
		}
		if first == kindNone {
			first = k
		} else if k != first {
			return compareText
		}
	}
	return Compare
}

func compareText(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

type valueKind int

const (
	kindNone valueKind = iota
	kindNumber
	kindString
	kindBool
	kindTime
	kindOther
)

func kindOf(v any) valueKind {
	if v == nil {
		return kindNone
	}
	if _, ok := number(v); ok {
		return kindNumber
	}
	switch v.(type) {
	case string:
		return kindString
	case bool:
		return kindBool
	case time.Time:
		return kindTime
	}
	return kindOther
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

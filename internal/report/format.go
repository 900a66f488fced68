package report

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
)

// cellString renders a cell for CSV. Nil pointers are empty cells.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case int:
		return strconv.Itoa(x)
	case *int:
		if x == nil {
			return ""
		}
		return strconv.Itoa(*x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *float64:
		if x == nil {
			return ""
		}
		return strconv.FormatFloat(*x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// cellDisplay renders a cell for people: grouped thousands, two decimals
func cellDisplay(v any) string {
	switch x := v.(type) {
	case int:
		return humanize.Comma(int64(x))
	case *int:
		if x == nil {
			return "–"
		}
		return humanize.Comma(int64(*x))
	case float64:
		return humanize.FormatFloat("#,###.##", x)
	case *float64:
		if x == nil {
			return "–"
		}
		return humanize.FormatFloat("#,###.##", *x)
	case *string:
		if x == nil {
			return "–"
		}
		return *x
	default:
		return cellString(v)
	}
}

// cellValue reads a numeric cell, false when the cell is not a number
func cellValue(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case *int:
		if x == nil {
			return 0, false
		}
		return float64(*x), true
	case float64:
		return x, true
	case *float64:
		if x == nil {
			return 0, false
		}
		return *x, true
	default:
		return 0, false
	}
}

// jsonCell unwraps pointers so JSON output carries values or null
func jsonCell(v any) any {
	switch x := v.(type) {
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case *int:
		if x == nil {
			return nil
		}
		return *x
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	default:
		return v
	}
}

package csvtable

import (
	"fmt"
	"strconv"

	"github.com/couchcryptid/collision-enrichment/internal/domain"
)

// FormatCell renders one typed cell of an enriched row. Floats use the
// shortest representation that round-trips, flags are 0/1 and an absent
// value is the empty string.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case domain.Date:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

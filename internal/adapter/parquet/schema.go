package parquet

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/collision-enrichment/internal/domain"
)

// Schema returns parquet-go column metadata for the enriched columns. Every
// column is OPTIONAL so absent values are stored as nulls.
func Schema(cols []domain.Column) ([]string, error) {
	md := make([]string, len(cols))
	for i, c := range cols {
		if strings.ContainsAny(c.Name, ",=\t") {
			return nil, &domain.SchemaError{Table: "output", Column: c.Name, Reason: "name not representable in parquet metadata"}
		}
		var typ string
		switch c.Kind {
		case domain.KindDate:
			typ = "type=INT32, convertedtype=DATE"
		case domain.KindFloat:
			typ = "type=DOUBLE"
		case domain.KindFlag:
			typ = "type=INT32, convertedtype=INT_8"
		case domain.KindInt:
			typ = "type=INT64"
		case domain.KindString:
			typ = "type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"
		default:
			return nil, fmt.Errorf("column %q: unknown kind %d", c.Name, c.Kind)
		}
		md[i] = fmt.Sprintf("name=%s, %s, repetitiontype=OPTIONAL", c.Name, typ)
	}
	return md, nil
}

// physical converts a typed cell to the value parquet-go expects for its
// column type.
func physical(v any) any {
	switch x := v.(type) {
	case domain.Date:
		return int32(x)
	case bool:
		if x {
			return int32(1)
		}
		return int32(0)
	default:
		return v
	}
}

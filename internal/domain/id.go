package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// EventID produces a deterministic ID for the event at input position row.
// The row index is part of the key because the events table may hold
// identical rows. Re-running on the same input yields the same IDs.
func EventID(row int, e Event) string {
	lat, lon := "", ""
	if e.Location.Valid {
		lat = fmt.Sprintf("%.6f", e.Location.Lat)
		lon = fmt.Sprintf("%.6f", e.Location.Lon)
	}
	input := fmt.Sprintf("%d|%s|%s|%s|%s", row, e.Date, lat, lon, e.Severity)
	hash := sha256.Sum256([]byte(input))
	return "col-" + hex.EncodeToString(hash[:8])
}

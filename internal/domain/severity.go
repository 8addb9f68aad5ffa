package domain

import (
	"fmt"
	"strings"
)

// Severity is the two-bucket collision severity.
type Severity string

const (
	SeverityInjury         Severity = "Injury"
	SeverityPropertyDamage Severity = "Property Damage Only"
)

// ParseSeverity applies the project's single severity policy: "Fatal"
// collapses into Injury, so the enriched table only ever carries two buckets.
// Matching is case-insensitive; any other label is rejected.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "injury", "fatal":
		return SeverityInjury, nil
	case "property damage only", "pdo":
		return SeverityPropertyDamage, nil
	default:
		return "", fmt.Errorf("unknown severity %q", s)
	}
}

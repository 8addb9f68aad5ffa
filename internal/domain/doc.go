// Package domain enriches traffic collision records with daily weather and
// the nearest speed camera.
//
// # Input Conventions
//
// Three canonical tables arrive already cleaned:
//
//	events     one row per collision: date, lat, lon, severity, plus any
//	           pass-through columns (borough, street names, ...)
//	weather    one row per calendar day: date plus numeric covariates such as
//	           precipitation, rain, snow, temperature_max
//	landmarks  one row per speed camera: lat, lon plus string attributes
//
// Dates are calendar days with no time zone. Coordinates are WGS-84 degrees.
// A collision with an empty lat or lon has no location; one outside
// [-90, 90] x [-180, 180] is out of range. Neither is an error: the row is
// kept and its proximity fields are left absent.
//
// # Weather Join
//
// Events join to weather many-to-one on date. A weather date that appears
// twice is a [CardinalityViolation]; rows are never deduplicated. The
// precipitation flag is authoritative: it is true exactly when any of
// precipitation, rain or snow is positive, and an event with no weather row
// for its date gets a false flag rather than an absent one. Other weather
// columns are copied through under a wx_ prefix.
//
// # Nearest Camera
//
// Distances are haversine on a sphere of radius 6,371,000 m. Every camera is
// compared against every event ([BruteForceIndex]); events are processed in
// fixed-size chunks so the result is identical for any chunk size or worker
// count. Ties go to the camera with the lowest ID, where the ID is the
// camera's position in the landmarks file.
//
// # Severity
//
// Two buckets: Injury and Property Damage Only. Source files that carry a
// separate Fatal label are folded into Injury by [ParseSeverity].
//
// # ID Generation
//
// Published rows carry a deterministic SHA-256 ID of row|date|lat|lon|severity
// so sinks can be replayed without duplicates. See [EventID].
package domain

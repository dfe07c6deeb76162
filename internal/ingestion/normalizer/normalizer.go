// Package normalizer canonicalises field representations before validation.
package normalizer

import (
	"regexp"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion"
)

// isoInstant matches "<date>T<time>Z", e.g. 2021-07-27T16:02:08Z.
var isoInstant = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})T(\d{2}:\d{2}:\d{2}(?:\.\d+)?)Z$`)

// NormalizeField rewrites "<date>T<time>Z" as "<date> <time>". Any other
// value is returned unchanged.
func NormalizeField(v string) string {
	m := isoInstant.FindStringSubmatch(v)
	if m == nil {
		return v
	}
	return m[1] + " " + m[2]
}

// Normalize returns rows with every hire-event field normalised. Rows of
// other entity types are returned as is. The input slice is not modified.
func Normalize(entity ingestion.EntityType, rows []ingestion.RawRow) []ingestion.RawRow {
	if entity != ingestion.HireEvent {
		return rows
	}
	out := make([]ingestion.RawRow, len(rows))
	for i, row := range rows {
		fields := make([]string, len(row.Fields))
		for j, f := range row.Fields {
			fields[j] = NormalizeField(f)
		}
		out[i] = ingestion.RawRow{Line: row.Line, Fields: fields}
	}
	return out
}

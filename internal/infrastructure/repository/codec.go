// Package repository adapts the generic document-store port to the typed
// repositories the core services consume. All record <-> domain mapping and
// timestamp normalization happens here, so services only ever see typed
// events with proper time.Time fields.
package repository

import (
	"time"

	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

// parseTime normalizes the timestamp encodings found in the wild: native
// time values, RFC3339 strings (the writer's own format) and numeric
// epoch-milliseconds left behind by earlier clients. Unparseable values
// yield the zero time, which sorts first and pairs with nothing.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
		return time.Time{}
	case int64:
		return time.UnixMilli(t).UTC()
	case int:
		return time.UnixMilli(int64(t)).UTC()
	case float64:
		return time.UnixMilli(int64(t)).UTC()
	}
	return time.Time{}
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func recString(rec ports.Record, field string) string {
	s, _ := rec[field].(string)
	return s
}

func recInt64(rec ports.Record, field string) int64 {
	switch n := rec[field].(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

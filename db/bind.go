package db

import (
	"database/sql/driver"
	"fmt"
	"math"
	"time"
)

// normalize converts bound values to the driver types they are sent as:
// integers as int64, floats as float64, and anything unknown as its text.
func normalize(args []any) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		out[i] = normalizeValue(arg)
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case nil, string, []byte, bool, int64, float64, time.Time, driver.Valuer:
		return v
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint:
		if uint64(v) > math.MaxInt64 {
			return fmt.Sprint(v)
		}
		return int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return fmt.Sprint(v)
		}
		return int64(v)
	case float32:
		return float64(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

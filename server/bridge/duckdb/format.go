package duckdb

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gear6io/quackview/server/types"
	"github.com/google/uuid"
	goduckdb "github.com/marcboeker/go-duckdb/v2"
)

// formatCell renders one scanned value. dbType is the engine type name of
// the column and only matters for temporal and UUID values.
func formatCell(v any, dbType string) string {
	switch val := v.(type) {
	case nil:
		return types.NullCell
	case []byte:
		// the driver hands UUIDs over as their 16 raw bytes
		if dbType == "UUID" && len(val) == 16 {
			return uuid.UUID(val).String()
		}
		return fmt.Sprintf("BLOB(%d)", len(val))
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case *big.Int:
		return val.String()
	case time.Time:
		return formatTime(val, dbType)
	case goduckdb.Interval:
		return fmt.Sprintf("%d months %d days %d us", val.Months, val.Days, val.Micros)
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = formatCell(e, "")
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + formatCell(val[k], "")
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func formatTime(t time.Time, dbType string) string {
	switch strings.ToUpper(dbType) {
	case "DATE":
		return t.Format("2006-01-02")
	case "TIME":
		return t.Format("15:04:05.999999")
	default:
		return t.Format(time.RFC3339Nano)
	}
}

package document

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// asFloat accepts JSON numbers, Go numerics and numeric strings.
func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x) && !math.IsInf(x, 0)
	case float32:
		return asFloat(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return asFloat(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return asFloat(f)
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func floatOr(v any, def float64) float64 {
	if f, ok := asFloat(v); ok {
		return f
	}
	return def
}

// intOr truncates toward zero like an integer cast.
func intOr(v any, def int) int {
	f, ok := asFloat(v)
	if !ok || f > math.MaxInt32 || f < math.MinInt32 {
		return def
	}
	return int(f)
}

// asBool returns nil when v carries no usable truth value.
func asBool(v any) *bool {
	switch x := v.(type) {
	case bool:
		return Bool(x)
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "y", "1":
			return Bool(true)
		case "false", "no", "n", "0":
			return Bool(false)
		}
		return nil
	case nil:
		return nil
	default:
		if f, ok := asFloat(v); ok {
			return Bool(f != 0)
		}
		return nil
	}
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}

// maxExactInt bounds the integers a float64 holds exactly.
const maxExactInt = 1 << 53

func exactInt(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) < maxExactInt
}

// NormalizeID normalises an identifier: integral numbers lose their fraction ("12.0" -> "12").
// Strings beyond float64 integer precision are kept as written. Booleans and unusable values give "".
func NormalizeID(v any) string {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return strconv.FormatInt(n, 10)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && exactInt(f) {
			return strconv.FormatInt(int64(f), 10)
		}
		return s
	}
	f, ok := asFloat(v)
	if !ok {
		return ""
	}
	if _, isBool := v.(bool); isBool {
		return ""
	}
	if exactInt(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

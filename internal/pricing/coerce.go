package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Option values arrive decoded from JSON, so the coercions below follow the
// loose rules web clients expect: 3 and "3" are the same enum value, 1 is a
// checked box and an empty quantity counts as zero.

func toString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return formatNumber(v, 64)
	case float32:
		return formatNumber(float64(v), 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return formatNumber(f, 64)
		}
		return v.String()
	}
	return fmt.Sprint(raw)
}

// formatNumber renders f the way browsers print numbers, switching to
// exponent notation (1e+21, 1.5e-7) outside [1e-6, 1e21).
func formatNumber(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, bitSize)
	}
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, bitSize), "e")
	digits := strings.TrimLeft(exp[1:], "0")
	return mant + "e" + exp[:1] + digits
}

func toBool(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	case int:
		return v != 0
	case int64:
		return v != 0
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	}
	return true
}

func toNumber(raw any) float64 {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case bool:
		if v {
			f = 1
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	}
	if math.IsNaN(f) {
		return 0
	}
	return f
}

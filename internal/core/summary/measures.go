package summary

import "github.com/shopspring/decimal"

// ExtractDecimal coerces a dynamic measure value into an exact decimal.
// JSON numbers unmarshal to float64 in Go — that's the common path;
// NewFromFloat converts it to an exact decimal representation.
// The second return is false when the value is not a recognized numeric type.
func ExtractDecimal(v interface{}) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), true
	case float32:
		return decimal.NewFromFloat(float64(val)), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case int32:
		return decimal.NewFromInt(int64(val)), true
	case string:
		d, err := decimal.NewFromString(val)
		if err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

package conv

import (
	"fmt"
	"math"
)

// Integer is the set of integer types accepted by the checked conversions.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func isNegative[I Integer](v I) bool {
	return v < 0
}

// Uint32 converts v to uint32, failing on negative values or overflow.
func Uint32[I Integer](v I) (uint32, error) {
	if isNegative(v) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32 (negative)", v)
	}
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32 (too large)", v)
	}
	return uint32(v), nil
}

// Uint64 converts v to uint64, failing on negative values.
func Uint64[I Integer](v I) (uint64, error) {
	if isNegative(v) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint64 (negative)", v)
	}
	return uint64(v), nil
}

// Int converts v to int, failing if it does not fit.
func Int[I Integer](v I) (int, error) {
	if isNegative(v) {
		if int64(v) < math.MinInt {
			return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (too small)", v)
		}
		return int(v), nil
	}
	if uint64(v) > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (too large)", v)
	}
	return int(v), nil
}

// Int64 converts v to int64, failing if it does not fit.
func Int64[I Integer](v I) (int64, error) {
	if !isNegative(v) && uint64(v) > math.MaxInt64 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int64 (too large)", v)
	}
	return int64(v), nil
}

package validate

import (
	"errors"
	"strconv"
)

var errNotNumber = errors.New("not a number")

// ToInt converts a decoded JSON value to an int. Numbers are truncated toward
// zero; strings must parse as a plain integer.
func ToInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, errNotNumber
		}
		return parsed, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, errNotNumber
	}
}

// ToFloat converts a decoded JSON value to a float64. Strings must parse as a
// decimal number.
func ToFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, errNotNumber
		}
		return parsed, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, errNotNumber
	}
}

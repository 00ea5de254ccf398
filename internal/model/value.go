package model

import (
	"encoding/json"
	"math"
	"strconv"
)

// Value is a float that may be absent, e.g. a rolling statistic before its
// window has filled. Comparisons involving an absent operand are false.
type Value struct {
	V     float64
	Valid bool
}

// Some wraps a present value.
func Some(v float64) Value { return Value{V: v, Valid: true} }

// None is the absent value.
func None() Value { return Value{} }

// Less reports a < b; false if either is absent.
func (a Value) Less(b Value) bool { return a.Valid && b.Valid && a.V < b.V }

// Greater reports a > b; false if either is absent.
func (a Value) Greater(b Value) bool { return a.Valid && b.Valid && a.V > b.V }

// Add returns a+b, absent if either is absent.
func (a Value) Add(b Value) Value {
	if !a.Valid || !b.Valid {
		return None()
	}
	return Some(a.V + b.V)
}

// Sub returns a-b, absent if either is absent.
func (a Value) Sub(b Value) Value {
	if !a.Valid || !b.Valid {
		return None()
	}
	return Some(a.V - b.V)
}

// Scale returns k*a, absent if a is absent.
func (a Value) Scale(k float64) Value {
	if !a.Valid {
		return None()
	}
	return Some(k * a.V)
}

// Or returns a if present, otherwise fallback.
func (a Value) Or(fallback Value) Value {
	if a.Valid {
		return a
	}
	return fallback
}

// Float returns the value, or NaN if absent.
func (a Value) Float() float64 {
	if !a.Valid {
		return math.NaN()
	}
	return a.V
}

// String formats the value for CSV output; absent values are empty.
func (a Value) String() string {
	if !a.Valid {
		return ""
	}
	return strconv.FormatFloat(a.V, 'f', -1, 64)
}

// MarshalJSON encodes absent values as null.
func (a Value) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.V)
}

// UnmarshalJSON decodes null as absent.
func (a *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Some(v)
	return nil
}

// MaxValue returns the larger of a and b; an absent operand yields the other.
func MaxValue(a, b Value) Value {
	switch {
	case !a.Valid:
		return b
	case !b.Valid:
		return a
	case b.V > a.V:
		return b
	default:
		return a
	}
}

// MinValue returns the smaller of a and b; an absent operand yields the other.
func MinValue(a, b Value) Value {
	switch {
	case !a.Valid:
		return b
	case !b.Valid:
		return a
	case b.V < a.V:
		return b
	default:
		return a
	}
}

package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a JSON request field that accepts a number or a numeric string.
// Decoding never fails: a field that is present but not numeric is recorded
// as invalid so every rejected field can be reported together.
type Number struct {
	Value float64
	Set   bool
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	n.Set = true

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		n.Value, n.Valid = v, true
	case string:
		s := strings.TrimSpace(v)
		if f, err := strconv.ParseFloat(s, 64); err == nil && s != "" {
			n.Value, n.Valid = f, true
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set || !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Float returns the value, or NaN when the field is missing or not numeric
func (n Number) Float() float64 {
	if !n.Set || !n.Valid {
		return math.NaN()
	}
	return n.Value
}

// Optional returns nil for a missing field and a pointer to Float otherwise
func (n Number) Optional() *float64 {
	if !n.Set {
		return nil
	}
	v := n.Float()
	return &v
}

// NewNumber returns a valid Number holding v
func NewNumber(v float64) Number {
	return Number{Value: v, Set: true, Valid: true}
}

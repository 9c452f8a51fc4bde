package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Literal is a sealed interface representing a constant value in a filter
// expression. Only Null, String, Int, Float, and Bool implement it.
type Literal interface {
	literal() // Sealed - only these types implement it
}

// Null represents SQL/JSON null.
// Using an explicit type ensures all Literals satisfy the sealed interface.
type Null struct{}

func (Null) literal() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String represents a string literal.
type String string

func (String) literal() {}

// Int represents an integer literal. Always int64.
type Int int64

func (Int) literal() {}

// Float represents a floating point literal.
type Float float64

func (Float) literal() {}

// Bool represents a boolean literal.
type Bool bool

func (Bool) literal() {}

// Param converts a Literal to a value accepted by database/sql drivers.
// Null becomes nil; the remaining types become their Go native equivalents.
func Param(l Literal) (any, error) {
	switch val := l.(type) {
	case Null:
		return nil, nil
	case String:
		return string(val), nil
	case Int:
		return int64(val), nil
	case Float:
		return float64(val), nil
	case Bool:
		return bool(val), nil
	default:
		return nil, fmt.Errorf("unsupported literal type for SQL parameter: %T", l)
	}
}

// FromGo converts a decoded Go value to a Literal.
//
// Accepts the shapes produced by encoding/json, yaml.v3 and CUE decoding:
// nil, bool, string, all integer kinds, float32/float64 and json.Number.
// Integral floats stay Float; callers wanting Int must decode as integers.
func FromGo(v any) (Literal, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Literal:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint:
		if uint64(val) > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(val), nil
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case json.Number:
		return numberLiteral(val)
	default:
		return nil, fmt.Errorf("unsupported literal type: %T", v)
	}
}

// numberLiteral keeps integers as Int and everything else as Float.
func numberLiteral(n json.Number) (Literal, error) {
	s := string(n)
	if !strings.ContainsAny(s, ".eE") {
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", s)
		}
		return Int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %s: %w", s, err)
	}
	return Float(f), nil
}

// MarshalLiteral marshals a Literal to JSON bytes.
func MarshalLiteral(l Literal) ([]byte, error) {
	switch val := l.(type) {
	case Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(string(val))
	case Int:
		return json.Marshal(int64(val))
	case Float:
		return json.Marshal(float64(val))
	case Bool:
		return json.Marshal(bool(val))
	default:
		return nil, fmt.Errorf("unknown literal type: %T", l)
	}
}

// UnmarshalLiteral decodes a JSON scalar into a Literal.
// Arrays and objects are rejected: constants are always scalars.
func UnmarshalLiteral(data []byte) (Literal, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	switch raw.(type) {
	case []any, map[string]any:
		return nil, fmt.Errorf("literal must be a scalar, got %s", bytes.TrimSpace(data))
	}
	return FromGo(raw)
}

// SQLLiteral renders a Literal as inline SQL text.
//
// The output is for display only (logs, verbose CLI output). Executed
// statements always bind literals as parameters.
func SQLLiteral(l Literal) string {
	switch val := l.(type) {
	case Null:
		return "null"
	case String:
		return "'" + strings.ReplaceAll(string(val), "'", "''") + "'"
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case Bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("<%T>", l)
	}
}

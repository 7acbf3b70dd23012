// Copyright 2024 Quill Authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package quill

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// ValueKind enumerates the kinds of scalar a [Value] can hold.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindDecimal
	KindString
	KindTime
	KindRaw
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	case KindRaw:
		return "raw"
	}
	return "unknown"
}

// Value is the bind-parameter payload type. It is a tagged union over the
// scalar kinds a database driver can accept, plus a raw JSON kind for
// structured payloads. A Value is immutable once constructed.
//
// Values appear in two places: as parameters of a rendered [Expression], and
// as cells of a [Row] returned from a [DataSource].
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string // string, decimal
	t    time.Time
	raw  json.RawMessage
}

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean into a Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer into a Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a float into a Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Decimal wraps an exact decimal literal into a Value. The text is passed to
// the driver verbatim, so precision is never lost to a float conversion.
func Decimal(s string) Value { return Value{kind: KindDecimal, s: s} }

// String wraps a string into a Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Time wraps a timestamp into a Value.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Raw wraps an arbitrary JSON-marshalable payload into a Value.
func Raw(v any) (Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("cannot convert %T to raw value: %s", v, err)
	}
	return Value{kind: KindRaw, raw: data}, nil
}

// ToValue converts a native Go scalar into a Value. A Value passes through
// unchanged. Unsupported types are an error naming the type, they are never
// silently stringified.
func ToValue(v any) (Value, error) {
	switch v := v.(type) {
	case Value:
		return v, nil
	case nil:
		return Null(), nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return Value{}, fmt.Errorf("cannot use %d as a query parameter: out of int64 range", v)
		}
		return Int(int64(v)), nil
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return Value{}, fmt.Errorf("cannot use %d as a query parameter: out of int64 range", v)
		}
		return Int(int64(v)), nil
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case string:
		return String(v), nil
	case time.Time:
		return Time(v), nil
	case json.RawMessage:
		return Value{kind: KindRaw, raw: v}, nil
	}
	return Value{}, fmt.Errorf("cannot use %T as a query parameter", v)
}

// Kind returns the kind tag of the value.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload. Zero value for other kinds.
func (v Value) Bool() bool { return v.b }

// Int returns the integer payload. Zero value for other kinds.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload. Zero value for other kinds.
func (v Value) Float() float64 { return v.f }

// String returns the string or decimal payload. Empty for other kinds.
func (v Value) String() string { return v.s }

// Time returns the timestamp payload. Zero value for other kinds.
func (v Value) Time() time.Time { return v.t }

// Raw returns the raw JSON payload. Nil for other kinds.
func (v Value) Raw() json.RawMessage { return v.raw }

// driverArg converts the value into an argument acceptable by database/sql.
func (v Value) driverArg() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindDecimal, KindString:
		return v.s
	case KindTime:
		return v.t
	case KindRaw:
		return []byte(v.raw)
	}
	return nil
}

// literal renders the value as SQL literal text. Used only by
// [Expression.Preview]; previews must never be sent to a server.
func (v Value) literal() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%v", v.f)
	case KindDecimal:
		return v.s
	case KindString:
		return "'" + strings.ReplaceAll(v.s, "'", "''") + "'"
	case KindTime:
		return "'" + v.t.Format(time.RFC3339) + "'"
	case KindRaw:
		return "'" + strings.ReplaceAll(string(v.raw), "'", "''") + "'"
	}
	return "NULL"
}

// Package core has the in-memory tabular engine: row materialization from
// time-series payloads, the immutable Table with its query operations, and
// descriptive statistics.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags the dynamic type of a Value.
type Kind uint8

// All value kinds, in comparison order. Null sorts before everything else.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindTime
)

// Value is a dynamically typed scalar cell: string, number, bool, timestamp or
// null. Rows are open-ended maps of column name to Value, so grouping columns
// of any scalar type can be discovered at materialization time.
type Value struct {
	kind Kind
	num  float64
	str  string
	boo  bool
	ts   time.Time
}

// Null returns the null Value. The zero Value is also null.
func Null() Value { return Value{} }

// Bool wraps a boolean as a Value.
func Bool(b bool) Value { return Value{kind: KindBool, boo: b} }

// Number wraps a float as a Value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String wraps a string as a Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Time wraps a timestamp as a Value.
func Time(t time.Time) Value { return Value{kind: KindTime, ts: t} }

// FromAny converts a decoded JSON scalar into a Value. Unsupported types are
// flattened to their string form rather than rejected, since grouping columns
// only need a stable identity.
func FromAny(v any) Value {
	switch typed := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(typed)
	case float64:
		return Number(typed)
	case int:
		return Number(float64(typed))
	case int64:
		return Number(float64(typed))
	case string:
		return String(typed)
	case time.Time:
		return Time(typed)
	default:
		return String(fmt.Sprintf("%v", typed))
	}
}

// Kind returns the value's dynamic type tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsNumber returns the numeric content, with ok false for non-numbers.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsBool returns the boolean content, with ok false for non-bools.
func (v Value) AsBool() (bool, bool) {
	return v.boo, v.kind == KindBool
}

// AsString returns the string content, with ok false for non-strings.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsTime returns the timestamp content, with ok false for non-timestamps.
func (v Value) AsTime() (time.Time, bool) {
	return v.ts, v.kind == KindTime
}

// AsAny unwraps the value to its native Go type, with nil for null. Used when
// handing cells to encoding layers (JSON, SQL, parquet).
func (v Value) AsAny() any {
	switch v.kind {
	case KindBool:
		return v.boo
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindTime:
		return v.ts
	default:
		return nil
	}
}

// String renders the value for human consumption.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.boo)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return v.str
	case KindTime:
		return v.ts.Format(time.RFC3339)
	default:
		return "null"
	}
}

// Compare defines a total order over values: null sorts before everything,
// values of the same kind compare naturally, and values of different kinds
// fall back to their kind tags. NaN sorts before all other numbers.
func (v Value) Compare(other Value) int {
	if v.kind != other.kind {
		if v.kind < other.kind {
			return -1
		}
		return 1
	}
	switch v.kind {
	case KindBool:
		switch {
		case v.boo == other.boo:
			return 0
		case other.boo:
			return -1
		default:
			return 1
		}
	case KindNumber:
		return compareFloats(v.num, other.num)
	case KindString:
		return strings.Compare(v.str, other.str)
	case KindTime:
		return v.ts.Compare(other.ts)
	default:
		return 0
	}
}

// Equal reports whether two values are the same kind and content.
func (v Value) Equal(other Value) bool {
	return v.Compare(other) == 0
}

func compareFloats(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return -1
	case bNaN:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// keySeparator joins encoded values in composite keys. Encoded strings escape
// it, so null, 0, false and look-alike string literals can never collide.
const keySeparator = "\x1f"

var keyEscaper = strings.NewReplacer(`\`, `\\`, keySeparator, `\u`)

var keyUnescaper = strings.NewReplacer(`\u`, keySeparator, `\\`, `\`)

// Encode serializes the value to a kind-tagged string that is unambiguous
// inside composite keys and reversible via DecodeValue.
func (v Value) Encode() string {
	switch v.kind {
	case KindBool:
		if v.boo {
			return "b:1"
		}
		return "b:0"
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return "s:" + keyEscaper.Replace(v.str)
	case KindTime:
		return "t:" + strconv.FormatInt(v.ts.UnixNano(), 10)
	default:
		return "z"
	}
}

// DecodeValue reverses Encode. Timestamps come back in UTC; callers that need
// wall-clock rendering reattach the network offset.
func DecodeValue(encoded string) (Value, error) {
	if encoded == "z" {
		return Null(), nil
	}
	if len(encoded) < 2 || encoded[1] != ':' {
		return Null(), fmt.Errorf("malformed encoded value %q", encoded)
	}
	body := encoded[2:]
	switch encoded[0] {
	case 'b':
		return Bool(body == "1"), nil
	case 'n':
		f, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return Null(), fmt.Errorf("malformed encoded number %q: %w", encoded, err)
		}
		return Number(f), nil
	case 's':
		return String(keyUnescaper.Replace(body)), nil
	case 't':
		nanos, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return Null(), fmt.Errorf("malformed encoded timestamp %q: %w", encoded, err)
		}
		return Time(time.Unix(0, nanos).UTC()), nil
	default:
		return Null(), fmt.Errorf("unrecognized value kind in %q", encoded)
	}
}

// EncodeKey builds a composite key from values in order. Distinct value tuples
// always produce distinct keys.
func EncodeKey(values []Value) string {
	encoded := make([]string, len(values))
	for i, v := range values {
		encoded[i] = v.Encode()
	}
	return strings.Join(encoded, keySeparator)
}

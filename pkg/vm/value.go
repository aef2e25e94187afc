package vm

import (
	"strconv"
	"strings"

	"github.com/kosayoda/gochicken/pkg/errs"
)

type ValueKind uint8

const (
	IntValue ValueKind = iota
	StringValue
	StackRefValue
)

// Value is a single stack cell.
type Value struct {
	Kind ValueKind
	Num  int64
	Text string
}

func Int(n int64) Value {
	return Value{Kind: IntValue, Num: n}
}

func Bool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

func Str(s string) Value {
	return Value{Kind: StringValue, Text: s}
}

func stackRef() Value {
	return Value{Kind: StackRefValue}
}

func (v Value) String() string {
	switch v.Kind {
	case IntValue:
		return strconv.FormatInt(v.Num, 10)
	case StringValue:
		return v.Text
	default:
		return "[stack]"
	}
}

// Truthy follows the usual rules: zero and the empty string are false.
func (v Value) Truthy() bool {
	switch v.Kind {
	case IntValue:
		return v.Num != 0
	case StringValue:
		return v.Text != ""
	default:
		return true
	}
}

// ToInt coerces numeric strings, anything else non-integer is a type mismatch.
func (v Value) ToInt() (int64, error) {
	switch v.Kind {
	case IntValue:
		return v.Num, nil
	case StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Text), 10, 64)
		if err != nil {
			return 0, errs.TypeMismatch.Errorf("%q is not a number", v.Text)
		}
		return n, nil
	default:
		return 0, errs.TypeMismatch.New("stack reference is not a number")
	}
}

func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case IntValue:
		return v.Num == o.Num
	case StringValue:
		return v.Text == o.Text
	default:
		return true
	}
}

type values []Value

func (vs values) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vs {
		if i > 0 {
			sb.WriteString(", ")
		}
		if v.Kind == StringValue {
			sb.WriteString(strconv.Quote(v.Text))
		} else {
			sb.WriteString(v.String())
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

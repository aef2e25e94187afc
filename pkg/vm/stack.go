package vm

import (
	"github.com/kosayoda/gochicken/pkg/errs"
	"github.com/kosayoda/gochicken/pkg/lexer"
)

const (
	slotSelf  = 0
	slotInput = 1
	codeBase  = 2
)

// Stack holds the program and the runtime data in one sequence:
// the self reference, the argument string, one slot per line,
// the exit sentinel, then data. Pops never go below the data region.
type Stack struct {
	values []Value
	floor  int
}

func NewStack(program lexer.Program, argument string) *Stack {
	values := make([]Value, 0, codeBase+program.Len()+1+16)
	values = append(values, stackRef(), Str(argument))
	for _, c := range program {
		values = append(values, Int(int64(c)))
	}
	values = append(values, Int(0))
	return &Stack{values: values, floor: len(values)}
}

func (s *Stack) Push(v Value) {
	s.values = append(s.values, v)
}

func (s *Stack) Pop() (Value, error) {
	if len(s.values) <= s.floor {
		return Value{}, errs.StackUnderflow.New("empty data stack")
	}
	v := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return v, nil
}

func (s *Stack) Peek() (Value, error) {
	if len(s.values) <= s.floor {
		return Value{}, errs.StackUnderflow.New("empty data stack")
	}
	return s.values[len(s.values)-1], nil
}

// At returns the value at an absolute address.
func (s *Stack) At(addr int64) (Value, bool) {
	if addr < 0 || addr >= int64(len(s.values)) {
		return Value{}, false
	}
	return s.values[addr], true
}

// Set overwrites an absolute address, including the program region.
func (s *Stack) Set(addr int64, v Value) error {
	if addr < 0 || addr >= int64(len(s.values)) {
		return errs.AddressOutOfRange.Errorf("address %d is outside the stack of %d", addr, len(s.values))
	}
	s.values[addr] = v
	return nil
}

func (s *Stack) Len() int {
	return len(s.values)
}

// Depth is the number of values in the data region.
func (s *Stack) Depth() int {
	return len(s.values) - s.floor
}

// Data returns a copy of the data region, bottom first.
func (s *Stack) Data() []Value {
	r := make([]Value, s.Depth())
	copy(r, s.values[s.floor:])
	return r
}

func (s *Stack) line(i int) (Value, bool) {
	return s.At(int64(codeBase + i))
}

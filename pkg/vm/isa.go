package vm

import (
	"strings"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/pkg/errors"

	"github.com/kosayoda/gochicken/pkg/errs"
)

// Binding pairs a line count with the operation it was bound to.
type Binding struct {
	Count int
	Op    Operation
}

// Table maps line counts to instructions for a single run.
type Table interface {
	Lookup(count int) (Instruction, error)
	// Bindings lists the counts seen so far in the order they were first looked up.
	Bindings() []Binding
}

// ISA is an instruction set. Each run gets a fresh table from it.
type ISA interface {
	Name() string
	NewTable() Table
	// HasResult reports whether the topmost data value is the program's result.
	HasResult() bool
}

// DefaultOperations is the canonical binding order of the dynamic instruction set.
var DefaultOperations = []Operation{
	OpPush,
	OpPrintInt,
	OpPrintChar,
	OpPushZero,
	OpPop,
	OpDup,
	OpAdd,
	OpSub,
	OpMul,
	OpDiv,
	OpGreater,
	OpLess,
	OpEqual,
	OpAnd,
	OpOr,
	OpNot,
	OpJump,
	OpJumpIf,
	OpReadInt,
	OpReadChar,
	OpHalt,
}

var (
	Dynamic ISA = NewDynamicISA(DefaultOperations...)
	Chicken ISA = chickenISA{}
)

// ISAByName resolves "dynamic" or "chicken".
func ISAByName(name string) (ISA, error) {
	switch strings.ToLower(name) {
	case "", Dynamic.Name():
		return Dynamic, nil
	case Chicken.Name():
		return Chicken, nil
	default:
		return nil, errors.Errorf("unknown instruction set %q", name)
	}
}

type dynamicISA struct {
	ops []Operation
}

// NewDynamicISA builds an instruction set that binds each new count to the
// next operation of ops.
func NewDynamicISA(ops ...Operation) ISA {
	return dynamicISA{ops: ops}
}

func (dynamicISA) Name() string {
	return "dynamic"
}

func (d dynamicISA) NewTable() Table {
	return &firstEncounterTable{ops: d.ops, bound: orderedmap.NewOrderedMap[int, Operation]()}
}

func (dynamicISA) HasResult() bool {
	return false
}

type firstEncounterTable struct {
	ops   []Operation
	bound *orderedmap.OrderedMap[int, Operation]
}

func (t *firstEncounterTable) Lookup(count int) (Instruction, error) {
	if op, ok := t.bound.Get(count); ok {
		return Instruction{Op: op}, nil
	}
	n := t.bound.Len()
	if n >= len(t.ops) {
		return Instruction{}, errs.OpcodeTableExhausted.Errorf("no operation left for count %d, all %d are bound", count, len(t.ops))
	}
	op := t.ops[n]
	t.bound.Set(count, op)
	return Instruction{Op: op}, nil
}

func (t *firstEncounterTable) Bindings() []Binding {
	return collect(t.bound)
}

type chickenISA struct{}

func (chickenISA) Name() string {
	return "chicken"
}

func (chickenISA) NewTable() Table {
	return &chickenTable{seen: orderedmap.NewOrderedMap[int, Operation]()}
}

func (chickenISA) HasResult() bool {
	return true
}

const chickenLiteralBase = 10

var chickenOps = [chickenLiteralBase]Operation{
	OpHalt,
	OpChicken,
	OpAdd,
	OpSub,
	OpMul,
	OpEqual,
	OpLoad,
	OpStore,
	OpRelJump,
	OpChar,
}

type chickenTable struct {
	seen *orderedmap.OrderedMap[int, Operation]
}

func (t *chickenTable) Lookup(count int) (Instruction, error) {
	var ins Instruction
	switch {
	case count < 0:
		return Instruction{}, errs.TypeMismatch.Errorf("negative count %d is not an instruction", count)
	case count < chickenLiteralBase:
		ins = Instruction{Op: chickenOps[count]}
	default:
		ins = Instruction{Op: OpPushLiteral, Arg: int64(count - chickenLiteralBase)}
	}
	if _, ok := t.seen.Get(count); !ok {
		t.seen.Set(count, ins.Op)
	}
	return ins, nil
}

func (t *chickenTable) Bindings() []Binding {
	return collect(t.seen)
}

func collect(m *orderedmap.OrderedMap[int, Operation]) []Binding {
	r := make([]Binding, 0, m.Len())
	for el := m.Front(); el != nil; el = el.Next() {
		r = append(r, Binding{Count: el.Key, Op: el.Value})
	}
	return r
}

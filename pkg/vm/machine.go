// Package vm executes token-count programs on a stack that holds both the
// program and its data.
package vm

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ccoveille/go-safecast"
	"github.com/pkg/errors"
	"github.com/qmuntal/stateless"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kosayoda/gochicken/pkg/errs"
	"github.com/kosayoda/gochicken/pkg/lexer"
)

type Option func(*Machine)

func WithISA(isa ISA) Option {
	return func(m *Machine) {
		m.isa = isa
	}
}

func WithInput(in Input) Option {
	return func(m *Machine) {
		m.in = in
	}
}

func WithOutput(out Output) Option {
	return func(m *Machine) {
		m.out = out
	}
}

// WithArgument sets the string placed in the input slot of the stack.
func WithArgument(s string) Option {
	return func(m *Machine) {
		m.argument = s
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Machine) {
		m.logger = l
	}
}

// Machine runs one program once. It is not safe for concurrent use,
// except for Steps.
type Machine struct {
	program  lexer.Program
	isa      ISA
	table    Table
	stack    *Stack
	argument string
	pc       int
	in       Input
	out      Output
	logger   *zap.Logger
	steps    atomic.Uint64
	state    State
	fsm      *stateless.StateMachine
}

func New(program lexer.Program, opts ...Option) *Machine {
	m := &Machine{
		program: program,
		isa:     Dynamic,
		in:      NewReaderInput(strings.NewReader("")),
		out:     NewWriterOutput(io.Discard),
		logger:  zap.L(),
		state:   StateReady,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("vm")
	m.table = m.isa.NewTable()
	m.stack = NewStack(program, m.argument)
	m.fsm = newLifecycle(&m.state)
	return m
}

func (m *Machine) ISA() ISA {
	return m.isa
}

func (m *Machine) State() State {
	return m.state
}

// PC is the index of the line to execute next.
func (m *Machine) PC() int {
	return m.pc
}

// Steps is the number of instructions executed so far.
func (m *Machine) Steps() uint64 {
	return m.steps.Load()
}

func (m *Machine) Bindings() []Binding {
	return m.table.Bindings()
}

func (m *Machine) Data() []Value {
	return m.stack.Data()
}

func (m *Machine) Top() (Value, bool) {
	v, err := m.stack.Peek()
	return v, err == nil
}

// Result is the topmost data value for instruction sets that produce one.
func (m *Machine) Result() (Value, bool) {
	if !m.isa.HasResult() {
		return Value{}, false
	}
	return m.Top()
}

// Run executes the program until it halts, fails or ctx is done.
func (m *Machine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return m.abandon(ctx.Err())
		default:
		}
		halted, err := m.Step()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}

// Step executes a single instruction and reports whether the run is over.
func (m *Machine) Step() (bool, error) {
	switch m.state {
	case StateReady:
		m.fire(startEvent)
		m.logger.Debug("Run started",
			zap.Uint64("fingerprint", m.program.Fingerprint()),
			zap.String("isa", m.isa.Name()),
			zap.Int("lines", m.program.Len()))
	case StateRunning:
	default:
		return true, errors.Errorf("machine is %s", m.state)
	}
	if m.pc >= m.program.Len() {
		m.halt()
		return true, nil
	}
	line := m.pc + 1
	count, err := m.fetch(m.pc)
	if err != nil {
		return true, m.fail(errs.AtLine(err, line))
	}
	ins, err := m.table.Lookup(count)
	if err != nil {
		return true, m.fail(errs.AtLine(err, line))
	}
	m.steps.Inc()
	next, halt, err := m.execute(ins)
	if err != nil {
		return true, m.fail(errs.AtLine(errs.Extend(err, ins.String()), line))
	}
	if ce := m.logger.Check(zapcore.DebugLevel, "Executed"); ce != nil {
		ce.Write(
			zap.Int("line", line),
			zap.Int("count", count),
			zap.Stringer("op", ins),
			zap.Stringer("data", values(m.stack.Data())))
	}
	if halt {
		m.halt()
		return true, nil
	}
	m.pc = next
	return false, nil
}

func (m *Machine) fetch(i int) (int, error) {
	v, ok := m.stack.line(i)
	if !ok || v.Kind != IntValue {
		return 0, errs.TypeMismatch.Errorf("line holds %q, not a count", v.String())
	}
	n, err := safecast.ToInt(v.Num)
	if err != nil {
		return 0, errs.TypeMismatch.Wrap(err, "count does not fit")
	}
	return n, nil
}

// operand reads the raw count of the line after the current one.
func (m *Machine) operand() (int64, error) {
	if m.pc+1 >= m.program.Len() {
		return 0, errs.OperandMissing.New("no operand line after the last line")
	}
	v, _ := m.stack.line(m.pc + 1)
	if v.Kind != IntValue {
		return 0, errs.TypeMismatch.Errorf("operand line holds %q, not a count", v.String())
	}
	return v.Num, nil
}

func (m *Machine) target(line int64) (int, error) {
	if line < 0 {
		return 0, errs.AddressOutOfRange.Errorf("jump to line %d", line)
	}
	t, err := safecast.ToInt(line)
	if err != nil {
		return 0, errs.AddressOutOfRange.Wrapf(err, "jump to line %d", line)
	}
	return t, nil
}

func (m *Machine) popInt() (int64, error) {
	v, err := m.stack.Pop()
	if err != nil {
		return 0, err
	}
	return v.ToInt()
}

func (m *Machine) popPair() (Value, Value, error) {
	b, err := m.stack.Pop()
	if err != nil {
		return Value{}, Value{}, err
	}
	a, err := m.stack.Pop()
	if err != nil {
		return Value{}, Value{}, err
	}
	return a, b, nil
}

func (m *Machine) popInts() (int64, int64, error) {
	a, b, err := m.popPair()
	if err != nil {
		return 0, 0, err
	}
	x, err := a.ToInt()
	if err != nil {
		return 0, 0, err
	}
	y, err := b.ToInt()
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func (m *Machine) execute(ins Instruction) (int, bool, error) {
	next := m.pc + 1
	var operand int64
	if ins.Op.hasOperand() {
		v, err := m.operand()
		if err != nil {
			return 0, false, err
		}
		operand = v
		next = m.pc + 2
	}
	switch ins.Op {
	case OpPush:
		m.stack.Push(Int(operand))
	case OpPushLiteral:
		m.stack.Push(Int(ins.Arg))
	case OpPushZero:
		m.stack.Push(Int(0))
	case OpChicken:
		m.stack.Push(Str(lexer.Token))
	case OpPop:
		if _, err := m.stack.Pop(); err != nil {
			return 0, false, err
		}
	case OpDup:
		v, err := m.stack.Peek()
		if err != nil {
			return 0, false, err
		}
		m.stack.Push(v)
	case OpPrintInt:
		n, err := m.popInt()
		if err != nil {
			return 0, false, err
		}
		if err := m.out.WriteInt(n); err != nil {
			return 0, false, err
		}
	case OpPrintChar:
		n, err := m.popInt()
		if err != nil {
			return 0, false, err
		}
		r, err := toRune(n)
		if err != nil {
			return 0, false, err
		}
		if err := m.out.WriteChar(r); err != nil {
			return 0, false, err
		}
	case OpAdd:
		a, b, err := m.popPair()
		if err != nil {
			return 0, false, err
		}
		if a.Kind == IntValue && b.Kind == IntValue {
			m.stack.Push(Int(a.Num + b.Num))
		} else {
			m.stack.Push(Str(a.String() + b.String()))
		}
	case OpSub, OpMul, OpDiv, OpGreater, OpLess:
		a, b, err := m.popInts()
		if err != nil {
			return 0, false, err
		}
		r, err := arithmetic(ins.Op, a, b)
		if err != nil {
			return 0, false, err
		}
		m.stack.Push(r)
	case OpEqual:
		a, b, err := m.popPair()
		if err != nil {
			return 0, false, err
		}
		m.stack.Push(Bool(a.Equal(b)))
	case OpAnd, OpOr:
		a, b, err := m.popPair()
		if err != nil {
			return 0, false, err
		}
		if ins.Op == OpAnd {
			m.stack.Push(Bool(a.Truthy() && b.Truthy()))
		} else {
			m.stack.Push(Bool(a.Truthy() || b.Truthy()))
		}
	case OpNot:
		a, err := m.stack.Pop()
		if err != nil {
			return 0, false, err
		}
		m.stack.Push(Bool(!a.Truthy()))
	case OpJump:
		t, err := m.target(operand)
		if err != nil {
			return 0, false, err
		}
		next = t
	case OpJumpIf:
		c, err := m.stack.Pop()
		if err != nil {
			return 0, false, err
		}
		if c.Truthy() {
			t, err := m.target(operand)
			if err != nil {
				return 0, false, err
			}
			next = t
		}
	case OpRelJump:
		offset, err := m.popInt()
		if err != nil {
			return 0, false, err
		}
		c, err := m.stack.Pop()
		if err != nil {
			return 0, false, err
		}
		if c.Truthy() {
			t, err := m.target(int64(next) + offset)
			if err != nil {
				return 0, false, err
			}
			next = t
		}
	case OpReadInt:
		n, err := m.in.ReadInt()
		if err != nil {
			return 0, false, err
		}
		m.stack.Push(Int(n))
	case OpReadChar:
		r, err := m.in.ReadChar()
		if err != nil {
			return 0, false, err
		}
		m.stack.Push(Int(int64(r)))
	case OpLoad:
		if err := m.load(operand); err != nil {
			return 0, false, err
		}
	case OpStore:
		addr, err := m.popInt()
		if err != nil {
			return 0, false, err
		}
		v, err := m.stack.Pop()
		if err != nil {
			return 0, false, err
		}
		if err := m.stack.Set(addr, v); err != nil {
			return 0, false, err
		}
	case OpChar:
		n, err := m.popInt()
		if err != nil {
			return 0, false, err
		}
		r, err := toRune(n)
		if err != nil {
			return 0, false, err
		}
		m.stack.Push(Str(string(r)))
	case OpHalt:
		return next, true, nil
	default:
		return 0, false, errors.Errorf("unsupported operation %s", ins.Op)
	}
	return next, false, nil
}

// load pushes an element of the stack or of a string slot; a missing element is "".
func (m *Machine) load(from int64) error {
	src, ok := m.stack.At(from)
	if !ok {
		return errs.AddressOutOfRange.Errorf("no load source at address %d", from)
	}
	idx, err := m.popInt()
	if err != nil {
		return err
	}
	switch src.Kind {
	case StackRefValue:
		v, ok := m.stack.At(idx)
		if !ok {
			v = Str("")
		}
		m.stack.Push(v)
	case StringValue:
		runes := []rune(src.Text)
		if idx < 0 || idx >= int64(len(runes)) {
			m.stack.Push(Str(""))
		} else {
			m.stack.Push(Str(string(runes[idx])))
		}
	default:
		return errs.TypeMismatch.Errorf("cannot load from %q", src.String())
	}
	return nil
}

func arithmetic(op Operation, a, b int64) (Value, error) {
	switch op {
	case OpSub:
		return Int(a - b), nil
	case OpMul:
		return Int(a * b), nil
	case OpDiv:
		if b == 0 {
			return Value{}, errs.DivideByZero.Errorf("%d / 0", a)
		}
		return Int(a / b), nil
	case OpGreater:
		return Bool(a > b), nil
	case OpLess:
		return Bool(a < b), nil
	default:
		return Value{}, errors.Errorf("%s is not arithmetic", op)
	}
}

func toRune(n int64) (rune, error) {
	r, err := safecast.ToInt32(n)
	if err != nil || !utf8.ValidRune(r) {
		return 0, errs.TypeMismatch.Errorf("%d is not a unicode character", n)
	}
	return r, nil
}

func (m *Machine) fire(event string) {
	if err := m.fsm.Fire(event); err != nil {
		m.logger.Error("Invalid lifecycle transition", zap.String("event", event), zap.Error(err))
	}
}

func (m *Machine) halt() {
	m.fire(haltEvent)
	m.logger.Debug("Halted", zap.Int("pc", m.pc), zap.Uint64("steps", m.Steps()))
}

func (m *Machine) fail(err error) error {
	m.fire(failEvent)
	m.logger.Debug("Failed", zap.Int("pc", m.pc), zap.Uint64("steps", m.Steps()), zap.Error(err))
	return err
}

func (m *Machine) abandon(cause error) error {
	if m.state == StateReady {
		m.fire(startEvent)
	}
	if m.state != StateRunning {
		return errors.Errorf("machine is %s", m.state)
	}
	return m.fail(errors.Wrap(cause, "run abandoned"))
}

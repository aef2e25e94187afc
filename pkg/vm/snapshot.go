package vm

import (
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// Snapshot is a detached copy of a machine's state.
type Snapshot struct {
	ISA      string
	State    State
	PC       int
	Steps    uint64
	Stack    []Value
	Bindings []Binding
}

// Data returns the data region of the snapshotted stack.
func (s Snapshot) Data(programLen int) []Value {
	floor := codeBase + programLen + 1
	if floor > len(s.Stack) {
		return nil
	}
	return s.Stack[floor:]
}

func (m *Machine) Snapshot() (Snapshot, error) {
	src := Snapshot{
		ISA:      m.isa.Name(),
		State:    m.state,
		PC:       m.pc,
		Steps:    m.Steps(),
		Stack:    m.stack.values,
		Bindings: m.table.Bindings(),
	}
	var dst Snapshot
	if err := copier.CopyWithOption(&dst, &src, copier.Option{DeepCopy: true}); err != nil {
		return Snapshot{}, errors.Wrap(err, "failed to copy machine state")
	}
	return dst, nil
}

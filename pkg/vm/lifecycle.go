package vm

import (
	"context"

	"github.com/qmuntal/stateless"
)

type State string

const (
	StateReady   State = "ready"
	StateRunning State = "running"
	StateHalted  State = "halted"
	StateFailed  State = "failed"
)

const (
	startEvent = "Start"
	haltEvent  = "Halt"
	failEvent  = "Fail"
)

// newLifecycle drives *state through ready -> running -> halted | failed.
func newLifecycle(state *State) *stateless.StateMachine {
	fsm := stateless.NewStateMachineWithExternalStorage(func(_ context.Context) (stateless.State, error) {
		return *state, nil
	}, func(_ context.Context, s stateless.State) error {
		*state = s.(State)
		return nil
	}, stateless.FiringImmediate)

	fsm.Configure(StateReady).
		Permit(startEvent, StateRunning)
	fsm.Configure(StateRunning).
		Permit(haltEvent, StateHalted).
		Permit(failEvent, StateFailed)
	fsm.Configure(StateHalted)
	fsm.Configure(StateFailed)
	return fsm
}

package runner

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/kosayoda/gochicken/pkg/errs"
	"github.com/kosayoda/gochicken/pkg/lexer"
	"github.com/kosayoda/gochicken/pkg/vm"
)

func TestRunKeepsJobOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	var jobs []Job
	for i := 0; i < 20; i++ {
		jobs = append(jobs, Job{
			Name:    fmt.Sprintf("job-%d", i),
			Program: lexer.Program{4, i, 7},
		})
	}
	reports := New(4, zaptest.NewLogger(t)).Run(context.Background(), jobs)
	require.Len(t, reports, len(jobs))
	for i, r := range reports {
		assert.Equal(t, jobs[i].Name, r.Name)
		assert.Equal(t, fmt.Sprint(i), r.Output)
		assert.Equal(t, jobs[i].Program.Fingerprint(), r.Fingerprint)
		assert.NoError(t, r.Err)
		assert.Equal(t, 0, r.ExitCode())
	}
}

func TestFailureDoesNotStopSiblings(t *testing.T) {
	defer goleak.VerifyNone(t)

	jobs := []Job{
		{Name: "underflow", Program: lexer.Program{1, 3, 2, 2}},
		{Name: "reads", Program: lexer.Program{1, 2}, ISA: vm.NewDynamicISA(vm.OpReadInt, vm.OpPrintInt), Input: "77"},
		{Name: "chicken", Program: lexer.Program{82, 9, 115, 9, 2}, ISA: vm.Chicken},
		{Name: "exhausted", Program: lexer.Program{1}, ISA: vm.NewDynamicISA(vm.OpReadInt)},
	}
	reports := Run(context.Background(), jobs, 2)

	assert.Equal(t, "3", reports[0].Output)
	assert.Equal(t, errs.StackUnderflow, reports[0].Kind())
	assert.Equal(t, 4, reports[0].ExitCode())

	assert.Equal(t, "77", reports[1].Output)
	assert.NoError(t, reports[1].Err)

	assert.True(t, reports[2].HasResult)
	assert.Equal(t, "Hi", reports[2].Result)

	assert.Equal(t, errs.InputExhausted, reports[3].Kind())
	assert.Equal(t, 5, reports[3].ExitCode())
}

func TestCancelledRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	jobs := []Job{{Name: "loop", Program: lexer.Program{1, 0}, ISA: vm.NewDynamicISA(vm.OpJump)}}
	reports := Run(ctx, jobs, 1)
	require.ErrorIs(t, reports[0].Err, context.Canceled)
	assert.Equal(t, 1, reports[0].ExitCode())
}

func TestReportJSON(t *testing.T) {
	r := Report{
		Name:        "hi",
		Fingerprint: 0xabc,
		Output:      "42",
		Steps:       2,
		Bindings:    []vm.Binding{{Count: 4, Op: vm.OpPush}, {Count: 7, Op: vm.OpPrintInt}},
	}
	doc, err := r.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "hi",
		"fingerprint": "abc",
		"status": 0,
		"kind": "Undefined",
		"error": null,
		"output": "42",
		"result": null,
		"steps": 2,
		"bindings": [{"count": 4, "op": "push"}, {"count": 7, "op": "print-int"}]
	}`, string(doc))

	r = Report{Name: "bad", Err: errs.AtLine(errs.DivideByZero.New("7 / 0"), 5), Result: "x", HasResult: true}
	doc, err = r.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "bad",
		"fingerprint": "0",
		"status": 6,
		"kind": "DivideByZero",
		"error": "line 5: 7 / 0",
		"output": "",
		"result": "x",
		"steps": 0,
		"bindings": []
	}`, string(doc))

	plain := Report{Err: errors.New("boom")}
	assert.Equal(t, 1, plain.ExitCode())
}

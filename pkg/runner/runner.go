// Package runner executes several programs concurrently, one machine each.
package runner

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/sjson"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kosayoda/gochicken/pkg/errs"
	"github.com/kosayoda/gochicken/pkg/lexer"
	"github.com/kosayoda/gochicken/pkg/vm"
)

type Job struct {
	Name    string
	Program lexer.Program
	ISA     vm.ISA
	// Input feeds read operations and fills the argument slot.
	Input string
}

type Report struct {
	Name        string
	Fingerprint uint64
	Output      string
	Result      string
	HasResult   bool
	Steps       uint64
	Bindings    []vm.Binding
	Err         error
}

func (r Report) Kind() errs.Kind {
	return errs.KindOf(r.Err)
}

func (r Report) ExitCode() int {
	return errs.ExitCode(r.Err)
}

// JSON renders the report as a single JSON object.
func (r Report) JSON() ([]byte, error) {
	var err error
	doc := []byte(`{}`)
	set := func(path string, v interface{}) {
		if err != nil {
			return
		}
		doc, err = sjson.SetBytes(doc, path, v)
	}
	set("name", r.Name)
	set("fingerprint", strconv.FormatUint(r.Fingerprint, 16))
	set("status", r.ExitCode())
	set("kind", r.Kind().String())
	if r.Err != nil {
		set("error", r.Err.Error())
	} else {
		set("error", nil)
	}
	set("output", r.Output)
	if r.HasResult {
		set("result", r.Result)
	} else {
		set("result", nil)
	}
	set("steps", r.Steps)
	set("bindings", []interface{}{})
	for i, b := range r.Bindings {
		set("bindings."+strconv.Itoa(i), map[string]interface{}{"count": b.Count, "op": b.Op.String()})
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to build report")
	}
	return doc, nil
}

// Runner executes jobs with at most Parallelism machines at a time.
type Runner struct {
	Parallelism int
	Logger      *zap.Logger
}

func New(parallelism int, logger *zap.Logger) *Runner {
	if parallelism < 1 {
		parallelism = 1
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Runner{Parallelism: parallelism, Logger: logger}
}

// Run returns one report per job in job order. A failing job never stops the others.
func (r *Runner) Run(ctx context.Context, jobs []Job) []Report {
	reports := make([]Report, len(jobs))
	g := new(errgroup.Group)
	g.SetLimit(r.Parallelism)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			reports[i] = r.runJob(ctx, job)
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

func (r *Runner) runJob(ctx context.Context, job Job) Report {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	isa := job.ISA
	if isa == nil {
		isa = vm.Dynamic
	}
	m := vm.New(job.Program,
		vm.WithISA(isa),
		vm.WithInput(vm.NewReaderInput(strings.NewReader(job.Input))),
		vm.WithArgument(job.Input),
		vm.WithOutput(vm.NewWriterOutput(buf)),
		vm.WithLogger(r.Logger.With(zap.String("job", job.Name))),
	)
	err := m.Run(ctx)
	rep := Report{
		Name:        job.Name,
		Fingerprint: job.Program.Fingerprint(),
		Output:      buf.String(),
		Steps:       m.Steps(),
		Bindings:    m.Bindings(),
		Err:         err,
	}
	if v, ok := m.Result(); ok {
		rep.Result, rep.HasResult = v.String(), true
	}
	if err != nil {
		r.Logger.Debug("Job failed", zap.String("job", job.Name), zap.Stringer("kind", rep.Kind()), zap.Error(err))
	}
	return rep
}

// Run executes jobs on a default runner.
func Run(ctx context.Context, jobs []Job, parallelism int) []Report {
	return New(parallelism, nil).Run(ctx, jobs)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kosayoda/gochicken/pkg/api"
	"github.com/kosayoda/gochicken/pkg/errs"
	"github.com/kosayoda/gochicken/pkg/runner"
	"github.com/kosayoda/gochicken/pkg/source"
	"github.com/kosayoda/gochicken/pkg/util/common"
	"github.com/kosayoda/gochicken/pkg/vm"
)

const (
	reportText = "text"
	reportJSON = "json"
)

var version = "v0.0.0"

type config struct {
	isa         string
	input       string
	inputSet    bool
	logLevel    string
	logFilter   string
	parallel    int
	report      string
	serve       string
	maxConns    int
	runTimeout  time.Duration
	showHelp    bool
	showVersion bool
	files       []string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, afero.NewOsFs())
	cancel()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (*config, *flag.FlagSet, error) {
	c := &config{}
	fl := flag.NewFlagSet("chicken", flag.ContinueOnError)
	fl.SetOutput(stderr)
	fl.StringVar(&c.isa, "isa", "dynamic", "Instruction set: \"dynamic\" binds opcodes on first use, \"chicken\" is the fixed Chicken table")
	fl.StringVarP(&c.input, "input", "i", "", "Input string; fills the argument slot and, when given, replaces standard input for reads")
	fl.StringVar(&c.logLevel, "log-level", "INFO", "Logging level. Supported levels: DEBUG, INFO, WARN, ERROR, FATAL")
	fl.StringVar(&c.logFilter, "log-filter", "", "Log filter rules, for example \"debug+:vm info+:*\"; when set they replace --log-level")
	fl.IntVarP(&c.parallel, "parallel", "p", 4, "Number of programs run at the same time in batch mode")
	fl.StringVar(&c.report, "report", reportText, "Report format of runs: \"text\" or \"json\"")
	fl.StringVar(&c.serve, "serve", "", "Serve program runs over HTTP on the given address instead of running files")
	fl.IntVar(&c.maxConns, "max-connections", 256, "Maximum number of simultaneous HTTP connections in serve mode, 0 for no limit")
	fl.DurationVar(&c.runTimeout, "run-timeout", 0, "Abandon HTTP runs taking longer than this, 0 for no limit")
	fl.BoolVarP(&c.showHelp, "help", "h", false, "Print usage information (this message) and quit")
	fl.BoolVarP(&c.showVersion, "version", "v", false, "Print version information and quit")
	if err := fl.Parse(args); err != nil {
		return nil, fl, err
	}
	c.inputSet = fl.Changed("input")
	c.files = fl.Args()
	return c, fl, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, fs afero.Fs) int {
	c, fl, err := parseFlags(args, stderr)
	if err != nil {
		return 1
	}
	if c.showHelp {
		_, _ = fmt.Fprintln(stdout, "usage: chicken [flags] [FILE ...]")
		fl.SetOutput(stdout)
		fl.PrintDefaults()
		return 0
	}
	if c.showVersion {
		_, _ = fmt.Fprintf(stdout, "chicken %s\n", version)
		return 0
	}
	if c.report != reportText && c.report != reportJSON {
		_, _ = fmt.Fprintf(stderr, "unknown report format %q\n", c.report)
		return 1
	}
	logger, log, err := common.SetupFilteredLogger(c.logLevel, c.logFilter)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	isa, err := vm.ISAByName(c.isa)
	if err != nil {
		log.Error(err)
		return 1
	}
	if c.serve != "" {
		log.Infof("Serving program runs on %s", c.serve)
		opts := api.DefaultRunOptions()
		opts.MaxConnections = c.maxConns
		opts.RequestTimeout = c.runTimeout
		if err := api.Serve(ctx, c.serve, api.NewService(opts, logger)); err != nil {
			log.Errorf("Failed to serve: %v", err)
			return 1
		}
		return 0
	}

	files := c.files
	if len(files) == 0 {
		files = []string{source.Stdin}
	}
	loader := source.NewLoader(fs, stdin)
	if len(files) == 1 && c.report == reportText {
		return runOne(ctx, logger, loader, isa, c, files[0], stdin, stdout)
	}
	return runBatch(ctx, logger, loader, isa, c, files, stdout)
}

// runOne streams input and output while the program runs.
func runOne(ctx context.Context, logger *zap.Logger, loader *source.Loader, isa vm.ISA, c *config, path string, stdin io.Reader, stdout io.Writer) int {
	log := logger.Sugar()
	program, err := loader.LoadProgram(path)
	if err != nil {
		log.Errorf("Failed to load program: %v", err)
		return errs.ExitCode(err)
	}
	var in io.Reader = stdin
	switch {
	case c.inputSet:
		in = strings.NewReader(c.input)
	case path == source.Stdin:
		in = strings.NewReader("")
	}
	m := vm.New(program,
		vm.WithISA(isa),
		vm.WithInput(vm.NewReaderInput(in)),
		vm.WithArgument(c.input),
		vm.WithOutput(vm.NewWriterOutput(stdout)),
		vm.WithLogger(logger),
	)
	if err := m.Run(ctx); err != nil {
		log.Errorf("Program %s failed: %v", path, err)
		return errs.ExitCode(err)
	}
	if r, ok := m.Result(); ok {
		_, _ = fmt.Fprintln(stdout, r.String())
	}
	log.Debugf("Program %s halted after %d steps", path, m.Steps())
	return 0
}

func runBatch(ctx context.Context, logger *zap.Logger, loader *source.Loader, isa vm.ISA, c *config, files []string, stdout io.Writer) int {
	log := logger.Sugar()
	jobs := make([]runner.Job, len(files))
	for i, path := range files {
		program, err := loader.LoadProgram(path)
		if err != nil {
			log.Errorf("Failed to load program: %v", err)
			return errs.ExitCode(err)
		}
		jobs[i] = runner.Job{Name: path, Program: program, ISA: isa, Input: c.input}
	}
	code := 0
	for _, rep := range runner.New(c.parallel, logger).Run(ctx, jobs) {
		if err := printReport(stdout, c.report, rep); err != nil {
			log.Errorf("Failed to print report of %s: %v", rep.Name, err)
			return 1
		}
		if rep.Err != nil {
			log.Errorf("Program %s failed: %v", rep.Name, rep.Err)
			if code == 0 {
				code = rep.ExitCode()
			}
		}
	}
	return code
}

func printReport(w io.Writer, format string, rep runner.Report) error {
	if format == reportJSON {
		doc, err := rep.JSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", doc)
		return err
	}
	if _, err := io.WriteString(w, rep.Output); err != nil {
		return err
	}
	if rep.HasResult && rep.Err == nil {
		if _, err := fmt.Fprintln(w, rep.Result); err != nil {
			return err
		}
	}
	return nil
}

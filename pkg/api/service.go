// Package api serves program runs over HTTP.
package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"github.com/kosayoda/gochicken/pkg/errs"
	"github.com/kosayoda/gochicken/pkg/lexer"
	"github.com/kosayoda/gochicken/pkg/runner"
	"github.com/kosayoda/gochicken/pkg/vm"
)

const fingerprintHeader = "X-Program-Fingerprint"

const (
	defaultMaxProgramSize = 8 << 20
	defaultMaxConnections = 256
	connQuotaWait         = time.Second
)

type RunOptions struct {
	CollectMetrics bool
	LogRequests    bool
	// RequestTimeout abandons runs that take longer, zero means no limit.
	RequestTimeout time.Duration
	MaxProgramSize int64
	// MaxConnections caps simultaneous connections, zero means no cap.
	MaxConnections int
}

func DefaultRunOptions() *RunOptions {
	return &RunOptions{
		CollectMetrics: true,
		LogRequests:    true,
		MaxProgramSize: defaultMaxProgramSize,
		MaxConnections: defaultMaxConnections,
	}
}

type Service struct {
	opts   *RunOptions
	logger *zap.Logger
	runner *runner.Runner
}

func NewService(opts *RunOptions, logger *zap.Logger) *Service {
	if opts == nil {
		opts = DefaultRunOptions()
	}
	if opts.MaxProgramSize <= 0 {
		opts.MaxProgramSize = defaultMaxProgramSize
	}
	if logger == nil {
		logger = zap.L()
	}
	logger = logger.Named("api")
	return &Service{opts: opts, logger: logger, runner: runner.New(1, logger)}
}

func (s *Service) Routes() chi.Router {
	r := chi.NewRouter()
	if s.opts.CollectMetrics {
		r.Use(chiHttpApiGeneralMetricsMiddleware)
	}
	if s.opts.LogRequests {
		r.Use(middleware.RequestID, CreateLoggerMiddleware(s.logger))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			s.logger.Error("Can't write 'OK' to ResponseWriter", zap.Error(err))
		}
	})
	r.Handle("/metrics", promhttp.Handler())

	r.With(JsonContentTypeMiddleware).Post("/run", s.Run)
	return r
}

// Run executes the program in the request body. Query parameters: isa, input.
func (s *Service) Run(w http.ResponseWriter, r *http.Request) {
	isa, err := vm.ISAByName(r.URL.Query().Get("isa"))
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err)
		return
	}
	program, err := lexer.Read(http.MaxBytesReader(w, r.Body, s.opts.MaxProgramSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			s.sendError(w, http.StatusRequestEntityTooLarge, err)
		case errs.KindOf(err) == errs.MalformedLine:
			s.sendError(w, http.StatusUnprocessableEntity, err)
		default:
			s.sendError(w, http.StatusBadRequest, err)
		}
		return
	}
	job := runner.Job{
		Name:    middleware.GetReqID(r.Context()),
		Program: program,
		ISA:     isa,
		Input:   r.URL.Query().Get("input"),
	}
	ctx := r.Context()
	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}
	rep := s.runner.Run(ctx, []runner.Job{job})[0]
	observeRun(isa, rep)
	w.Header().Set(fingerprintHeader, strconv.FormatUint(rep.Fingerprint, 16))
	if errors.Is(rep.Err, context.DeadlineExceeded) {
		s.sendError(w, http.StatusGatewayTimeout, rep.Err)
		return
	}

	doc, err := rep.JSON()
	if err == nil {
		doc, err = sjson.SetBytes(doc, "isa", isa.Name())
	}
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, err)
		return
	}
	if _, err := w.Write(doc); err != nil {
		s.logger.Debug("Failed to write run report", zap.Error(err))
	}
}

func observeRun(isa vm.ISA, rep runner.Report) {
	kind := "ok"
	if rep.Err != nil {
		kind = rep.Kind().String()
	}
	metricRuns.WithLabelValues(isa.Name(), kind).Inc()
	metricRunSteps.Observe(float64(rep.Steps))
}

func (s *Service) sendError(w http.ResponseWriter, code int, err error) {
	doc, jerr := sjson.SetBytes([]byte(`{}`), "status", errs.ExitCode(err))
	if jerr == nil {
		doc, jerr = sjson.SetBytes(doc, "kind", errs.KindOf(err).String())
	}
	if jerr == nil {
		doc, jerr = sjson.SetBytes(doc, "error", err.Error())
	}
	if jerr == nil && errs.LineOf(err) > 0 {
		doc, jerr = sjson.SetBytes(doc, "line", errs.LineOf(err))
	}
	if jerr != nil {
		http.Error(w, err.Error(), code)
		return
	}
	w.WriteHeader(code)
	if _, werr := w.Write(doc); werr != nil {
		s.logger.Debug("Failed to write error response", zap.Error(werr))
	}
}

// Serve listens on address until ctx is done.
func Serve(ctx context.Context, address string, s *Service) error {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", address)
	}
	if s.opts.MaxConnections > 0 {
		ln = limitConnections(ln, s.opts.MaxConnections, connQuotaWait)
	}
	apiServer := &http.Server{Handler: s.Routes(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		zap.S().Info("Shutting down API...")
		err := apiServer.Shutdown(context.Background())
		if err != nil {
			zap.S().Errorf("Failed to shutdown API server: %v", err)
		}
	}()
	err = apiServer.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
)

// CreateLoggerMiddleware logs every served request. Runs also log the
// instruction set asked for and the fingerprint of the program that ran.
func CreateLoggerMiddleware(l *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww, ok := w.(middleware.WrapResponseWriter)
			if !ok {
				ww = middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			}
			begin := time.Now()
			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("size", ww.BytesWritten()),
				zap.Duration("took", time.Since(begin)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			}
			if fp := ww.Header().Get(fingerprintHeader); fp != "" {
				fields = append(fields,
					zap.String("isa", r.URL.Query().Get("isa")),
					zap.String("fingerprint", fp))
			}
			l.Info("Served request", fields...)
		})
	}
}

func chiHttpApiGeneralMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()

		metricApiTotalRequests.Inc()

		ww, ok := w.(middleware.WrapResponseWriter)
		if !ok {
			ww = middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		}

		defer func() {
			routePath := r.URL.Path
			if chiRouteContext := chi.RouteContext(r.Context()); chiRouteContext != nil {
				if updatedRoutePath := chiRouteContext.RoutePattern(); updatedRoutePath != "" {
					routePath = updatedRoutePath
				}
			}

			metricApiHits.WithLabelValues(strconv.Itoa(ww.Status()), routePath).Inc()
			metricApiRequestDuration.WithLabelValues(r.Method, routePath).Observe(time.Since(begin).Seconds())
		}()

		next.ServeHTTP(ww, r)
	})
}

func JsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

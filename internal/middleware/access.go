package middleware

import (
	"net/http"
	"strconv"
	"time"

	"aquagrid/internal/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// unmatchedRoute labels requests no route pattern claimed, keeping metric cardinality bounded.
const unmatchedRoute = "unmatched"

// AccessLog records one log line and the request metrics per HTTP request. It reads
// neither request nor response bodies.
type AccessLog struct {
	logr    *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewAccessLog(logr *zap.Logger, m *metrics.Metrics) *AccessLog {
	return &AccessLog{logr: logr, metrics: m, now: time.Now}
}

func (a *AccessLog) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := a.now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := a.now().Sub(start)
		route := routePattern(r)

		a.metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		a.metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(dur.Seconds())

		fields := []zap.Field{
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", dur),
			zap.String("remote", r.RemoteAddr),
		}
		switch {
		case status >= http.StatusInternalServerError:
			a.logr.Error("http request", fields...)
		case status >= http.StatusBadRequest:
			a.logr.Warn("http request", fields...)
		default:
			a.logr.Info("http request", fields...)
		}
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return unmatchedRoute
}

// Package logger holds the process-wide zap logger of the loan service
// and the access log middleware of its HTTP API.
package logger

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Log is the sugared logger every package writes to.
// It discards everything until Init is called.
var Log = zap.NewNop().Sugar()

// InitOption adjusts the zap configuration built by Init.
type InitOption func(*zap.Config)

// WithFormat selects the encoding of log entries: "console" or "json".
func WithFormat(format string) InitOption {
	return func(cfg *zap.Config) {
		if format != "" {
			cfg.Encoding = format
		}
	}
}

// Init replaces Log with a logger writing entries at level and above.
// Levels are the ones zap knows: debug, info, warn, error, fatal.
func Init(level string, optionsProto ...InitOption) error {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = atomicLevel
	for _, protoOption := range optionsProto {
		protoOption(&cfg)
	}

	built, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = built.Sugar()

	return nil
}

// Sync flushes buffered entries. Syncing a terminal is not an error.
func Sync() error {
	if err := Log.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}

	return nil
}

// WithLoggingHTTPMiddleware writes one access log entry per request.
// 5xx responses are logged at error level, 4xx at warn, the rest at info.
func WithLoggingHTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		fields := []interface{}{
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"route", routePattern(r),
			"remote_addr", r.RemoteAddr,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		}

		switch {
		case status >= http.StatusInternalServerError:
			Log.Errorw("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			Log.Warnw("HTTP request", fields...)
		default:
			Log.Infow("HTTP request", fields...)
		}
	})
}

func routePattern(r *http.Request) string {
	if routeContext := chi.RouteContext(r.Context()); routeContext != nil {
		return routeContext.RoutePattern()
	}

	return ""
}

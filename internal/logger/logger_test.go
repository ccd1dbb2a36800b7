package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	require.NoError(t, Init("debug"))
	require.NotNil(t, Log)

	require.NoError(t, Init("info", WithFormat("json")))
	assert.False(t, Log.Desugar().Core().Enabled(zapcore.DebugLevel))

	assert.Error(t, Init("chatty"))
	assert.Error(t, Init("info", WithFormat("xml")))
}

func observeLog(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	previous := Log
	Log = zap.New(core).Sugar()
	t.Cleanup(func() { Log = previous })

	return logs
}

func TestWithLoggingHTTPMiddleware(t *testing.T) {
	router := chi.NewRouter()
	router.Use(middleware.RequestID, WithLoggingHTTPMiddleware)
	router.Get("/api/prestamo/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	})
	router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	type tTestCase struct {
		name      string
		path      string
		wantCode  int
		wantBody  string
		wantLevel zapcore.Level
		wantRoute string
	}
	testCases := []tTestCase{
		{
			name:      "client error",
			path:      "/api/prestamo/42",
			wantCode:  http.StatusNotFound,
			wantBody:  "missing",
			wantLevel: zapcore.WarnLevel,
			wantRoute: "/api/prestamo/{id}",
		},
		{
			name:      "implicit status",
			path:      "/ping",
			wantCode:  http.StatusOK,
			wantBody:  "ok",
			wantLevel: zapcore.InfoLevel,
			wantRoute: "/ping",
		},
		{
			name:      "server error",
			path:      "/broken",
			wantCode:  http.StatusInternalServerError,
			wantLevel: zapcore.ErrorLevel,
			wantRoute: "/broken",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			logs := observeLog(t)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, testCase.path, nil))

			assert.Equal(t, testCase.wantCode, rec.Code)
			assert.Equal(t, testCase.wantBody, rec.Body.String())

			entries := logs.All()
			require.Len(t, entries, 1)
			entry := entries[0]
			assert.Equal(t, "HTTP request", entry.Message)
			assert.Equal(t, testCase.wantLevel, entry.Level)

			fields := entry.ContextMap()
			assert.Equal(t, int64(testCase.wantCode), fields["status"])
			assert.Equal(t, int64(len(testCase.wantBody)), fields["bytes"])
			assert.Equal(t, testCase.path, fields["path"])
			assert.Equal(t, testCase.wantRoute, fields["route"])
			assert.NotEmpty(t, fields["request_id"])
		})
	}
}

package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajkula/GoArrival/adapter/outbound/filesystem"
	"github.com/ajkula/GoArrival/adapter/outbound/storage/memory"
	"github.com/ajkula/GoArrival/config"
	"github.com/ajkula/GoArrival/domain/model"
	"github.com/ajkula/GoArrival/domain/service"
)

type nopLogger struct{}

func (nopLogger) Error(msg string, args ...any) {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Debug(msg string, args ...any) {}

// stubDetector answers every attempt with a canned outcome and remembers what it was asked
type stubDetector struct {
	strategy model.Strategy
	result   func(dir string) (*model.DetectionResult, error)

	lastDir  string
	lastOpts model.DetectionOptions
}

func (d *stubDetector) Strategy() model.Strategy { return d.strategy }

func (d *stubDetector) Detect(ctx context.Context, dir string, opts model.DetectionOptions) (*model.DetectionResult, error) {
	d.lastDir = dir
	d.lastOpts = opts
	return d.result(dir)
}

func foundIn(strategy model.Strategy) func(string) (*model.DetectionResult, error) {
	return func(dir string) (*model.DetectionResult, error) {
		now := time.Now()
		return &model.DetectionResult{
			AttemptID:  "attempt-" + string(strategy),
			Strategy:   strategy,
			Directory:  dir,
			Outcome:    model.OutcomeFound,
			Path:       dir + "/report.xlsx",
			Size:       4096,
			StartedAt:  now.Add(-time.Second),
			FinishedAt: now,
		}, nil
	}
}

type testServer struct {
	router  *mux.Router
	polling *stubDetector
	event   *stubDetector
	fs      afero.Fs
}

func setupServer(t *testing.T) *testServer {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/inbox", 0755))

	polling := &stubDetector{strategy: model.StrategyPolling, result: foundIn(model.StrategyPolling)}
	event := &stubDetector{strategy: model.StrategyEvent, result: foundIn(model.StrategyEvent)}

	svc := service.NewArrivalService(filesystem.NewReader(fs), memory.NewArrivalRepository(10), nopLogger{}, polling, event)
	stats := service.NewStatsService()
	svc.Subscribe(stats.RecordResult)

	cfg := config.DefaultConfig()
	cfg.Detection.Directory = "/inbox"

	router := mux.NewRouter()
	NewHandler(svc, stats, nopLogger{}, cfg).SetupRoutes(router)

	return &testServer{router: router, polling: polling, event: event, fs: fs}
}

func (s *testServer) do(method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHandler_Wait_UsesConfiguredDefaults(t *testing.T) {
	s := setupServer(t)

	w := s.do("POST", "/api/arrivals/wait", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result model.DetectionResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, model.OutcomeFound, result.Outcome)
	assert.Equal(t, "/inbox/report.xlsx", result.Path)

	assert.Equal(t, "/inbox", s.polling.lastDir)
	assert.Equal(t, model.DefaultDetectionOptions(), s.polling.lastOpts)
}

func TestHandler_Wait_RequestOverrides(t *testing.T) {
	s := setupServer(t)

	body, _ := json.Marshal(WaitRequest{
		Strategy:   "event",
		Extension:  "CSV",
		Timeout:    "30s",
		SettleTime: "500ms",
	})
	w := s.do("POST", "/api/arrivals/wait", body)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, ".csv", s.event.lastOpts.Extension)
	assert.Equal(t, 30*time.Second, s.event.lastOpts.Timeout)
	assert.Equal(t, 500*time.Millisecond, s.event.lastOpts.SettleTime)
	assert.Equal(t, model.DefaultPollInterval, s.event.lastOpts.PollInterval)
}

func TestHandler_Wait_TimedOutIsNotAnError(t *testing.T) {
	s := setupServer(t)
	s.polling.result = func(dir string) (*model.DetectionResult, error) {
		return &model.DetectionResult{AttemptID: "attempt-idle", Directory: dir, Outcome: model.OutcomeTimedOut}, nil
	}

	w := s.do("POST", "/api/arrivals/wait", []byte(`{}`))

	require.Equal(t, http.StatusOK, w.Code)
	var result model.DetectionResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, model.OutcomeTimedOut, result.Outcome)
	assert.Empty(t, result.Path)
}

func TestHandler_Wait_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed body", `{"timeout":`, nil, http.StatusBadRequest},
		{"unknown strategy", `{"strategy":"smoke-signals"}`, nil, http.StatusBadRequest},
		{"bad duration", `{"timeout":"soon"}`, nil, http.StatusBadRequest},
		{"negative duration", `{"settleTime":"-1s"}`, nil, http.StatusBadRequest},
		{"configuration error", `{}`, model.ErrConfiguration, http.StatusBadRequest},
		{"subscription error", `{}`, model.ErrSubscription, http.StatusServiceUnavailable},
		{"unexpected error", `{}`, assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupServer(t)
			if tt.err != nil {
				s.polling.result = func(string) (*model.DetectionResult, error) { return nil, tt.err }
			}

			w := s.do("POST", "/api/arrivals/wait", []byte(tt.body))
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestHandler_Latest(t *testing.T) {
	s := setupServer(t)

	w := s.do("GET", "/api/arrivals/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var empty LatestResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&empty))
	assert.False(t, empty.Found)
	assert.Nil(t, empty.Entry)

	require.NoError(t, afero.WriteFile(s.fs, "/inbox/report.xlsx", []byte("cells"), 0644))
	require.NoError(t, afero.WriteFile(s.fs, "/inbox/~$report.xlsx", []byte("lock"), 0644))

	w = s.do("GET", "/api/arrivals/latest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var latest LatestResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&latest))
	assert.True(t, latest.Found)
	require.NotNil(t, latest.Entry)
	assert.Equal(t, "/inbox/report.xlsx", latest.Entry.Path)

	w = s.do("GET", "/api/arrivals/latest?dir=/missing", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_History(t *testing.T) {
	s := setupServer(t)

	require.Equal(t, http.StatusOK, s.do("POST", "/api/arrivals/wait", nil).Code)
	require.Equal(t, http.StatusOK, s.do("POST", "/api/arrivals/wait", []byte(`{"strategy":"event"}`)).Code)

	w := s.do("GET", "/api/arrivals?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Arrivals []*model.DetectionResult `json:"arrivals"`
		Count    int                      `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "attempt-event", list.Arrivals[0].AttemptID)

	w = s.do("GET", "/api/arrivals/attempt-polling", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNotFound, s.do("GET", "/api/arrivals/nope", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do("GET", "/api/arrivals?limit=many", nil).Code)
}

func TestHandler_Health(t *testing.T) {
	s := setupServer(t)

	w := s.do("GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHandler_Stats(t *testing.T) {
	s := setupServer(t)

	require.Equal(t, http.StatusOK, s.do("POST", "/api/arrivals/wait", nil).Code)
	require.Equal(t, http.StatusOK, s.do("POST", "/api/arrivals/wait", []byte(`{"strategy":"event"}`)).Code)

	w := s.do("GET", "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats model.DetectionStats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, 2, stats.Attempts)
	assert.Equal(t, 2, stats.Outcomes[model.OutcomeFound])
	assert.Equal(t, 1, stats.Strategies[model.StrategyEvent].Found)
	require.NotNil(t, stats.LastArrival)
}

package serve_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/Dicklesworthstone/schedviz/internal/compare"
	"github.com/Dicklesworthstone/schedviz/internal/sched"
	"github.com/Dicklesworthstone/schedviz/internal/serve"
	"github.com/Dicklesworthstone/schedviz/internal/timeline"
	"github.com/Dicklesworthstone/schedviz/internal/workload"
)

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

type ServerTestSuite struct {
	suite.Suite
	Runner *compare.Runner
	Server *serve.Server
	Engine http.Handler
}

func (suite *ServerTestSuite) SetupTest() {
	suite.Runner = compare.NewRunner(time.Minute)
	s, err := serve.New(serve.Config{Addr: "127.0.0.1:0", Quantum: 2, Runner: suite.Runner})
	suite.Require().NoError(err, "Failed to create server")
	suite.Server = s
	suite.Engine = s.Handler()
}

func (suite *ServerTestSuite) JSONDecode(r *httptest.ResponseRecorder, dst any) {
	decoder := json.NewDecoder(r.Body)
	err := decoder.Decode(dst)
	suite.Require().NoError(err, "Failed to decode JSON response")
}

func (suite *ServerTestSuite) post(path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	suite.Engine.ServeHTTP(rec, req)
	return rec
}

func (suite *ServerTestSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	suite.Engine.ServeHTTP(rec, req)
	return rec
}

func sampleProcesses() []timeline.Process {
	return workload.Sample().Processes
}

func (suite *ServerTestSuite) TestHealthCheck() {
	rec := suite.get("/health")

	suite.Equal(http.StatusOK, rec.Code, "Expected status OK")
	var resp map[string]any
	suite.JSONDecode(rec, &resp)
	suite.Equal("healthy", resp["status"].(string), "Expected status to be healthy")
	suite.NotEmpty(rec.Header().Get(echo.HeaderXRequestID), "Expected a request ID")
}

func (suite *ServerTestSuite) TestRequestIDIsEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-42")
	rec := httptest.NewRecorder()
	suite.Engine.ServeHTTP(rec, req)

	suite.Equal("req-42", rec.Header().Get(echo.HeaderXRequestID))
}

func (suite *ServerTestSuite) TestListAlgorithms() {
	rec := suite.get("/api/v1/algorithms")

	suite.Require().Equal(http.StatusOK, rec.Code)
	var resp serve.AlgorithmsResponse
	suite.JSONDecode(rec, &resp)
	suite.True(resp.Success)
	suite.Equal(2, resp.DefaultQuantum)
	suite.Require().Len(resp.Algorithms, 6)
	suite.Equal(serve.AlgorithmInfo{Key: "fcfs", Name: "FCFS"}, resp.Algorithms[0])
	suite.Equal(serve.AlgorithmInfo{Key: "rr", Name: "RR"}, resp.Algorithms[3])
	suite.Equal(serve.AlgorithmInfo{Key: "priority-p", Name: "Priority-P"}, resp.Algorithms[5])
}

func (suite *ServerTestSuite) TestRunFCFS() {
	rec := suite.post("/api/v1/run", serve.RunRequest{Algorithm: "fcfs", Processes: sampleProcesses()})

	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var resp serve.RunResponse
	suite.JSONDecode(rec, &resp)
	suite.True(resp.Success)
	suite.Equal("FCFS", resp.Algorithm)
	suite.Equal(2, resp.Quantum)
	suite.Equal(9, resp.Duration)
	suite.Equal([]timeline.Entry{
		{ProcessID: "P1", Start: 0, End: 5},
		{ProcessID: "P2", Start: 5, End: 8},
		{ProcessID: "P3", Start: 8, End: 9},
	}, resp.Timeline)
	suite.InDelta(10.0/3.0, resp.Metrics.AverageWaiting, 1e-9)
	suite.InDelta(19.0/3.0, resp.Metrics.AverageTurnaround, 1e-9)
	suite.InDelta(100.0, resp.Metrics.CPUUtilization, 1e-9)
	suite.Require().Len(resp.Processes, 3)
	suite.Equal(4, resp.Processes[1].Waiting)
}

func (suite *ServerTestSuite) TestRunDefaultsToFCFS() {
	rec := suite.post("/api/v1/run", serve.RunRequest{Processes: sampleProcesses()})

	suite.Require().Equal(http.StatusOK, rec.Code)
	var resp serve.RunResponse
	suite.JSONDecode(rec, &resp)
	suite.Equal("FCFS", resp.Algorithm)
}

func (suite *ServerTestSuite) TestRunRoundRobinQuantum() {
	rec := suite.post("/api/v1/run", serve.RunRequest{Algorithm: "rr", Quantum: 5, Processes: sampleProcesses()})

	suite.Require().Equal(http.StatusOK, rec.Code)
	var resp serve.RunResponse
	suite.JSONDecode(rec, &resp)
	suite.Equal("RR", resp.Algorithm)
	suite.Equal(5, resp.Quantum)
	// A quantum as long as the longest burst degenerates to FCFS.
	suite.Len(resp.Timeline, 3)
}

func (suite *ServerTestSuite) TestRunRejectsBadInput() {
	tests := []struct {
		name string
		req  serve.RunRequest
		want string
	}{
		{"unknown algorithm", serve.RunRequest{Algorithm: "lottery", Processes: sampleProcesses()}, "unknown scheduling algorithm"},
		{"empty processes", serve.RunRequest{Algorithm: "fcfs"}, "processes must not be empty"},
		{"zero burst", serve.RunRequest{Processes: []timeline.Process{{ID: "P1", Burst: 0}}}, "invalid process"},
		{"duplicate pid", serve.RunRequest{Processes: []timeline.Process{{ID: "P1", Burst: 1}, {ID: "P1", Burst: 2}}}, "duplicate pid"},
		{"negative quantum", serve.RunRequest{Quantum: -1, Processes: sampleProcesses()}, "quantum"},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			rec := suite.post("/api/v1/run", tt.req)

			suite.Equal(http.StatusBadRequest, rec.Code)
			var resp serve.ErrorResponse
			suite.JSONDecode(rec, &resp)
			suite.False(resp.Success)
			suite.Contains(resp.Error, tt.want)
		})
	}
}

func (suite *ServerTestSuite) TestRunMalformedJSON() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/run", strings.NewReader(`{"processes": [`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	suite.Engine.ServeHTTP(rec, req)

	suite.Equal(http.StatusBadRequest, rec.Code)
	var resp serve.ErrorResponse
	suite.JSONDecode(rec, &resp)
	suite.False(resp.Success)
	suite.NotEmpty(resp.Error)
}

func (suite *ServerTestSuite) TestRejectsWorkloadPastHorizon() {
	huge := []timeline.Process{{ID: "A", Burst: 2000000000}, {ID: "B", Burst: 2000000000}}
	for _, path := range []string{"/api/v1/run", "/api/v1/compare"} {
		suite.Run(path, func() {
			start := time.Now()
			rec := suite.post(path, serve.RunRequest{Algorithm: "srtf", Processes: huge})

			suite.Equal(http.StatusBadRequest, rec.Code)
			var resp serve.ErrorResponse
			suite.JSONDecode(rec, &resp)
			suite.Contains(resp.Error, "horizon exceeds 2000")
			suite.Less(time.Since(start), time.Second, "rejection must not run the schedule")
		})
	}
}

func (suite *ServerTestSuite) TestConfiguredMaxHorizon() {
	s, err := serve.New(serve.Config{MaxHorizon: 5})
	suite.Require().NoError(err)
	suite.Engine = s.Handler()

	rec := suite.post("/api/v1/run", serve.RunRequest{Processes: sampleProcesses()})
	suite.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = suite.post("/api/v1/run", serve.RunRequest{Processes: []timeline.Process{{ID: "P1", Burst: 5}}})
	suite.Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (suite *ServerTestSuite) TestBodyLimit() {
	body := `{"processes": [], "pad": "` + strings.Repeat("x", 2<<20) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/run", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	suite.Engine.ServeHTTP(rec, req)

	suite.Equal(http.StatusRequestEntityTooLarge, rec.Code)
}

func (suite *ServerTestSuite) TestExpiredDeadline() {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	for _, path := range []string{"/api/v1/run", "/api/v1/compare"} {
		suite.Run(path, func() {
			var buf bytes.Buffer
			suite.Require().NoError(json.NewEncoder(&buf).Encode(serve.RunRequest{Processes: sampleProcesses()}))
			req := httptest.NewRequest(http.MethodPost, path, &buf).WithContext(ctx)
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			suite.Engine.ServeHTTP(rec, req)

			suite.Equal(http.StatusServiceUnavailable, rec.Code, rec.Body.String())
		})
	}
	suite.Zero(suite.Runner.CacheMisses()+suite.Runner.CacheHits(), "no comparison should be cached")
}

func (suite *ServerTestSuite) TestCompare() {
	rec := suite.post("/api/v1/compare", serve.CompareRequest{Processes: sampleProcesses()})

	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Success bool   `json:"success"`
		Quantum int    `json:"quantum"`
		Best    string `json:"best"`
		Results []struct {
			Algorithm string           `json:"algorithm"`
			Metrics   sched.Metrics    `json:"metrics"`
			Timeline  []timeline.Entry `json:"timeline"`
		} `json:"results"`
	}
	suite.JSONDecode(rec, &resp)
	suite.True(resp.Success)
	suite.Equal(2, resp.Quantum)
	suite.Equal("SRTF", resp.Best)
	suite.Require().Len(resp.Results, 6)

	names := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		names[i] = r.Algorithm
		suite.NotEmpty(r.Timeline, "%s has no timeline", r.Algorithm)
	}
	suite.Equal([]string{"FCFS", "SJF", "SRTF", "RR", "Priority", "Priority-P"}, names)
	suite.InDelta(5.0/3.0, resp.Results[2].Metrics.AverageWaiting, 1e-9)
}

func (suite *ServerTestSuite) TestCompareUsesCache() {
	body := serve.CompareRequest{Processes: sampleProcesses()}

	suite.Require().Equal(http.StatusOK, suite.post("/api/v1/compare", body).Code)
	suite.Require().Equal(http.StatusOK, suite.post("/api/v1/compare", body).Code)

	suite.Equal(int64(1), suite.Runner.CacheMisses())
	suite.Equal(int64(1), suite.Runner.CacheHits())
}

func (suite *ServerTestSuite) TestCompareRejectsEmpty() {
	rec := suite.post("/api/v1/compare", serve.CompareRequest{})

	suite.Equal(http.StatusBadRequest, rec.Code)
	var resp serve.ErrorResponse
	suite.JSONDecode(rec, &resp)
	suite.Contains(resp.Error, "processes must not be empty")
}

func (suite *ServerTestSuite) TestMetrics() {
	suite.Require().Equal(http.StatusOK, suite.post("/api/v1/run", serve.RunRequest{Algorithm: "srtf", Processes: sampleProcesses()}).Code)
	suite.Require().Equal(http.StatusOK, suite.post("/api/v1/compare", serve.CompareRequest{Processes: sampleProcesses()}).Code)
	suite.Require().Equal(http.StatusOK, suite.post("/api/v1/compare", serve.CompareRequest{Processes: sampleProcesses()}).Code)
	suite.Require().Equal(http.StatusBadRequest, suite.post("/api/v1/run", serve.RunRequest{}).Code)

	rec := suite.get("/metrics")

	suite.Require().Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	suite.Contains(body, `schedviz_runs_total{algorithm="SRTF"} 1`)
	suite.Contains(body, "schedviz_comparisons_total 2")
	suite.Contains(body, "schedviz_comparison_cache_hits_total 1")
	suite.Contains(body, "schedviz_comparison_cache_misses_total 1")
	suite.Contains(body, `schedviz_request_failures_total{endpoint="run"} 1`)
}

func (suite *ServerTestSuite) TestNotFound() {
	rec := suite.get("/api/v1/nope")

	suite.Equal(http.StatusNotFound, rec.Code)
	var resp serve.ErrorResponse
	suite.JSONDecode(rec, &resp)
	suite.False(resp.Success)
	suite.Equal("Not Found", resp.Error)
}

func (suite *ServerTestSuite) TestStartStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- suite.Server.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		suite.NoError(err)
	case <-time.After(5 * time.Second):
		suite.Fail("server did not shut down")
	}
}

func TestNewDefaults(t *testing.T) {
	s, err := serve.New(serve.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Addr() != ":7338" {
		t.Errorf("Addr() = %q, want :7338", s.Addr())
	}
	if s.Metrics().Registry() == nil {
		t.Error("expected a metrics registry")
	}
}

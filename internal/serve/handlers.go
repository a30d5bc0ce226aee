package serve

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/xid"

	"github.com/Dicklesworthstone/schedviz/internal/compare"
	"github.com/Dicklesworthstone/schedviz/internal/sched"
	"github.com/Dicklesworthstone/schedviz/internal/timeline"
	"github.com/Dicklesworthstone/schedviz/internal/workload"
)

const defaultAlgorithm = "fcfs"

var errNoProcesses = errors.New("processes must not be empty")

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// AlgorithmInfo names one algorithm by lookup key and display name.
type AlgorithmInfo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// AlgorithmsResponse lists the standard algorithms in evaluation order.
type AlgorithmsResponse struct {
	Success        bool            `json:"success"`
	Algorithms     []AlgorithmInfo `json:"algorithms"`
	DefaultQuantum int             `json:"default_quantum"`
}

// RunRequest is the body of POST /api/v1/run. Algorithm defaults to fcfs
// and a zero quantum to the server's.
type RunRequest struct {
	Algorithm string             `json:"algorithm"`
	Quantum   int                `json:"quantum"`
	Processes []timeline.Process `json:"processes"`
}

// RunResponse carries one simulated run.
type RunResponse struct {
	Success   bool               `json:"success"`
	Algorithm string             `json:"algorithm"`
	Quantum   int                `json:"quantum"`
	Duration  int                `json:"duration"`
	Processes []timeline.Process `json:"processes"`
	Timeline  []timeline.Entry   `json:"timeline"`
	Metrics   sched.Metrics      `json:"metrics"`
	Timestamp string             `json:"timestamp"`
}

// CompareRequest is the body of POST /api/v1/compare.
type CompareRequest struct {
	Quantum   int                `json:"quantum"`
	Processes []timeline.Process `json:"processes"`
}

// CompareResponse carries the six-algorithm dataset.
type CompareResponse struct {
	Success   bool             `json:"success"`
	Quantum   int              `json:"quantum"`
	Best      string           `json:"best"`
	Results   *compare.Dataset `json:"results"`
	Timestamp string           `json:"timestamp"`
}

// HealthCheck reports liveness.
func (s *Server) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": now(),
	})
}

// ListAlgorithms returns the lookup keys accepted by /run.
func (s *Server) ListAlgorithms(c echo.Context) error {
	resp := AlgorithmsResponse{Success: true, DefaultQuantum: s.quantum}
	for _, key := range sched.Names() {
		alg, err := sched.ByName(key, s.quantum)
		if err != nil {
			return err
		}
		resp.Algorithms = append(resp.Algorithms, AlgorithmInfo{Key: key, Name: alg.Name()})
	}
	return c.JSON(http.StatusOK, resp)
}

// Run simulates one algorithm.
func (s *Server) Run(c echo.Context) error {
	var req RunRequest
	if err := c.Bind(&req); err != nil {
		return s.fail("run", err)
	}
	quantum, err := s.validate(req.Quantum, req.Processes)
	if err != nil {
		return s.fail("run", err)
	}
	name := strings.TrimSpace(req.Algorithm)
	if name == "" {
		name = defaultAlgorithm
	}
	alg, err := sched.ByName(name, quantum)
	if err != nil {
		return s.fail("run", echo.NewHTTPError(http.StatusBadRequest, err.Error()))
	}
	// Work is bounded by the horizon check, so the deadline is only
	// consulted before the run starts.
	if err := c.Request().Context().Err(); err != nil {
		return s.fail("run", err)
	}

	res := sched.Run(alg, req.Processes)
	tl, err := res.Timeline()
	if err != nil {
		return s.fail("run", fmt.Errorf("%s produced an invalid timeline: %w", res.Algorithm, err))
	}
	s.metrics.ObserveRun(res.Algorithm)
	slog.Debug("api run", "algorithm", res.Algorithm, "processes", len(res.Processes), "entries", tl.Len())

	return c.JSON(http.StatusOK, RunResponse{
		Success:   true,
		Algorithm: res.Algorithm,
		Quantum:   quantum,
		Duration:  tl.Duration(),
		Processes: res.Processes,
		Timeline:  tl.Entries(),
		Metrics:   res.Metrics(),
		Timestamp: now(),
	})
}

// Compare runs the six standard algorithms over the same process set.
func (s *Server) Compare(c echo.Context) error {
	var req CompareRequest
	if err := c.Bind(&req); err != nil {
		return s.fail("compare", err)
	}
	quantum, err := s.validate(req.Quantum, req.Processes)
	if err != nil {
		return s.fail("compare", err)
	}

	d, err := s.runner.RunComparison(c.Request().Context(), req.Processes, quantum)
	if err != nil {
		return s.fail("compare", err)
	}
	s.metrics.ObserveComparison()

	return c.JSON(http.StatusOK, CompareResponse{
		Success:   true,
		Quantum:   quantum,
		Best:      d.Best(),
		Results:   d,
		Timestamp: now(),
	})
}

// validate applies the workload boundary checks and resolves the quantum.
func (s *Server) validate(quantum int, procs []timeline.Process) (int, error) {
	if len(procs) == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errNoProcesses.Error())
	}
	w := workload.Workload{Quantum: quantum, Processes: procs}
	if err := w.Validate(s.maxHorizon); err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return w.QuantumOr(s.quantum), nil
}

func (s *Server) fail(endpoint string, err error) error {
	s.metrics.ObserveFailure(endpoint)
	return err
}

// errorHandler renders every error as an ErrorResponse.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Request().URL.Path, "error", err)
	}
	if jsonErr := c.JSON(status, ErrorResponse{Success: false, Error: msg}); jsonErr != nil {
		slog.Error("failed to encode error response", "error", jsonErr)
	}
}

// requestLogger tags each request with an ID and logs it once served.
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		reqID := req.Header.Get(echo.HeaderXRequestID)
		if reqID == "" {
			reqID = xid.New().String()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, reqID)

		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}
		slog.Debug("http request",
			"method", req.Method,
			"url", req.URL.String(),
			"status", c.Response().Status,
			"req_id", reqID,
			"duration", time.Since(start),
		)
		return nil
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

package vqe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/eigenbench-team/eigenbench/harness/operator"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

type solveRequest struct {
	Operator []operator.Term `json:"operator"`
	Config   Config          `json:"config"`
}

type solveResponse struct {
	Counts  map[string]uint32 `json:"counts"`
	Message string            `json:"message"`
}

// RemoteSolver submits variational runs to an HTTP backend. The returned
// counts are scored locally against the cost operator.
type RemoteSolver struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewRemoteSolver(conf *core.Conf) *RemoteSolver {
	return &RemoteSolver{
		endpoint: conf.BackendEndpoint,
		apiKey:   conf.BackendAPIKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *RemoteSolver) Name() string {
	return "remote_solver"
}

func (s *RemoteSolver) url(path string) string {
	return fmt.Sprintf("http://%s%s", s.endpoint, path)
}

func (s *RemoteSolver) Solve(ctx context.Context, op *operator.Sum, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !op.IsDiagonal() {
		return nil, fmt.Errorf("remote solver needs a diagonal cost operator")
	}
	body, err := jsonIter.Marshal(solveRequest{Operator: op.Terms(), Config: cfg})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.url("/v1/vqe/solve"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", s.apiKey)
	resp, err := s.client.Do(req)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to reach solver backend/reason:%s", err))
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("solver backend returned %d: %s", resp.StatusCode, string(data))
	}
	var sr solveResponse
	if err := jsonIter.Unmarshal(data, &sr); err != nil {
		zap.L().Error(fmt.Sprintf("failed to unmarshal solver response/reason:%s", err))
		return nil, err
	}
	if len(sr.Counts) == 0 {
		return nil, fmt.Errorf("solver backend returned no counts")
	}
	// score the dominant readout, not the shot average, so a thin tail of
	// stray readouts cannot shift the reported minimum
	basis, err := operator.MostLikely(sr.Counts, op.Qubits())
	if err != nil {
		return nil, err
	}
	energy, err := op.DiagonalValue(basis)
	if err != nil {
		return nil, err
	}
	return &Result{Energy: energy, Counts: sr.Counts}, nil
}

// Probe checks the backend health endpoint.
func (s *RemoteSolver) Probe(ctx context.Context) core.Availability {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url("/v1/health"), nil)
	if err != nil {
		return core.Downf("failed to build health request: %s", err)
	}
	req.Header.Set("X-API-Key", s.apiKey)
	resp, err := s.client.Do(req)
	if err != nil {
		return core.Downf("solver backend is not reachable: %s", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return core.Downf("solver backend health returned %d", resp.StatusCode)
	}
	return core.Up()
}

package phase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/eigenbench-team/eigenbench/harness/operator"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

type estimateRequest struct {
	Operator []operator.Term `json:"operator"`
	Config   Config          `json:"config"`
}

type estimateResponse struct {
	Counts  map[string]uint32 `json:"counts"`
	Message string            `json:"message"`
}

// RemoteEstimator submits phase estimation runs to an HTTP backend and reads
// the ancilla register back from the returned counts. The spectrum scaling
// convention is shared with the backend, so the readout is decoded locally.
type RemoteEstimator struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewRemoteEstimator(conf *core.Conf) *RemoteEstimator {
	return &RemoteEstimator{
		endpoint: conf.BackendEndpoint,
		apiKey:   conf.BackendAPIKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *RemoteEstimator) Name() string {
	return "remote_estimator"
}

func (e *RemoteEstimator) url(path string) string {
	return fmt.Sprintf("http://%s%s", e.endpoint, path)
}

func (e *RemoteEstimator) Estimate(ctx context.Context, op *operator.Sum, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	body, err := jsonIter.Marshal(estimateRequest{Operator: op.Terms(), Config: cfg})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.url("/v1/phase/estimate"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", e.apiKey)
	resp, err := e.client.Do(req)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to reach estimator backend/reason:%s", err))
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("estimator backend returned %d: %s", resp.StatusCode, string(data))
	}
	var er estimateResponse
	if err := jsonIter.Unmarshal(data, &er); err != nil {
		zap.L().Error(fmt.Sprintf("failed to unmarshal estimator response/reason:%s", err))
		return nil, err
	}
	return decodeReadout(op, cfg, er.Counts)
}

// decodeReadout turns ancilla register counts into an energy using the
// shared spectrum scaling.
func decodeReadout(op *operator.Sum, cfg Config, counts map[string]uint32) (*Result, error) {
	if len(counts) == 0 {
		return nil, fmt.Errorf("estimator backend returned no counts")
	}
	bound := op.CoeffBound()
	if bound == 0 {
		return nil, fmt.Errorf("operator has zero coefficient bound")
	}
	translation := bound
	stretch := 0.5 / bound
	m, err := operator.MostLikely(counts, cfg.AncillaBits)
	if err != nil {
		return nil, err
	}
	register := 1 << cfg.AncillaBits
	topDecimal := float64(m) / float64(register)
	topLabel, err := operator.BinaryFraction(topDecimal, cfg.AncillaBits)
	if err != nil {
		return nil, err
	}
	return &Result{
		Energy:      topDecimal/stretch - translation,
		EigvalRaw:   math.NaN(),
		Stretch:     stretch,
		Translation: translation,
		TopLabel:    topLabel,
		TopDecimal:  topDecimal,
		Counts:      counts,
	}, nil
}

// Probe checks the backend health endpoint.
func (e *RemoteEstimator) Probe(ctx context.Context) core.Availability {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url("/v1/health"), nil)
	if err != nil {
		return core.Downf("failed to build health request: %s", err)
	}
	req.Header.Set("X-API-Key", e.apiKey)
	resp, err := e.client.Do(req)
	if err != nil {
		return core.Downf("estimator backend is not reachable: %s", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return core.Downf("estimator backend health returned %d", resp.StatusCode)
	}
	return core.Up()
}

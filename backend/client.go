// Package backend watches the remote solver service and keeps its last
// known shape in the availability snapshot.
package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eigenbench-team/eigenbench/harness/core"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// Client reads the health and shape of a solver backend.
type Client interface {
	GetHealth(ctx context.Context) error
	GetInfo(ctx context.Context) (*core.BackendInfo, error)
}

type infoResponse struct {
	BackendName  string `json:"backend_name"`
	ProviderName string `json:"provider_name"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	MaxQubits    int    `json:"max_qubits"`
	MaxShots     int    `json:"max_shots"`
	APIVersion   string `json:"api_version"`
}

type HTTPClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPClient(endpoint, apiKey string) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) url(path string) string {
	return fmt.Sprintf("http://%s%s", c.endpoint, path)
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned %d for %s: %s", resp.StatusCode, path, string(data))
	}
	return data, nil
}

func (c *HTTPClient) GetHealth(ctx context.Context) error {
	_, err := c.get(ctx, "/v1/health")
	return err
}

func (c *HTTPClient) GetInfo(ctx context.Context) (*core.BackendInfo, error) {
	data, err := c.get(ctx, "/v1/backend/info")
	if err != nil {
		return nil, err
	}
	var ir infoResponse
	if err := jsonIter.Unmarshal(data, &ir); err != nil {
		zap.L().Error(fmt.Sprintf("failed to unmarshal backend info/reason:%s", err))
		return nil, err
	}
	return &core.BackendInfo{
		BackendName:  ir.BackendName,
		ProviderName: ir.ProviderName,
		Type:         ir.Type,
		Status:       toBackendStatus(ir.Status),
		MaxQubits:    ir.MaxQubits,
		MaxShots:     ir.MaxShots,
		APIVersion:   ir.APIVersion,
		CheckedAt:    time.Now().Format(time.RFC3339),
	}, nil
}

func toBackendStatus(s string) core.BackendStatus {
	switch s {
	case "available":
		return core.Available
	case "degraded":
		return core.Degraded
	default:
		return core.Unavailable
	}
}

// DummyClient stands in for the remote service in dev mode. It always
// reports an available backend large enough for every case in the sweep.
type DummyClient struct{}

func (c *DummyClient) GetHealth(context.Context) error {
	return nil
}

func (c *DummyClient) GetInfo(context.Context) (*core.BackendInfo, error) {
	return &core.BackendInfo{
		BackendName:  "dummy_backend",
		ProviderName: "dummy_provider",
		Type:         "simulator",
		Status:       core.Available,
		MaxQubits:    core.MockMaxQubits,
		MaxShots:     core.MockMaxShots,
		APIVersion:   "v1",
		CheckedAt:    time.Now().Format(time.RFC3339),
	}, nil
}

//go:build unit
// +build unit

package vqe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eigenbench-team/eigenbench/harness/core"
	"github.com/stretchr/testify/assert"
)

func remoteForTest(t *testing.T, handler http.Handler) (*RemoteSolver, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	endpoint := strings.TrimPrefix(server.URL, "http://")
	s := NewRemoteSolver(&core.Conf{
		BackendEndpoint: endpoint,
		BackendAPIKey:   "TestKey",
	})
	return s, server.Close
}

func TestRemoteSolve(t *testing.T) {
	t.Run("scores the dominant readout", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/vqe/solve", r.URL.Path)
			assert.Equal(t, "TestKey", r.Header.Get("X-API-Key"))
			w.Write([]byte(`{"counts": {"111": 92, "011": 8}}`))
		})
		s, closeFn := remoteForTest(t, handler)
		defer closeFn()
		res, err := s.Solve(context.Background(), costForTest(t), DefaultConfig())
		assert.Nil(t, err)
		assert.InDelta(t, -3, res.Energy, 1e-12)
		assert.Equal(t, uint32(92), res.Counts["111"])
	})
	t.Run("fails on a backend error status", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "backend is busy", http.StatusServiceUnavailable)
		})
		s, closeFn := remoteForTest(t, handler)
		defer closeFn()
		_, err := s.Solve(context.Background(), costForTest(t), DefaultConfig())
		assert.Error(t, err)
	})
	t.Run("fails on empty counts", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"counts": {}}`))
		})
		s, closeFn := remoteForTest(t, handler)
		defer closeFn()
		_, err := s.Solve(context.Background(), costForTest(t), DefaultConfig())
		assert.Error(t, err)
	})
}

func TestRemoteSolverProbe(t *testing.T) {
	t.Run("up on a healthy backend", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/health", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		})
		s, closeFn := remoteForTest(t, handler)
		defer closeFn()
		assert.True(t, s.Probe(context.Background()).Available)
	})
	t.Run("down on an unreachable backend", func(t *testing.T) {
		s := NewRemoteSolver(&core.Conf{BackendEndpoint: "localhost:1"})
		av := s.Probe(context.Background())
		assert.False(t, av.Available)
		assert.NotEmpty(t, av.Reason)
	})
}

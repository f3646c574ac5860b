package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AlexZinkM/yield-agent/internal/handler"
	"github.com/AlexZinkM/yield-agent/internal/metrics"
	"github.com/AlexZinkM/yield-agent/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type stubAgent struct{}

func (stubAgent) ProcessQuery(context.Context, string, string) (string, error) {
	return `{"chain":"Solana","project":"kamino","symbol":"USDC","tvlUsd":42,"apyBase":7.5,"stablecoin":true}`, nil
}

func (stubAgent) Stats() model.ThreadPoolInfo {
	return model.ThreadPoolInfo{MaxWorkers: 3}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(reg))

	srv := httptest.NewServer(SetupRouter(Deps{
		Agent:    handler.NewAgentHandler(stubAgent{}),
		Gatherer: reg,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRouter(t *testing.T) {
	srv := newTestServer(t)

	status, body := get(t, srv.URL+"/health")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"status":"healthy"`)

	resp, err := http.Post(srv.URL+"/query", "application/json", strings.NewReader(`{"query":"best USDC pool on Solana"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// wallet routes are only served when wallet actions are enabled
	status, _ = get(t, srv.URL+"/wallet?user_address=abc")
	require.Equal(t, http.StatusNotFound, status)

	status, body = get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `http_requests_total{code="200",path="/health"}`)
	require.Contains(t, body, `http_requests_total{code="404",path="unmatched"}`)
	require.Contains(t, body, `http_request_duration_seconds_count{path="/query"}`)
}

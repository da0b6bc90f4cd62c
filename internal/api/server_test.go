package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/steamgram/steamgram/internal/metrics"
	"github.com/steamgram/steamgram/internal/pipeline"
)

func TestHealthz(t *testing.T) {
	t.Parallel()
	metrics.Init()

	status := &pipeline.Status{}
	srv := NewServer(Deps{
		Status:     status,
		Sources:    []string{"a", "b"},
		Schedule:   "0 12 * * *",
		CacheLen:   func() int { return 1 },
		LedgerSize: func() int { return 7 },
	}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, 2, resp.Sources)
	require.Equal(t, "0 12 * * *", resp.Schedule)
	require.Equal(t, 1, resp.CachedSets)
	require.Equal(t, 7, resp.Posted)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	metrics.Init()

	srv := NewServer(Deps{}, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "steamgram_")
}

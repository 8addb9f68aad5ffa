package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/collision-enrichment/internal/adapter/httpadapter"
	"github.com/couchcryptid/collision-enrichment/internal/domain"
)

type mockRun struct {
	err  error
	diag *domain.Diagnostics
}

func (m *mockRun) CheckReadiness(_ context.Context) error { return m.err }

func (m *mockRun) LastDiagnostics() (domain.Diagnostics, bool) {
	if m.diag == nil {
		return domain.Diagnostics{}, false
	}
	return *m.diag, true
}

func serve(t *testing.T, run *mockRun, path string) *httptest.ResponseRecorder {
	t.Helper()
	srv := httpadapter.NewServer(":0", run, slog.Default())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(t, &mockRun{}, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStatus string
	}{
		{"ready", nil, http.StatusOK, "ready"},
		{"not ready", errors.New("enrichment run has not completed"), http.StatusServiceUnavailable, "not ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &mockRun{err: tt.err}, "/readyz")

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.wantStatus, body["status"])
			if tt.err != nil {
				assert.Equal(t, tt.err.Error(), body["error"])
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(t, &mockRun{}, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestDiagnosticsBeforeRun(t *testing.T) {
	rec := serve(t, &mockRun{}, "/diagnostics")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no completed run", decodeBody(t, rec)["status"])
}

func TestDiagnosticsAfterRun(t *testing.T) {
	diag := &domain.Diagnostics{
		Events:          3,
		WeatherMatched:  2,
		WithinThreshold: 1,
		BySeverity:      map[domain.Severity]int{domain.SeverityInjury: 2, domain.SeverityPropertyDamage: 1},
		Warnings:        []string{domain.WarnEmptyLandmarkSet},
	}
	rec := serve(t, &mockRun{diag: diag}, "/diagnostics")

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Diagnostics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, *diag, got)
}

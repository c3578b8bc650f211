package ipcserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cheshirelabs/chester/pkg/events"
	"github.com/cheshirelabs/chester/pkg/state"
)

func newTestServer(t *testing.T) (*Server, *state.AppState) {
	t.Helper()
	bus := events.NewBus()
	st := state.New(bus.Publisher())
	return NewServer(st.Reader(), st.Writer(), filepath.Join(t.TempDir(), "chester.sock")), st
}

func TestCheckStatusReflectsState(t *testing.T) {
	s, st := newTestServer(t)
	st.Writer().SetCheck(state.SuccessStatus())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/check/status", nil)
	s.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got checkStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.CheckStatus != "success" {
		t.Fatalf("CheckStatus = %q, want success", got.CheckStatus)
	}
}

func TestCoverageStatusCarriesPercent(t *testing.T) {
	s, st := newTestServer(t)
	st.Writer().SetCoverage(state.CoverageSuccess(73.25))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/coverage/status", nil)
	s.mux.ServeHTTP(rec, req)

	var got coverageStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.CoverageStatus != "73.25" {
		t.Fatalf("CoverageStatus = %q, want 73.25", got.CoverageStatus)
	}
}

func TestCoverageStatusRendersZeroPercentAsNumber(t *testing.T) {
	s, st := newTestServer(t)
	st.Writer().SetCoverage(state.CoverageSuccess(0.0))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/coverage/status", nil)
	s.mux.ServeHTTP(rec, req)

	var got coverageStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.CoverageStatus != "0.00" {
		t.Fatalf("CoverageStatus = %q, want 0.00 (must not collapse to \"success\")", got.CoverageStatus)
	}
}

func TestPutRepoRootUpdatesStateAndPublishesChangeDetected(t *testing.T) {
	s, st := newTestServer(t)

	body, _ := json.Marshal(repoRootRequest{RepoRoot: "/new/root"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/repo/root", bytes.NewReader(body))
	s.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204, body=%s", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("body = %q, want empty", rec.Body.String())
	}
	if got := st.Reader().RepoRoot(); got != "/new/root" {
		t.Fatalf("RepoRoot() = %q, want /new/root", got)
	}
}

func TestPutRepoRootRejectsEmptyBody(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/repo/root", bytes.NewReader([]byte(`{}`)))
	s.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetRepoRootReturnsCurrentRoot(t *testing.T) {
	s, st := newTestServer(t)
	if err := st.Writer().SetRepoRoot("/configured"); err != nil {
		t.Fatalf("SetRepoRoot() error = %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/repo/root", nil)
	s.mux.ServeHTTP(rec, req)

	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got["repo_root"] != "/configured" {
		t.Fatalf("repo_root = %q, want /configured", got["repo_root"])
	}
}

func TestMethodNotAllowedOnReadEndpoints(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"GET check succeeds", http.MethodGet, "/check/status", http.StatusOK},
		{"POST check fails", http.MethodPost, "/check/status", http.StatusMethodNotAllowed},
		{"PUT check fails", http.MethodPut, "/check/status", http.StatusMethodNotAllowed},
		{"DELETE check fails", http.MethodDelete, "/check/status", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			s.mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusOK {
				var got checkStatusResponse
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, "pending", got.CheckStatus)
			}
		})
	}
}

func TestStartBindsUnixSocketAndCleansUpOnShutdown(t *testing.T) {
	s, st := newTestServer(t)
	st.Writer().SetCheck(state.SuccessStatus())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	time.Sleep(50 * time.Millisecond)

	client := http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", s.socketPath)
			},
		},
	}

	resp, err := client.Get("http://unix/check/status")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := os.Stat(s.socketPath); !os.IsNotExist(err) {
		t.Fatalf("socket file still exists after Shutdown, err=%v", err)
	}
}

package ipcserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cheshirelabs/chester/pkg/state"
)

type handlers struct {
	reader state.Reader
	writer state.Writer
}

// coverageStatusValue renders the coverage cell: "pending"/"failure" as-is,
// but a Success carries its percentage instead of the bare outcome string,
// so all three variants share one string schema. Rendered even when the
// percentage is exactly 0.0, which is still a real result and must not
// collapse back to "success".
func coverageStatusValue(s state.Status) string {
	if s.Outcome == state.Success {
		return fmt.Sprintf("%.2f", s.Percent)
	}
	return s.Outcome.String()
}

type checkStatusResponse struct {
	CheckStatus string `json:"check_status"`
}

type testsStatusResponse struct {
	TestsStatus string `json:"tests_status"`
}

type coverageStatusResponse struct {
	CoverageStatus string `json:"coverage_status"`
}

func (h *handlers) checkStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, checkStatusResponse{CheckStatus: h.reader.Check().Outcome.String()})
}

func (h *handlers) testsStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, testsStatusResponse{TestsStatus: h.reader.Tests().Outcome.String()})
}

func (h *handlers) coverageStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, coverageStatusResponse{CoverageStatus: coverageStatusValue(h.reader.Coverage())})
}

type repoRootRequest struct {
	RepoRoot string `json:"repo_root"`
}

func (h *handlers) repoRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"repo_root": h.reader.RepoRoot()})
	case http.MethodPut:
		var req repoRootRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.RepoRoot == "" {
			http.Error(w, "repo_root is required", http.StatusBadRequest)
			return
		}
		if err := h.writer.SetRepoRoot(req.RepoRoot); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

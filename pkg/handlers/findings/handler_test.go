package findings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/zombie-exorcist/pkg/models/store"
	findingsstore "github.com/de-tools/zombie-exorcist/pkg/store/findings"
	ledgerstore "github.com/de-tools/zombie-exorcist/pkg/store/ledger"
)

func seedFindings(t *testing.T, dir string) {
	t.Helper()
	file := store.FindingsFile{
		Summary: store.Summary{
			TotalFindings:         1,
			TotalPotentialSavings: 138.24,
			GeneratedAt:           "2026-08-30T12:00:00Z",
		},
		Findings: []store.Finding{{
			ResourceType:     "compute",
			ResourceID:       "i-0abc",
			Platform:         "aws",
			Recommendation:   "terminate",
			Severity:         "high",
			EstimatedSavings: 138.24,
		}},
	}
	require.NoError(t, findingsstore.Save(filepath.Join(dir, "findings_20260830_120000.json"), file))
}

func seedLedger(t *testing.T, dir string) {
	t.Helper()
	file := store.LedgerFile{
		Mode:            "execute",
		StartedAt:       "2026-08-30T13:00:00Z",
		RealizedSavings: 138.24,
		CountByState:    map[string]int{"succeeded": 1},
		Entries: []store.LedgerEntry{{
			Kind:       "terminate",
			ResourceID: "i-0abc",
			State:      "succeeded",
		}},
	}
	_, err := ledgerstore.SaveTimestamped(dir, file)
	require.NoError(t, err)
}

func TestGetFindings(t *testing.T) {
	dir := t.TempDir()
	seedFindings(t, dir)
	handler := NewHandler(dir)

	rec := httptest.NewRecorder()
	handler.GetFindings(rec, httptest.NewRequest(http.MethodGet, "/api/v1/findings", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var file store.FindingsFile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &file))
	require.Len(t, file.Findings, 1)
	assert.Equal(t, "i-0abc", file.Findings[0].ResourceID)
}

func TestGetFindingsNoRuns(t *testing.T) {
	handler := NewHandler(t.TempDir())

	rec := httptest.NewRecorder()
	handler.GetFindings(rec, httptest.NewRequest(http.MethodGet, "/api/v1/findings", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no analysis runs found")
}

func TestGetLedger(t *testing.T) {
	dir := t.TempDir()
	seedLedger(t, dir)
	handler := NewHandler(dir)

	rec := httptest.NewRecorder()
	handler.GetLedger(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ledger", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var file store.LedgerFile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &file))
	assert.Equal(t, "execute", file.Mode)
	require.Len(t, file.Entries, 1)
}

func TestGetLedgerNoRuns(t *testing.T) {
	handler := NewHandler(t.TempDir())

	rec := httptest.NewRecorder()
	handler.GetLedger(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ledger", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no remediation runs found")
}

func TestGetStatusCombinesRuns(t *testing.T) {
	dir := t.TempDir()
	seedFindings(t, dir)
	seedLedger(t, dir)
	handler := NewHandler(dir)

	rec := httptest.NewRecorder()
	handler.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	findings, ok := resp["latest_findings"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, findings["total_findings"])

	run, ok := resp["latest_run"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "execute", run["mode"])
}

func TestGetStatusEmptyDir(t *testing.T) {
	handler := NewHandler(t.TempDir())

	rec := httptest.NewRecorder()
	handler.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "{}", rec.Body.String())
}

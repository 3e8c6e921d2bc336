package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/zombie-exorcist/pkg/models/store"
	findingsstore "github.com/de-tools/zombie-exorcist/pkg/store/findings"
	ledgerstore "github.com/de-tools/zombie-exorcist/pkg/store/ledger"
)

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	reportsDir := t.TempDir()
	seedReports(t, reportsDir)

	api := NewWebAPI(logger, Config{
		Addr:            ":8080",
		ReportsDir:      reportsDir,
		ShutdownTimeout: 10 * time.Second,
	})
	testServer := httptest.NewServer(api.Router())
	defer testServer.Close()

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		check          func(t *testing.T, body []byte)
	}{
		{
			name:           "GetFindings",
			path:           "/api/v1/findings",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var file store.FindingsFile
				require.NoError(t, json.Unmarshal(body, &file))
				require.Len(t, file.Findings, 1)
				assert.Equal(t, "i-0abc", file.Findings[0].ResourceID)
				assert.Equal(t, 1, file.Summary.TotalFindings)
			},
		},
		{
			name:           "GetLedger",
			path:           "/api/v1/ledger",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var file store.LedgerFile
				require.NoError(t, json.Unmarshal(body, &file))
				assert.Equal(t, "report", file.Mode)
				require.Len(t, file.Entries, 1)
				assert.Equal(t, "skipped", file.Entries[0].State)
			},
		},
		{
			name:           "GetStatus",
			path:           "/api/v1/status",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Contains(t, resp, "latest_findings")
				assert.Contains(t, resp, "latest_run")
			},
		},
		{
			name:           "UnknownRoute",
			path:           "/api/v1/zombies",
			expectedStatus: http.StatusNotFound,
			check:          func(t *testing.T, body []byte) {},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(testServer.URL + tc.path)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")
			tc.check(t, body)
		})
	}
}

func seedReports(t *testing.T, dir string) {
	t.Helper()

	findings := store.FindingsFile{
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
	require.NoError(t, findingsstore.Save(filepath.Join(dir, "findings_20260830_120000.json"), findings))

	ledger := store.LedgerFile{
		Mode:             "report",
		StartedAt:        "2026-08-30T12:30:00Z",
		PotentialSavings: 138.24,
		CountByState:     map[string]int{"skipped": 1},
		Entries: []store.LedgerEntry{{
			Kind:         "terminate",
			ResourceType: "compute",
			ResourceID:   "i-0abc",
			Platform:     "aws",
			RiskTier:     "high",
			State:        "skipped",
			Reason:       "dry-run: would terminate compute i-0abc",
		}},
	}
	_, err := ledgerstore.SaveTimestamped(dir, ledger)
	require.NoError(t, err)
}

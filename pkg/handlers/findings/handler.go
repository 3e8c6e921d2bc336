package findings

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	findingsstore "github.com/de-tools/zombie-exorcist/pkg/store/findings"
	ledgerstore "github.com/de-tools/zombie-exorcist/pkg/store/ledger"
)

// Handler serves the artifacts of past analysis and remediation runs.
type Handler struct {
	reportsDir string
}

func NewHandler(reportsDir string) *Handler {
	return &Handler{reportsDir: reportsDir}
}

// GetFindings returns the most recent findings file.
func (h *Handler) GetFindings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	path, err := findingsstore.Latest(h.reportsDir)
	if err != nil || path == "" {
		writeError(w, http.StatusNotFound, "no analysis runs found")
		return
	}
	file, err := findingsstore.Load(path)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("failed to load findings")
		writeError(w, http.StatusInternalServerError, "findings file unreadable")
		return
	}

	writeJSON(ctx, w, file)
}

// GetStatus returns a combined summary of the latest analysis and
// remediation runs.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	type status struct {
		LatestFindings any `json:"latest_findings,omitempty"`
		LatestRun      any `json:"latest_run,omitempty"`
	}
	var resp status

	if path, err := findingsstore.Latest(h.reportsDir); err == nil && path != "" {
		file, err := findingsstore.Load(path)
		if err != nil {
			logger.Error().Err(err).Str("path", path).Msg("failed to load findings")
			writeError(w, http.StatusInternalServerError, "findings file unreadable")
			return
		}
		resp.LatestFindings = file.Summary
	}

	if path, err := ledgerstore.Latest(h.reportsDir); err == nil && path != "" {
		file, err := ledgerstore.Load(path)
		if err != nil {
			logger.Error().Err(err).Str("path", path).Msg("failed to load ledger")
			writeError(w, http.StatusInternalServerError, "ledger file unreadable")
			return
		}
		resp.LatestRun = map[string]any{
			"mode":                            file.Mode,
			"started_at":                      file.StartedAt,
			"realized_savings_usd_per_month":  file.RealizedSavings,
			"potential_savings_usd_per_month": file.PotentialSavings,
			"count_by_state":                  file.CountByState,
		}
	}

	writeJSON(ctx, w, resp)
}

// GetLedger returns the most recent execution ledger.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	path, err := ledgerstore.Latest(h.reportsDir)
	if err != nil || path == "" {
		writeError(w, http.StatusNotFound, "no remediation runs found")
		return
	}
	file, err := ledgerstore.Load(path)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("failed to load ledger")
		writeError(w, http.StatusInternalServerError, "ledger file unreadable")
		return
	}

	writeJSON(ctx, w, file)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/opsexstack/debtscan/internal/engine"
	"github.com/opsexstack/debtscan/internal/ingest"
	"github.com/opsexstack/debtscan/internal/models"
	"github.com/opsexstack/debtscan/internal/utils"
)

// ScanRequest is the JSON body for scan and export endpoints. Options
// left unset fall back to the configured defaults.
type ScanRequest struct {
	Records []models.LogRecord  `json:"records"`
	Options *models.ScanOptions `json:"options,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	ScanP95 string `json:"scan_p95"`
	NumGC   uint32 `json:"num_gc"`
}

var startTime = time.Now()

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Uptime:  time.Since(startTime).String(),
		ScanP95: s.scans.LatencyP95().String(),
		NumGC:   m.NumGC,
	})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("decode request: %v", err)})
		return
	}

	opts := s.scans.MergeOptions(req.Options)
	report, err := s.scans.Scan(r.Context(), req.Records, opts)
	if err != nil {
		s.writeScanError(w, err)
		return
	}

	if r.URL.Query().Get("include_records") != "true" {
		report.Records = nil
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleScanUpload(w http.ResponseWriter, r *http.Request) {
	records, err := ingest.LoadCSV(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("parse csv: %v", err)})
		return
	}

	opts := s.scans.MergeOptions(optionsFromQuery(r))
	report, err := s.scans.Scan(r.Context(), records, opts)
	if err != nil {
		s.writeScanError(w, err)
		return
	}

	if r.URL.Query().Get("include_records") != "true" {
		report.Records = nil
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExportAnomalies(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("decode request: %v", err)})
		return
	}

	opts := s.scans.MergeOptions(req.Options)
	report, err := s.scans.Scan(r.Context(), req.Records, opts)
	if err != nil {
		s.writeScanError(w, err)
		return
	}

	filename := fmt.Sprintf("debt_scanner_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := ingest.WriteAnomaliesCSV(w, report.Anomalies); err != nil {
		s.logger.Error("write anomalies csv", slog.Any("error", err))
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	rows := s.genCfg.Rows
	debtRatio := s.genCfg.DebtRatio
	seed := s.genCfg.Seed

	q := r.URL.Query()
	if v := q.Get("rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100000 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "rows must be a positive integer up to 100000"})
			return
		}
		rows = n
	}
	if v := q.Get("debt_ratio"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "debt_ratio must be between 0 and 1"})
			return
		}
		debtRatio = f
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "seed must be an integer"})
			return
		}
		seed = n
	}

	records := ingest.NewGenerator(seed).Generate(rows, debtRatio)

	if q.Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		if err := ingest.WriteRecordsCSV(w, records); err != nil {
			s.logger.Error("write generated csv", slog.Any("error", err))
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Query().Get("endpoint")
	if endpoint == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "endpoint query parameter is required"})
		return
	}
	ep, plan := s.strategy.PlanFor(endpoint)
	writeJSON(w, http.StatusOK, map[string]any{"endpoint": ep, "plan": plan})
}

func (s *Server) handleSLATemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, engine.SLATemplates())
}

func (s *Server) writeScanError(w http.ResponseWriter, err error) {
	if errors.Is(err, utils.ErrInvalidDataset) || errors.Is(err, utils.ErrInvalidParams) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.logger.Error("scan failed", slog.Any("error", err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

// optionsFromQuery builds partial scan options from upload query
// parameters; unset fields stay zero so defaults apply.
func optionsFromQuery(r *http.Request) *models.ScanOptions {
	q := r.URL.Query()
	opts := &models.ScanOptions{}
	if v := q.Get("contamination"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			opts.Contamination = f
		}
	}
	if v := q.Get("hourly_rate"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			opts.HourlyRate = f
		}
	}
	if v := q.Get("wasted_hours_threshold"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			opts.WastedHoursThreshold = f
		}
	}
	if v := q.Get("error_rate_threshold"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			opts.ErrorRateThreshold = f
		}
	}
	if v := q.Get("sla_level"); v != "" {
		opts.SLALevel = v
	}
	if v := q.Get("sla_latency_ms"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			opts.SLALatencyMs = f
		}
	}
	if v := q.Get("cap_outliers"); v == "true" || v == "1" {
		opts.CapOutliers = true
	}
	return opts
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

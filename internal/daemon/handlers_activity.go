package daemon

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"animetracker/internal/matching"
	"animetracker/internal/scan"
	"animetracker/internal/store"
	"animetracker/internal/titleparse"
)

func (s *apiServer) handleListLogs(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultLogLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.daemon.svc.Tracker.Logs(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, r, err, errorText{failure: "Failed to fetch logs"})
		return
	}
	if logs == nil {
		logs = []store.ActivityLog{}
	}
	s.writeJSON(w, http.StatusOK, logs)
}

type logRequest struct {
	Message   string     `json:"message"`
	Level     string     `json:"level"`
	Timestamp *time.Time `json:"timestamp"`
}

func (s *apiServer) handleAddLog(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, invalidBody)
		return
	}
	var at time.Time
	if req.Timestamp != nil {
		at = *req.Timestamp
	}
	entry, err := s.daemon.svc.Tracker.Log(r.Context(), req.Level, req.Message, at)
	if err != nil {
		s.writeServiceError(w, r, err, errorText{failure: "Failed to create log"})
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *apiServer) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	if err := s.daemon.svc.Tracker.ClearLogs(r.Context()); err != nil {
		s.writeServiceError(w, r, err, errorText{failure: "Failed to clear logs"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type scanProgress struct {
	Current     int    `json:"current"`
	Total       int    `json:"total"`
	CurrentShow string `json:"currentShow"`
}

type scanStatusResponse struct {
	IsScanning bool         `json:"isScanning"`
	Progress   scanProgress `json:"progress"`
	ShowID     *int64       `json:"showId"`
	JobID      string       `json:"jobId,omitempty"`
	Matches    []scan.Match `json:"matches"`
}

func (s *apiServer) handleScanStatus(w http.ResponseWriter, _ *http.Request) {
	job := s.daemon.svc.Scanner.Status()
	s.writeJSON(w, http.StatusOK, scanStatusResponse{
		IsScanning: job.Running,
		Progress: scanProgress{
			Current:     job.Current,
			Total:       job.Total,
			CurrentShow: job.CurrentShow,
		},
		ShowID:  job.ShowID,
		JobID:   job.ID,
		Matches: job.Matches,
	})
}

type scanRequest struct {
	ShowID showIDParam `json:"showId"`
}

// showIDParam reads showId leniently: a number or a numeric string selects one
// show; zero, null, or anything without leading digits means every show.
type showIDParam struct {
	id *int64
}

func (p *showIDParam) UnmarshalJSON(data []byte) error {
	p.id = nil
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var text string
	switch v := raw.(type) {
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		text = v
	default:
		return nil
	}
	if id := leadingInt(text); id > 0 {
		p.id = &id
	}
	return nil
}

// leadingInt parses the optional sign and digits at the start of s, ignoring
// whatever follows.
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

type scanStartResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	JobID        string `json:"jobId"`
	ShowCount    int    `json:"showCount"`
	EpisodeCount int    `json:"episodeCount"`
}

func (s *apiServer) handleStartScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, invalidBody)
		return
	}
	job, err := s.daemon.svc.Scanner.Start(r.Context(), req.ShowID.id)
	if err != nil {
		s.writeServiceError(w, r, err, errorText{notFound: "Show not found", failure: "Failed to start scan"})
		return
	}
	s.writeJSON(w, http.StatusOK, scanStartResponse{
		Success:      true,
		Message:      "Scan started",
		JobID:        job.ID,
		ShowCount:    job.ShowCount,
		EpisodeCount: job.Total,
	})
}

func (s *apiServer) handleCancelScan(w http.ResponseWriter, r *http.Request) {
	if err := s.daemon.svc.Scanner.Cancel(); err != nil {
		s.writeServiceError(w, r, err, errorText{failure: "Failed to cancel scan"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Scan cancelled"})
}

func (s *apiServer) handleListMagnets(w http.ResponseWriter, r *http.Request) {
	magnets, err := s.daemon.svc.Tracker.Magnets(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, errorText{failure: "Failed to fetch magnet links"})
		return
	}
	if magnets == nil {
		magnets = []store.FoundMagnet{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"magnetLinks": magnets})
}

type magnetRequest struct {
	MagnetLink string `json:"magnetLink"`
	Title      string `json:"title"`
}

func (s *apiServer) handleOpenMagnet(w http.ResponseWriter, r *http.Request) {
	var req magnetRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, invalidBody)
		return
	}
	if err := s.daemon.svc.Tracker.OpenMagnet(r.Context(), req.MagnetLink, req.Title); err != nil {
		s.writeServiceError(w, r, err, errorText{failure: "Failed to handle magnet link"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "magnetLink": req.MagnetLink})
}

type parseRequest struct {
	Title *string `json:"title"`
}

type parseResponse struct {
	Parsed    *matching.Candidate `json:"parsed"`
	FromCache bool                `json:"fromCache"`
}

func (s *apiServer) handleParseTitle(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeBody(r, &req); err != nil || req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		s.writeError(w, http.StatusBadRequest, "Title is required and must be a string")
		return
	}
	parsed, fromCache, err := s.daemon.svc.Parser.ParseWithSource(r.Context(), *req.Title)
	if err != nil && !errors.Is(err, titleparse.ErrUnparseable) {
		s.writeServiceError(w, r, err, errorText{failure: "Failed to parse title"})
		return
	}
	s.writeJSON(w, http.StatusOK, parseResponse{Parsed: parsed, FromCache: fromCache})
}

type healthResponse struct {
	Status   string       `json:"status"`
	Database store.Health `json:"database"`
	Error    string       `json:"error,omitempty"`
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health, err := s.daemon.svc.Tracker.Store().CheckHealth(r.Context())
	resp := healthResponse{Status: "ok", Database: health}
	status := http.StatusOK
	switch {
	case err != nil:
		resp.Status = "unavailable"
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	case !health.SchemaReady:
		resp.Status = "degraded"
	}
	s.writeJSON(w, status, resp)
}

func (s *apiServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) handleClearMagnets(w http.ResponseWriter, r *http.Request) {
	removed, err := s.daemon.svc.Tracker.ClearMagnets(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, errorText{failure: "Failed to clear magnet links"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "removed": removed})
}

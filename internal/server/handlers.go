package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/raaihank/grammar-sentinel/internal/cache"
	"github.com/raaihank/grammar-sentinel/internal/grammar"
	"github.com/raaihank/grammar-sentinel/internal/history"
	"github.com/raaihank/grammar-sentinel/internal/websocket"
)

// CorrectRequest is the body of POST /v1/correct
type CorrectRequest struct {
	Text   string `json:"text"`
	Tier   *int   `json:"tier,omitempty"`
	Source string `json:"source,omitempty"`
}

// CorrectResponse wraps a result with display helpers
type CorrectResponse struct {
	*grammar.Result
	RequestID  string                  `json:"request_id"`
	BandLabel  string                  `json:"band_label"`
	Stars      int                     `json:"stars"`
	Groups     []grammar.CategoryGroup `json:"groups"`
	Cached     bool                    `json:"cached"`
	HistoryID  string                  `json:"history_id,omitempty"`
	DurationMS float64                 `json:"duration_ms"`
}

// RuleView is a catalog rule with its effective classification
type RuleView struct {
	ID         string           `json:"id"`
	Trigger    string           `json:"trigger"`
	Correction string           `json:"correction"`
	Category   grammar.Category `json:"category"`
	Severity   grammar.Severity `json:"severity"`
	Band       grammar.Band     `json:"band"`
	Exceptions []string         `json:"exceptions,omitempty"`
}

// RulesResponse is the body of GET /v1/rules
type RulesResponse struct {
	Fingerprint string     `json:"fingerprint"`
	Count       int        `json:"count"`
	Rules       []RuleView `json:"rules"`
}

// StatsResponse is the body of GET /v1/stats
type StatsResponse struct {
	Uptime      string              `json:"uptime"`
	Corrections int64               `json:"corrections"`
	CacheHits   int64               `json:"cache_hits"`
	Rules       int                 `json:"rules"`
	Cache       *cache.CacheStats   `json:"cache,omitempty"`
	History     *history.Stats      `json:"history,omitempty"`
	WebSocket   *websocket.HubStats `json:"websocket,omitempty"`
}

func (s *Server) handleCorrect(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	requestID := getRequestID(ctx)
	log := s.logger.WithRequestID(requestID)

	r.Body = http.MaxBytesReader(w, r.Body, int64(s.maxTextLength())*4+1024)
	var req CorrectRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if !utf8.ValidString(req.Text) {
		writeError(w, http.StatusBadRequest, "text must be valid UTF-8")
		return
	}
	if n := utf8.RuneCountInString(req.Text); n > s.maxTextLength() {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text is %d characters, the limit is %d", n, s.maxTextLength()))
		return
	}

	tier := s.config.Grammar.DefaultTier
	if req.Tier != nil {
		tier = *req.Tier
	}
	source := req.Source
	if source == "" {
		source = "api"
	}

	checker := s.Checker()
	fingerprint := checker.Catalog().Fingerprint()
	band := grammar.BandFor(tier)

	result, cached := s.cache.Get(ctx, fingerprint, band, req.Text)
	if cached {
		// Cache entries are shared by every tier of a band.
		result.Tier = tier
		s.cacheHits.Add(1)
	} else {
		result = checker.Correct(ctx, req.Text, tier)
		if err := s.cache.Store(ctx, fingerprint, band, result); err != nil {
			log.Warn("Failed to cache result", zap.Error(err))
		}
	}
	s.corrections.Add(1)

	resp := CorrectResponse{
		Result:    result,
		RequestID: requestID,
		BandLabel: result.Band.Label(),
		Stars:     result.Stars(),
		Groups:    result.FindingsByCategory(),
		Cached:    cached,
	}

	if s.history != nil {
		entry, err := history.NewEntry(result, fingerprint, source, requestID)
		if err == nil {
			err = s.history.Record(ctx, entry)
		}
		if err != nil {
			log.Warn("Failed to record correction history", zap.Error(err))
		} else {
			resp.HistoryID = entry.ID
		}
	}

	categories := categoryNames(result.Categories())
	log.LogCorrection(req.Text, tier, len(result.Findings), result.Score, categories)

	resp.DurationMS = float64(time.Since(start).Microseconds()) / 1000
	if s.wsHub != nil {
		s.wsHub.BroadcastCorrection(requestID, websocket.CorrectionEvent{
			RequestID:    requestID,
			Source:       source,
			Tier:         tier,
			Band:         string(result.Band),
			Score:        result.Score,
			FindingCount: len(result.Findings),
			Categories:   categories,
			TextLength:   len(req.Text),
			Cached:       cached,
			DurationMS:   resp.DurationMS,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	catalog := s.Checker().Catalog()
	rules := catalog.Rules()

	if b := r.URL.Query().Get("band"); b != "" {
		band, err := grammar.ParseBand(b)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		rules = catalog.SelectBand(band)
	} else if t := r.URL.Query().Get("tier"); t != "" {
		tier, err := strconv.Atoi(t)
		if err != nil {
			writeError(w, http.StatusBadRequest, "tier must be an integer")
			return
		}
		rules = catalog.Select(tier)
	}

	views := make([]RuleView, 0, len(rules))
	for _, rule := range rules {
		views = append(views, RuleView{
			ID:         rule.ID,
			Trigger:    rule.Trigger,
			Correction: rule.Correction,
			Category:   rule.EffectiveCategory(),
			Severity:   rule.EffectiveSeverity(),
			Band:       rule.EffectiveBand(),
			Exceptions: rule.Exceptions,
		})
	}

	writeJSON(w, http.StatusOK, RulesResponse{
		Fingerprint: catalog.Fingerprint(),
		Count:       len(views),
		Rules:       views,
	})
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}

	query := r.URL.Query()
	options := &history.ListOptions{
		Band:   query.Get("band"),
		Source: query.Get("source"),
	}
	var err error
	if v := query.Get("limit"); v != "" {
		if options.Limit, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
	}
	if v := query.Get("offset"); v != "" {
		if options.Offset, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
	}

	entries, err := s.history.List(r.Context(), options)
	if err != nil {
		s.logger.WithRequestID(getRequestID(r.Context())).Error("Failed to list history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	if entries == nil {
		entries = []*history.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":       len(entries),
		"corrections": entries,
	})
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}

	entry, err := s.history.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.WithRequestID(getRequestID(r.Context())).Error("Failed to get history entry", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get history entry")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := StatsResponse{
		Uptime:      time.Since(s.startedAt).Round(time.Second).String(),
		Corrections: s.corrections.Load(),
		CacheHits:   s.cacheHits.Load(),
		Rules:       s.Checker().Catalog().Len(),
	}

	if s.cache != nil {
		stats, err := s.cache.GetStats(ctx)
		if err != nil {
			s.logger.Warn("Failed to get cache stats", zap.Error(err))
		}
		resp.Cache = stats
	}
	if s.history != nil {
		stats, err := s.history.GetStats(ctx)
		if err != nil {
			s.logger.Error("Failed to get history stats", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to get history stats")
			return
		}
		resp.History = stats
	}
	if s.wsHub != nil {
		stats := s.wsHub.GetStats()
		resp.WebSocket = &stats
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache is disabled")
		return
	}
	if err := s.cache.Clear(r.Context()); err != nil {
		s.logger.Error("Failed to clear cache", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to clear cache")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleInfo handles info requests
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	catalog := s.Checker().Catalog()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":              "grammar-sentinel",
		"version":           version,
		"rules":             catalog.Len(),
		"fingerprint":       catalog.Fingerprint(),
		"default_tier":      s.config.Grammar.DefaultTier,
		"structural_checks": s.analyzer != nil,
		"cache_enabled":     s.cache != nil,
		"history_enabled":   s.history != nil,
		"websocket_enabled": s.wsHub != nil,
	})
}

func (s *Server) maxTextLength() int {
	if s.config.Grammar.MaxTextLength > 0 {
		return s.config.Grammar.MaxTextLength
	}
	return 20000
}

func categoryNames(categories []grammar.Category) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return names
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/caretcaret/aurora/internal/report"
	"github.com/caretcaret/aurora/internal/theorytab"
)

func (s *Server) handleListClips(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	clips, err := s.orchestrator.ClipStore().List(r.Context(), limit, offset)
	if err != nil {
		s.log.Error("list clips failed", "error", err)
		jsonError(w, "failed to list clips", http.StatusInternalServerError)
		return
	}
	if clips == nil {
		clips = []theorytab.Clip{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"clips":  clips,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleClipStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.orchestrator.ClipStore().Summarize(r.Context())
	if err != nil {
		s.log.Error("summarize failed", "error", err)
		jsonError(w, "failed to summarize clips", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	stats, err := s.orchestrator.ClipStore().Summarize(r.Context())
	if err != nil {
		s.log.Error("summarize failed", "error", err)
		jsonError(w, "failed to summarize clips", http.StatusInternalServerError)
		return
	}

	html, err := report.HTML(stats, s.orchestrator.CrawlSummary())
	if err != nil {
		s.log.Error("report render failed", "error", err)
		jsonError(w, "failed to render report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

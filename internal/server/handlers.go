package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cfle/mtg-oracle/internal/models"
	"github.com/cfle/mtg-oracle/internal/search"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	searchID := uuid.New().String()
	s.logger.Info("Search request",
		zap.String("search_id", searchID),
		zap.String("query", query.Query),
		zap.Strings("colors", query.Colors))

	resp, err := s.engine.Search(r.Context(), &query)
	if err != nil {
		if errors.Is(err, search.ErrInvalidQuery) {
			s.logger.Warn("Search rejected",
				zap.String("search_id", searchID),
				zap.Error(err))
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Search failed",
			zap.String("search_id", searchID),
			zap.Error(err))
		respondError(w, http.StatusInternalServerError, "search failed")
		return
	}

	s.logger.Info("Search completed",
		zap.String("search_id", searchID),
		zap.String("outcome", string(resp.Outcome)),
		zap.Int("total", resp.Total),
		zap.Int64("query_time_ms", resp.QueryTime))

	respondJSON(w, statusFor(resp.Outcome), resp)
}

// statusFor maps a search outcome to an HTTP status. Empty result sets are
// still successful searches.
func statusFor(outcome models.Outcome) int {
	switch outcome {
	case models.OutcomeUnresolved, models.OutcomeEmbeddingMissing:
		return http.StatusNotFound
	case models.OutcomeResolverUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snapshot := s.source.Snapshot()
	if snapshot == nil {
		respondError(w, http.StatusServiceUnavailable, "dataset not loaded")
		return
	}
	card, ok := snapshot.Corpus.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "card not found")
		return
	}
	respondJSON(w, http.StatusOK, card)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if s.suggest == nil {
		respondError(w, http.StatusNotImplemented, "suggestions not available")
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		respondError(w, http.StatusBadRequest, "missing query parameter 'q'")
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	suggestions, err := s.suggest.Suggest(r.Context(), q, limit)
	if err != nil {
		s.logger.Error("Suggest failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "suggestion lookup failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"query":       q,
		"suggestions": suggestions,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
	}
	if snapshot := s.source.Snapshot(); snapshot != nil {
		status["corpus_size"] = snapshot.Corpus.Len()
		status["dimensions"] = snapshot.Dim
		status["loaded_at"] = snapshot.LoadedAt.Format(time.RFC3339)
	} else {
		status["status"] = "loading"
	}
	if s.cache != nil {
		if n, err := s.cache.Count(r.Context()); err == nil {
			status["cached_resolutions"] = n
		}
	}
	if s.suggest != nil {
		if n, err := s.suggest.Count(); err == nil {
			status["suggest_index_size"] = n
		}
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

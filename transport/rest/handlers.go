package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/persona-chat-backend/internal/apperror"
	"github.com/rocketscienceinc/persona-chat-backend/internal/entity"
	"github.com/rocketscienceinc/persona-chat-backend/internal/persona"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type personaResponder interface {
	Personas() []persona.Persona
	Get(id string) (persona.Persona, error)
	Reply(personaID, message string, historyLen int) persona.Reply
}

type statsUseCase interface {
	Stats(ctx context.Context, playerID string) (entity.GameStats, error)
	History(ctx context.Context, playerID string, limit int) ([]entity.GameResult, error)
}

type Handlers struct {
	logger   *slog.Logger
	personas personaResponder
	stats    statsUseCase
}

func NewHandlers(logger *slog.Logger, personas personaResponder, stats statsUseCase) *Handlers {
	return &Handlers{
		logger:   logger.With("component", "rest"),
		personas: personas,
		stats:    stats,
	}
}

type replyRequest struct {
	Message string   `json:"message"`
	History []string `json:"history"`
}

type statsResponse struct {
	entity.GameStats
	WinRate int `json:"win_rate"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Handlers) ListPersonas(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, that.personas.Personas())
}

func (that *Handlers) PersonaReply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := that.personas.Get(id); err != nil {
		that.writeError(w, err)
		return
	}

	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if req.Message == "" {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	that.writeJSON(w, http.StatusOK, that.personas.Reply(id, req.Message, len(req.History)))
}

func (that *Handlers) PlayerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := that.stats.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, statsResponse{GameStats: stats, WinRate: stats.WinRate()})
}

func (that *Handlers) PlayerHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive number"})
			return
		}

		limit = min(parsed, maxHistoryLimit)
	}

	results, err := that.stats.History(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		that.writeError(w, err)
		return
	}

	if results == nil {
		results = []entity.GameResult{}
	}

	that.writeJSON(w, http.StatusOK, results)
}

func (that *Handlers) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, apperror.ErrNotFound) {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	that.logger.Error("request failed", "error", err)
	that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

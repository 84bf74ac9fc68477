package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"dicehall/domain/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// OpsSource is what the ops API reports on
type OpsSource interface {
	Ready() bool
	Guilds() []GuildInfo
	Sessions(ctx context.Context) []session.Info
	Jackpot(ctx context.Context, guildID int64) (int64, error)
}

// OpsResponse is the envelope of every ops API answer
type OpsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JackpotInfo is one guild's pool
type JackpotInfo struct {
	GuildID int64 `json:"guild_id"`
	Amount  int64 `json:"amount"`
}

// NewOpsRouter builds the internal HTTP API
func NewOpsRouter(source OpsSource) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if !source.Ready() {
			respondWithError(w, "discord gateway not ready", http.StatusServiceUnavailable)
			return
		}
		respondWithSuccess(w, "OK", nil)
	})

	r.Get("/guilds", func(w http.ResponseWriter, r *http.Request) {
		respondWithSuccess(w, "", source.Guilds())
	})

	r.Get("/sessions", func(w http.ResponseWriter, r *http.Request) {
		respondWithSuccess(w, "", source.Sessions(r.Context()))
	})

	r.Get("/jackpots/{guildID}", func(w http.ResponseWriter, r *http.Request) {
		guildID, err := strconv.ParseInt(chi.URLParam(r, "guildID"), 10, 64)
		if err != nil {
			respondWithError(w, "invalid guild ID", http.StatusBadRequest)
			return
		}
		amount, err := source.Jackpot(r.Context(), guildID)
		if err != nil {
			log.WithError(err).WithField("guildID", guildID).Error("Failed to read jackpot")
			respondWithError(w, "failed to read jackpot", http.StatusInternalServerError)
			return
		}
		respondWithSuccess(w, "", JackpotInfo{GuildID: guildID, Amount: amount})
	})

	return r
}

// Sessions reports every running channel session
func (b *Bot) Sessions(ctx context.Context) []session.Info {
	return b.registry.Sessions(ctx)
}

// Jackpot reads a guild's pool
func (b *Bot) Jackpot(ctx context.Context, guildID int64) (int64, error) {
	if b.jackpots == nil {
		return 0, nil
	}
	return b.jackpots.Balance(ctx, guildID)
}

// StartOpsAPI serves the ops router and returns its shutdown function
func StartOpsAPI(ctx context.Context, port int, source OpsSource) (func(), error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", port, err)
	}
	server := &http.Server{
		Handler:           NewOpsRouter(source),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("Ops API listening on port %d", port)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Ops API stopped")
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Ops API shutdown failed")
		}
	}, nil
}

func respondWithSuccess(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, OpsResponse{Success: true, Message: message, Data: data})
}

func respondWithError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, OpsResponse{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, body OpsResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Debug("Failed to write ops response")
	}
}

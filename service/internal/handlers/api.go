// internal/handlers/api.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jason-s-yu/seega/engine"
	"github.com/jason-s-yu/seega/service/internal/database"
	"github.com/jason-s-yu/seega/service/internal/game"
	"github.com/jason-s-yu/seega/service/internal/mom"
	log "github.com/sirupsen/logrus"
)

// Submitter applies an event and delivers its outcome.
type Submitter interface {
	Submit(ctx context.Context, ev game.Event) (game.Outcome, error)
}

// MatchLister reads finished matches.
type MatchLister interface {
	RecentMatches(ctx context.Context, limit int) ([]database.MatchRecord, error)
}

// API serves the HTTP and websocket endpoints.
type API struct {
	match   *game.Match
	submit  Submitter
	broker  mom.Broker
	matches MatchLister // nil when persistence is disabled
	origins []string
	log     *log.Entry

	mu   sync.Mutex
	live map[string]uuid.UUID // name -> connection holding it
}

// New builds the API. matches may be nil.
func New(match *game.Match, submit Submitter, broker mom.Broker, matches MatchLister, origins []string, logger *log.Logger) *API {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &API{
		match:   match,
		submit:  submit,
		broker:  broker,
		matches: matches,
		origins: origins,
		log:     logger.WithField("component", "http"),
		live:    make(map[string]uuid.UUID),
	}
}

// Router returns the chi router with every route mounted.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/ws", a.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/state", a.getState)
		r.Get("/legal", a.getLegal)
		r.Get("/chat", a.getChat)
		r.Post("/reset", a.postReset)
		r.Get("/matches", a.getMatches)
		r.Get("/queues/{name}", a.getQueue)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (a *API) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.match.Snapshot())
}

// moveView is one legal move as sent to clients.
type moveView struct {
	Action      string  `json:"action"`
	Origin      *[2]int `json:"origin,omitempty"`
	Destination [2]int  `json:"destination"`
}

func (a *API) getLegal(w http.ResponseWriter, r *http.Request) {
	slot, ok := engine.ParseSlot(r.URL.Query().Get("slot"))
	if !ok {
		writeError(w, http.StatusBadRequest, "slot must be P1 or P2")
		return
	}
	moves := a.match.LegalMoves(slot)
	out := make([]moveView, 0, len(moves))
	for _, m := range moves {
		mv := moveView{Action: m.Kind.String(), Destination: [2]int{m.To.Row, m.To.Col}}
		if m.Kind == engine.MoveSlide {
			mv.Origin = &[2]int{m.From.Row, m.From.Col}
		}
		out = append(out, mv)
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getChat(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.match.ChatHistory())
}

func (a *API) postReset(w http.ResponseWriter, r *http.Request) {
	out, err := a.submit.Submit(r.Context(), game.Reset{})
	if err != nil {
		a.log.WithError(err).Error("reset")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"match_id": out.MatchID,
		"state":    out.Snapshot,
	})
}

func (a *API) getMatches(w http.ResponseWriter, r *http.Request) {
	if a.matches == nil {
		writeError(w, http.StatusServiceUnavailable, "match history is disabled")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	recs, err := a.matches.RecentMatches(r.Context(), limit)
	if err != nil {
		a.log.WithError(err).Error("list matches")
		writeError(w, http.StatusInternalServerError, "could not load matches")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (a *API) getQueue(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	n, err := a.broker.QueueLen(r.Context(), name)
	if err != nil {
		a.log.WithError(err).WithField("queue", name).Warn("queue length")
		writeError(w, http.StatusBadGateway, "broker unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"queue": name, "length": n})
}

package web

import (
	"bytes"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/vovakirdan/tui-invaders/internal/platform/raster"
	"github.com/vovakirdan/tui-invaders/internal/registry"
	"github.com/vovakirdan/tui-invaders/internal/storage"
)

type handlers struct {
	scores ScoreSource
	hub    *Hub
	frames *raster.Renderer
	log    *log.Logger
}

type modeJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type scoreJSON struct {
	Rank      int       `json:"rank"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

type runJSON struct {
	ID            int64     `json:"id"`
	Session       string    `json:"session"`
	Score         int       `json:"score"`
	Kills         int       `json:"kills"`
	Shots         int       `json:"shots"`
	EnemyShots    int       `json:"enemy_shots"`
	ShieldAbsorbs int       `json:"shield_absorbs"`
	PlayerHits    int       `json:"player_hits"`
	Ticks         int64     `json:"ticks"`
	Accuracy      float64   `json:"accuracy"`
	CreatedAt     time.Time `json:"created_at"`
}

type totalsJSON struct {
	Mode       string `json:"mode"`
	Runs       int    `json:"runs"`
	BestScore  int    `json:"best_score"`
	TotalKills int    `json:"total_kills"`
	TotalShots int    `json:"total_shots"`
	TotalTicks int64  `json:"total_ticks"`
}

func (h *handlers) modes(w http.ResponseWriter, _ *http.Request) {
	infos := registry.List()
	out := make([]modeJSON, 0, len(infos))
	for _, info := range infos {
		out = append(out, modeJSON{ID: info.ID, Title: info.Title, Description: info.Description})
	}
	writeJSON(w, out)
}

func (h *handlers) live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.hub.Sessions())
}

func (h *handlers) liveFrame(w http.ResponseWriter, r *http.Request) {
	session := chi.URLParam(r, "session")
	if s, err := url.PathUnescape(session); err == nil {
		session = s
	}
	snap, ok := h.hub.Snapshot(session)
	if !ok {
		writeError(w, "unknown session", http.StatusNotFound)
		return
	}
	var buf bytes.Buffer
	if err := h.frames.EncodePNG(&buf, snap); err != nil {
		h.log.Error("render frame", "session", session, "err", err)
		writeError(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (h *handlers) topScores(w http.ResponseWriter, r *http.Request) {
	mode := chi.URLParam(r, "mode")
	entries, err := h.scores.TopScores(mode, limitParam(r))
	if err != nil {
		h.fail(w, "top scores", mode, err)
		return
	}
	out := make([]scoreJSON, 0, len(entries))
	for i, e := range entries {
		out = append(out, scoreJSON{Rank: i + 1, Score: e.Score, CreatedAt: e.CreatedAt})
	}
	writeJSON(w, out)
}

func (h *handlers) recentRuns(w http.ResponseWriter, r *http.Request) {
	mode := chi.URLParam(r, "mode")
	runs, err := h.scores.RecentRuns(mode, limitParam(r))
	if err != nil {
		h.fail(w, "recent runs", mode, err)
		return
	}
	out := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunJSON(run))
	}
	writeJSON(w, out)
}

func (h *handlers) totals(w http.ResponseWriter, r *http.Request) {
	mode := chi.URLParam(r, "mode")
	t, err := h.scores.Totals(mode)
	if err != nil {
		h.fail(w, "run totals", mode, err)
		return
	}
	writeJSON(w, totalsJSON{
		Mode:       mode,
		Runs:       t.Runs,
		BestScore:  t.BestScore,
		TotalKills: t.TotalKills,
		TotalShots: t.TotalShots,
		TotalTicks: t.TotalTicks,
	})
}

func (h *handlers) fail(w http.ResponseWriter, what, mode string, err error) {
	h.log.Error("query failed", "what", what, "mode", mode, "err", err)
	writeError(w, "storage error", http.StatusInternalServerError)
}

func toRunJSON(r storage.RunRecord) runJSON {
	return runJSON{
		ID:            r.ID,
		Session:       r.Session,
		Score:         r.Score,
		Kills:         r.Kills,
		Shots:         r.Shots,
		EnemyShots:    r.EnemyShots,
		ShieldAbsorbs: r.ShieldAbsorbs,
		PlayerHits:    r.PlayerHits,
		Ticks:         r.Ticks,
		Accuracy:      r.Accuracy(),
		CreatedAt:     r.CreatedAt,
	}
}

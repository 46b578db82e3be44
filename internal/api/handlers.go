package api

import (
	"bytes"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"

	"feeding-frenzy/internal/game"
	"feeding-frenzy/internal/tracking"

	"gopkg.in/yaml.v3"
)

// Handler methods for routerHandlers
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.GetSnapshot())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.GetSnapshot()
	stats := map[string]interface{}{
		"status":   snap.Status,
		"tick":     snap.TickNum,
		"score":    snap.Player.Score,
		"level":    snap.Player.Level,
		"eventLog": h.engine.EventLogStats(),
	}
	if h.stats != nil {
		stats["save"] = h.stats.Data()
	}
	writeJSON(w, stats)
}

// handleGetTuning returns the running tuning in the same YAML form the
// tuning file uses.
func (h *routerHandlers) handleGetTuning(w http.ResponseWriter, r *http.Request) {
	data, err := yaml.Marshal(h.engine.Tuning())
	if err != nil {
		writeError(w, "Tuning unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(data)
}

func (h *routerHandlers) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		writeError(w, "Renderer disabled", http.StatusNotFound)
		return
	}

	snap := h.engine.GetSnapshot()
	start := time.Now()
	var buf bytes.Buffer
	if err := h.renderer.EncodePNG(&buf, &snap); err != nil {
		log.Printf("⚠️ Frame render failed: %v", err)
		writeError(w, "Render failed", http.StatusInternalServerError)
		return
	}
	RecordRender(time.Since(start))
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// inputRequest is the /api/input body and the WebSocket "input" message.
type inputRequest struct {
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Eating bool     `json:"eating"`
}

func (req inputRequest) toInput() (game.Input, bool) {
	if req.X == nil || req.Y == nil {
		return game.Input{}, false
	}
	x, y := *req.X, *req.Y
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return game.Input{}, false
	}
	return game.Input{X: x, Y: y, Eating: req.Eating}, true
}

func (h *routerHandlers) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	in, ok := req.toInput()
	if !ok {
		writeError(w, "x and y are required", http.StatusBadRequest)
		return
	}

	h.engine.SetInput(in)
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleTracking(w http.ResponseWriter, r *http.Request) {
	var raw tracking.Raw
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	sample := h.tracker.Map(raw)
	h.engine.SetInput(game.Input{X: sample.X, Y: sample.Y, Eating: sample.Eating})
	writeJSON(w, map[string]interface{}{
		"x":      sample.X,
		"y":      sample.Y,
		"eating": sample.Eating,
	})
}

func (h *routerHandlers) handleUltimate(w http.ResponseWriter, r *http.Request) {
	h.engine.RequestUltimate()
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleRestart(w http.ResponseWriter, r *http.Request) {
	log.Println("🔄 Restart requested via API")
	h.engine.Reset()
	writeJSON(w, map[string]bool{"success": true})
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/the1andoni/repowatch/internal/monitor"
	"github.com/the1andoni/repowatch/internal/repository"
)

// buildHandler wires the REST routes onto a new ServeMux.
// Uses Go 1.22+ method-prefixed patterns ("GET /path").
func buildHandler(gw *Gateway) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", gw.handleHealth)
	mux.HandleFunc("GET /api/status", gw.handleStatus)
	mux.HandleFunc("GET /api/repos/{owner}/{name}", gw.handleGetRepo)
	mux.HandleFunc("GET /api/ledger", gw.handleLedger)

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (gw *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusResponse mirrors the operator-facing "is the watcher alive and
// healthy" view. Degraded means a whole stream pass failed outright.
type statusResponse struct {
	Version       string                          `json:"version"`
	UptimeSeconds int64                           `json:"uptime_seconds"`
	Degraded      bool                            `json:"degraded"`
	Streams       map[string]monitor.StreamHealth `json:"streams"`
	LedgerPulls   int                             `json:"ledger_pull_requests"`
	LedgerIssues  int                             `json:"ledger_issues"`
}

func (gw *Gateway) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := gw.monitor.Ledger().Snapshot()
	writeJSON(w, http.StatusOK, statusResponse{
		Version:       gw.version,
		UptimeSeconds: int64(time.Since(gw.startedAt).Seconds()),
		Degraded:      gw.monitor.Health().Degraded(),
		Streams:       gw.monitor.Health().Snapshot(),
		LedgerPulls:   len(snap.Pulls),
		LedgerIssues:  len(snap.Issues),
	})
}

func (gw *Gateway) handleGetRepo(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	name := r.PathValue("name")
	if owner == "" || name == "" {
		writeError(w, http.StatusBadRequest, "owner and name are required")
		return
	}

	repo, err := gw.provider.GetRepo(r.Context(), owner, name)
	if err != nil {
		if repository.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "repository not found")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, repo)
}

func (gw *Gateway) handleLedger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gw.monitor.Ledger().Snapshot())
}

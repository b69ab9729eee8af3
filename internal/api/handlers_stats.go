package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleModelStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model":       s.cfg.ModelPrimary,
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.orchestrator.ModelStats(),
	})
}

package handlers

import (
	"net/http"

	"github.com/MaturityMaxing/sportns/services"
)

// OpsHandler exposes the background jobs over HTTP so an operator or an
// external scheduler can trigger them on demand. The same jobs also run on
// timers inside the process.
type OpsHandler struct {
	gameService *services.GameService
	worker      *services.NotificationWorker
}

func NewOpsHandler(gameService *services.GameService, worker *services.NotificationWorker) *OpsHandler {
	return &OpsHandler{gameService: gameService, worker: worker}
}

// SweepHandler handles POST /internal/sweep and completes games whose
// scheduled time has passed beyond the sweep horizon.
func (h *OpsHandler) SweepHandler(w http.ResponseWriter, r *http.Request) {
	swept, err := h.gameService.SweepStale(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"swept": swept}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RunWorkerHandler handles POST /internal/worker/run and drains one batch of
// the notification queue.
func (h *OpsHandler) RunWorkerHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.worker.Run(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

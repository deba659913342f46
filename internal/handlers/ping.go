package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// NewPingHandler возвращает обработчик GET /api/ping.
func NewPingHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if _, err := fmt.Fprint(w, "ok"); err != nil {
			logger.Warn("failed to write ping response", zap.Error(err))
		}
	}
}

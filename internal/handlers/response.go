package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/senyabanana/geega-crm/internal/models"
	"github.com/senyabanana/geega-crm/internal/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// writeJSON отправляет ответ 200 с телом в формате JSON.
func writeJSON(w http.ResponseWriter, logger *zap.Logger, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("failed to encode response", zap.Error(err))
	}
}

// handleError переводит ошибку сервиса в код ответа; неизвестные ошибки отдаются как 500 с fallback.
func handleError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	var errorResponse *models.ErrorResponse
	if errors.As(err, &errorResponse) {
		if errorResponse.StatusCode >= http.StatusInternalServerError {
			logger.Error(errorResponse.Message, zap.Error(err))
		} else {
			logger.Debug(errorResponse.Message, zap.Int("status", errorResponse.StatusCode))
		}
		utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
		return
	}
	logger.Error(fallback, zap.Error(err))
	utils.SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

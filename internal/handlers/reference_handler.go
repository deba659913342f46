package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/geega-crm/internal/services"
	"github.com/senyabanana/geega-crm/internal/utils"

	"go.uber.org/zap"
)

// ReferenceHandler отдаёт справочники клиентов, лидов и пользователей для формы тендера.
type ReferenceHandler struct {
	Service *services.ReferenceService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewReferenceHandler создаёт новый экземпляр ReferenceHandler.
func NewReferenceHandler(service *services.ReferenceService, logger *zap.Logger, timeout time.Duration) *ReferenceHandler {
	return &ReferenceHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// List возвращает обработчик для справочника kind.
func (h *ReferenceHandler) List(kind services.ReferenceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
		defer cancel()

		limit, err := utils.ParseLookupLimit(r.URL.Query().Get("limit"))
		if err != nil {
			utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}

		refs, err := h.Service.List(ctx, kind, limit)
		if err != nil {
			handleError(w, h.Logger, err, "failed to fetch "+string(kind))
			return
		}

		writeJSON(w, h.Logger, refs)
	}
}

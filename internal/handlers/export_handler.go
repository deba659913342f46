package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/senyabanana/geega-crm/internal/models"
	"github.com/senyabanana/geega-crm/internal/services"

	"go.uber.org/zap"
)

type ExportHandler struct {
	Service *services.ExportService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewExportHandler создаёт новый экземпляр ExportHandler.
func NewExportHandler(service *services.ExportService, logger *zap.Logger, timeout time.Duration) *ExportHandler {
	return &ExportHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// ExportTenders отдаёт выгрузку тендеров в виде xlsx-вложения.
func (h *ExportHandler) ExportTenders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	query := r.URL.Query()
	buf, err := h.Service.ExportTenders(ctx, models.ExportRequest{
		IDs:        query.Get("ids"),
		FilterType: query.Get("filterType"),
		Search:     query.Get("search"),
	})
	if err != nil {
		handleError(w, h.Logger, err, "failed to export tenders")
		return
	}

	w.Header().Set("Content-Type", services.ExportContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+services.ExportFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err = buf.WriteTo(w); err != nil {
		h.Logger.Warn("failed to write export response", zap.Error(err))
	}
}

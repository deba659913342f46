package router

import (
	"net/http"

	"github.com/senyabanana/geega-crm/internal/handlers"
	"github.com/senyabanana/geega-crm/internal/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers - набор обработчиков, которые регистрирует InitRoutes.
type Handlers struct {
	Tender    *handlers.TenderHandler
	Export    *handlers.ExportHandler
	Reference *handlers.ReferenceHandler
}

func InitRoutes(h Handlers, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", handlers.NewPingHandler(logger))
	mux.HandleFunc("GET /api/tenders", h.Tender.GetTenders)
	mux.HandleFunc("GET /api/tenders/export", h.Export.ExportTenders)
	mux.HandleFunc("POST /api/tenders/new", h.Tender.CreateTender)
	mux.HandleFunc("GET /api/tenders/{tenderId}", h.Tender.GetTender)
	mux.HandleFunc("PATCH /api/tenders/{tenderId}/edit", h.Tender.EditTender)

	mux.HandleFunc("GET /api/partners", h.Reference.List(services.ReferencePartners))
	mux.HandleFunc("GET /api/leads", h.Reference.List(services.ReferenceLeads))
	mux.HandleFunc("GET /api/users", h.Reference.List(services.ReferenceUsers))

	mux.Handle("GET /metrics", promhttp.Handler())

	return RequestID(AccessLog(logger, mux))
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/senyabanana/geega-crm/internal/models"
	"github.com/senyabanana/geega-crm/internal/services"
	"github.com/senyabanana/geega-crm/internal/utils"

	"go.uber.org/zap"
)

// UserIDHeader - заголовок с ID пользователя, от имени которого создаются тендеры.
const UserIDHeader = "X-User-Id"

// TenderHandler - структура для обработки HTTP-запросов.
type TenderHandler struct {
	Service *services.TenderService
	Logger  *zap.Logger
	Timeout time.Duration
}

// NewTenderHandler создаёт новый экземпляр TenderHandler.
func NewTenderHandler(service *services.TenderService, logger *zap.Logger, timeout time.Duration) *TenderHandler {
	return &TenderHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetTenders обрабатывает запросы страницы дашборда.
func (h *TenderHandler) GetTenders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	query := r.URL.Query()
	page, limit, err := utils.ParsePageLimit(query.Get("page"), query.Get("limit"))
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Service.QueryTenders(ctx, models.TenderQuery{
		FilterType: utils.FilterTypeOrDefault(query.Get("filterType")),
		Search:     query.Get("search"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		handleError(w, h.Logger, err, "failed to fetch tenders")
		return
	}

	writeJSON(w, h.Logger, result)
}

// CreateTender обрабатывает запросы для создания тендера.
// Тело может быть объектом или массивом объектов; ответ повторяет форму запроса.
func (h *TenderHandler) CreateTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := actorFromRequest(r)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var raw json.RawMessage
	if err = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&raw); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	batch := bytes.HasPrefix(bytes.TrimSpace(raw), []byte("["))
	var requests []models.TenderRequest
	if batch {
		err = json.Unmarshal(raw, &requests)
	} else {
		var req models.TenderRequest
		err = json.Unmarshal(raw, &req)
		requests = []models.TenderRequest{req}
	}
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateTenders(ctx, actor, requests)
	if err != nil {
		handleError(w, h.Logger, err, "failed to create tender")
		return
	}

	items := services.FormatTenders(created)
	if batch {
		writeJSON(w, h.Logger, items)
		return
	}
	writeJSON(w, h.Logger, items[0])
}

// GetTender обрабатывает запросы для получения тендера по ID.
func (h *TenderHandler) GetTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tender, err := h.Service.GetTender(ctx, r.PathValue("tenderId"))
	if err != nil {
		handleError(w, h.Logger, err, "failed to fetch tender")
		return
	}

	writeJSON(w, h.Logger, tender)
}

// EditTender обрабатывает запросы для изменения тендера.
func (h *TenderHandler) EditTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var updateFields map[string]interface{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&updateFields); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updatedTender, err := h.Service.EditTender(ctx, r.PathValue("tenderId"), updateFields)
	if err != nil {
		handleError(w, h.Logger, err, "failed to update tender")
		return
	}

	writeJSON(w, h.Logger, updatedTender)
}

// actorFromRequest читает X-User-Id; пустой заголовок означает анонимного пользователя.
func actorFromRequest(r *http.Request) (models.Actor, error) {
	value := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if value == "" {
		return models.Actor{}, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return models.Actor{}, models.NewInputError("invalid " + UserIDHeader + " header")
	}
	return models.Actor{UserID: &id}, nil
}

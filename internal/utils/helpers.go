package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/senyabanana/geega-crm/internal/models"
)

const (
	DefaultPage        = 1
	DefaultPageSize    = 10
	DefaultLookupLimit = 50
	defaultFilterType  = "all"
)

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := models.ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
	}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Println(err)
	}
}

// ParsePageLimit обрабатывает page и limit, пустые значения заменяются значениями по умолчанию
func ParsePageLimit(pageStr, limitStr string) (int, int, error) {
	page, limit := DefaultPage, DefaultPageSize
	var err error

	if pageStr != "" {
		page, err = strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			return 0, 0, fmt.Errorf("invalid page parameter, must be a positive integer")
		}
	}

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return 0, 0, fmt.Errorf("invalid limit parameter, must be a positive integer")
		}
	}

	return page, limit, nil
}

// ParseLookupLimit обрабатывает limit для справочников
func ParseLookupLimit(limitStr string) (int, error) {
	if limitStr == "" {
		return DefaultLookupLimit, nil
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("invalid limit parameter, must be a positive integer")
	}
	return limit, nil
}

// ParseIDList разбирает список идентификаторов через запятую, пустые элементы пропускаются
func ParseIDList(idsStr string) ([]int64, error) {
	ids := []int64{}
	for _, token := range strings.Split(idsStr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q in ids parameter", token)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseTenderID разбирает идентификатор тендера из пути запроса
func ParseTenderID(tenderIdStr string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(tenderIdStr), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid tender id %q", tenderIdStr)
	}
	return id, nil
}

// FilterTypeOrDefault возвращает "all", если фильтр не задан
func FilterTypeOrDefault(filterType string) string {
	if filterType == "" {
		return defaultFilterType
	}
	return filterType
}

package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/senyabanana/geega-crm/internal/metrics"
	"github.com/senyabanana/geega-crm/internal/models"
	"github.com/senyabanana/geega-crm/internal/repository"
	"github.com/senyabanana/geega-crm/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type TenderService struct {
	Repo     repository.TenderRepository
	Sequence repository.SequenceGenerator
	Logger   *zap.Logger
}

// NewTenderService создаёт новый экземпляр TenderService.
func NewTenderService(repo repository.TenderRepository, sequence repository.SequenceGenerator, logger *zap.Logger) *TenderService {
	return &TenderService{Repo: repo, Sequence: sequence, Logger: logger}
}

// QueryTenders возвращает страницу дашборда и общее количество отфильтрованных тендеров.
// Страница и COUNT читаются разными запросами без общего снимка: при одновременной вставке total может разойтись со страницей.
func (s *TenderService) QueryTenders(ctx context.Context, query models.TenderQuery) (*models.TenderPage, error) {
	if query.Page <= 0 || query.Limit <= 0 {
		return nil, models.NewInputError("page and limit must be positive integers")
	}
	if query.Page-1 > math.MaxInt/query.Limit {
		return nil, models.NewInputError("page is out of range")
	}

	filter := models.NewTenderFilter(query.FilterType, query.Search)
	offset := (query.Page - 1) * query.Limit

	var tenders []models.Tender
	var total int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tenders, err = s.Repo.SearchTenders(gctx, filter, query.Limit, offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.Repo.CountTenders(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		s.Logger.Error("failed to query tenders",
			zap.String("filter_type", query.FilterType),
			zap.Int("page", query.Page),
			zap.Error(err))
		return nil, models.NewDependencyError("failed to fetch tenders", err)
	}

	return &models.TenderPage{Tenders: FormatTenders(tenders), Total: total}, nil
}

// CreateTenders создаёт один или несколько тендеров от имени actor.
// Номер тендера берётся из последовательности, если он пуст или равен "New".
func (s *TenderService) CreateTenders(ctx context.Context, actor models.Actor, requests []models.TenderRequest) ([]models.Tender, error) {
	if len(requests) == 0 {
		return nil, models.NewInputError("no tenders to create")
	}

	tenders := make([]models.Tender, 0, len(requests))
	for i, req := range requests {
		tender, err := buildTender(req, actor)
		if err != nil {
			if len(requests) > 1 {
				return nil, models.NewInputError(fmt.Sprintf("tender #%d: %s", i+1, err.Error()))
			}
			return nil, err
		}
		tenders = append(tenders, tender)
	}

	for i := range tenders {
		if tenders[i].TenderNo != "" && tenders[i].TenderNo != models.NewTenderNo {
			continue
		}
		tenderNo, err := s.Sequence.NextTenderNo(ctx)
		if err != nil {
			s.Logger.Error("failed to assign tender number", zap.Error(err))
			return nil, models.NewDependencyError("failed to assign tender number", err)
		}
		tenders[i].TenderNo = tenderNo
	}

	created, err := s.Repo.CreateTenders(ctx, tenders)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateTenderNo) {
			return nil, models.NewErrorResponse(http.StatusConflict, err.Error())
		}
		if errors.Is(err, repository.ErrUnknownReference) {
			return nil, models.NewInputError(err.Error())
		}
		s.Logger.Error("failed to create tenders", zap.Int("count", len(tenders)), zap.Error(err))
		return nil, models.NewDependencyError("failed to create tender", err)
	}

	metrics.TendersCreated.Add(float64(len(created)))
	s.Logger.Info("tenders created", zap.Int("count", len(created)))
	return created, nil
}

// GetTender возвращает отформатированный тендер по ID.
func (s *TenderService) GetTender(ctx context.Context, tenderId string) (*models.TenderItem, error) {
	id, err := utils.ParseTenderID(tenderId)
	if err != nil {
		return nil, models.NewInputError(err.Error())
	}

	tender, err := s.Repo.GetTender(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTenderNotFound) {
			return nil, models.NewNotFoundError("tender not found")
		}
		return nil, models.NewDependencyError("failed to fetch tender", err)
	}

	item := FormatTender(*tender)
	return &item, nil
}

// EditTender изменяет разрешённые поля тендера.
func (s *TenderService) EditTender(ctx context.Context, tenderId string, updateFields map[string]interface{}) (*models.TenderItem, error) {
	id, err := utils.ParseTenderID(tenderId)
	if err != nil {
		return nil, models.NewInputError(err.Error())
	}

	columns, err := normalizeEditFields(updateFields)
	if err != nil {
		return nil, err
	}

	tender, err := s.Repo.EditTender(ctx, id, columns)
	if err != nil {
		if errors.Is(err, repository.ErrTenderNotFound) {
			return nil, models.NewNotFoundError("tender not found")
		}
		if errors.Is(err, repository.ErrUnknownReference) {
			return nil, models.NewInputError(err.Error())
		}
		s.Logger.Error("failed to edit tender", zap.Int64("tender_id", id), zap.Error(err))
		return nil, models.NewDependencyError("failed to update tender", err)
	}

	item := FormatTender(*tender)
	return &item, nil
}

func buildTender(req models.TenderRequest, actor models.Actor) (models.Tender, error) {
	var err error
	t := models.Tender{
		TenderNo:  strings.TrimSpace(req.TenderNo),
		Name:      strings.TrimSpace(req.Name),
		PartnerID: req.PartnerID,
		LeadID:    req.LeadID,
		UserID:    req.UserID,
		Model:     req.Model,
		Remarks:   req.Remarks,
	}
	if t.Name == "" {
		return t, models.NewInputError("tender title is required")
	}
	if t.UserID == nil {
		t.UserID = actor.UserID
	}

	if t.VehicleType, err = selectionOrDefault(req.VehicleType, "", "vehicle type"); err != nil {
		return t, err
	}
	if t.NegotiationStatus, err = selectionOrDefault(req.NegotiationStatus, models.NegotiationPending, "negotiation status"); err != nil {
		return t, err
	}
	if t.TenderStage, err = selectionOrDefault(req.TenderStage, models.StageNegotiation, "tender stage"); err != nil {
		return t, err
	}
	if t.TenderStatus, err = selectionOrDefault(req.TenderStatus, models.StatusInProgress, "tender status"); err != nil {
		return t, err
	}
	if t.PocRequired, err = selectionOrDefault(req.PocRequired, models.PocNo, "poc required"); err != nil {
		return t, err
	}
	if t.ApprovalStatus, err = selectionOrDefault(req.ApprovalStatus, models.ApprovalPending, "approval status"); err != nil {
		return t, err
	}
	if t.Department, err = selectionOrDefault(req.Department, "", "department"); err != nil {
		return t, err
	}
	if t.SubmissionDate, err = parseDate(req.SubmissionDate); err != nil {
		return t, err
	}
	return t, nil
}

func selectionOrDefault[T selection](value, def T, field string) (T, error) {
	var zero T
	if value == zero {
		return def, nil
	}
	if !value.Valid() {
		return zero, models.NewInputError(fmt.Sprintf("invalid %s %q", field, string(value)))
	}
	return value, nil
}

func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, models.NewInputError(fmt.Sprintf("invalid submission date %q, expected YYYY-MM-DD", value))
	}
	return &date, nil
}

var immutableFields = map[string]bool{"id": true, "tender_no": true, "create_date": true, "write_date": true}

// normalizeEditFields проверяет поля из тела запроса и приводит значения к типам колонок.
func normalizeEditFields(fields map[string]interface{}) (map[string]interface{}, error) {
	if len(fields) == 0 {
		return nil, models.NewInputError("no fields to update")
	}

	columns := make(map[string]interface{}, len(fields))
	for field, raw := range fields {
		if immutableFields[field] {
			return nil, models.NewInputError(fmt.Sprintf("field %s cannot be changed", field))
		}

		var value interface{}
		var err error
		switch field {
		case "name":
			var name string
			name, err = stringField(field, raw)
			if err == nil && strings.TrimSpace(name) == "" {
				err = models.NewInputError("tender title is required")
			}
			value = strings.TrimSpace(name)
		case "model", "remarks":
			value, err = stringField(field, raw)
		case "partner_id", "lead_id", "user_id":
			value, err = referenceField(field, raw)
		case "submission_date":
			var s string
			if s, err = stringField(field, raw); err == nil {
				value, err = parseDate(s)
			}
		case "vehicle_type":
			value, err = selectionField[models.VehicleType](field, raw, true)
		case "department":
			value, err = selectionField[models.Department](field, raw, true)
		case "negotiation_status":
			value, err = selectionField[models.NegotiationStatus](field, raw, false)
		case "tender_stage":
			value, err = selectionField[models.TenderStage](field, raw, false)
		case "tender_status":
			value, err = selectionField[models.TenderStatus](field, raw, false)
		case "poc_required":
			value, err = selectionField[models.PocRequired](field, raw, false)
		case "approval_status":
			value, err = selectionField[models.ApprovalStatus](field, raw, false)
		default:
			err = models.NewInputError(fmt.Sprintf("unknown field %s", field))
		}
		if err != nil {
			return nil, err
		}
		columns[field] = value
	}
	return columns, nil
}

func stringField(field string, raw interface{}) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", models.NewInputError(fmt.Sprintf("field %s must be a string", field))
	}
}

func referenceField(field string, raw interface{}) (*int64, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		if v <= 0 || v != math.Trunc(v) || v > math.MaxInt64 {
			return nil, models.NewInputError(fmt.Sprintf("field %s must be a positive integer id", field))
		}
		id := int64(v)
		return &id, nil
	default:
		return nil, models.NewInputError(fmt.Sprintf("field %s must be a positive integer id", field))
	}
}

func selectionField[T selection](field string, raw interface{}, allowEmpty bool) (string, error) {
	s, err := stringField(field, raw)
	if err != nil {
		return "", err
	}
	if s == "" && allowEmpty {
		return "", nil
	}
	if !T(s).Valid() {
		return "", models.NewInputError(fmt.Sprintf("invalid %s %q", field, s))
	}
	return s, nil
}

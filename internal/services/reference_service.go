package services

import (
	"context"

	"github.com/senyabanana/geega-crm/internal/models"
	"github.com/senyabanana/geega-crm/internal/repository"

	"go.uber.org/zap"
)

// ReferenceKind - вид справочника для формы тендера.
type ReferenceKind string

const (
	ReferencePartners ReferenceKind = "partners"
	ReferenceLeads    ReferenceKind = "leads"
	ReferenceUsers    ReferenceKind = "users"
)

type ReferenceService struct {
	Repo   repository.ReferenceRepository
	Logger *zap.Logger
}

// NewReferenceService создаёт новый экземпляр ReferenceService.
func NewReferenceService(repo repository.ReferenceRepository, logger *zap.Logger) *ReferenceService {
	return &ReferenceService{Repo: repo, Logger: logger}
}

// List возвращает до limit записей справочника, отсортированных по имени.
func (s *ReferenceService) List(ctx context.Context, kind ReferenceKind, limit int) ([]models.Reference, error) {
	if limit <= 0 {
		return nil, models.NewInputError("limit must be a positive integer")
	}

	var refs []models.Reference
	var err error
	switch kind {
	case ReferencePartners:
		refs, err = s.Repo.ListPartners(ctx, limit)
	case ReferenceLeads:
		refs, err = s.Repo.ListLeads(ctx, limit)
	case ReferenceUsers:
		refs, err = s.Repo.ListUsers(ctx, limit)
	default:
		return nil, models.NewInputError("unknown reference " + string(kind))
	}
	if err != nil {
		s.Logger.Error("failed to list references", zap.String("kind", string(kind)), zap.Error(err))
		return nil, models.NewDependencyError("failed to fetch "+string(kind), err)
	}
	return refs, nil
}

package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/senyabanana/geega-crm/internal/repository"

	"go.uber.org/zap"
)

func TestReferenceService_List(t *testing.T) {
	repo := repository.NewMemoryRepository()
	for _, name := range []string{"Zeta Corp", "Acme", "Metro"} {
		repo.AddPartner(name)
	}
	svc := NewReferenceService(repo, zap.NewNop())

	refs, err := svc.List(context.Background(), ReferencePartners, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 2 || refs[0].Name != "Acme" || refs[1].Name != "Metro" {
		t.Errorf("unexpected partners %+v", refs)
	}

	users, err := svc.List(context.Background(), ReferenceUsers, 50)
	if err != nil || len(users) != 0 {
		t.Errorf("expected empty users, got %v %v", users, err)
	}
}

func TestReferenceService_List_Errors(t *testing.T) {
	svc := NewReferenceService(failingRepo{}, zap.NewNop())

	if _, err := svc.List(context.Background(), ReferenceLeads, 50); statusOf(err) != http.StatusInternalServerError {
		t.Errorf("expected 500, got %v", err)
	}
	if _, err := svc.List(context.Background(), "vendors", 50); statusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown reference, got %v", err)
	}
	if _, err := svc.List(context.Background(), ReferenceLeads, 0); statusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 for zero limit, got %v", err)
	}
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/senyabanana/geega-crm/internal/models"
	"github.com/senyabanana/geega-crm/internal/repository"
)

var errStorageDown = errors.New("storage is down")

// failingRepo - хранилище, которое отвечает ошибкой на любой запрос.
type failingRepo struct{}

func (failingRepo) SearchTenders(context.Context, models.TenderFilter, int, int) ([]models.Tender, error) {
	return nil, errStorageDown
}

func (failingRepo) CountTenders(context.Context, models.TenderFilter) (int, error) {
	return 0, errStorageDown
}

func (failingRepo) GetTendersByIDs(context.Context, []int64) ([]models.Tender, error) {
	return nil, errStorageDown
}

func (failingRepo) GetTender(context.Context, int64) (*models.Tender, error) {
	return nil, errStorageDown
}

func (failingRepo) CreateTenders(context.Context, []models.Tender) ([]models.Tender, error) {
	return nil, errStorageDown
}

func (failingRepo) EditTender(context.Context, int64, map[string]interface{}) (*models.Tender, error) {
	return nil, errStorageDown
}

func (failingRepo) ListPartners(context.Context, int) ([]models.Reference, error) {
	return nil, errStorageDown
}

func (failingRepo) ListLeads(context.Context, int) ([]models.Reference, error) {
	return nil, errStorageDown
}

func (failingRepo) ListUsers(context.Context, int) ([]models.Reference, error) {
	return nil, errStorageDown
}

// unknownReferenceRepo отклоняет запись так же, как внешний ключ на отсутствующую запись.
type unknownReferenceRepo struct {
	failingRepo
}

func (unknownReferenceRepo) CreateTenders(context.Context, []models.Tender) ([]models.Tender, error) {
	return nil, repository.ErrUnknownReference
}

func (unknownReferenceRepo) EditTender(context.Context, int64, map[string]interface{}) (*models.Tender, error) {
	return nil, repository.ErrUnknownReference
}

// failingSequence - генератор номеров, который всегда возвращает ошибку.
type failingSequence struct{}

func (failingSequence) NextTenderNo(context.Context) (string, error) {
	return "", errStorageDown
}

// steppingClock возвращает время, которое сдвигается на минуту при каждом вызове.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return start.Add(time.Duration(n) * time.Minute)
	}
}

var seedStart = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// newSeededRepo заполняет хранилище пятью тендерами; тендер с ID 5 самый новый.
func newSeededRepo(t *testing.T) *repository.MemoryRepository {
	t.Helper()

	repo := repository.NewMemoryRepository()
	repo.Now = steppingClock(seedStart)

	acme := repo.AddPartner("Acme Logistics")
	metro := repo.AddPartner("Metro Transit")
	lead := repo.AddLead("LEAD-042 Regional fleet")
	owner := repo.AddUser("Olga Petrova")

	submission := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)
	seed := []models.Tender{
		{TenderNo: "TND00001", Name: "Bus fleet 2025", PartnerID: &acme, LeadID: &lead, UserID: &owner,
			VehicleType: models.Bus, TenderStage: models.StageNegotiation, TenderStatus: models.StatusInProgress,
			NegotiationStatus: models.NegotiationPending, PocRequired: models.PocYes,
			ApprovalStatus: models.ApprovalPending, Department: models.PublicTransport, SubmissionDate: &submission},
		{TenderNo: "TND00002", Name: "City buses", PartnerID: &metro,
			VehicleType: models.Bus, TenderStage: models.StageApproved, TenderStatus: models.StatusSuccess,
			NegotiationStatus: models.NegotiationSuccess, PocRequired: models.PocNo,
			ApprovalStatus: models.ApprovalApproved, Department: models.FleetSales},
		{TenderNo: "TND00003", Name: "Heavy trucks", PartnerID: &acme,
			VehicleType: models.Truck, TenderStage: models.StageLost, TenderStatus: models.StatusFailed,
			NegotiationStatus: models.NegotiationFailed, PocRequired: models.PocNo,
			ApprovalStatus: models.ApprovalRejected, Department: models.HeavyEquipment},
		{TenderNo: "TND00004", Name: "Sedan pool",
			VehicleType: models.Passenger, TenderStage: models.StageRevision, TenderStatus: models.StatusInProgress,
			NegotiationStatus: models.NegotiationPending, PocRequired: models.PocNo,
			ApprovalStatus: models.ApprovalPending, Department: models.CorporateSales},
		{TenderNo: "TND00005", Name: "Airport shuttles 50%", PartnerID: &metro,
			VehicleType: models.Bus, TenderStage: models.StageApproved, TenderStatus: models.StatusSuccess,
			NegotiationStatus: models.NegotiationSuccess, PocRequired: models.PocYes,
			ApprovalStatus: models.ApprovalApproved, Department: models.AviationSales},
	}
	for _, tender := range seed {
		if _, err := repo.CreateTenders(context.Background(), []models.Tender{tender}); err != nil {
			t.Fatalf("seed tender %s: %v", tender.TenderNo, err)
		}
	}
	return repo
}

// statusOf возвращает HTTP-код ошибки сервиса или 0, если это не ErrorResponse.
func statusOf(err error) int {
	var errorResponse *models.ErrorResponse
	if errors.As(err, &errorResponse) {
		return errorResponse.StatusCode
	}
	return 0
}

func int64Ptr(v int64) *int64 { return &v }

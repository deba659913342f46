package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/senyabanana/geega-crm/internal/models"
	"github.com/senyabanana/geega-crm/internal/repository"

	"go.uber.org/zap"
)

func setupTestTenderService(t *testing.T) (*TenderService, *repository.MemoryRepository) {
	t.Helper()
	repo := newSeededRepo(t)
	return NewTenderService(repo, repository.NewMemorySequence("TQ", 4), zap.NewNop()), repo
}

func tenderNos(items []models.TenderItem) []string {
	nos := make([]string, 0, len(items))
	for _, item := range items {
		nos = append(nos, item.TenderNo)
	}
	return nos
}

// ── QueryTenders ──

func TestTenderService_QueryTenders_Pagination(t *testing.T) {
	svc, _ := setupTestTenderService(t)
	ctx := context.Background()

	tests := []struct {
		page, limit int
		want        []string
	}{
		{1, 2, []string{"TND00005", "TND00004"}},
		{2, 2, []string{"TND00003", "TND00002"}},
		{3, 2, []string{"TND00001"}},
		{4, 2, []string{}},
		{1, 10, []string{"TND00005", "TND00004", "TND00003", "TND00002", "TND00001"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page=%d,limit=%d", tt.page, tt.limit), func(t *testing.T) {
			result, err := svc.QueryTenders(ctx, models.TenderQuery{FilterType: "all", Page: tt.page, Limit: tt.limit})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Total != 5 {
				t.Errorf("expected total 5, got %d", result.Total)
			}
			got := tenderNos(result.Tenders)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTenderService_QueryTenders_PagesPartitionFilteredSet(t *testing.T) {
	svc, _ := setupTestTenderService(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for page := 1; page <= 3; page++ {
		result, err := svc.QueryTenders(ctx, models.TenderQuery{FilterType: "all", Page: page, Limit: 2})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		for _, item := range result.Tenders {
			if seen[item.TenderNo] {
				t.Errorf("tender %s returned on more than one page", item.TenderNo)
			}
			seen[item.TenderNo] = true
		}
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 distinct tenders across pages, got %d", len(seen))
	}
}

func TestTenderService_QueryTenders_StageFilter(t *testing.T) {
	svc, _ := setupTestTenderService(t)

	result, err := svc.QueryTenders(context.Background(), models.TenderQuery{FilterType: "approved", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 || len(result.Tenders) != 2 {
		t.Fatalf("expected 2 approved tenders, got total=%d len=%d", result.Total, len(result.Tenders))
	}
	for _, item := range result.Tenders {
		if item.TenderStageRaw != "approved" || item.TenderStage != "Approved" {
			t.Errorf("unexpected stage %q/%q", item.TenderStageRaw, item.TenderStage)
		}
	}
}

func TestTenderService_QueryTenders_UnknownFilterTypeMeansAll(t *testing.T) {
	svc, _ := setupTestTenderService(t)

	for _, filterType := range []string{"all", "", "archived"} {
		result, err := svc.QueryTenders(context.Background(), models.TenderQuery{FilterType: filterType, Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("filterType %q: %v", filterType, err)
		}
		if result.Total != 5 {
			t.Errorf("filterType %q: expected total 5, got %d", filterType, result.Total)
		}
	}
}

func TestTenderService_QueryTenders_Search(t *testing.T) {
	svc, _ := setupTestTenderService(t)

	tests := []struct {
		search string
		filter string
		want   int
	}{
		{"acme", "all", 2},
		{"ACME", "lost", 1},
		{"tnd00004", "all", 1},
		{"bus", "all", 2},
		{"50%", "all", 1},
		{"nothing matches", "all", 0},
	}
	for _, tt := range tests {
		result, err := svc.QueryTenders(context.Background(), models.TenderQuery{FilterType: tt.filter, Search: tt.search, Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("search %q: %v", tt.search, err)
		}
		if result.Total != tt.want || len(result.Tenders) != tt.want {
			t.Errorf("search %q in %s: expected %d, got total=%d len=%d", tt.search, tt.filter, tt.want, result.Total, len(result.Tenders))
		}
	}
}

func TestTenderService_QueryTenders_InvalidPaging(t *testing.T) {
	svc, _ := setupTestTenderService(t)

	for _, q := range []models.TenderQuery{{Page: 0, Limit: 10}, {Page: 1, Limit: 0}, {Page: -1, Limit: -1}} {
		_, err := svc.QueryTenders(context.Background(), q)
		if statusOf(err) != http.StatusBadRequest {
			t.Errorf("page=%d limit=%d: expected 400, got %v", q.Page, q.Limit, err)
		}
	}
}

func TestTenderService_QueryTenders_StorageFailure(t *testing.T) {
	svc := NewTenderService(failingRepo{}, repository.NewMemorySequence("TQ", 4), zap.NewNop())

	_, err := svc.QueryTenders(context.Background(), models.TenderQuery{Page: 1, Limit: 10})
	if statusOf(err) != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
	if !errors.Is(err, errStorageDown) {
		t.Errorf("expected the storage error to be wrapped, got %v", err)
	}
}

// ── CreateTenders ──

func TestTenderService_CreateTenders_DefaultsAndOwner(t *testing.T) {
	svc, repo := setupTestTenderService(t)
	actorID := repo.AddUser("Ivan Sidorov")

	created, err := svc.CreateTenders(context.Background(), models.Actor{UserID: &actorID},
		[]models.TenderRequest{{TenderNo: models.NewTenderNo, Name: "School buses"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 tender, got %d", len(created))
	}

	tender := created[0]
	if tender.TenderNo != "TQ0001" {
		t.Errorf("expected sequence number TQ0001, got %s", tender.TenderNo)
	}
	if tender.UserID == nil || *tender.UserID != actorID || tender.UserName != "Ivan Sidorov" {
		t.Errorf("expected owner to default to the actor, got %v %q", tender.UserID, tender.UserName)
	}
	if tender.TenderStage != models.StageNegotiation || tender.TenderStatus != models.StatusInProgress ||
		tender.NegotiationStatus != models.NegotiationPending || tender.ApprovalStatus != models.ApprovalPending ||
		tender.PocRequired != models.PocNo {
		t.Errorf("unexpected defaults: %+v", tender)
	}
	if tender.CreateDate.IsZero() || !tender.CreateDate.Equal(tender.WriteDate) {
		t.Errorf("expected create and write dates to be set together, got %v / %v", tender.CreateDate, tender.WriteDate)
	}
}

func TestTenderService_CreateTenders_KeepsExplicitNumber(t *testing.T) {
	svc, _ := setupTestTenderService(t)

	created, err := svc.CreateTenders(context.Background(), models.Actor{}, []models.TenderRequest{
		{TenderNo: "EXT-7", Name: "Imported tender", SubmissionDate: "2025-06-30"},
		{Name: "Numbered by sequence"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created[0].TenderNo != "EXT-7" {
		t.Errorf("expected explicit number to be kept, got %s", created[0].TenderNo)
	}
	if created[1].TenderNo != "TQ0001" {
		t.Errorf("expected blank number to be assigned, got %s", created[1].TenderNo)
	}
	if created[0].SubmissionDate == nil || created[0].SubmissionDate.Format(dateLayout) != "2025-06-30" {
		t.Errorf("unexpected submission date %v", created[0].SubmissionDate)
	}
	if created[0].UserID != nil {
		t.Errorf("expected no owner without an actor, got %d", *created[0].UserID)
	}
}

func TestTenderService_CreateTenders_ConcurrentNumbersAreDistinct(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewTenderService(repo, repository.NewMemorySequence("TND", 5), zap.NewNop())

	const workers = 20
	var wg sync.WaitGroup
	numbers := make(chan string, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, err := svc.CreateTenders(context.Background(), models.Actor{},
				[]models.TenderRequest{{TenderNo: models.NewTenderNo, Name: fmt.Sprintf("Tender %d", i)}})
			if err != nil {
				errs <- err
				return
			}
			numbers <- created[0].TenderNo
		}(i)
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
	seen := map[string]bool{}
	for no := range numbers {
		if seen[no] {
			t.Errorf("tender number %s assigned twice", no)
		}
		seen[no] = true
	}
	if len(seen) != workers {
		t.Errorf("expected %d distinct numbers, got %d", workers, len(seen))
	}
}

func TestTenderService_CreateTenders_Validation(t *testing.T) {
	svc, _ := setupTestTenderService(t)

	tests := []struct {
		name string
		reqs []models.TenderRequest
	}{
		{"empty batch", nil},
		{"missing title", []models.TenderRequest{{Name: "   "}}},
		{"invalid stage", []models.TenderRequest{{Name: "x", TenderStage: "won"}}},
		{"invalid vehicle type", []models.TenderRequest{{Name: "x", VehicleType: "tram"}}},
		{"invalid date", []models.TenderRequest{{Name: "x", SubmissionDate: "30/06/2025"}}},
		{"invalid item in batch", []models.TenderRequest{{Name: "ok"}, {Name: "x", PocRequired: "maybe"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTenders(context.Background(), models.Actor{}, tt.reqs)
			if statusOf(err) != http.StatusBadRequest {
				t.Errorf("expected 400, got %v", err)
			}
		})
	}
}

func TestTenderService_CreateTenders_DuplicateNumber(t *testing.T) {
	svc, _ := setupTestTenderService(t)

	_, err := svc.CreateTenders(context.Background(), models.Actor{}, []models.TenderRequest{{TenderNo: "TND00003", Name: "Copy"}})
	if statusOf(err) != http.StatusConflict {
		t.Errorf("expected 409, got %v", err)
	}
}

func TestTenderService_CreateTenders_SequenceFailure(t *testing.T) {
	svc := NewTenderService(repository.NewMemoryRepository(), failingSequence{}, zap.NewNop())

	_, err := svc.CreateTenders(context.Background(), models.Actor{}, []models.TenderRequest{{Name: "x"}})
	if statusOf(err) != http.StatusInternalServerError || !errors.Is(err, errStorageDown) {
		t.Errorf("expected wrapped 500, got %v", err)
	}
}

// ── GetTender ──

func TestTenderService_GetTender(t *testing.T) {
	svc, _ := setupTestTenderService(t)

	item, err := svc.GetTender(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.TenderNo != "TND00001" || item.CustomerName != "Acme Logistics" || item.Owner != "Olga Petrova" {
		t.Errorf("unexpected item %+v", item)
	}

	if _, err = svc.GetTender(context.Background(), "999"); statusOf(err) != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
	if _, err = svc.GetTender(context.Background(), "abc"); statusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

// ── EditTender ──

func TestTenderService_EditTender(t *testing.T) {
	svc, repo := setupTestTenderService(t)
	before, _ := repo.GetTender(context.Background(), 4)
	partner := repo.AddPartner("Northwind")

	item, err := svc.EditTender(context.Background(), "4", map[string]interface{}{
		"tender_stage":    "approved",
		"remarks":         "price agreed",
		"partner_id":      float64(partner),
		"submission_date": "2025-07-01",
		"department":      "",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.TenderStage != "Approved" || item.Remarks != "price agreed" || item.CustomerName != "Northwind" {
		t.Errorf("edit not applied: %+v", item)
	}
	if item.SubmissionDate != "2025-07-01" || item.Department != "" {
		t.Errorf("unexpected date/department %q/%q", item.SubmissionDate, item.Department)
	}

	after, _ := repo.GetTender(context.Background(), 4)
	if !after.WriteDate.After(before.WriteDate) {
		t.Errorf("expected write date to move forward, %v -> %v", before.WriteDate, after.WriteDate)
	}
	if !after.CreateDate.Equal(before.CreateDate) || after.TenderNo != before.TenderNo {
		t.Errorf("create date and tender number must not change")
	}
}

func TestTenderService_EditTender_Rejected(t *testing.T) {
	svc, _ := setupTestTenderService(t)

	tests := []struct {
		name   string
		id     string
		fields map[string]interface{}
		status int
	}{
		{"immutable tender_no", "1", map[string]interface{}{"tender_no": "X"}, http.StatusBadRequest},
		{"unknown field", "1", map[string]interface{}{"color": "red"}, http.StatusBadRequest},
		{"no fields", "1", map[string]interface{}{}, http.StatusBadRequest},
		{"invalid enum", "1", map[string]interface{}{"tender_status": "done"}, http.StatusBadRequest},
		{"blank title", "1", map[string]interface{}{"name": " "}, http.StatusBadRequest},
		{"fractional id", "1", map[string]interface{}{"lead_id": 1.5}, http.StatusBadRequest},
		{"missing tender", "999", map[string]interface{}{"remarks": "x"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.EditTender(context.Background(), tt.id, tt.fields)
			if statusOf(err) != tt.status {
				t.Errorf("expected %d, got %v", tt.status, err)
			}
		})
	}
}

func TestTenderService_UnknownReferenceIsInputError(t *testing.T) {
	svc := NewTenderService(unknownReferenceRepo{}, repository.NewMemorySequence("TQ", 4), zap.NewNop())

	_, err := svc.CreateTenders(context.Background(), models.Actor{},
		[]models.TenderRequest{{Name: "x", PartnerID: int64Ptr(404)}})
	if statusOf(err) != http.StatusBadRequest {
		t.Errorf("create: expected 400, got %v", err)
	}

	_, err = svc.EditTender(context.Background(), "1", map[string]interface{}{"lead_id": float64(404)})
	if statusOf(err) != http.StatusBadRequest {
		t.Errorf("edit: expected 400, got %v", err)
	}
}

func TestTenderService_UnknownReferenceOnMemoryBackend(t *testing.T) {
	svc, _ := setupTestTenderService(t)

	_, err := svc.CreateTenders(context.Background(), models.Actor{UserID: int64Ptr(999)},
		[]models.TenderRequest{{Name: "Orphan owner"}})
	if statusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown actor, got %v", err)
	}
}

func TestTenderService_QueryTenders_InvalidUTF8Search(t *testing.T) {
	svc, _ := setupTestTenderService(t)

	result, err := svc.QueryTenders(context.Background(), models.TenderQuery{FilterType: "all", Search: "acme\xff", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("expected invalid bytes to be dropped from search, got total %d", result.Total)
	}
}

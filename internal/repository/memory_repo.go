package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/senyabanana/geega-crm/internal/models"
)

// MemoryRepository хранит тендеры и связанные записи в памяти процесса.
// Реализует TenderRepository и ReferenceRepository для локального запуска без базы данных.
type MemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	nextRef  int64
	tenders  map[int64]models.Tender
	partners map[int64]string
	leads    map[int64]string
	users    map[int64]string

	Now func() time.Time
}

// NewMemoryRepository создаёт пустое хранилище в памяти.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tenders:  make(map[int64]models.Tender),
		partners: make(map[int64]string),
		leads:    make(map[int64]string),
		users:    make(map[int64]string),
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// AddPartner добавляет клиента и возвращает его ID.
func (r *MemoryRepository) AddPartner(name string) int64 { return r.addRef(r.partners, name) }

// AddLead добавляет лид и возвращает его ID.
func (r *MemoryRepository) AddLead(name string) int64 { return r.addRef(r.leads, name) }

// AddUser добавляет пользователя и возвращает его ID.
func (r *MemoryRepository) AddUser(name string) int64 { return r.addRef(r.users, name) }

func (r *MemoryRepository) addRef(refs map[int64]string, name string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextRef++
	refs[r.nextRef] = name
	return r.nextRef
}

func (r *MemoryRepository) SearchTenders(_ context.Context, filter models.TenderFilter, limit, offset int) ([]models.Tender, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.filtered(filter)
	if limit <= 0 {
		return matched, nil
	}
	if offset >= len(matched) {
		return []models.Tender{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *MemoryRepository) CountTenders(_ context.Context, filter models.TenderFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.filtered(filter)), nil
}

func (r *MemoryRepository) GetTendersByIDs(_ context.Context, ids []int64) ([]models.Tender, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[int64]bool, len(ids))
	tenders := []models.Tender{}
	for _, id := range ids {
		t, ok := r.tenders[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		tenders = append(tenders, r.resolve(t))
	}
	sortTenders(tenders)
	return tenders, nil
}

func (r *MemoryRepository) GetTender(_ context.Context, id int64) (*models.Tender, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tenders[id]
	if !ok {
		return nil, ErrTenderNotFound
	}
	resolved := r.resolve(t)
	return &resolved, nil
}

func (r *MemoryRepository) CreateTenders(_ context.Context, tenders []models.Tender) ([]models.Tender, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[string]bool, len(tenders))
	for _, t := range tenders {
		if batch[t.TenderNo] || r.tenderNoTaken(t.TenderNo) {
			return nil, ErrDuplicateTenderNo
		}
		if !r.referencesExist(t) {
			return nil, ErrUnknownReference
		}
		batch[t.TenderNo] = true
	}

	now := r.Now()
	created := make([]models.Tender, 0, len(tenders))
	for _, t := range tenders {
		r.nextID++
		t.ID = r.nextID
		t.CreateDate = now
		t.WriteDate = now
		r.tenders[t.ID] = t
		created = append(created, r.resolve(t))
	}
	return created, nil
}

func (r *MemoryRepository) EditTender(_ context.Context, id int64, updateFields map[string]interface{}) (*models.Tender, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tenders[id]
	if !ok {
		return nil, ErrTenderNotFound
	}
	for column, value := range updateFields {
		if err := applyField(&t, column, value); err != nil {
			return nil, err
		}
	}
	if !r.referencesExist(t) {
		return nil, ErrUnknownReference
	}
	t.WriteDate = r.Now()
	r.tenders[id] = t

	resolved := r.resolve(t)
	return &resolved, nil
}

func (r *MemoryRepository) ListPartners(_ context.Context, limit int) ([]models.Reference, error) {
	return r.listRefs(r.partners, limit), nil
}

func (r *MemoryRepository) ListLeads(_ context.Context, limit int) ([]models.Reference, error) {
	return r.listRefs(r.leads, limit), nil
}

func (r *MemoryRepository) ListUsers(_ context.Context, limit int) ([]models.Reference, error) {
	return r.listRefs(r.users, limit), nil
}

func (r *MemoryRepository) listRefs(refs map[int64]string, limit int) []models.Reference {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Reference, 0, len(refs))
	for id, name := range refs {
		list = append(list, models.Reference{ID: id, Name: name})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

func (r *MemoryRepository) tenderNoTaken(tenderNo string) bool {
	for _, t := range r.tenders {
		if t.TenderNo == tenderNo {
			return true
		}
	}
	return false
}

// filtered повторяет условие buildTenderWhere: стадия и поиск по названию, номеру и клиенту.
func (r *MemoryRepository) filtered(filter models.TenderFilter) []models.Tender {
	search := strings.ToLower(filter.Search)

	matched := []models.Tender{}
	for _, t := range r.tenders {
		t = r.resolve(t)
		if filter.Stage != "" && t.TenderStage != filter.Stage {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Name), search) &&
			!strings.Contains(strings.ToLower(t.TenderNo), search) &&
			!strings.Contains(strings.ToLower(t.PartnerName), search) {
			continue
		}
		matched = append(matched, t)
	}
	sortTenders(matched)
	return matched
}

// referencesExist повторяет внешние ключи partner_id, lead_id и user_id.
func (r *MemoryRepository) referencesExist(t models.Tender) bool {
	return refExists(r.partners, t.PartnerID) && refExists(r.leads, t.LeadID) && refExists(r.users, t.UserID)
}

func refExists(refs map[int64]string, id *int64) bool {
	if id == nil {
		return true
	}
	_, ok := refs[*id]
	return ok
}

func (r *MemoryRepository) resolve(t models.Tender) models.Tender {
	t.PartnerName = refName(r.partners, t.PartnerID)
	t.LeadName = refName(r.leads, t.LeadID)
	t.UserName = refName(r.users, t.UserID)
	return t
}

func refName(refs map[int64]string, id *int64) string {
	if id == nil {
		return ""
	}
	return refs[*id]
}

func sortTenders(tenders []models.Tender) {
	sort.Slice(tenders, func(i, j int) bool {
		if !tenders[i].CreateDate.Equal(tenders[j].CreateDate) {
			return tenders[i].CreateDate.After(tenders[j].CreateDate)
		}
		return tenders[i].ID > tenders[j].ID
	})
}

func applyField(t *models.Tender, column string, value interface{}) error {
	var ok bool
	switch column {
	case "name":
		t.Name, ok = value.(string)
	case "model":
		t.Model, ok = value.(string)
	case "remarks":
		t.Remarks, ok = value.(string)
	case "partner_id":
		t.PartnerID, ok = value.(*int64)
	case "lead_id":
		t.LeadID, ok = value.(*int64)
	case "user_id":
		t.UserID, ok = value.(*int64)
	case "submission_date":
		t.SubmissionDate, ok = value.(*time.Time)
	case "vehicle_type", "negotiation_status", "tender_stage", "tender_status",
		"poc_required", "approval_status", "department":
		var s string
		if s, ok = value.(string); ok {
			setSelection(t, column, s)
		}
	default:
		return fmt.Errorf("column %q is not editable", column)
	}
	if !ok {
		return fmt.Errorf("invalid value type %T for column %q", value, column)
	}
	return nil
}

func setSelection(t *models.Tender, column, value string) {
	switch column {
	case "vehicle_type":
		t.VehicleType = models.VehicleType(value)
	case "negotiation_status":
		t.NegotiationStatus = models.NegotiationStatus(value)
	case "tender_stage":
		t.TenderStage = models.TenderStage(value)
	case "tender_status":
		t.TenderStatus = models.TenderStatus(value)
	case "poc_required":
		t.PocRequired = models.PocRequired(value)
	case "approval_status":
		t.ApprovalStatus = models.ApprovalStatus(value)
	case "department":
		t.Department = models.Department(value)
	}
}

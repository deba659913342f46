package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/senyabanana/geega-crm/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

var (
	ErrTenderNotFound    = errors.New("tender not found")
	ErrDuplicateTenderNo = errors.New("tender number already exists")
	ErrUnknownReference  = errors.New("referenced partner, lead or user does not exist")
)

// EditableColumns - поля тендера, которые разрешено менять после создания.
var EditableColumns = []string{
	"name", "model", "remarks", "partner_id", "lead_id", "user_id", "vehicle_type",
	"negotiation_status", "tender_stage", "tender_status", "poc_required", "approval_status",
	"submission_date", "department",
}

// TenderRepository - интерфейс для работы с тендерами.
type TenderRepository interface {
	// SearchTenders возвращает отфильтрованные тендеры, новые первыми; limit <= 0 снимает ограничение.
	SearchTenders(ctx context.Context, filter models.TenderFilter, limit, offset int) ([]models.Tender, error)
	CountTenders(ctx context.Context, filter models.TenderFilter) (int, error)
	GetTendersByIDs(ctx context.Context, ids []int64) ([]models.Tender, error)
	GetTender(ctx context.Context, id int64) (*models.Tender, error)
	CreateTenders(ctx context.Context, tenders []models.Tender) ([]models.Tender, error)
	EditTender(ctx context.Context, id int64, updateFields map[string]interface{}) (*models.Tender, error)
}

// PostgresTenderRepository - реализация TenderRepository для базы данных.
type PostgresTenderRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresTenderRepository создаёт новый экземпляр PostgresTenderRepository.
func NewPostgresTenderRepository(db *pgxpool.Pool) *PostgresTenderRepository {
	return &PostgresTenderRepository{DB: db}
}

const selectTenderQuery = `
	SELECT t.id, t.tender_no, t.name, t.partner_id, t.lead_id, t.user_id, t.vehicle_type, t.model,
	       t.negotiation_status, t.tender_stage, t.tender_status, t.poc_required, t.approval_status,
	       t.submission_date, t.department, t.remarks, t.create_date, t.write_date,
	       COALESCE(p.name, ''), COALESCE(l.name, ''), COALESCE(u.name, '')
	FROM tender t
	LEFT JOIN partner p ON p.id = t.partner_id
	LEFT JOIN crm_lead l ON l.id = t.lead_id
	LEFT JOIN app_user u ON u.id = t.user_id`

const countTenderQuery = `
	SELECT COUNT(*)
	FROM tender t
	LEFT JOIN partner p ON p.id = t.partner_id`

const tenderOrder = " ORDER BY t.create_date DESC, t.id DESC"

// buildTenderWhere собирает условие WHERE для фильтра, нумеруя параметры начиная с argIndex.
func buildTenderWhere(filter models.TenderFilter, argIndex int) (string, []interface{}) {
	var filters []string
	var args []interface{}

	if filter.Stage != "" {
		filters = append(filters, fmt.Sprintf("t.tender_stage = $%d", argIndex))
		args = append(args, string(filter.Stage))
		argIndex++
	}

	if filter.Search != "" {
		filters = append(filters, fmt.Sprintf("(t.name ILIKE $%d OR t.tender_no ILIKE $%d OR p.name ILIKE $%d)",
			argIndex, argIndex, argIndex))
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}

	if len(filters) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(filters, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// SearchTenders возвращает список тендеров по фильтру.
func (r *PostgresTenderRepository) SearchTenders(ctx context.Context, filter models.TenderFilter, limit, offset int) ([]models.Tender, error) {
	where, args := buildTenderWhere(filter, 1)
	query := selectTenderQuery + where + tenderOrder

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, limit, offset)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectTenders(rows)
}

// CountTenders возвращает количество тендеров по фильтру без учёта пагинации.
func (r *PostgresTenderRepository) CountTenders(ctx context.Context, filter models.TenderFilter) (int, error) {
	where, args := buildTenderWhere(filter, 1)

	var total int
	if err := r.DB.QueryRow(ctx, countTenderQuery+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// GetTendersByIDs возвращает найденные тендеры по списку идентификаторов, отсутствующие пропускаются.
func (r *PostgresTenderRepository) GetTendersByIDs(ctx context.Context, ids []int64) ([]models.Tender, error) {
	if len(ids) == 0 {
		return []models.Tender{}, nil
	}

	rows, err := r.DB.Query(ctx, selectTenderQuery+" WHERE t.id = ANY($1)"+tenderOrder, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return collectTenders(rows)
}

// GetTender возвращает тендер по ID.
func (r *PostgresTenderRepository) GetTender(ctx context.Context, id int64) (*models.Tender, error) {
	tender, err := scanTender(r.DB.QueryRow(ctx, selectTenderQuery+" WHERE t.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTenderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tender, nil
}

// CreateTenders создаёт тендеры одной транзакцией.
func (r *PostgresTenderRepository) CreateTenders(ctx context.Context, tenders []models.Tender) ([]models.Tender, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	created := make([]models.Tender, 0, len(tenders))
	for _, t := range tenders {
		var id int64
		err = tx.QueryRow(ctx, `
			INSERT INTO tender (tender_no, name, partner_id, lead_id, user_id, vehicle_type, model,
			                    negotiation_status, tender_stage, tender_status, poc_required,
			                    approval_status, submission_date, department, remarks)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING id`,
			t.TenderNo,
			t.Name,
			t.PartnerID,
			t.LeadID,
			t.UserID,
			string(t.VehicleType),
			t.Model,
			string(t.NegotiationStatus),
			string(t.TenderStage),
			string(t.TenderStatus),
			string(t.PocRequired),
			string(t.ApprovalStatus),
			t.SubmissionDate,
			string(t.Department),
			t.Remarks).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, ErrDuplicateTenderNo
			}
			if isForeignKeyViolation(err) {
				return nil, ErrUnknownReference
			}
			return nil, fmt.Errorf("failed to insert tender: %w", err)
		}

		tender, err := scanTender(tx.QueryRow(ctx, selectTenderQuery+" WHERE t.id = $1", id))
		if err != nil {
			return nil, fmt.Errorf("failed to read inserted tender: %w", err)
		}
		created = append(created, tender)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

// EditTender изменяет поля тендера и обновляет write_date.
func (r *PostgresTenderRepository) EditTender(ctx context.Context, id int64, updateFields map[string]interface{}) (*models.Tender, error) {
	columns := make([]string, 0, len(updateFields))
	for column := range updateFields {
		if !isEditableColumn(column) {
			return nil, fmt.Errorf("column %q is not editable", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	var setClauses []string
	var args []interface{}
	argIndex := 1
	for _, column := range columns {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, updateFields[column])
		argIndex++
	}
	setClauses = append(setClauses, "write_date = now()")

	query := fmt.Sprintf("UPDATE tender SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argIndex)
	args = append(args, id)

	tag, err := r.DB.Exec(ctx, query, args...)
	if isForeignKeyViolation(err) {
		return nil, ErrUnknownReference
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update tender: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrTenderNotFound
	}
	return r.GetTender(ctx, id)
}

func isEditableColumn(column string) bool {
	for _, c := range EditableColumns {
		if c == column {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	return pgErrorCode(err) == "23505"
}

func isForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == "23503"
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func collectTenders(rows pgx.Rows) ([]models.Tender, error) {
	defer rows.Close()

	tenders := []models.Tender{}
	for rows.Next() {
		tender, err := scanTender(rows)
		if err != nil {
			return nil, err
		}
		tenders = append(tenders, tender)
	}
	return tenders, rows.Err()
}

func scanTender(row pgx.Row) (models.Tender, error) {
	var t models.Tender
	err := row.Scan(
		&t.ID,
		&t.TenderNo,
		&t.Name,
		&t.PartnerID,
		&t.LeadID,
		&t.UserID,
		&t.VehicleType,
		&t.Model,
		&t.NegotiationStatus,
		&t.TenderStage,
		&t.TenderStatus,
		&t.PocRequired,
		&t.ApprovalStatus,
		&t.SubmissionDate,
		&t.Department,
		&t.Remarks,
		&t.CreateDate,
		&t.WriteDate,
		&t.PartnerName,
		&t.LeadName,
		&t.UserName)
	return t, err
}

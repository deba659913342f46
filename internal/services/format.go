package services

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/senyabanana/geega-crm/internal/models"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// FormatLabel превращает значение перечисления в подпись: первая буква заглавная,
// подчёркивания в остальной части заменяются пробелами ("in_progress" -> "In progress").
func FormatLabel(value string) string {
	if value == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(value)
	return string(unicode.ToUpper(first)) + strings.ReplaceAll(value[size:], "_", " ")
}

type selection interface {
	~string
	Valid() bool
}

// selectionLabel возвращает пустую подпись для значений вне перечисления.
func selectionLabel[T selection](value T) string {
	if !value.Valid() {
		return ""
	}
	return FormatLabel(string(value))
}

// PocLabel - "Yes" только для значения yes, иначе "No".
func PocLabel(value models.PocRequired) string {
	if value == models.PocYes {
		return "Yes"
	}
	return "No"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeLayout)
}

// FormatTender готовит запись тендера для дашборда; та же запись служит строкой выгрузки.
func FormatTender(t models.Tender) models.TenderItem {
	return models.TenderItem{
		ID:                   t.ID,
		TenderNo:             t.TenderNo,
		TenderTitle:          t.Name,
		CustomerName:         t.PartnerName,
		LeadNo:               t.LeadName,
		Owner:                t.UserName,
		VehicleType:          selectionLabel(t.VehicleType),
		VehicleTypeRaw:       string(t.VehicleType),
		Model:                t.Model,
		NegotiationStatus:    selectionLabel(t.NegotiationStatus),
		NegotiationStatusRaw: string(t.NegotiationStatus),
		TenderStage:          selectionLabel(t.TenderStage),
		TenderStageRaw:       string(t.TenderStage),
		TenderStatus:         selectionLabel(t.TenderStatus),
		TenderStatusRaw:      string(t.TenderStatus),
		PocRequired:          PocLabel(t.PocRequired),
		SubmissionDate:       formatDate(t.SubmissionDate),
		ApprovalStatus:       selectionLabel(t.ApprovalStatus),
		ApprovalStatusRaw:    string(t.ApprovalStatus),
		Department:           selectionLabel(t.Department),
		UpdatedTime:          formatDateTime(t.WriteDate),
		CreatedTime:          formatDateTime(t.CreateDate),
		Remarks:              t.Remarks,
	}
}

// FormatTenders форматирует список тендеров, сохраняя порядок.
func FormatTenders(tenders []models.Tender) []models.TenderItem {
	items := make([]models.TenderItem, 0, len(tenders))
	for _, t := range tenders {
		items = append(items, FormatTender(t))
	}
	return items
}

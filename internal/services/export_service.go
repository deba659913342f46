package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/senyabanana/geega-crm/internal/metrics"
	"github.com/senyabanana/geega-crm/internal/models"
	"github.com/senyabanana/geega-crm/internal/repository"
	"github.com/senyabanana/geega-crm/internal/utils"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	ExportSheetName   = "Tenders"
	ExportFilename    = "tenders_export.xlsx"
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	exportColumnWidth = 18
)

// ExportHeaders - заголовки колонок листа выгрузки в фиксированном порядке.
var ExportHeaders = []string{
	"Tender No.", "Tender Title", "Customer Name", "Lead No.",
	"Owner", "Vehicle Type", "Model", "Negotiation Status",
	"Tender Stage", "Tender Status", "POC Required",
	"Submission Date", "Approval Status", "Department",
	"Remarks", "Created Time", "Updated Time",
}

type ExportService struct {
	Repo   repository.TenderRepository
	Logger *zap.Logger
}

// NewExportService создаёт новый экземпляр ExportService.
func NewExportService(repo repository.TenderRepository, logger *zap.Logger) *ExportService {
	return &ExportService{Repo: repo, Logger: logger}
}

// ExportTenders выгружает тендеры в Excel.
// Если задан ids, выгружаются только найденные тендеры из списка, иначе все тендеры по фильтру и поиску.
func (s *ExportService) ExportTenders(ctx context.Context, req models.ExportRequest) (*bytes.Buffer, error) {
	mode := "filter"
	var tenders []models.Tender
	var err error

	if req.IDs != "" {
		mode = "ids"
		ids, parseErr := utils.ParseIDList(req.IDs)
		if parseErr != nil {
			metrics.Exports.WithLabelValues(mode, "rejected").Inc()
			return nil, models.NewInputError(parseErr.Error())
		}
		tenders, err = s.Repo.GetTendersByIDs(ctx, ids)
	} else {
		filter := models.NewTenderFilter(req.FilterType, req.Search)
		tenders, err = s.Repo.SearchTenders(ctx, filter, 0, 0)
	}
	if err != nil {
		metrics.Exports.WithLabelValues(mode, "failed").Inc()
		s.Logger.Error("failed to load tenders for export", zap.String("mode", mode), zap.Error(err))
		return nil, models.NewDependencyError("failed to fetch tenders", err)
	}

	buf, err := writeTenderWorkbook(FormatTenders(tenders))
	if err != nil {
		metrics.Exports.WithLabelValues(mode, "failed").Inc()
		s.Logger.Error("failed to build export workbook", zap.Int("rows", len(tenders)), zap.Error(err))
		return nil, models.NewDependencyError("failed to generate excel file", err)
	}

	metrics.Exports.WithLabelValues(mode, "ok").Inc()
	metrics.ExportRows.Observe(float64(len(tenders)))
	s.Logger.Info("tenders exported", zap.String("mode", mode), zap.Int("rows", len(tenders)))
	return buf, nil
}

// exportRow возвращает значения строки в порядке ExportHeaders.
func exportRow(item models.TenderItem) []string {
	return []string{
		item.TenderNo,
		item.TenderTitle,
		item.CustomerName,
		item.LeadNo,
		item.Owner,
		item.VehicleType,
		item.Model,
		item.NegotiationStatus,
		item.TenderStage,
		item.TenderStatus,
		item.PocRequired,
		item.SubmissionDate,
		item.ApprovalStatus,
		item.Department,
		item.Remarks,
		item.CreatedTime,
		item.UpdatedTime,
	}
}

// submissionDateColumn - индекс колонки "Submission Date" в ExportHeaders.
const submissionDateColumn = 11

// writeTenderWorkbook строит книгу целиком в памяти; при ошибке частичный результат отбрасывается.
func writeTenderWorkbook(items []models.TenderItem) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	border := []excelize.Border{
		{Type: "left", Color: "#000000", Style: 1},
		{Type: "top", Color: "#000000", Style: 1},
		{Type: "right", Color: "#000000", Style: 1},
		{Type: "bottom", Color: "#000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#217346"}, Pattern: 1},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Border:    border,
		Alignment: &excelize.Alignment{Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cell style: %w", err)
	}
	dateFormat := "yyyy-mm-dd"
	dateStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       border,
		Alignment:    &excelize.Alignment{Vertical: "center"},
		CustomNumFmt: &dateFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create date style: %w", err)
	}

	sw, err := f.NewStreamWriter(ExportSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream writer: %w", err)
	}
	if err = sw.SetColWidth(1, len(ExportHeaders), exportColumnWidth); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	header := make([]interface{}, len(ExportHeaders))
	for i, title := range ExportHeaders {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: title}
	}
	if err = sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, item := range items {
		values := exportRow(item)
		row := make([]interface{}, len(values))
		for col, value := range values {
			style := cellStyle
			if col == submissionDateColumn {
				style = dateStyle
			}
			row[col] = excelize.Cell{StyleID: style, Value: value}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err = sw.SetRow(cell, row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err = sw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush sheet: %w", err)
	}

	buf := new(bytes.Buffer)
	if err = f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

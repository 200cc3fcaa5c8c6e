package service

import (
	"context"
	"fmt"
	"io"

	"github.com/miqbaljintern/Intern-Iwasaki/internal/repository"
	"github.com/miqbaljintern/Intern-Iwasaki/internal/workflow"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const exportSheetName = "Handovers"

// HandoverExportHeader 导出表头
var HandoverExportHeader = []string{
	"Customer ID",
	"Tax Code",
	"Company Name",
	"Representative",
	"Predecessor",
	"Predecessor Name",
	"Superior",
	"Successor",
	"Submitted At",
	"Total Compensation",
	"Status",
	"Status Text",
}

var exportColumnWidths = []float64{12, 12, 32, 20, 12, 20, 12, 12, 20, 18, 14, 44}

// ExportService 导出服务接口
type ExportService interface {
	ExportXLSX(ctx context.Context, filter *ListFilter, w io.Writer) (int, error)
}

type exportService struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

// NewExportService 创建导出服务
func NewExportService(db *gorm.DB, logger logrus.FieldLogger) ExportService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &exportService{db: db, logger: logger}
}

// ExportXLSX 将过滤后的列表写为 xlsx,忽略分页参数,返回数据行数
func (s *exportService) ExportXLSX(ctx context.Context, filter *ListFilter, w io.Writer) (int, error) {
	if filter == nil {
		filter = &ListFilter{}
	}
	wf, err := toWorkflowFilter(filter)
	if err != nil {
		return 0, err
	}

	rs, err := workflow.NewListQueryEngine(repository.NewHandoverRepository(s.db)).List(ctx, wf)
	if err != nil {
		return 0, err
	}
	rows, _, err := workflow.Collect(rs, 0, 0)
	if err != nil {
		return 0, err
	}
	names := lookupWorkerNames(s.db, s.logger, rows)

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return 0, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return 0, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(HandoverExportHeader))
	for i, h := range HandoverExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(HandoverExportHeader))
	if err != nil {
		return 0, fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetCellStyle(exportSheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return 0, fmt.Errorf("failed to set header style: %w", err)
	}
	for i, width := range exportColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return 0, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(exportSheetName, col, col, width); err != nil {
			return 0, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, row := range rows {
		summary := newSummary(row, names)
		submitted := ""
		if summary.SubmittedAt != nil {
			submitted = summary.SubmittedAt.Format("2006-01-02 15:04:05")
		}
		values := []interface{}{
			summary.CustomerID,
			summary.TaxCodeID,
			summary.CompanyName,
			summary.RepresentativeName,
			summary.PredecessorID,
			summary.PredecessorName,
			summary.SuperiorID,
			summary.SuccessorID,
			submitted,
			summary.TotalCompensation,
			summary.Status.String(),
			summary.StatusText,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(exportSheetName, cell, &values); err != nil {
			return 0, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return len(rows), nil
}

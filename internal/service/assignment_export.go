package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []interface{}{"Assignment", "Posted By", "Posted On", "Due", "Batches", "Questions", "Submissions"}

// AssignmentExporter renders an assignment list as an XLSX workbook.
type AssignmentExporter interface {
	Export(ctx context.Context, studentID uint, listType string) ([]byte, error)
}

type assignmentExporter struct {
	assignments StudentAssignmentService
}

// NewAssignmentExporter builds an exporter on top of the list use case.
func NewAssignmentExporter(assignments StudentAssignmentService) AssignmentExporter {
	return &assignmentExporter{assignments: assignments}
}

func (e *assignmentExporter) Export(ctx context.Context, studentID uint, listType string) ([]byte, error) {
	items, err := e.assignments.List(ctx, studentID, listType)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for idx, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			item.AssignmentName,
			item.PostedBy.Name,
			item.PostedOn.Format(time.RFC3339),
			item.DueTimestamp.Format(time.RFC3339),
			strings.Join(item.Batches, ", "),
			strconv.Itoa(len(item.Questions)),
			strconv.Itoa(len(item.SubmittedBy)),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", idx+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

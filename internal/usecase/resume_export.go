package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"resume-hub/internal/domain"
	"resume-hub/internal/search"
	"resume-hub/pkg/apperror"
)

var exportColumns = []struct {
	header string
	width  float64
	value  func(r domain.Resume) interface{}
}{
	{"NAME", 24, func(r domain.Resume) interface{} { return r.Name }},
	{"EMAIL", 28, func(r domain.Resume) interface{} { return r.Email }},
	{"ROLE", 24, func(r domain.Resume) interface{} { return r.Role }},
	{"EXPERIENCE", 14, func(r domain.Resume) interface{} { return string(r.Experience) }},
	{"SKILLS", 36, func(r domain.Resume) interface{} { return strings.Join(r.Skills, ", ") }},
	{"PROJECTS", 40, func(r domain.Resume) interface{} { return r.Projects }},
	{"CREATED AT", 20, func(r domain.Resume) interface{} { return r.CreatedAt.UTC().Format("2006-01-02 15:04") }},
}

// Export renders every resume matching filter, newest first, as an xlsx workbook.
func (u *resumeUsecase) Export(ctx context.Context, filter domain.SearchFilter) ([]byte, string, error) {
	if _, err := requireRole(ctx, domain.RoleRecruiter); err != nil {
		return nil, "", err
	}
	if err := search.ValidateFilter(filter); err != nil {
		return nil, "", err
	}

	items, _, err := u.repo.Search(ctx, domain.SearchQuery{Filter: filter, Page: 1, PageSize: u.exportLimit})
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Resumes"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, "", apperror.Internal(err)
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col.header)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, col.width)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, r := range items {
		for colIdx, col := range exportColumns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, col.value(r))
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", apperror.Internal(fmt.Errorf("failed to write Excel file: %w", err))
	}

	filename := fmt.Sprintf("resumes_%s.xlsx", u.now().UTC().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

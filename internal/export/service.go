package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/oyelola-a/lineage-extractor/internal/extract"
)

// Service turns validated person records into XLSX workbook bytes for
// downstream consumers. It never persists anything itself.
type Service struct {
	sheetName string
	logger    *slog.Logger
}

func NewService(sheetName string, logger *slog.Logger) *Service {
	if sheetName == "" {
		sheetName = "Persons"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{sheetName: sheetName, logger: logger}
}

// ExportRecordsXLSX returns an XLSX workbook (as bytes) listing the given
// records in sequence order.
func (s *Service) ExportRecordsXLSX(records []extract.PersonRecord) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	sheet := s.sheetName
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"First Name",
		"Middle Names",
		"Last Name",
		"Gender",
		"Birth Date",
		"Birth Place",
		"Death Date",
		"Death Place",
		"Burial Place",
		"Age at Death",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, r := range records {
		row := i + 2
		write := func(col int, v string) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.FirstName)
		write(2, deref(r.MiddleNames))
		write(3, r.LastName)
		write(4, deref(r.Gender))
		write(5, deref(r.BirthDate))
		write(6, deref(r.BirthPlace))
		write(7, deref(r.DeathDate))
		write(8, deref(r.DeathPlace))
		write(9, deref(r.BurialPlace))
		write(10, deref(r.AgeAtDeath))
	}

	// Drop the default sheet when it isn't ours.
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"records", len(records), "bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

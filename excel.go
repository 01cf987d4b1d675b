package xlsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const workbookSheet = "Sheet1"

// WriteXLSX exports the printable region as an xlsx workbook. Formula cells
// are written as formulas, text cells as values, empty slots are skipped.
func (s *Sheet) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	for pos, cell := range s.cells {
		name, err := excelize.CoordinatesToCellName(pos.Col+1, pos.Row+1)
		if err != nil {
			return fmt.Errorf("write xlsx cell %s: %w", pos, err)
		}
		switch cell.kind {
		case cellFormula:
			if err := f.SetCellFormula(workbookSheet, name, cell.formula.Expression()); err != nil {
				return fmt.Errorf("write xlsx formula at %s: %w", pos, err)
			}
		case cellText:
			if err := f.SetCellValue(workbookSheet, name, cell.GetText()); err != nil {
				return fmt.Errorf("write xlsx value at %s: %w", pos, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// ReadXLSX builds a sheet from the first worksheet of an xlsx workbook by
// replaying SetCell over its used range. Formulas take precedence over the
// stored cached values.
func ReadXLSX(r io.Reader, opts ...Option) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("read xlsx: workbook has no worksheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}

	s := NewSheet(opts...)
	for ri, row := range rows {
		for ci, val := range row {
			name, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				return nil, fmt.Errorf("read xlsx cell (%d, %d): %w", ri, ci, err)
			}
			formula, err := f.GetCellFormula(sheetName, name)
			if err != nil {
				return nil, fmt.Errorf("read xlsx formula at %s: %w", name, err)
			}

			pos := Position{Row: ri, Col: ci}
			switch {
			case formula != "":
				err = s.SetCell(pos, string(FormulaSign)+formula)
			case val != "":
				err = s.SetCell(pos, val)
			default:
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("read xlsx: %w", err)
			}
		}
	}
	return s, nil
}

package reporting

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX renders the two tables as a workbook at path, one sheet per
// table.
func WriteXLSX(r *Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet1 = "Table 1"
	f.SetSheetName(f.GetSheetName(0), sheet1)
	if err := writeTable1Sheet(f, sheet1, r.Table1); err != nil {
		return err
	}

	const sheet2 = "Table 2"
	if _, err := f.NewSheet(sheet2); err != nil {
		return fmt.Errorf("add sheet %s: %w", sheet2, err)
	}
	if err := writeTable2Sheet(f, sheet2, r.Table2); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeTable1Sheet(f *excelize.File, sheet string, t1 Table1) error {
	header := []interface{}{"Variable"}
	for _, u := range t1.Universes {
		header = append(header, u+" Avg", u+" Std", u+" N")
	}
	if err := writeSheetRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, row := range t1.Rows {
		cells := []interface{}{row.Label}
		for _, c := range row.Cells {
			cells = append(cells, xlsxFloat(c.Avg), xlsxFloat(c.Std), c.N)
		}
		if err := writeSheetRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeTable2Sheet(f *excelize.File, sheet string, t2 Table2) error {
	row := 1
	for _, b := range t2.Blocks {
		if err := writeSheetRow(f, sheet, row, []interface{}{b.Model}); err != nil {
			return err
		}
		row++

		header := []interface{}{"Predictor"}
		for _, u := range t2.Universes {
			header = append(header, u+" Slope", u+" t-stat", u+" R^2")
		}
		if err := writeSheetRow(f, sheet, row, header); err != nil {
			return err
		}
		row++

		for pi, label := range b.Predictors {
			cells := []interface{}{label}
			for _, col := range b.Columns {
				var r2 interface{} = ""
				if pi == 0 {
					r2 = xlsxFloat(col.MeanR2)
				}
				cells = append(cells, xlsxFloat(col.Coef[pi]), xlsxFloat(col.TStat[pi]), r2)
			}
			if err := writeSheetRow(f, sheet, row, cells); err != nil {
				return err
			}
			row++
		}

		nRow := []interface{}{"N"}
		for _, col := range b.Columns {
			nRow = append(nRow, xlsxFloat(col.MeanN), "", "")
		}
		if err := writeSheetRow(f, sheet, row, nRow); err != nil {
			return err
		}
		row += 2 // leave a blank row between blocks
	}
	return nil
}

func writeSheetRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	for i, v := range cells {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column %d: %w", i+1, err)
		}
		cell := fmt.Sprintf("%s%d", col, row)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// xlsxFloat keeps missing values out of workbook cells.
func xlsxFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return v
}

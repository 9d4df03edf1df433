package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Artifact file names within the output directory.
const (
	Table1FileCSV = "table_1.csv"
	Table2FileCSV = "table_2.csv"
	ReportFileMD  = "research_report.md"
	WorkbookFile  = "tables.xlsx"
)

// FigureFileCSV names the CSV series for one figure panel.
func FigureFileCSV(universe string) string {
	return "figure1_" + slug(universe) + ".csv"
}

// Write renders every artifact into dir and returns the written paths.
func Write(r *Report, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var paths []string
	save := func(name, content string) error {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		paths = append(paths, p)
		return nil
	}

	if err := save(Table1FileCSV, Table1CSV(r.Table1)); err != nil {
		return nil, err
	}
	if err := save(Table2FileCSV, Table2CSV(r.Table2)); err != nil {
		return nil, err
	}
	for _, fig := range r.Figures {
		if err := save(FigureFileCSV(fig.Universe), FigureCSV(fig)); err != nil {
			return nil, err
		}
	}
	if err := save(ReportFileMD, RenderMarkdown(r)); err != nil {
		return nil, err
	}

	workbook := filepath.Join(dir, WorkbookFile)
	if err := WriteXLSX(r, workbook); err != nil {
		return nil, err
	}
	paths = append(paths, workbook)

	return paths, nil
}

// slug lowercases a universe name into a file-name fragment.
func slug(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, name)
}

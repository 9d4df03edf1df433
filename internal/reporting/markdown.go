package reporting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RenderMarkdown renders the full report as a single Markdown document.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Factor Research Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	writeTable1Markdown(&sb, r.Table1)
	writeTable2Markdown(&sb, r.Table2)
	writeFiguresMarkdown(&sb, r.Figures)

	return sb.String()
}

func writeTable1Markdown(sb *strings.Builder, t1 Table1) {
	sb.WriteString("## Table 1: Summary Statistics\n\n")

	sb.WriteString("| Variable |")
	for _, u := range t1.Universes {
		fmt.Fprintf(sb, " %s Avg | %s Std | %s N |", u, u, u)
	}
	sb.WriteString("\n")
	sb.WriteString(mdSeparator(1 + 3*len(t1.Universes)))

	for _, row := range t1.Rows {
		fmt.Fprintf(sb, "| %s |", row.Label)
		for _, c := range row.Cells {
			fmt.Fprintf(sb, " %s | %s | %s |", mdFloat(c.Avg, 4), mdFloat(c.Std, 4), commaInt(int64(c.N)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func writeTable2Markdown(sb *strings.Builder, t2 Table2) {
	sb.WriteString("## Table 2: Fama-MacBeth Regressions\n\n")

	for _, b := range t2.Blocks {
		fmt.Fprintf(sb, "### %s\n\n", b.Model)

		sb.WriteString("| Predictor |")
		for _, u := range t2.Universes {
			fmt.Fprintf(sb, " %s Slope | %s t-stat | %s R^2 |", u, u, u)
		}
		sb.WriteString("\n")
		sb.WriteString(mdSeparator(1 + 3*len(t2.Universes)))

		// R squared shows only on the first predictor row of a block.
		for pi, label := range b.Predictors {
			fmt.Fprintf(sb, "| %s |", label)
			for _, col := range b.Columns {
				r2 := ""
				if pi == 0 {
					r2 = mdFloat(col.MeanR2, 3)
				}
				fmt.Fprintf(sb, " %s | %s | %s |", mdFloat(col.Coef[pi], 3), mdFloat(col.TStat[pi], 3), r2)
			}
			sb.WriteString("\n")
		}

		sb.WriteString("| N |")
		for _, col := range b.Columns {
			fmt.Fprintf(sb, " %s |  |  |", mdCount(col.MeanN))
		}
		sb.WriteString("\n\n")
	}
}

func writeFiguresMarkdown(sb *strings.Builder, figures []FigureSeries) {
	sb.WriteString("## Figure 1: Ten-Year Rolling Slopes\n\n")
	if len(figures) == 0 {
		sb.WriteString("No figure series available.\n\n")
		return
	}
	for i, f := range figures {
		fmt.Fprintf(sb, "Panel %c: %s, %d months of %s (%s)\n",
			'A'+i, f.Universe, len(f.Months), strings.Join(f.Labels, ", "), FigureFileCSV(f.Universe))
	}
	sb.WriteString("\n")
}

// mdSeparator is the header separator row for a table with n columns.
func mdSeparator(n int) string {
	return "|" + strings.Repeat("---|", n) + "\n"
}

// mdFloat formats a table value with fixed decimals, blank when missing.
func mdFloat(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// mdCount renders an average count as a whole number with thousands
// separators, blank when missing.
func mdCount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return commaInt(int64(math.Round(v)))
}

// commaInt renders n with thousands separators.
func commaInt(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var sb strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

package crossval

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/planbureau/planproof/internal/docmodel"
	"github.com/planbureau/planproof/internal/issue"
)

// Total-row keywords and explicit sub-split markers. Rows whose first cell
// starts with a sub-split marker (其中/含/包括) restate part of another row
// and must not be added again.
var (
	totalKeywords    = []string{"合计", "总计", "小计", "共计", "汇总"}
	subSplitKeywords = []string{"其中：", "其中:", "其中", "含", "包括"}
)

const (
	tolRel = 0.005 // relative tolerance for stated totals
	tolAbs = 0.11  // absolute tolerance absorbing rounding of two-decimal cells
)

var (
	cellJunkRe = regexp.MustCompile(`[,，\s\x{3000}]`)
	cellUnitRe = regexp.MustCompile(`(?:%|％|万|平方公里|km²|km2|公顷|hm²|ha|平方米|m²|m2|亩|万人|万户|人|户|处|所|个|套)+$`)
	cellNumRe  = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
)

// parseCellNumber extracts the numeric value from a table cell, tolerating
// thousands separators and trailing unit suffixes. The second return is
// false when the cell holds no plain number.
func parseCellNumber(cell string) (float64, bool) {
	s := cellJunkRe.ReplaceAllString(strings.TrimSpace(cell), "")
	s = cellUnitRe.ReplaceAllString(s, "")
	if !cellNumRe.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// removeSubItems drops implicitly nested sub-rows from a column's values.
// When a run of consecutive later rows sums to an earlier row's value within
// tolerance, those rows are that row's breakdown (e.g. a land-use group row
// followed by its per-class rows) and only the parent participates in the
// total check.
func removeSubItems(vals []float64, present []bool) []float64 {
	n := len(vals)
	isSub := make([]bool, n)

	for i := 0; i < n; i++ {
		if isSub[i] || !present[i] {
			continue
		}
		parent := vals[i]
		if parent <= 0 {
			continue
		}
		tol := parent * 0.01
		if tol < tolAbs {
			tol = tolAbs
		}
		running := 0.0
		for j := i + 1; j < n; j++ {
			if isSub[j] || !present[j] {
				continue
			}
			running += vals[j]
			if diff := running - parent; diff >= -tol && diff <= tol {
				// A breakdown needs at least two rows; a single row that
				// merely equals the parent is an independent sibling.
				if j > i+1 {
					for k := i + 1; k <= j; k++ {
						isSub[k] = true
					}
				}
				break
			}
			if running > parent+tol {
				break
			}
		}
	}

	var top []float64
	for i := 0; i < n; i++ {
		if present[i] && !isSub[i] {
			top = append(top, vals[i])
		}
	}
	return top
}

// validateTableSums checks every total row of every table: for each column,
// the sum of the top-level data rows above the total row must equal the
// stated value within tolerance. Findings are anchored to the paragraph
// preceding the table so they can be annotated.
func validateTableSums(doc *docmodel.Document) []issue.Issue {
	var issues []issue.Issue

	for _, table := range doc.Tables {
		rows := table.Rows
		if len(rows) < 3 {
			continue
		}
		anchor := doc.AnchorForTable(table.Index)

		for rowIdx, row := range rows {
			if len(row) == 0 {
				continue
			}
			firstCell := strings.TrimSpace(row[0])
			if !containsAny(firstCell, totalKeywords) {
				continue
			}

			for col := 1; col < len(row); col++ {
				stated, ok := parseCellNumber(row[col])
				if !ok || stated == 0 {
					continue
				}

				// Collect the column's data values above the total row,
				// keeping row order for nested sub-row detection.
				vals := make([]float64, 0, rowIdx)
				present := make([]bool, 0, rowIdx)
				for dataIdx := 1; dataIdx < rowIdx; dataIdx++ {
					dataRow := rows[dataIdx]
					if len(dataRow) == 0 {
						continue
					}
					dataFirst := strings.TrimSpace(dataRow[0])
					if startsWithAny(dataFirst, subSplitKeywords) {
						continue
					}
					if col >= len(dataRow) {
						continue
					}
					v, ok := parseCellNumber(dataRow[col])
					vals = append(vals, v)
					present = append(present, ok)
				}
				if countTrue(present) < 2 {
					continue
				}

				top := removeSubItems(vals, present)
				if len(top) < 2 {
					continue
				}
				computed := 0.0
				for _, v := range top {
					computed += v
				}
				diff := computed - stated
				tol := abs(stated) * tolRel
				if tol < tolAbs {
					tol = tolAbs
				}
				if abs(diff) > tol {
					msg := fmt.Sprintf(
						"第 %d 张表格「%s」行第 %d 列：分项之和 %s 与合计值 %s 不一致（差值 %+.6g），请核查数据",
						table.Index+1, firstCell, col+1,
						strconv.FormatFloat(computed, 'g', 6, 64),
						strconv.FormatFloat(stated, 'g', 6, 64),
						diff,
					)
					issues = append(issues, located(anchor, issue.SeverityError, issue.CategoryNumeric, msg, strings.TrimSpace(row[col])))
				}
			}
		}
	}
	return issues
}

func containsAny(s string, kws []string) bool {
	for _, kw := range kws {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func startsWithAny(s string, kws []string) bool {
	for _, kw := range kws {
		if strings.HasPrefix(s, kw) || s == kw {
			return true
		}
	}
	return false
}

func countTrue(bs []bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Package export writes traced datasets as CSV, XLSX or JSON.
package export

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"graph-digitizer/internal/dataset"
)

// xTolerance is the relative tolerance under which two X values share a row.
const xTolerance = 1e-8

var headerUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Table is the wide layout shared by CSV and XLSX: one row per distinct X,
// one column per non-empty dataset. Missing values are NaN.
type Table struct {
	Header []string
	X      []float64
	Y      [][]float64 // Y[row][dataset]
}

// BuildTable merges the datasets on X. Datasets without points are skipped.
func BuildTable(datasets []*dataset.Dataset) Table {
	var used []*dataset.Dataset
	for _, ds := range datasets {
		if ds != nil && ds.Len() > 0 {
			used = append(used, ds)
		}
	}

	t := Table{Header: []string{"x"}}
	for _, ds := range used {
		t.Header = append(t.Header, SanitizeHeader(ds.Name))
	}

	var xs []float64
	for _, ds := range used {
		for _, p := range ds.Points {
			xs = append(xs, p.X)
		}
	}
	sort.Float64s(xs)
	for _, x := range xs {
		if n := len(t.X); n == 0 || !sameX(t.X[n-1], x) {
			t.X = append(t.X, x)
		}
	}

	t.Y = make([][]float64, len(t.X))
	for i := range t.Y {
		row := make([]float64, len(used))
		for j := range row {
			row[j] = math.NaN()
		}
		t.Y[i] = row
	}
	for j, ds := range used {
		for _, p := range ds.Points {
			if i := t.rowFor(p.X); i >= 0 {
				t.Y[i][j] = p.Y
			}
		}
	}
	return t
}

func (t Table) rowFor(x float64) int {
	i := sort.SearchFloat64s(t.X, x)
	for _, k := range []int{i - 1, i} {
		if k >= 0 && k < len(t.X) && sameX(t.X[k], x) {
			return k
		}
	}
	return -1
}

func sameX(a, b float64) bool {
	return math.Abs(a-b) <= xTolerance*math.Max(1, math.Abs(a))
}

// SanitizeHeader replaces characters outside [A-Za-z0-9_-] with '_'.
func SanitizeHeader(name string) string {
	if name == "" {
		return "Dataset"
	}
	return headerUnsafe.ReplaceAllString(name, "_")
}

// FormatValue renders v with 10 significant digits; NaN renders empty.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', 10, 64)
}

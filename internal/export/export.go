package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"graph-digitizer/internal/calibration"
	"graph-digitizer/internal/dataset"

	"github.com/xuri/excelize/v2"
)

// Format selects an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// FormatFromPath picks a format from the file extension, defaulting to CSV.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX
	case ".json":
		return FormatJSON
	default:
		return FormatCSV
	}
}

// WriteCSV writes the wide table as CSV.
func WriteCSV(w io.Writer, datasets []*dataset.Dataset) error {
	t := BuildTable(datasets)
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for i, x := range t.X {
		rec := make([]string, 0, len(t.Header))
		rec = append(rec, FormatValue(x))
		for _, y := range t.Y[i] {
			rec = append(rec, FormatValue(y))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SheetName is the worksheet the XLSX table is written to.
const SheetName = "Data"

// WriteXLSX writes the wide table to a single-sheet workbook.
func WriteXLSX(path string, datasets []*dataset.Dataset) error {
	t := BuildTable(datasets)

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	for col, h := range t.Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
	}
	for i, x := range t.X {
		row := make([]interface{}, 0, len(t.Header))
		row = append(row, x)
		for _, y := range t.Y[i] {
			if math.IsNaN(y) {
				row = append(row, nil)
			} else {
				row = append(row, y)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// Labels are the free-text plot annotations carried into JSON output.
type Labels struct {
	Title   string
	XLabel  string
	YLabel  string
	Y2Label string
}

// Document is the JSON analysis file: axis ranges plus [x, y] pairs.
type Document struct {
	Title    string           `json:"title"`
	XLabel   string           `json:"xlabel"`
	YLabel   string           `json:"ylabel"`
	Y2Label  string           `json:"y2label,omitempty"`
	XMin     float64          `json:"x_min"`
	XMax     float64          `json:"x_max"`
	YMin     float64          `json:"y_min"`
	YMax     float64          `json:"y_max"`
	XLog     bool             `json:"x_log"`
	YLog     bool             `json:"y_log"`
	Y2Min    *float64         `json:"y2_min,omitempty"`
	Y2Max    *float64         `json:"y2_max,omitempty"`
	Y2Log    *bool            `json:"y2_log,omitempty"`
	Datasets []DocumentSeries `json:"datasets"`
}

// DocumentSeries is one dataset in a Document.
type DocumentSeries struct {
	Name          string       `json:"name"`
	Color         string       `json:"color"`
	Points        [][2]float64 `json:"points"`
	Visible       bool         `json:"visible"`
	UseSecondaryY bool         `json:"use_secondary_y"`
}

// NewDocument builds a Document. A nil calibration gives neutral [0,1] axes.
// Datasets without points are skipped.
func NewDocument(labels Labels, cal *calibration.State, datasets []*dataset.Dataset) Document {
	if cal == nil {
		cal = calibration.New()
	}
	x, y := cal.X(), cal.Y()
	doc := Document{
		Title:    labels.Title,
		XLabel:   labels.XLabel,
		YLabel:   labels.YLabel,
		Y2Label:  labels.Y2Label,
		XMin:     x.Min,
		XMax:     x.Max,
		YMin:     y.Min,
		YMax:     y.Max,
		XLog:     x.Log,
		YLog:     y.Log,
		Datasets: []DocumentSeries{},
	}
	if y2, ok := cal.Y2(); ok {
		doc.Y2Min, doc.Y2Max, doc.Y2Log = &y2.Min, &y2.Max, &y2.Log
	}
	for _, ds := range datasets {
		if ds == nil || ds.Len() == 0 {
			continue
		}
		s := DocumentSeries{
			Name:          ds.Name,
			Color:         ds.Color,
			Points:        make([][2]float64, len(ds.Points)),
			Visible:       ds.Visible,
			UseSecondaryY: ds.UseSecondaryY,
		}
		for i, p := range ds.Points {
			s.Points[i] = [2]float64{p.X, p.Y}
		}
		doc.Datasets = append(doc.Datasets, s)
	}
	return doc
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

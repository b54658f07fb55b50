package export

import (
	"bytes"
	"encoding/json"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"graph-digitizer/internal/calibration"
	"graph-digitizer/internal/dataset"
	"graph-digitizer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func series(t *testing.T, name string, pts ...geometry.Point2D) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(name, "#336699")
	require.NoError(t, err)
	ds.ReplacePoints(pts)
	return ds
}

func sample(t *testing.T) []*dataset.Dataset {
	return []*dataset.Dataset{
		series(t, "low pass", geometry.NewPoint2D(1, 10), geometry.NewPoint2D(2, 20)),
		series(t, "unused"),
		series(t, "B", geometry.NewPoint2D(2+1e-12, 5), geometry.NewPoint2D(3, 6)),
	}
}

func TestBuildTable(t *testing.T) {
	tab := BuildTable(sample(t))
	assert.Equal(t, []string{"x", "low_pass", "B"}, tab.Header)
	require.Equal(t, []float64{1, 2, 3}, tab.X)
	assert.Equal(t, 10.0, tab.Y[0][0])
	assert.True(t, math.IsNaN(tab.Y[0][1]))
	assert.Equal(t, 20.0, tab.Y[1][0])
	assert.Equal(t, 5.0, tab.Y[1][1])
	assert.True(t, math.IsNaN(tab.Y[2][0]))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample(t)))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"x,low_pass,B",
		"1,10,",
		"2,20,5",
		"3,,6",
	}, lines)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(path, sample(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"x", "low_pass", "B"}, rows[0])
	assert.Equal(t, "2", rows[2][0])
	assert.Equal(t, "5", rows[2][2])
}

func TestWriteJSON(t *testing.T) {
	cal := calibration.New()
	cal.SetXRange(0, 100)
	cal.SetYRange(1, 1000)
	cal.SetYLog(true)
	cal.SetY2Range(-1, 1)

	doc := NewDocument(Labels{Title: "Bode", XLabel: "f"}, cal, sample(t))
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, doc))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Bode", got["title"])
	assert.Equal(t, 100.0, got["x_max"])
	assert.Equal(t, true, got["y_log"])
	assert.Equal(t, -1.0, got["y2_min"])
	sets := got["datasets"].([]interface{})
	require.Len(t, sets, 2)
	first := sets[0].(map[string]interface{})
	assert.Equal(t, "low pass", first["name"])
	assert.Equal(t, []interface{}{1.0, 10.0}, first["points"].([]interface{})[0])
}

func TestNewDocumentWithoutCalibration(t *testing.T) {
	doc := NewDocument(Labels{}, nil, nil)
	assert.Equal(t, 1.0, doc.XMax)
	assert.Nil(t, doc.Y2Min)
	assert.NotNil(t, doc.Datasets)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatXLSX, FormatFromPath("a/b.XLSX"))
	assert.Equal(t, FormatJSON, FormatFromPath("out.json"))
	assert.Equal(t, FormatCSV, FormatFromPath("out"))
	assert.Equal(t, "Dataset", SanitizeHeader(""))
}

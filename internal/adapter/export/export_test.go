package export_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/niksmo/catalog-imgcheck/internal/adapter/export"
	"github.com/niksmo/catalog-imgcheck/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() domain.Report {
	url := "https://www.velykapet.com/a.jpg"
	return domain.Report{
		RunID:     "run-1",
		BaseURL:   "http://localhost:5135",
		KnownHost: "velykapet.com",
		Findings: []domain.Finding{
			{
				Product:        domain.Product{ID: 1, Name: "A", ImageURL: &url, Images: []string{url}},
				Classification: domain.Populated, ImageCount: 1, KnownStorage: true, Consistent: true,
				Probe: &domain.ImageProbe{URL: url, Accessible: true, StatusCode: 200},
			},
			{
				Product:        domain.Product{ID: 2, Name: "B", Images: []string{}},
				Classification: domain.EmptyField, Consistent: true,
			},
		},
		Summary: domain.Summary{Total: 2, Populated: 1, Missing: 1, EmptyField: 1, KnownStorage: 1},
		Target:  &domain.TargetCheck{ProductID: 2, Failure: "unexpected status code: 404"},
	}
}

func TestJSONReportWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	err := export.NewJSONReportWriter(path).SinkReport(t.Context(), testReport())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var v map[string]any
	require.NoError(t, json.Unmarshal(data, &v))

	assert.Equal(t, "run-1", v["run_id"])
	assert.Equal(t, false, v["ok"])

	summary, ok := v["summary"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, summary["total"])
	assert.EqualValues(t, 1, summary["empty_field"])

	products, ok := v["products"].([]any)
	require.True(t, ok)
	require.Len(t, products, 2)

	first := products[0].(map[string]any)
	assert.Equal(t, "Populated", first["classification"])
	assert.NotNil(t, first["probe"])

	target := v["target"].(map[string]any)
	assert.Equal(t, false, target["fetched"])
	assert.Nil(t, target["finding"])
}

func TestURLListWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")

	err := export.NewURLListWriter(path).SinkReport(t.Context(), testReport())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://www.velykapet.com/a.jpg\n", string(data))
}

func TestWriterBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "report.json")
	err := export.NewJSONReportWriter(path).SinkReport(t.Context(), testReport())
	require.Error(t, err)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmstandards/internal/catalog"
	"pmstandards/internal/ingest"
	"pmstandards/pkg/models"
)

func writeCSVs(t *testing.T, comparisons bool) (dir string, args []string) {
	t.Helper()
	dir = t.TempDir()
	std := filepath.Join(dir, "standards.csv")
	cmp := filepath.Join(dir, "comparisons.csv")
	require.NoError(t, os.WriteFile(std, []byte(`Topic,Standards,Page,Excerpt
Risk,PMBOK 7,122,Risk is uncertain.
,PRINCE2,-,
Scope,,4,No standard here.
`), 0o644))
	if comparisons {
		require.NoError(t, os.WriteFile(cmp, []byte("Topic,Similarities\nRisk,Shared\n"), 0o644))
	}
	return dir, []string{
		"-standards", std,
		"-comparisons", cmp,
		"-db", filepath.Join(dir, "data.db"),
	}
}

func TestPrintReport(t *testing.T) {
	var out bytes.Buffer
	printReport(&out, catalog.ReloadReport{
		Standards: catalog.SourceReport{
			Kind: "standards", Source: "standards.csv", Status: catalog.StatusLoaded,
			Records: 1, Rows: 3, Rejected: 2,
			Rejections: []models.Rejection{
				{Line: 3, Field: "excerpt", Reason: "missing excerpt"},
				{Line: 4, Field: "standard", Reason: "missing standard"},
			},
		},
		Comparisons: catalog.SourceReport{
			Kind: "comparisons", Source: "comparisons.csv", Status: catalog.StatusNotFound,
			Error: "comparisons.csv: not found",
		},
	})

	assert.Equal(t, `standards    loaded         1 records  standards.csv
comparisons  not_found      0 records  comparisons.csv
  error: comparisons.csv: not found

2 of 3 standards rows skipped:
  line 3: missing excerpt
  line 4: missing standard
`, out.String())
}

func TestPrintReport_NoRejections(t *testing.T) {
	var out bytes.Buffer
	printReport(&out, catalog.ReloadReport{
		Standards:   catalog.SourceReport{Kind: "standards", Status: catalog.StatusLoaded, Records: 2},
		Comparisons: catalog.SourceReport{Kind: "comparisons", Status: catalog.StatusLoaded, Records: 1},
	})
	assert.NotContains(t, out.String(), "skipped")
}

func TestRun_ImportsIntoSQLite(t *testing.T) {
	_, args := writeCSVs(t, true)
	var out bytes.Buffer

	report, _, err := run(context.Background(), args, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Standards.Records)
	assert.Equal(t, 2, report.Standards.Rejected)
	assert.Len(t, report.Standards.Rejections, 2)
	assert.Contains(t, out.String(), "line 3: missing excerpt")
	assert.Contains(t, out.String(), "line 4: missing standard")
}

func TestRun_MissingSourceFails(t *testing.T) {
	dir, args := writeCSVs(t, false)
	var out bytes.Buffer

	report, dbPath, err := run(context.Background(), append(args, "-json"), &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ingest.ErrNotFound))
	assert.Equal(t, filepath.Join(dir, "data.db"), dbPath)

	// the report still reaches stdout
	var printed catalog.ReloadReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &printed))
	assert.Equal(t, catalog.StatusLoaded, printed.Standards.Status)
	assert.Equal(t, catalog.StatusNotFound, printed.Comparisons.Status)
	assert.Equal(t, report.Version, printed.Version)
}

func TestRun_BadFlag(t *testing.T) {
	_, _, err := run(context.Background(), []string{"-nope"}, &bytes.Buffer{})
	assert.Error(t, err)
}

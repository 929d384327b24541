package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"pmstandards/pkg/models"
)

// Columns folded into the comparison summary.
const (
	ColSimilarities   = "Similarities"
	ColDifferences    = "Differences"
	ColUniquePMBOK    = "Unique PMBOK 7"
	ColUniquePRINCE2  = "Unique PRINCE2"
	ColUniqueISO21500 = "Unique ISO 21500"
	ColUniqueISO21502 = "Unique ISO 21502"
)

const summarySep = "\n\n"

// ParseComparisons returns every row of a comparison CSV keyed by its
// header. No schema is enforced; cells are passed through untrimmed.
func ParseComparisons(r io.Reader) ([]models.ComparisonRow, error) {
	cr := newReader(r)
	header, err := readHeader(cr)
	if errors.Is(err, io.EOF) {
		return []models.ComparisonRow{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := []models.ComparisonRow{}
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapCSV(err)
		}
		if len(cells) == 0 {
			continue
		}
		row := make(models.ComparisonRow, len(header))
		for name := range header {
			row[name] = valueAt(header, cells, name)
		}
		out = append(out, row)
	}
	return out, nil
}

// Summarize joins the non-blank, trimmed cells of each known column in
// row order.
func Summarize(rows []models.ComparisonRow) models.ComparisonSummary {
	var (
		sim, diff, pmbok, prince2, iso500, iso502 []string
	)
	for _, row := range rows {
		sim = appendCell(sim, row[ColSimilarities])
		diff = appendCell(diff, row[ColDifferences])
		pmbok = appendCell(pmbok, row[ColUniquePMBOK])
		prince2 = appendCell(prince2, row[ColUniquePRINCE2])
		iso500 = appendCell(iso500, row[ColUniqueISO21500])
		iso502 = appendCell(iso502, row[ColUniqueISO21502])
	}
	return models.ComparisonSummary{
		Similarities:   strings.Join(sim, summarySep),
		Differences:    strings.Join(diff, summarySep),
		UniquePMBOK:    strings.Join(pmbok, summarySep),
		UniquePRINCE2:  strings.Join(prince2, summarySep),
		UniqueISO21500: strings.Join(iso500, summarySep),
		UniqueISO21502: strings.Join(iso502, summarySep),
	}
}

func appendCell(parts []string, cell string) []string {
	if cell = strings.TrimSpace(cell); cell != "" {
		return append(parts, cell)
	}
	return parts
}

func LoadComparisonsFile(path string) ([]models.ComparisonRow, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ParseComparisons(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

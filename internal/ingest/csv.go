package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

const bom = "\ufeff"

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr
}

// readHeader maps column names to positions. Names stay case-sensitive;
// only a leading BOM and surrounding spaces are removed.
func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, wrapCSV(err)
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		if idx == 0 {
			name = strings.TrimPrefix(name, bom)
		}
		name = strings.TrimSpace(name)
		if _, dup := header[name]; dup {
			continue
		}
		header[name] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func wrapCSV(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &ParseError{Line: perr.StartLine, Err: perr.Err}
	}
	return &ParseError{Err: err}
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

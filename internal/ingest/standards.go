package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"pmstandards/pkg/models"
)

// Required standards CSV columns. Page is read when present.
const (
	ColTopic    = "Topic"
	ColStandard = "Standards"
	ColPage     = "Page"
	ColExcerpt  = "Excerpt"
)

var validate = validator.New()

// row is the validated shape of one standards CSV row after forward-fill.
type row struct {
	Topic    string `validate:"required"`
	Standard string `validate:"required"`
	Page     string
	Excerpt  string `validate:"required"`
}

var rejectReasons = map[string]string{
	"Topic":    "missing topic and no earlier topic to carry forward",
	"Standard": "missing standard",
	"Excerpt":  "missing excerpt",
}

// StandardsResult is the outcome of one standards ingest.
type StandardsResult struct {
	Records    []models.StandardExcerpt
	Rejections []models.Rejection
	Rows       int
}

// ParseStandards reads a standards CSV in input order. Blank topic cells
// inherit the most recent non-blank topic. Rows missing a topic, standard
// or excerpt are reported as rejections and never stop the parse.
func ParseStandards(r io.Reader) (StandardsResult, error) {
	var res StandardsResult

	cr := newReader(r)
	header, err := readHeader(cr)
	if errors.Is(err, io.EOF) {
		return res, nil
	}
	if err != nil {
		return res, err
	}
	for _, col := range []string{ColTopic, ColStandard, ColExcerpt} {
		if _, ok := header[col]; !ok {
			return res, &ParseError{Line: 1, Err: fmt.Errorf("missing column %q", col)}
		}
	}

	lastTopic := ""
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, wrapCSV(err)
		}
		line, _ := cr.FieldPos(0)
		if len(cells) == 0 || blankRow(cells) {
			continue
		}
		res.Rows++

		topic := strings.TrimSpace(valueAt(header, cells, ColTopic))
		if topic != "" {
			lastTopic = topic
		} else {
			topic = lastTopic
		}

		rec := row{
			Topic:    topic,
			Standard: strings.TrimSpace(valueAt(header, cells, ColStandard)),
			Page:     strings.TrimSpace(valueAt(header, cells, ColPage)),
			Excerpt:  strings.TrimSpace(valueAt(header, cells, ColExcerpt)),
		}
		if rej, ok := check(rec, line); !ok {
			res.Rejections = append(res.Rejections, rej)
			continue
		}

		res.Records = append(res.Records, models.StandardExcerpt{
			ID:               int64(len(res.Records) + 1),
			Topic:            rec.Topic,
			Standard:         rec.Standard,
			Page:             rec.Page,
			Excerpt:          rec.Excerpt,
			DeepLink:         DeepLink(rec.Standard, rec.Topic, rec.Page),
			SectionReference: rec.Page,
		})
	}

	return res, nil
}

func check(rec row, line int) (models.Rejection, bool) {
	err := validate.Struct(rec)
	if err == nil {
		return models.Rejection{}, true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].Field()
		return models.Rejection{Line: line, Field: strings.ToLower(field), Reason: rejectReasons[field]}, false
	}
	return models.Rejection{Line: line, Reason: err.Error()}, false
}

// LoadStandardsFile parses the standards CSV at path. A missing file
// yields an error wrapping ErrNotFound.
func LoadStandardsFile(path string) (StandardsResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return StandardsResult{}, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return StandardsResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	res, err := ParseStandards(f)
	if err != nil {
		return StandardsResult{}, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

package fetcher

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// CSVOptions configures DecodeCSV.
type CSVOptions struct {
	Delimiter rune // default ','
	// Canonical maps each header cell to the column name the csv struct
	// tags use. Nil keeps headers as written (trimmed).
	Canonical func(string) string
}

// DecodeCSV decodes every record of r into a T using csv struct tags.
// The first row is the header; unknown columns are ignored.
func DecodeCSV[T any](r io.Reader, opts CSVOptions) ([]T, []string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, eris.New("csv: missing header row")
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "csv: read header")
	}
	header = CanonicalHeader(header, opts.Canonical)

	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return nil, nil, eris.Wrap(err, "csv: new decoder")
	}

	var out []T
	for {
		var v T
		if err := dec.Decode(&v); err == io.EOF {
			break
		} else if err != nil {
			return nil, header, eris.Wrapf(err, "csv: decode record %d", len(out)+1)
		}
		out = append(out, v)
	}
	return out, header, nil
}

// CanonicalHeader trims header cells (including a UTF-8 byte order mark)
// and maps them through canonical when it is set.
func CanonicalHeader(header []string, canonical func(string) string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if canonical != nil {
			h = canonical(h)
		}
		out[i] = h
	}
	return out
}

package dataset

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/housing-map/internal/fetcher"
	"github.com/sells-group/housing-map/internal/model"
)

// TableOptions names the source columns that feed the canonical key,
// selector-token and name columns. Empty fields use the canonical names.
type TableOptions struct {
	KeyColumn      string
	SelectorColumn string
	NameColumn     string
	// Sheet selects the xlsx worksheet by name; empty is the first sheet.
	Sheet string
}

// canonicalizer maps a source header cell to the column name CountyRow
// carries. Matching is case-insensitive; unknown headers pass through.
func (o TableOptions) canonicalizer() func(string) string {
	aliases := map[string]string{}
	add := func(from, to string) {
		if from != "" {
			aliases[strings.ToLower(from)] = to
		}
	}
	add(model.ColumnFIPS, model.ColumnFIPS)
	add(model.ColumnSelector, model.ColumnSelector)
	add(model.ColumnName, model.ColumnName)
	for _, a := range model.Attributes() {
		add(string(a), string(a))
	}
	add(o.KeyColumn, model.ColumnFIPS)
	add(o.SelectorColumn, model.ColumnSelector)
	add(o.NameColumn, model.ColumnName)

	return func(h string) string {
		if c, ok := aliases[strings.ToLower(h)]; ok {
			return c
		}
		return h
	}
}

func requireKey(header []string) error {
	for _, h := range header {
		if h == model.ColumnFIPS {
			return nil
		}
	}
	return eris.Errorf("missing key column %q in header %v", model.ColumnFIPS, header)
}

func (l *Loader) loadTable(ctx context.Context, location string) ([]model.CountyRow, error) {
	switch ext := fetcher.Ext(location); ext {
	case ".xlsx":
		path, cleanup, err := l.local(ctx, location)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{SheetName: l.table.Sheet})
		if err != nil {
			return nil, err
		}
		return rowsFromGrid(rows, l.table.canonicalizer())
	case ".csv", ".tsv", ".txt", "":
		rc, err := l.router.Open(ctx, location)
		if err != nil {
			return nil, err
		}
		defer rc.Close() //nolint:errcheck

		opts := fetcher.CSVOptions{Canonical: l.table.canonicalizer()}
		if ext == ".tsv" {
			opts.Delimiter = '\t'
		}
		rows, header, err := fetcher.DecodeCSV[model.CountyRow](rc, opts)
		if err != nil {
			return nil, err
		}
		if err := requireKey(header); err != nil {
			return nil, err
		}
		return rows, nil
	default:
		return nil, eris.Errorf("unsupported table format %q", ext)
	}
}

// rowsFromGrid turns a header row plus records into CountyRows.
func rowsFromGrid(grid [][]string, canonical func(string) string) ([]model.CountyRow, error) {
	if len(grid) == 0 {
		return nil, eris.New("missing header row")
	}
	header := fetcher.CanonicalHeader(grid[0], canonical)
	if err := requireKey(header); err != nil {
		return nil, err
	}

	rows := make([]model.CountyRow, 0, len(grid)-1)
	for _, rec := range grid[1:] {
		var row model.CountyRow
		for i, cell := range rec {
			if i < len(header) {
				row.Set(header[i], cell)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Package join merges tabular county rows into county boundary features.
package join

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/housing-map/internal/model"
)

// Options names the county feature properties used by the join.
type Options struct {
	KeyField      string // feature property matching CountyRow.FIPS
	SelectorField string // feature property used for the selector token
	NameField     string // feature property holding the full display name
}

// DefaultOptions matches the property names of the DMV county boundaries.
func DefaultOptions() Options {
	return Options{
		KeyField:      model.ColumnFIPS,
		SelectorField: model.ColumnSelector,
		NameField:     model.ColumnName,
	}
}

// Result is the joined view.
type Result struct {
	Counties []*model.County
	Missed   []string // county keys with no tabular row
	Orphans  []string // tabular keys with no county feature
	Invalid  int      // attribute cells that did not parse
}

// Join builds one County per county feature. A feature whose key has no
// row keeps all attributes missing and Joined=false; that is not an error.
// Features are not modified.
func Join(features []*model.Feature, rows []model.CountyRow, opts Options) Result {
	if opts.KeyField == "" {
		opts = DefaultOptions()
	}
	log := zap.L().With(zap.String("component", "join"))

	byKey := make(map[string]*model.CountyRow, len(rows))
	for i := range rows {
		key := strings.TrimSpace(rows[i].FIPS)
		if key == "" {
			continue
		}
		if _, dup := byKey[key]; dup {
			log.Warn("duplicate tabular key, keeping first", zap.String("fips", key))
			continue
		}
		byKey[key] = &rows[i]
	}

	var res Result
	used := make(map[string]bool, len(rows))
	tokens := make(map[string]bool, len(features))

	for _, f := range features {
		key := f.Prop(opts.KeyField)
		if key == "" {
			key = f.ID
		}

		c := &model.County{
			FIPS:      key,
			Name:      f.Prop(opts.NameField),
			Geometry:  f.Geometry,
			Values:    make(map[model.Attribute]model.Value, len(model.Attributes())),
			MapStroke: model.CountyStroke,
			BarStroke: model.BarStroke,
		}

		row, ok := byKey[key]
		if ok {
			used[key] = true
			c.Joined = true
			for _, a := range model.Attributes() {
				v := model.ParseValue(row.Raw(a))
				if !v.Valid {
					res.Invalid++
				}
				c.Values[a] = v
			}
			if c.Name == "" {
				c.Name = row.Name
			}
		} else {
			res.Missed = append(res.Missed, key)
			log.Debug("county has no tabular row", zap.String("fips", key))
		}

		token := f.Prop(opts.SelectorField)
		if token == "" && row != nil {
			token = row.Selector
		}
		if token == "" {
			token = c.Name
		}
		c.Selector = uniqueToken(SelectorToken(token, key), key, tokens)
		tokens[c.Selector] = true

		res.Counties = append(res.Counties, c)
	}

	for key := range byKey {
		if !used[key] {
			res.Orphans = append(res.Orphans, key)
		}
	}
	sort.Strings(res.Orphans)

	log.Info("joined tabular rows to counties",
		zap.Int("counties", len(res.Counties)),
		zap.Int("missed", len(res.Missed)),
		zap.Int("orphans", len(res.Orphans)),
		zap.Int("invalid_cells", res.Invalid),
	)
	return res
}

var unsafeToken = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SelectorToken turns a display name into a string usable as a class name
// and CSS selector: runs of unsafe characters become "_" and a leading
// digit or hyphen gets a "c" prefix. An empty result falls back to the key.
func SelectorToken(name, key string) string {
	t := strings.Trim(unsafeToken.ReplaceAllString(strings.TrimSpace(name), "_"), "_")
	if t == "" {
		t = unsafeToken.ReplaceAllString(key, "_")
	}
	if t == "" {
		return "county"
	}
	if c := t[0]; (c >= '0' && c <= '9') || c == '-' {
		t = "c" + t
	}
	return t
}

func uniqueToken(token, key string, taken map[string]bool) string {
	if !taken[token] {
		return token
	}
	safeKey := unsafeToken.ReplaceAllString(key, "_")
	alt := fmt.Sprintf("%s_%s", token, safeKey)
	for i := 2; taken[alt]; i++ {
		alt = fmt.Sprintf("%s_%s_%d", token, safeKey, i)
	}
	return alt
}

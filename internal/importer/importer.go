// Package importer loads mosque listings from spreadsheets.
package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Nixie-Tech-LLC/minaarly/internal/db"
	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

const defaultWorkers = 4

// Upserter is the part of db.Store the importer writes through.
type Upserter interface {
	UpsertMosqueBySlug(ctx context.Context, in db.MosqueInput) (*model.Mosque, error)
}

// RowError describes a spreadsheet row that was skipped.
type RowError struct {
	Row int // 1-based, as shown in the spreadsheet
	Err error
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

type Result struct {
	Imported int
	Skipped  []RowError
}

func parseCoord(val string) (*float64, error) {
	// some locales use a decimal comma
	val = strings.TrimSpace(strings.ReplaceAll(val, ",", "."))
	if val == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid coordinate %q", val)
	}
	return &f, nil
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func splitFacilities(raw string) ([]string, error) {
	out := []string{}
	for _, f := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' }) {
		tag := strings.ToLower(strings.TrimSpace(f))
		if tag == "" {
			continue
		}
		if !model.Facility(tag).Valid() {
			return nil, fmt.Errorf("unknown facility %q", tag)
		}
		out = append(out, tag)
	}
	return out, nil
}

// ReadSheet parses mosque rows from sheet. The first row is the header;
// "name" and "city" columns are required. Rows that fail validation are
// returned in the skipped list rather than aborting the read.
func ReadSheet(f *excelize.File, sheet string) ([]db.MosqueInput, []RowError, error) {
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	index := map[string]int{}
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "city"} {
		if _, ok := index[required]; !ok {
			return nil, nil, fmt.Errorf("sheet %q has no %q column", sheet, required)
		}
	}

	var (
		inputs  []db.MosqueInput
		skipped []RowError
	)
	for i, row := range rows[1:] {
		rowNum := i + 2
		cell := func(name string) string {
			idx, ok := index[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}

		in, err := parseRow(cell)
		if err != nil {
			skipped = append(skipped, RowError{Row: rowNum, Err: err})
			continue
		}
		inputs = append(inputs, in)
	}
	return inputs, skipped, nil
}

func parseRow(cell func(string) string) (db.MosqueInput, error) {
	in := db.MosqueInput{
		Name:        cell("name"),
		Slug:        cell("slug"),
		Street:      cell("street"),
		City:        cell("city"),
		PostalCode:  cell("postal_code"),
		Description: cell("description"),
		Phone:       optional(cell("phone")),
		Email:       optional(cell("email")),
		Website:     optional(cell("website")),
	}
	if in.Name == "" || in.City == "" {
		return in, fmt.Errorf("name and city are required")
	}

	var err error
	if in.Latitude, err = parseCoord(cell("latitude")); err != nil {
		return in, err
	}
	if in.Longitude, err = parseCoord(cell("longitude")); err != nil {
		return in, err
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return in, fmt.Errorf("latitude and longitude must be set together")
	}
	if in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90 || *in.Longitude < -180 || *in.Longitude > 180) {
		return in, fmt.Errorf("coordinates out of range")
	}
	if in.Facilities, err = splitFacilities(cell("facilities")); err != nil {
		return in, err
	}
	switch strings.ToLower(cell("verified")) {
	case "", "0", "false", "no", "nein":
	default:
		in.Verified = true
	}
	if in.Slug == "" {
		in.Slug = db.Slugify(in.Name, in.City)
	}
	return in, nil
}

// Import upserts every input with up to workers concurrent writes. The first
// store error cancels the remaining writes.
func Import(ctx context.Context, store Upserter, inputs []db.MosqueInput, workers int) (int, error) {
	if workers <= 0 {
		workers = defaultWorkers
	}
	var imported atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, in := range inputs {
		in := in
		g.Go(func() error {
			m, err := store.UpsertMosqueBySlug(gctx, in)
			if err != nil {
				return fmt.Errorf("import %q: %w", in.Slug, err)
			}
			log.Debug().Str("slug", m.Slug).Str("id", m.ID).Msg("imported mosque")
			imported.Add(1)
			return nil
		})
	}
	err := g.Wait()
	return int(imported.Load()), err
}

// ImportFile reads sheet from the workbook at path and imports it.
func ImportFile(ctx context.Context, store Upserter, path, sheet string, workers int) (Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	inputs, skipped, err := ReadSheet(f, sheet)
	if err != nil {
		return Result{}, err
	}
	for _, s := range skipped {
		log.Warn().Int("row", s.Row).Err(s.Err).Msg("skipping spreadsheet row")
	}

	n, err := Import(ctx, store, inputs, workers)
	return Result{Imported: n, Skipped: skipped}, err
}

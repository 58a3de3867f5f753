package importer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Nixie-Tech-LLC/minaarly/internal/db"
	"github.com/Nixie-Tech-LLC/minaarly/internal/db/dbtest"
	"github.com/Nixie-Tech-LLC/minaarly/internal/model"
)

func workbook(t *testing.T, rows [][]any) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	return f
}

var header = []any{"Name", "Street", "City", "Latitude", "Longitude", "Facilities", "Verified"}

func TestReadSheet(t *testing.T) {
	f := workbook(t, [][]any{
		header,
		{"Al-Nur Moschee", "Haberstr. 1", "Berlin", "52,52", "13,40", "parking; wudu", "ja"},
		{"Fatih Moschee", "", "Hamburg", "", "", "", ""},
		{"", "", "Köln", "50.9", "6.9", "", ""},
		{"Broken Moschee", "", "Bonn", "abc", "7.1", "", ""},
		{"Sauna Moschee", "", "Essen", "51.4", "7.0", "sauna", ""},
		{"Half Moschee", "", "Dortmund", "51.5", "", "", ""},
	})

	inputs, skipped, err := ReadSheet(f, "Sheet1")
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	nur := inputs[0]
	assert.Equal(t, "al-nur-moschee-berlin", nur.Slug)
	require.NotNil(t, nur.Latitude)
	assert.InDelta(t, 52.52, *nur.Latitude, 1e-9)
	assert.Equal(t, []string{"parking", "wudu"}, nur.Facilities)
	assert.True(t, nur.Verified)

	fatih := inputs[1]
	assert.Nil(t, fatih.Latitude)
	assert.False(t, fatih.Verified)

	rows := make([]int, 0, len(skipped))
	for _, s := range skipped {
		rows = append(rows, s.Row)
	}
	assert.Equal(t, []int{4, 5, 6, 7}, rows)
}

func TestReadSheetRequiresColumns(t *testing.T) {
	f := workbook(t, [][]any{{"Title", "Town"}, {"x", "y"}})
	_, _, err := ReadSheet(f, "Sheet1")
	assert.ErrorContains(t, err, `"name"`)

	_, _, err = ReadSheet(f, "Missing")
	assert.Error(t, err)
}

func TestImportUpserts(t *testing.T) {
	store := dbtest.New()
	lat, lng := 52.52, 13.40
	inputs := []db.MosqueInput{
		{Name: "Al-Nur Moschee", City: "Berlin", Slug: "al-nur-moschee-berlin", Latitude: &lat, Longitude: &lng},
		{Name: "Fatih Moschee", City: "Hamburg", Slug: "fatih-moschee-hamburg"},
	}

	n, err := Import(context.Background(), store, inputs, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// a second run updates in place
	inputs[1].Street = "Kirchenallee 25"
	_, err = Import(context.Background(), store, inputs, 2)
	require.NoError(t, err)
	m, err := store.GetMosqueBySlug(context.Background(), "fatih-moschee-hamburg")
	require.NoError(t, err)
	assert.Equal(t, "Kirchenallee 25", m.Street)
}

type failingStore struct{}

func (failingStore) UpsertMosqueBySlug(ctx context.Context, in db.MosqueInput) (*model.Mosque, error) {
	return nil, errors.New("disk full")
}

func TestImportStopsOnError(t *testing.T) {
	_, err := Import(context.Background(), failingStore{}, []db.MosqueInput{{Slug: "a"}, {Slug: "b"}}, 1)
	assert.ErrorContains(t, err, "disk full")
}

func TestImportFile(t *testing.T) {
	f := workbook(t, [][]any{
		header,
		{"Al-Nur Moschee", "", "Berlin", "52.52", "13.40", "", ""},
		{"Broken", "", "Bonn", "x", "y", "", ""},
	})
	path := filepath.Join(t.TempDir(), "mosques.xlsx")
	require.NoError(t, f.SaveAs(path))

	store := dbtest.New()
	res, err := ImportFile(context.Background(), store, path, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 3, res.Skipped[0].Row)
}

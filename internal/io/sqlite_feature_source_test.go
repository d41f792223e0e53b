package io

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ecopia-map/cesium_tilecontent/internal/data"
	"github.com/ecopia-map/cesium_tilecontent/internal/tiler"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func createFeatureDatabase(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "features.sqlite")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	statements := []string{
		`CREATE TABLE buildings (gid INTEGER PRIMARY KEY, geom BLOB, height REAL, "roof type" TEXT)`,
	}
	for _, statement := range statements {
		if err := db.Exec(statement).Error; err != nil {
			t.Fatal(err)
		}
	}
	rows := []struct {
		gid    int
		geom   []byte
		height float64
		roof   string
	}{
		{1, squareWKB(t, 0, 0, 1, 1, 0), 12.5, "flat"},
		{2, squareWKB(t, 2, 0, 3, 1, 0), 8, "gable"},
	}
	for _, r := range rows {
		err := db.Exec(`INSERT INTO buildings (gid, geom, height, "roof type") VALUES (?, ?, ?, ?)`,
			r.gid, r.geom, r.height, r.roof).Error
		if err != nil {
			t.Fatal(err)
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatal(err)
	}
	return dbPath
}

func TestSqliteFeatureSource(t *testing.T) {
	dbPath := createFeatureDatabase(t)

	tests := []struct {
		name       string
		options    tiler.TilerB3dmOptions
		ids        []string
		attributes []string
	}{
		{
			name:       "every column",
			options:    tiler.TilerB3dmOptions{Table: "buildings", GeometryColumn: "geom", IDColumn: "gid"},
			ids:        []string{"1", "2"},
			attributes: []string{"height", "roof type"},
		},
		{
			name:       "selected columns",
			options:    tiler.TilerB3dmOptions{Table: "buildings", GeometryColumn: "geom", IDColumn: "gid", Attributes: []string{"roof type"}},
			ids:        []string{"1", "2"},
			attributes: []string{"roof type"},
		},
		{
			name:       "rowid",
			options:    tiler.TilerB3dmOptions{Table: "buildings", GeometryColumn: "geom", Attributes: []string{"height"}},
			ids:        []string{"1", "2"},
			attributes: []string{"height"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options := tt.options
			source, err := NewSqliteFeatureSource(dbPath, &options)
			if err != nil {
				t.Fatal(err)
			}
			defer source.Close()

			var features []*data.Feature
			err = source.ForEach(func(f *data.Feature) error {
				features = append(features, f)
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}
			if len(features) != len(tt.ids) {
				t.Fatalf("got %d features", len(features))
			}
			for i, f := range features {
				if f.ID != tt.ids[i] {
					t.Errorf("feature %d id %s, want %s", i, f.ID, tt.ids[i])
				}
				if len(f.Geometry) == 0 {
					t.Errorf("feature %s has no geometry", f.ID)
				}
				names := make([]string, 0)
				for _, a := range tt.attributes {
					if _, ok := f.Attributes[a]; ok {
						names = append(names, a)
					}
				}
				if !reflect.DeepEqual(names, tt.attributes) || len(f.Attributes) != len(tt.attributes) {
					t.Errorf("feature %s attributes %v", f.ID, f.Attributes)
				}
			}
			if roof, ok := features[0].Attributes["roof type"]; ok && roof != "flat" {
				t.Errorf("roof type %v (%T)", roof, roof)
			}
		})
	}
}

func TestSqliteFeatureSourceErrors(t *testing.T) {
	dbPath := createFeatureDatabase(t)
	if _, err := NewSqliteFeatureSource(filepath.Join(t.TempDir(), "missing.sqlite"), &tiler.TilerB3dmOptions{Table: "t", GeometryColumn: "g"}); err == nil {
		t.Error("expected an error for a missing database")
	}
	if _, err := NewSqliteFeatureSource(dbPath, &tiler.TilerB3dmOptions{Table: "buildings"}); err == nil {
		t.Error("expected an error without a geometry column")
	}

	source, err := NewSqliteFeatureSource(dbPath, &tiler.TilerB3dmOptions{Table: "buildings", GeometryColumn: "height", IDColumn: "gid"})
	if err != nil {
		t.Fatal(err)
	}
	defer source.Close()
	if err := source.ForEach(func(*data.Feature) error { return nil }); err == nil {
		t.Error("expected an error for a non blob geometry column")
	}
}

func TestQuoteIdentifier(t *testing.T) {
	tests := map[string]string{
		"geom":       "geom",
		"roof type":  `"roof type"`,
		`odd"name`:   `"odd""name"`,
		"_rowid_":    "_rowid_",
		"2020_value": `"2020_value"`,
	}
	for in, want := range tests {
		if got := quoteIdentifier(in); got != want {
			t.Errorf("%s: got %s, want %s", in, got, want)
		}
	}
}

package io

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/data"
	"github.com/ecopia-map/cesium_tilecontent/internal/tiler"
	"github.com/golang/glog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var plainIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Reads features from a table of a sqlite database: one WKB geometry column, one id column
// and any number of attribute columns
type SqliteFeatureSource struct {
	db      *gorm.DB
	options *tiler.TilerB3dmOptions
}

func NewSqliteFeatureSource(dbPath string, options *tiler.TilerB3dmOptions) (*SqliteFeatureSource, error) {
	if options == nil || options.Table == "" || options.GeometryColumn == "" {
		return nil, errors.New("a table and a geometry column are needed to read features")
	}
	// sqlite silently creates missing databases
	if _, err := os.Stat(dbPath); err != nil {
		return nil, errors.Wrapf(err, "cannot open database %s", dbPath)
	}
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open database %s", dbPath)
	}
	return &SqliteFeatureSource{db: db, options: options}, nil
}

// Plain identifiers are left as is so that rowid keeps working
func quoteIdentifier(name string) string {
	if plainIdentifier.MatchString(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Attribute columns to export: the configured ones, else every column of the table
// except the geometry and id columns
func (s *SqliteFeatureSource) attributeColumns() ([]string, error) {
	if len(s.options.Attributes) > 0 {
		return s.options.Attributes, nil
	}
	rows, err := s.db.Raw(fmt.Sprintf("SELECT * FROM %s LIMIT 0", quoteIdentifier(s.options.Table))).Rows()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read columns of table %s", s.options.Table)
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read columns of table %s", s.options.Table)
	}

	attributes := make([]string, 0, len(columns))
	for _, column := range columns {
		if column == s.options.GeometryColumn || column == s.options.IDColumn {
			continue
		}
		attributes = append(attributes, column)
	}
	return attributes, nil
}

func (s *SqliteFeatureSource) ForEach(fn func(feature *data.Feature) error) error {
	attributes, err := s.attributeColumns()
	if err != nil {
		return err
	}

	idColumn := s.options.IDColumn
	if idColumn == "" {
		idColumn = "rowid"
	}
	selected := []string{quoteIdentifier(idColumn), quoteIdentifier(s.options.GeometryColumn)}
	for _, attribute := range attributes {
		selected = append(selected, quoteIdentifier(attribute))
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selected, ", "), quoteIdentifier(s.options.Table))
	glog.V(1).Infoln("reading features:", query)

	rows, err := s.db.Raw(query).Rows()
	if err != nil {
		return errors.Wrapf(err, "cannot query table %s", s.options.Table)
	}
	defer rows.Close()

	values := make([]interface{}, len(selected))
	targets := make([]interface{}, len(selected))
	for i := range values {
		targets[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(targets...); err != nil {
			return errors.Wrapf(err, "cannot read a row of table %s", s.options.Table)
		}

		id := fmt.Sprint(columnValue(values[0]))
		var geometry []byte
		switch g := values[1].(type) {
		case []byte:
			geometry = g
		case string:
			geometry = []byte(g)
		default:
			return errors.Newf("feature %s: column %s does not hold a WKB blob", id, s.options.GeometryColumn)
		}

		properties := make(map[string]interface{}, len(attributes))
		for i, attribute := range attributes {
			properties[attribute] = columnValue(values[i+2])
		}
		if err := fn(data.NewFeature(id, geometry, properties)); err != nil {
			return err
		}
	}
	return errors.Wrapf(rows.Err(), "cannot iterate table %s", s.options.Table)
}

// Text columns may come back as bytes, they are exported as JSON strings
func columnValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func (s *SqliteFeatureSource) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

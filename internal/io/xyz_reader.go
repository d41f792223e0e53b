package io

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/data"
)

// Reads points from a text file holding one point per line, with space separated fields:
//
//	x y z
//	x y z intensity
//	x y z r g b
//	x y z intensity r g b
type XyzReader struct {
	path string
}

func NewXyzReader(path string) *XyzReader {
	return &XyzReader{path: path}
}

// File name without extension
func (r *XyzReader) Name() string {
	base := filepath.Base(r.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (r *XyzReader) ForEach(fn func(point *data.Point) error) error {
	f, err := os.Open(r.path)
	if err != nil {
		return errors.Wrapf(err, "cannot open %s", r.path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		point, err := parseXyzPoint(fields)
		if err != nil {
			return errors.Wrapf(err, "%s:%d", r.path, line)
		}
		if err := fn(point); err != nil {
			return err
		}
	}
	return errors.Wrapf(scanner.Err(), "cannot read %s", r.path)
}

func parseXyzPoint(fields []string) (*data.Point, error) {
	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "field %d", i+1)
		}
		values[i] = v
	}

	var intensity, r, g, b uint8
	switch len(values) {
	case 3:
	case 4:
		intensity = toUint8(values[3])
	case 6:
		r, g, b = toUint8(values[3]), toUint8(values[4]), toUint8(values[5])
	case 7:
		intensity = toUint8(values[3])
		r, g, b = toUint8(values[4]), toUint8(values[5]), toUint8(values[6])
	default:
		return nil, errors.Newf("%d fields, expected 3, 4, 6 or 7", len(values))
	}
	return data.NewPoint(values[0], values[1], values[2], r, g, b, intensity), nil
}

func toUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

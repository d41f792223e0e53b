package tools

import (
	"math"

	"github.com/goccy/go-json"
)

const (
	B3dmFileExtension = ".b3dm"
	PntsFileExtension = ".pnts"
)

func FmtJSONString(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "marshal data fail"
	}
	return string(data)
}

const (
	FloatMin = 0.000001
)

func IsFloatEqual(f1, f2 float64) bool {
	return math.Abs(f1-f2) < FloatMin
}

package featuretable

import (
	"bytes"
	"testing"

	"github.com/ecopia-map/cesium_tilecontent/internal/geometry"
)

func TestPointFeatureTable(t *testing.T) {
	positions := []float32{0, 0, 0, 1, 2, 3, -1, -2, -3}
	colors := []uint8{255, 0, 0, 0, 255, 0, 0, 0, 255}
	center := geometry.NewVector3(4510023.1234567891, 1234.5, -10.0000004)

	ft, err := NewPointFeatureTable(positions, colors, &center)
	if err != nil {
		t.Fatal(err)
	}

	header, err := ft.HeaderBytes()
	if err != nil {
		t.Fatal(err)
	}
	if (28+len(header))%8 != 0 {
		t.Errorf("feature table body would start at %d, not 8 byte aligned", 28+len(header))
	}
	want := `{"POINTS_LENGTH":3,"RTC_CENTER":[4510023.123457,1234.5,-10],"POSITION":{"byteOffset":0},"RGB":{"byteOffset":36}}`
	if got := string(bytes.TrimRight(header, " ")); got != want {
		t.Errorf("header\n got %s\nwant %s", got, want)
	}
	body := ft.BodyBytes()
	if len(body) != 48 {
		t.Errorf("body length %d, want 48", len(body))
	}

	parsed, err := FromBytes(header, body)
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := parsed.PointsLength(); !ok || n != 3 {
		t.Errorf("points length %d %v", n, ok)
	}
	gotPositions, err := parsed.Positions()
	if err != nil {
		t.Fatal(err)
	}
	for i := range positions {
		if gotPositions[i] != positions[i] {
			t.Fatalf("positions %v, want %v", gotPositions, positions)
		}
	}
	gotColors, err := parsed.Colors()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(gotColors, colors) {
		t.Errorf("colors %v, want %v", gotColors, colors)
	}
	rtc, ok := parsed.RTCCenter()
	if !ok || rtc != geometry.NewVector3(4510023.123457, 1234.5, -10) {
		t.Errorf("rtc center %v %v", rtc, ok)
	}
}

func TestPointFeatureTableErrors(t *testing.T) {
	if _, err := NewPointFeatureTable([]float32{0, 1}, nil, nil); err == nil {
		t.Error("expected an error for incomplete positions")
	}
	if _, err := NewPointFeatureTable([]float32{0, 1, 2}, []uint8{1, 2}, nil); err == nil {
		t.Error("expected an error for incomplete colors")
	}
}

func TestPointFeatureTableWithoutColors(t *testing.T) {
	ft, err := NewPointFeatureTable([]float32{1, 2, 3}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	colors, err := ft.Colors()
	if err != nil || colors != nil {
		t.Errorf("colors %v, err %v", colors, err)
	}
	if _, ok := ft.RTCCenter(); ok {
		t.Error("no rtc center expected")
	}
}

func TestBatchedModelFeatureTable(t *testing.T) {
	tests := []struct {
		name        string
		batchLength int
		rtc         *geometry.Vector3
		json        string
	}{
		{"no rtc", 3, nil, `{"BATCH_LENGTH":3}`},
		{"zero batch", 0, nil, `{"BATCH_LENGTH":0}`},
		{"with rtc", 1, &geometry.Vector3{X: 1.5, Y: 2, Z: 3}, `{"BATCH_LENGTH":1,"RTC_CENTER":[1.5,2,3]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft, err := NewBatchedModelFeatureTable(tt.batchLength, tt.rtc)
			if err != nil {
				t.Fatal(err)
			}
			header, err := ft.HeaderBytes()
			if err != nil {
				t.Fatal(err)
			}
			if got := string(bytes.TrimRight(header, " ")); got != tt.json {
				t.Errorf("got %s, want %s", got, tt.json)
			}
			if len(header)%8 != 4 {
				t.Errorf("header length %d, want 4 modulo 8", len(header))
			}
			if n, ok := ft.BatchLength(); !ok || n != tt.batchLength {
				t.Errorf("batch length %d %v", n, ok)
			}
			if len(ft.BodyBytes()) != 0 {
				t.Error("batched model feature table has no body")
			}
		})
	}
}

func TestEmptyFeatureTable(t *testing.T) {
	b, err := New().ToBytes()
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 0 {
		t.Errorf("got %q", b)
	}
}

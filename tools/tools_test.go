package tools

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/ecopia-map/cesium_tilecontent/internal/tiler"
)

func TestPadBytes(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		alignment int
		pad       byte
		want      []byte
	}{
		{"empty", []byte{}, 8, 0, []byte{}},
		{"aligned", []byte{1, 2, 3, 4}, 4, 0, []byte{1, 2, 3, 4}},
		{"zero fill", []byte{1, 2, 3}, 4, 0, []byte{1, 2, 3, 0}},
		{"space fill", []byte("{}"), 8, ' ', []byte("{}      ")},
		{"one short", []byte{1, 2, 3, 4, 5, 6, 7}, 8, 9, []byte{1, 2, 3, 4, 5, 6, 7, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := append([]byte(nil), tt.data...)
			got := PadBytes(tt.data, tt.alignment, tt.pad)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("PadBytes() = %v, want %v", got, tt.want)
			}
			if !bytes.Equal(tt.data, original) {
				t.Errorf("input modified to %v", tt.data)
			}
		})
	}
}

func TestPaddingLength(t *testing.T) {
	tests := []struct {
		length, alignment, want int
	}{
		{0, 8, 0},
		{1, 8, 7},
		{8, 8, 0},
		{9, 8, 7},
		{30, 4, 2},
	}
	for _, tt := range tests {
		if got := PaddingLength(tt.length, tt.alignment); got != tt.want {
			t.Errorf("PaddingLength(%d, %d) = %d, want %d", tt.length, tt.alignment, got, tt.want)
		}
	}
}

func TestBinaryConversions(t *testing.T) {
	if got := ConvertIntToByteArray(0x01020304); !bytes.Equal(got, []byte{4, 3, 2, 1}) {
		t.Errorf("ConvertIntToByteArray() = %v", got)
	}

	values := []float32{0, 1.5, -2.25, 1e6}
	b := ConvertFloat32ToByteArray(values)
	if len(b) != 16 {
		t.Fatalf("%d bytes, want 16", len(b))
	}
	if !bytes.Equal(b[4:8], []byte{0, 0, 0xc0, 0x3f}) {
		t.Errorf("1.5 encoded as %v", b[4:8])
	}
	if got := ConvertByteArrayToFloat32(append(b, 0xff)); !reflect.DeepEqual(got, values) {
		t.Errorf("ConvertByteArrayToFloat32() = %v, want %v", got, values)
	}

	truncated := ConvertByteArrayToFloat32(ConvertTruncateFloat64ToFloat32ByteArray([]float64{0.1, 6378137.25}))
	if truncated[0] != float32(0.1) || truncated[1] != float32(6378137.25) {
		t.Errorf("ConvertTruncateFloat64ToFloat32ByteArray() round trip = %v", truncated)
	}
}

func TestWriteAndReadFile(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "a", "b", "tile.b3dm")
	if err := WriteFile(filePath, []byte("b3dm")); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(filePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "b3dm" {
		t.Errorf("ReadFile() = %q", got)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestGetXyzFilesToProcess(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.xyz", "b.XYZ", "c.txt", filepath.Join("nested", "d.xyz")} {
		if err := WriteFile(filepath.Join(root, name), []byte("0 0 0")); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		opts tiler.TilerOptions
		want []string
	}{
		{"single file", tiler.TilerOptions{Input: filepath.Join(root, "c.txt")}, []string{"c.txt"}},
		{"folder", tiler.TilerOptions{Input: root, FolderProcessing: true}, []string{"a.xyz", "b.XYZ"}},
		{"recursive", tiler.TilerOptions{Input: root, FolderProcessing: true, Recursive: true}, []string{"a.xyz", "b.XYZ", filepath.Join("nested", "d.xyz")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := NewStandardFileFinder().GetXyzFilesToProcess(&tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			got := make([]string, len(files))
			for i, f := range files {
				rel, err := filepath.Rel(root, f)
				if err != nil {
					t.Fatal(err)
				}
				got[i] = rel
			}
			sort.Strings(got)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GetXyzFilesToProcess() = %v, want %v", got, tt.want)
			}
		})
	}

	missing := tiler.TilerOptions{Input: filepath.Join(root, "missing"), FolderProcessing: true}
	if _, err := NewStandardFileFinder().GetXyzFilesToProcess(&missing); err == nil {
		t.Error("expected an error for a missing folder")
	}
}

func TestParseFlagsForCommandB3dm(t *testing.T) {
	flags, err := ParseFlagsForCommandB3dm([]string{
		"-i", "db.sqlite", "-output", "out", "-table", "parcels",
		"-attributes", "height, roof type,,", "-b", "10", "-y-up",
	})
	if err != nil {
		t.Fatal(err)
	}
	if *flags.Input != "db.sqlite" || *flags.Output != "out" || *flags.Table != "parcels" {
		t.Errorf("unexpected paths %q %q %q", *flags.Input, *flags.Output, *flags.Table)
	}
	if *flags.GeometryColumn != "geom" || *flags.Srid != 4326 {
		t.Errorf("unexpected defaults %q %d", *flags.GeometryColumn, *flags.Srid)
	}
	if *flags.BatchSize != 10 || !*flags.YUp {
		t.Errorf("batch size %d, y up %v", *flags.BatchSize, *flags.YUp)
	}
	if got := flags.AttributeList(); !reflect.DeepEqual(got, []string{"height", "roof type"}) {
		t.Errorf("AttributeList() = %v", got)
	}

	if _, err := ParseFlagsForCommandB3dm([]string{"-unknown"}); err == nil {
		t.Error("expected an error for an unknown flag")
	}
}

func TestParseFlagsForCommandPnts(t *testing.T) {
	flags, err := ParseFlagsForCommandPnts([]string{"-i", "clouds", "-f", "-r", "-e", "3857", "-z", "1.5"})
	if err != nil {
		t.Fatal(err)
	}
	if !*flags.FolderProcessing || !*flags.RecursiveFolderProcessing {
		t.Error("folder flags not set")
	}
	if *flags.Srid != 3857 || *flags.ZOffset != 1.5 || *flags.PointsPerTile != 50000 {
		t.Errorf("srid %d, zoffset %v, points per tile %d", *flags.Srid, *flags.ZOffset, *flags.PointsPerTile)
	}
}

func TestParseFlagsForCommandInfo(t *testing.T) {
	flags, err := ParseFlagsForCommandInfo([]string{"-input", "0.b3dm", "-pretty", "-s"})
	if err != nil {
		t.Fatal(err)
	}
	if *flags.Input != "0.b3dm" || !*flags.Pretty || !*flags.Silent {
		t.Errorf("unexpected flags %q %v %v", *flags.Input, *flags.Pretty, *flags.Silent)
	}
}

func TestMain(m *testing.M) {
	DisableLogger()
	os.Exit(m.Run())
}

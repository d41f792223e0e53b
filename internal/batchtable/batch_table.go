// Package batchtable reads and writes 3D Tiles batch tables: per feature properties stored
// as a JSON header, optionally backed by a binary body.
package batchtable

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/tools"
	"github.com/goccy/go-json"
)

const (
	ComponentTypeByte          = "BYTE"
	ComponentTypeUnsignedByte  = "UNSIGNED_BYTE"
	ComponentTypeShort         = "SHORT"
	ComponentTypeUnsignedShort = "UNSIGNED_SHORT"
	ComponentTypeInt           = "INT"
	ComponentTypeUnsignedInt   = "UNSIGNED_INT"
	ComponentTypeFloat         = "FLOAT"
	ComponentTypeDouble        = "DOUBLE"
)

type BatchTable struct {
	Header *Properties
	// Binary property data. Empty when every property lives in the JSON header.
	Body []byte
}

type binaryReference struct {
	ByteOffset    int    `json:"byteOffset"`
	ComponentType string `json:"componentType"`
	Type          string `json:"type"`
}

func New() *BatchTable {
	return &BatchTable{Header: NewProperties()}
}

// Adds a JSON array property, one value per feature
func (bt *BatchTable) AddProperty(name string, values interface{}) error {
	return bt.Header.Set(name, values)
}

// Adds a property stored in the binary body. data holds the little endian values,
// the header records where they start and how to read them.
func (bt *BatchTable) AddBinaryProperty(name string, data []byte, componentType, elementType string) error {
	bt.Body = tools.PadBytes(bt.Body, 8, ' ')
	ref := binaryReference{
		ByteOffset:    len(bt.Body),
		ComponentType: componentType,
		Type:          elementType,
	}
	if err := bt.Header.Set(name, ref); err != nil {
		return err
	}
	bt.Body = append(bt.Body, data...)
	return nil
}

// Raw bytes of a binary property, up to the start of the next binary property or the end of the body
func (bt *BatchTable) BinaryProperty(name string) ([]byte, error) {
	start, end := -1, len(bt.Body)
	for _, n := range bt.Header.Names() {
		var ref binaryReference
		raw, _ := bt.Header.Get(n)
		if json.Unmarshal(raw, &ref) != nil || ref.ComponentType == "" {
			continue
		}
		if n == name {
			start = ref.ByteOffset
		} else if start >= 0 && ref.ByteOffset > start && ref.ByteOffset < end {
			end = ref.ByteOffset
		}
	}
	if start < 0 {
		return nil, errors.Newf("binary property %s not found", name)
	}
	if start > len(bt.Body) {
		return nil, errors.Newf("binary property %s starts past the %d bytes body", name, len(bt.Body))
	}
	return bt.Body[start:end], nil
}

func (bt *BatchTable) isEmpty() bool {
	return (bt.Header == nil || bt.Header.Len() == 0) && len(bt.Body) == 0
}

func (bt *BatchTable) unpaddedHeader() ([]byte, error) {
	if bt.Header == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(bt.Header)
	if err != nil {
		return nil, errors.Wrap(err, "cannot encode batch table header")
	}
	return b, nil
}

// Compact JSON header padded with spaces to a multiple of 8 bytes. An empty table has no header.
func (bt *BatchTable) HeaderBytes() ([]byte, error) {
	if bt.isEmpty() {
		return []byte{}, nil
	}
	b, err := bt.unpaddedHeader()
	if err != nil {
		return nil, err
	}
	return tools.PadBytes(b, 8, ' '), nil
}

// Binary body padded with spaces to a multiple of 8 bytes. Without binary properties the body
// is only the alignment filler of 4 - (unpadded header length % 4) spaces.
func (bt *BatchTable) BodyBytes() ([]byte, error) {
	if bt.isEmpty() {
		return []byte{}, nil
	}
	if len(bt.Body) > 0 {
		return tools.PadBytes(bt.Body, 8, ' '), nil
	}
	return bt.filler()
}

func (bt *BatchTable) filler() ([]byte, error) {
	b, err := bt.unpaddedHeader()
	if err != nil {
		return nil, err
	}
	return bytes.Repeat([]byte{' '}, 4-len(b)%4), nil
}

func (bt *BatchTable) ToBytes() ([]byte, error) {
	header, err := bt.HeaderBytes()
	if err != nil {
		return nil, err
	}
	body, err := bt.BodyBytes()
	if err != nil {
		return nil, err
	}
	return append(header, body...), nil
}

// Number of features described by the table: the length of the id property when present,
// else the length of the first property. False when the table has no array property to tell.
func (bt *BatchTable) Length() (int, bool) {
	if bt.Header == nil || bt.Header.Len() == 0 {
		return 0, false
	}
	if n, ok := bt.Header.ArrayLength("id"); ok {
		return n, true
	}
	return bt.Header.ArrayLength(bt.Header.Names()[0])
}

// Parses a batch table from its JSON and binary parts
func FromBytes(jsonPart, binPart []byte) (*BatchTable, error) {
	bt := New()
	if len(bytes.TrimSpace(jsonPart)) > 0 {
		if err := bt.Header.UnmarshalJSON(jsonPart); err != nil {
			return nil, errors.Wrap(err, "cannot decode batch table header")
		}
	}
	if len(binPart) == 0 {
		return bt, nil
	}

	filler, err := bt.filler()
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(binPart, filler) {
		bt.Body = append([]byte{}, binPart...)
	}
	return bt, nil
}

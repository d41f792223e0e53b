// Package gltf builds glTF 2.0 documents from packed vertex buffers and reads and writes
// them as binary GLB containers.
package gltf

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/tileerr"
	"github.com/ecopia-map/cesium_tilecontent/tools"
	"github.com/goccy/go-json"
)

const (
	magic = "glTF"

	HeaderByteLength      = 12
	ChunkHeaderByteLength = 8

	chunkTypeLegacy = 0 // glTF 1.0 binary content format
	ChunkTypeJSON   = 0x4E4F534A
	ChunkTypeBIN    = 0x004E4942
)

// A glTF asset: the JSON document and the content of its single binary buffer
type GlTF struct {
	Header *Document
	Body   []byte
}

// Serializes the asset as a version 2 GLB container
func (g *GlTF) ToBytes() ([]byte, error) {
	scene, err := json.Marshal(g.Header)
	if err != nil {
		return nil, errors.Wrap(err, "cannot encode glTF JSON chunk")
	}
	scene = tools.PadBytes(scene, 4, ' ')
	body := tools.PadBytes(g.Body, 4, 0)

	length := HeaderByteLength + ChunkHeaderByteLength + len(scene) + ChunkHeaderByteLength + len(body)

	out := make([]byte, 0, length)
	out = append(out, magic...)
	out = binary.LittleEndian.AppendUint32(out, 2)
	out = binary.LittleEndian.AppendUint32(out, uint32(length))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(scene)))
	out = binary.LittleEndian.AppendUint32(out, ChunkTypeJSON)
	out = append(out, scene...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body)))
	out = binary.LittleEndian.AppendUint32(out, ChunkTypeBIN)
	out = append(out, body...)
	return out, nil
}

// Parses a GLB container. Version 1 containers carry the binary body right after the
// JSON content, version 2 ones behind a BIN chunk header.
func FromBytes(b []byte) (*GlTF, error) {
	if len(b) < HeaderByteLength+ChunkHeaderByteLength {
		return nil, errors.Wrapf(tileerr.ErrInvalidContainer, "glTF container of %d bytes is too short", len(b))
	}
	if !bytes.Equal(b[0:4], []byte(magic)) {
		return nil, errors.Wrapf(tileerr.ErrInvalidContainer, "bad glTF magic %q", b[0:4])
	}

	version := binary.LittleEndian.Uint32(b[4:8])
	if version != 1 && version != 2 {
		return nil, errors.Wrapf(tileerr.ErrUnsupportedVersion, "glTF version %d", version)
	}

	total := int(binary.LittleEndian.Uint32(b[8:12]))
	jsonLength := int(binary.LittleEndian.Uint32(b[12:16]))
	chunkType := binary.LittleEndian.Uint32(b[16:20])
	if chunkType != chunkTypeLegacy && chunkType != ChunkTypeJSON {
		return nil, errors.Wrapf(tileerr.ErrUnsupportedChunkType, "first glTF chunk type 0x%08X", chunkType)
	}

	jsonEnd := HeaderByteLength + ChunkHeaderByteLength + jsonLength
	if jsonLength < 0 || jsonEnd > len(b) {
		return nil, errors.Wrapf(tileerr.ErrInvalidContainer, "glTF JSON chunk of %d bytes exceeds the %d bytes buffer", jsonLength, len(b))
	}

	doc := &Document{}
	if err := json.Unmarshal(b[HeaderByteLength+ChunkHeaderByteLength:jsonEnd], doc); err != nil {
		return nil, errors.Wrapf(tileerr.ErrInvalidContainer, "cannot decode glTF JSON chunk: %v", err)
	}

	end := total
	if end > len(b) {
		end = len(b)
	}
	bodyStart := jsonEnd
	if version == 2 {
		bodyStart += ChunkHeaderByteLength
	}
	body := []byte{}
	if bodyStart < end {
		body = append(body, b[bodyStart:end]...)
	}

	return &GlTF{Header: doc, Body: body}, nil
}

// Checks that every buffer view and accessor addresses bytes present in the body
func (g *GlTF) Validate() error {
	if g.Header == nil {
		return errors.New("glTF has no JSON document")
	}
	for i, view := range g.Header.BufferViews {
		if view.Buffer < 0 || view.Buffer >= len(g.Header.Buffers) {
			return errors.Newf("bufferView %d references missing buffer %d", i, view.Buffer)
		}
		if view.ByteOffset < 0 || view.ByteLength < 0 || view.ByteOffset+view.ByteLength > len(g.Body) {
			return errors.Newf("bufferView %d [%d, %d) exceeds the %d bytes body",
				i, view.ByteOffset, view.ByteOffset+view.ByteLength, len(g.Body))
		}
	}
	for i, accessor := range g.Header.Accessors {
		if accessor.BufferView < 0 || accessor.BufferView >= len(g.Header.BufferViews) {
			return errors.Newf("accessor %d references missing bufferView %d", i, accessor.BufferView)
		}
		elementSize := componentSize(accessor.ComponentType) * componentCount(accessor.Type)
		if elementSize == 0 {
			return errors.Newf("accessor %d has unknown layout %d %s", i, accessor.ComponentType, accessor.Type)
		}
		view := g.Header.BufferViews[accessor.BufferView]
		if end := accessor.ByteOffset + accessor.Count*elementSize; accessor.ByteOffset < 0 || end > view.ByteLength {
			return errors.Newf("accessor %d ends at byte %d of bufferView %d holding %d bytes",
				i, end, accessor.BufferView, view.ByteLength)
		}
	}
	return nil
}

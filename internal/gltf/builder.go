package gltf

import (
	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/geometry"
	"github.com/ecopia-map/cesium_tilecontent/tools"
)

const (
	Generator = "cesium_tilecontent"

	positionElementSize = 12 // 3 float32
	normalElementSize   = 12
	uvElementSize       = 8 // 2 float32
)

// Packed vertex buffers of one geometry
type GeometryArrays struct {
	Position []byte // little endian float32 triplets
	Normal   []byte // little endian float32 triplets
	UV       []byte // little endian float32 pairs, optional
	BBox     geometry.BoundingBox
}

type BuildOptions struct {
	// Concatenates all geometries in one mesh and adds a _BATCHID attribute
	// holding the index of the geometry every vertex comes from
	Batched bool
	// Column major 4x4 matrix set on every node
	Transform []float64
	// Image referenced by the material when the geometries carry UVs
	TextureURI string
}

type meshGroup struct {
	position []byte
	normal   []byte
	uv       []byte
	vertices int
	normals  int
	bbox     geometry.BoundingBox
}

// Builds a glTF asset with one mesh per geometry, or a single batched mesh
func FromBinaryArrays(arrays []GeometryArrays, opts BuildOptions) (*GlTF, error) {
	if len(arrays) == 0 {
		return nil, errors.New("no geometry to build a glTF from")
	}
	if opts.Transform != nil && len(opts.Transform) != 16 {
		return nil, errors.Newf("transform must hold 16 values, got %d", len(opts.Transform))
	}

	textured := len(arrays[0].UV) > 0
	groups := make([]meshGroup, 0, len(arrays))
	for i, a := range arrays {
		if len(a.Position)%positionElementSize != 0 || len(a.Normal)%normalElementSize != 0 {
			return nil, errors.Newf("geometry %d: buffers are not made of float32 triplets", i)
		}
		g := meshGroup{
			position: a.Position,
			normal:   a.Normal,
			vertices: len(a.Position) / positionElementSize,
			normals:  len(a.Normal) / normalElementSize,
			bbox:     a.BBox,
		}
		if textured {
			if len(a.UV) != g.vertices*uvElementSize {
				return nil, errors.Newf("geometry %d: %d uv bytes for %d vertices", i, len(a.UV), g.vertices)
			}
			g.uv = a.UV
		}
		groups = append(groups, g)
	}

	var batchIDs []byte
	batchLength := 0
	if opts.Batched {
		ids := make([]float32, 0)
		merged := meshGroup{bbox: groups[0].bbox}
		for i, g := range groups {
			merged.position = append(merged.position, g.position...)
			merged.normal = append(merged.normal, g.normal...)
			merged.uv = append(merged.uv, g.uv...)
			merged.vertices += g.vertices
			merged.normals += g.normals
			merged.bbox = merged.bbox.Union(g.bbox)
			for v := 0; v < g.vertices; v++ {
				ids = append(ids, float32(i))
			}
		}
		groups = []meshGroup{merged}
		batchIDs = tools.ConvertFloat32ToByteArray(ids)
		batchLength = len(arrays)
	}

	body := make([]byte, 0)
	for _, g := range groups {
		body = append(body, g.position...)
	}
	for _, g := range groups {
		body = append(body, g.normal...)
	}
	for _, g := range groups {
		body = append(body, g.uv...)
	}
	body = append(body, batchIDs...)

	doc := computeHeader(groups, len(body), textured, opts.Batched, batchLength, opts)
	return &GlTF{Header: doc, Body: body}, nil
}

func computeHeader(groups []meshGroup, bodyLength int, textured, batched bool, batchLength int, opts BuildOptions) *Document {
	sizePositions, sizeNormals, sizeUVs, vertices := 0, 0, 0, 0
	for _, g := range groups {
		sizePositions += len(g.position)
		sizeNormals += len(g.normal)
		sizeUVs += len(g.uv)
		vertices += g.vertices
	}

	doc := &Document{
		Asset: Asset{Generator: Generator, Version: "2.0"},
		Scene: 0,
	}
	doc.Buffers = []Buffer{{ByteLength: bodyLength}}

	doc.BufferViews = []BufferView{
		{Buffer: 0, ByteLength: sizePositions, ByteOffset: 0, Target: TargetArrayBuffer},
		{Buffer: 0, ByteLength: sizeNormals, ByteOffset: sizePositions, Target: TargetArrayBuffer},
	}
	if textured {
		doc.BufferViews = append(doc.BufferViews, BufferView{
			Buffer: 0, ByteLength: sizeUVs, ByteOffset: sizePositions + sizeNormals, Target: TargetArrayBuffer,
		})
	}
	if batched {
		doc.BufferViews = append(doc.BufferViews, BufferView{
			Buffer: 0, ByteLength: vertices * 4, ByteOffset: sizePositions + sizeNormals + sizeUVs, Target: TargetArrayBuffer,
		})
	}

	positionOffset, normalOffset, uvOffset := 0, 0, 0
	for _, g := range groups {
		doc.Accessors = append(doc.Accessors,
			Accessor{
				BufferView:    0,
				ByteOffset:    positionOffset,
				ComponentType: ComponentTypeFloat,
				Count:         g.vertices,
				Max:           []float64{g.bbox.Max.X, g.bbox.Max.Y, g.bbox.Max.Z},
				Min:           []float64{g.bbox.Min.X, g.bbox.Min.Y, g.bbox.Min.Z},
				Type:          AccessorVec3,
			},
			Accessor{
				BufferView:    1,
				ByteOffset:    normalOffset,
				ComponentType: ComponentTypeFloat,
				Count:         g.normals,
				Type:          AccessorVec3,
			},
		)
		if textured {
			doc.Accessors = append(doc.Accessors, Accessor{
				BufferView:    2,
				ByteOffset:    uvOffset,
				ComponentType: ComponentTypeFloat,
				Count:         g.vertices,
				Max:           []float64{1, 1},
				Min:           []float64{0, 0},
				Type:          AccessorVec2,
			})
		}
		positionOffset += len(g.position)
		normalOffset += len(g.normal)
		uvOffset += len(g.uv)
	}
	if batched {
		view := 2
		if textured {
			view = 3
		}
		doc.Accessors = append(doc.Accessors, Accessor{
			BufferView:    view,
			ByteOffset:    0,
			ComponentType: ComponentTypeFloat,
			Count:         vertices,
			Max:           []float64{float64(batchLength - 1)},
			Min:           []float64{0},
			Type:          AccessorScalar,
		})
	}

	attributeCount := 2
	if textured {
		attributeCount = 3
	}
	for i := range groups {
		attributes := map[string]int{
			"POSITION": attributeCount * i,
			"NORMAL":   attributeCount*i + 1,
		}
		if textured {
			attributes["TEXCOORD_0"] = attributeCount*i + 2
		}
		doc.Meshes = append(doc.Meshes, Mesh{Primitives: []Primitive{{
			Attributes: attributes,
			Material:   0,
			Mode:       ModeTriangles,
		}}})
	}
	if batched {
		doc.Meshes[0].Primitives[0].Attributes["_BATCHID"] = attributeCount
	}

	scene := Scene{Nodes: make([]int, 0, len(groups))}
	for i := range groups {
		node := Node{Mesh: i}
		if opts.Transform != nil {
			node.Matrix = append([]float64(nil), opts.Transform...)
		}
		doc.Nodes = append(doc.Nodes, node)
		scene.Nodes = append(scene.Nodes, i)
	}
	doc.Scenes = []Scene{scene}

	metallic := 0.0
	doc.Materials = []Material{{
		PbrMetallicRoughness: PbrMetallicRoughness{MetallicFactor: &metallic},
		Name:                 "Material",
	}}

	if textured {
		doc.Textures = []Texture{{Sampler: 0, Source: 0}}
		doc.Images = []Image{{URI: opts.TextureURI}}
		doc.Samplers = []Sampler{{MagFilter: 9729, MinFilter: 9987, WrapS: 10497, WrapT: 10497}}
		doc.Materials[0].PbrMetallicRoughness.BaseColorTexture = &TextureInfo{Index: 0}
	}

	return doc
}

package gltf

import "github.com/goccy/go-json"

const (
	ComponentTypeByte          = 5120
	ComponentTypeUnsignedByte  = 5121
	ComponentTypeShort         = 5122
	ComponentTypeUnsignedShort = 5123
	ComponentTypeUnsignedInt   = 5125
	ComponentTypeFloat         = 5126

	TargetArrayBuffer = 34962

	ModeTriangles = 4
)

const (
	AccessorScalar = "SCALAR"
	AccessorVec2   = "VEC2"
	AccessorVec3   = "VEC3"
	AccessorVec4   = "VEC4"
	AccessorMat4   = "MAT4"
)

// Root of the glTF JSON chunk. Field order is the order of the serialized keys.
type Document struct {
	Asset       Asset        `json:"asset"`
	Scene       int          `json:"scene"`
	Scenes      []Scene      `json:"scenes,omitempty"`
	Nodes       []Node       `json:"nodes,omitempty"`
	Meshes      []Mesh       `json:"meshes,omitempty"`
	Materials   []Material   `json:"materials,omitempty"`
	Accessors   []Accessor   `json:"accessors,omitempty"`
	BufferViews []BufferView `json:"bufferViews,omitempty"`
	Buffers     []Buffer     `json:"buffers,omitempty"`
	Textures    []Texture    `json:"textures,omitempty"`
	Images      []Image      `json:"images,omitempty"`
	Samplers    []Sampler    `json:"samplers,omitempty"`

	ExtensionsUsed     []string                   `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string                   `json:"extensionsRequired,omitempty"`
	Extensions         map[string]json.RawMessage `json:"extensions,omitempty"`
}

type Asset struct {
	Generator string `json:"generator,omitempty"`
	Version   string `json:"version"`
}

type Scene struct {
	Nodes []int `json:"nodes"`
}

type Node struct {
	Matrix []float64 `json:"matrix,omitempty"` // column major 4x4
	Mesh   int       `json:"mesh"`
}

type Mesh struct {
	Primitives []Primitive `json:"primitives"`
}

type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Material   int            `json:"material"`
	Mode       int            `json:"mode"`
}

type Material struct {
	PbrMetallicRoughness PbrMetallicRoughness `json:"pbrMetallicRoughness"`
	Name                 string               `json:"name,omitempty"`
}

type PbrMetallicRoughness struct {
	MetallicFactor   *float64     `json:"metallicFactor,omitempty"`
	BaseColorTexture *TextureInfo `json:"baseColorTexture,omitempty"`
}

type TextureInfo struct {
	Index int `json:"index"`
}

type Accessor struct {
	BufferView    int       `json:"bufferView"`
	ByteOffset    int       `json:"byteOffset"`
	ComponentType int       `json:"componentType"`
	Count         int       `json:"count"`
	Max           []float64 `json:"max,omitempty"`
	Min           []float64 `json:"min,omitempty"`
	Type          string    `json:"type"`
}

type BufferView struct {
	Buffer     int `json:"buffer"`
	ByteLength int `json:"byteLength"`
	ByteOffset int `json:"byteOffset"`
	Target     int `json:"target,omitempty"`
}

type Buffer struct {
	ByteLength int    `json:"byteLength"`
	URI        string `json:"uri,omitempty"`
}

type Texture struct {
	Sampler int `json:"sampler"`
	Source  int `json:"source"`
}

type Image struct {
	URI string `json:"uri"`
}

type Sampler struct {
	MagFilter int `json:"magFilter"`
	MinFilter int `json:"minFilter"`
	WrapS     int `json:"wrapS"`
	WrapT     int `json:"wrapT"`
}

func componentSize(componentType int) int {
	switch componentType {
	case ComponentTypeByte, ComponentTypeUnsignedByte:
		return 1
	case ComponentTypeShort, ComponentTypeUnsignedShort:
		return 2
	case ComponentTypeUnsignedInt, ComponentTypeFloat:
		return 4
	}
	return 0
}

func componentCount(accessorType string) int {
	switch accessorType {
	case AccessorScalar:
		return 1
	case AccessorVec2:
		return 2
	case AccessorVec3:
		return 3
	case AccessorVec4:
		return 4
	case AccessorMat4:
		return 16
	}
	return 0
}

package data

// A geometry row to export as one batched feature of a b3dm tile
type Feature struct {
	ID string
	// WKB multipolygon or polyhedral surface
	Geometry []byte
	// Scalar column values, exported as batch table properties
	Attributes map[string]interface{}
}

func NewFeature(id string, geometry []byte, attributes map[string]interface{}) *Feature {
	if attributes == nil {
		attributes = make(map[string]interface{})
	}
	return &Feature{
		ID:         id,
		Geometry:   geometry,
		Attributes: attributes,
	}
}

// Package tileerr holds the failure kinds raised while decoding geometries and tile content.
// Raise sites wrap these sentinels with context, callers match them with errors.Is.
package tileerr

import "github.com/cockroachdb/errors"

var (
	// WKB buffer too short for a field it declares, or an unknown geometry type code.
	ErrMalformedGeometry = errors.New("malformed geometry")

	// Associated polygon ring or point counts disagree with the primary polygon.
	ErrTopologyMismatch = errors.New("topology mismatch")

	// Bad magic, or a container too short to hold its own framing.
	ErrInvalidContainer = errors.New("invalid container")

	ErrUnsupportedVersion   = errors.New("unsupported version")
	ErrUnsupportedChunkType = errors.New("unsupported chunk type")
	ErrInvalidHeaderLength  = errors.New("invalid header length")

	// Declared byte length and actual byte length disagree.
	ErrInvalidTotalLength = errors.New("invalid total length")
)

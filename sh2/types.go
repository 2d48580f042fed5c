package sh2

import "errors"

var (
	// ErrSignatureNotFound means no zlib stream header was seen in the scan
	// window. Nothing can be decompressed, the whole session aborts.
	ErrSignatureNotFound = errors.New("no zlib signature in scan window")

	// ErrPayloadCorrupt means the declared compressed region did not inflate
	// to a valid stream. Fatal for the session.
	ErrPayloadCorrupt = errors.New("compressed payload is corrupt")

	// ErrFieldNotFound means a name token is absent from the payload.
	// Local to the one field, other lookups are unaffected.
	ErrFieldNotFound = errors.New("field not found")

	// ErrFieldOutOfBounds means a computed value offset plus the value width
	// would run past the end of the payload.
	ErrFieldOutOfBounds = errors.New("field offset out of bounds")
)

// SaveFile is one loaded save container: the opaque header bytes preserved
// verbatim, the decompressed payload mutated in place, and the locations and
// declared sizes recorded at load for reporting and reconstruction.
type SaveFile struct {
	Header  []byte
	Payload []byte

	SizeInfoOffset int
	StreamOffset   int

	// Sizes as declared by the size-info block at load time. Rebuild always
	// recomputes them from the actual lengths.
	CompressedSize   uint32
	UncompressedSize uint32
}

// Package codec implements the versioned batch header encodings. A leading
// version byte selects the layout; hashing and field extraction sit behind
// one interface so the chain never branches on encoding details.
package codec

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidHeaderLength is returned for encodings whose length does
	// not match their version's layout.
	ErrInvalidHeaderLength = errors.New("codec: invalid batch header length")

	// ErrUnsupportedVersion is returned for unknown version bytes.
	ErrUnsupportedVersion = errors.New("codec: unsupported batch header version")
)

// Header is the uniform view over all batch header encodings.
type Header interface {
	// Version is the protocol version tag, non-decreasing along the chain.
	Version() uint8

	// BatchIndex identifies the batch.
	BatchIndex() uint64

	// ParentBatchHash links the batch to its parent.
	ParentBatchHash() common.Hash

	// TotalL1MessagesPopped is the cumulative queue consumption recorded
	// in the header. Blob-native headers do not carry it and return zero;
	// the finalize path supplies it explicitly instead.
	TotalL1MessagesPopped() uint64

	// Hash is the canonical batch hash, keccak256 over the encoding.
	Hash() common.Hash

	// Encode returns the canonical byte encoding.
	Encode() []byte
}

// Version tags. Versions up to VersionChunked share the legacy chunked
// layout; VersionBlob is the blob-native layout.
const (
	VersionGenesis    uint8 = 0
	VersionChunked    uint8 = 1
	VersionChunkedMax uint8 = 6
	VersionBlob       uint8 = 7
)

// DecodeHeader dispatches on the leading version byte.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) == 0 {
		return nil, ErrInvalidHeaderLength
	}
	switch version := b[0]; {
	case version <= VersionChunkedMax:
		return decodeChunkedHeader(b)
	case version == VersionBlob:
		return decodeBlobHeader(b)
	default:
		return nil, ErrUnsupportedVersion
	}
}

// SkippedBitmapLength returns the required byte length of a skipped
// L1-message bitmap covering n messages: one bit per message, padded to
// 256-bit words.
func SkippedBitmapLength(n uint64) uint64 {
	return (n + 255) / 256 * 32
}

package codec

import (
	"encoding/binary"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidChunkLength is returned for chunk payloads shorter than the
// fixed chunk prefix.
var ErrInvalidChunkLength = errors.New("codec: invalid chunk length")

// chunkPrefixLength is the fixed prefix of a chunk payload.
const chunkPrefixLength = 2 + 2

// Chunk is one chunk of a legacy batch payload.
//
// Layout: numTxs (2) | numL1Messages (2) | txPayload (variable).
type Chunk struct {
	NumTxs        uint16
	NumL1Messages uint16
	Payload       []byte
}

// DecodeChunk parses a raw chunk payload.
func DecodeChunk(b []byte) (Chunk, error) {
	if len(b) < chunkPrefixLength {
		return Chunk{}, ErrInvalidChunkLength
	}
	return Chunk{
		NumTxs:        binary.BigEndian.Uint16(b[0:2]),
		NumL1Messages: binary.BigEndian.Uint16(b[2:4]),
		Payload:       append([]byte(nil), b[chunkPrefixLength:]...),
	}, nil
}

// Encode returns the canonical chunk byte encoding.
func (c Chunk) Encode() []byte {
	out := make([]byte, chunkPrefixLength, chunkPrefixLength+len(c.Payload))
	binary.BigEndian.PutUint16(out[0:2], c.NumTxs)
	binary.BigEndian.PutUint16(out[2:4], c.NumL1Messages)
	return append(out, c.Payload...)
}

// Hash is the keccak256 commitment of the chunk encoding.
func (c Chunk) Hash() common.Hash {
	return crypto.Keccak256Hash(c.Encode())
}

// BatchDataHash folds per-chunk hashes into the batch data hash recorded
// in chunked headers.
func BatchDataHash(chunkHashes []common.Hash) common.Hash {
	buf := make([]byte, 0, 32*len(chunkHashes))
	for _, h := range chunkHashes {
		buf = append(buf, h.Bytes()...)
	}
	return crypto.Keccak256Hash(buf)
}

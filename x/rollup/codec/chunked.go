package codec

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// chunkedHeaderBaseLength is the fixed prefix of the legacy layout; the
// skipped L1-message bitmap follows.
const chunkedHeaderBaseLength = 1 + 8 + 8 + 8 + 32 + 32

// ChunkedHeader is the legacy chunk-based batch header (versions 0-6).
//
// Layout: version (1) | batchIndex (8) | l1MessagePopped (8) |
// totalL1MessagePopped (8) | dataHash (32) | parentBatchHash (32) |
// skippedL1MessageBitmap (variable, 32-byte aligned).
type ChunkedHeader struct {
	HeaderVersion        uint8
	Index                uint64
	L1MessagePopped      uint64
	TotalL1MessagePopped uint64
	DataHash             common.Hash
	ParentHash           common.Hash
	SkippedBitmap        []byte
}

var _ Header = (*ChunkedHeader)(nil)

func decodeChunkedHeader(b []byte) (*ChunkedHeader, error) {
	if len(b) < chunkedHeaderBaseLength {
		return nil, ErrInvalidHeaderLength
	}
	bitmap := b[chunkedHeaderBaseLength:]
	if len(bitmap)%32 != 0 {
		return nil, ErrInvalidHeaderLength
	}

	h := &ChunkedHeader{
		HeaderVersion:        b[0],
		Index:                binary.BigEndian.Uint64(b[1:9]),
		L1MessagePopped:      binary.BigEndian.Uint64(b[9:17]),
		TotalL1MessagePopped: binary.BigEndian.Uint64(b[17:25]),
		DataHash:             common.BytesToHash(b[25:57]),
		ParentHash:           common.BytesToHash(b[57:89]),
		SkippedBitmap:        append([]byte(nil), bitmap...),
	}
	if uint64(len(bitmap)) != SkippedBitmapLength(h.L1MessagePopped) {
		return nil, ErrInvalidHeaderLength
	}
	return h, nil
}

func (h *ChunkedHeader) Version() uint8                { return h.HeaderVersion }
func (h *ChunkedHeader) BatchIndex() uint64            { return h.Index }
func (h *ChunkedHeader) ParentBatchHash() common.Hash  { return h.ParentHash }
func (h *ChunkedHeader) TotalL1MessagesPopped() uint64 { return h.TotalL1MessagePopped }

func (h *ChunkedHeader) Encode() []byte {
	out := make([]byte, chunkedHeaderBaseLength, chunkedHeaderBaseLength+len(h.SkippedBitmap))
	out[0] = h.HeaderVersion
	binary.BigEndian.PutUint64(out[1:9], h.Index)
	binary.BigEndian.PutUint64(out[9:17], h.L1MessagePopped)
	binary.BigEndian.PutUint64(out[17:25], h.TotalL1MessagePopped)
	copy(out[25:57], h.DataHash.Bytes())
	copy(out[57:89], h.ParentHash.Bytes())
	return append(out, h.SkippedBitmap...)
}

func (h *ChunkedHeader) Hash() common.Hash {
	return crypto.Keccak256Hash(h.Encode())
}

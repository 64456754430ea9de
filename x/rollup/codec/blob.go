package codec

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// blobHeaderLength is the fixed size of the blob-native layout.
const blobHeaderLength = 1 + 8 + 32 + 32

// BlobHeader is the blob-native batch header (version 7). The payload
// lives in a blob referenced by its versioned hash; queue consumption is
// carried by the finalize call rather than the header.
//
// Layout: version (1) | batchIndex (8) | blobVersionedHash (32) |
// parentBatchHash (32).
type BlobHeader struct {
	HeaderVersion     uint8
	Index             uint64
	BlobVersionedHash common.Hash
	ParentHash        common.Hash
}

var _ Header = (*BlobHeader)(nil)

func decodeBlobHeader(b []byte) (*BlobHeader, error) {
	if len(b) != blobHeaderLength {
		return nil, ErrInvalidHeaderLength
	}
	return &BlobHeader{
		HeaderVersion:     b[0],
		Index:             binary.BigEndian.Uint64(b[1:9]),
		BlobVersionedHash: common.BytesToHash(b[9:41]),
		ParentHash:        common.BytesToHash(b[41:73]),
	}, nil
}

func (h *BlobHeader) Version() uint8                { return h.HeaderVersion }
func (h *BlobHeader) BatchIndex() uint64            { return h.Index }
func (h *BlobHeader) ParentBatchHash() common.Hash  { return h.ParentHash }
func (h *BlobHeader) TotalL1MessagesPopped() uint64 { return 0 }

func (h *BlobHeader) Encode() []byte {
	out := make([]byte, blobHeaderLength)
	out[0] = h.HeaderVersion
	binary.BigEndian.PutUint64(out[1:9], h.Index)
	copy(out[9:41], h.BlobVersionedHash.Bytes())
	copy(out[41:73], h.ParentHash.Bytes())
	return out
}

func (h *BlobHeader) Hash() common.Hash {
	return crypto.Keccak256Hash(h.Encode())
}

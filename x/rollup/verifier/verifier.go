// Package verifier provides the proof-verification capabilities the rollup
// chain calls out to: an aggregation-proof verifier for finalizing bundles,
// an SGX-attestation verifier, and the blob/KZG binding check used at
// commit time.
package verifier

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrProofRejected is returned by every Verifier implementation when the
// proof does not validate against the public input.
var ErrProofRejected = errors.New("verifier: proof rejected")

// PublicInput is the commitment a bundle proof is verified against. It
// binds the proof to one chain, one batch range, the message-queue state
// the bundle consumed, and the state transition it claims.
type PublicInput struct {
	ChainID                 uint64
	MessageQueueRollingHash common.Hash
	NumBatches              uint64
	PrevStateRoot           common.Hash
	PrevBatchHash           common.Hash
	PostStateRoot           common.Hash
	BatchHash               common.Hash
	WithdrawRoot            common.Hash
}

// Encode packs the public input into its fixed 8*32 byte form.
func (p PublicInput) Encode() []byte {
	buf := make([]byte, 0, 8*32)

	var word [32]byte
	binary.BigEndian.PutUint64(word[24:], p.ChainID)
	buf = append(buf, word[:]...)

	buf = append(buf, p.MessageQueueRollingHash.Bytes()...)

	binary.BigEndian.PutUint64(word[24:], p.NumBatches)
	buf = append(buf, word[:]...)

	buf = append(buf, p.PrevStateRoot.Bytes()...)
	buf = append(buf, p.PrevBatchHash.Bytes()...)
	buf = append(buf, p.PostStateRoot.Bytes()...)
	buf = append(buf, p.BatchHash.Bytes()...)
	buf = append(buf, p.WithdrawRoot.Bytes()...)
	return buf
}

// Digest is the keccak256 commitment of the encoded public input.
func (p PublicInput) Digest() common.Hash {
	return crypto.Keccak256Hash(p.Encode())
}

// Verifier validates a proof against a public input. Implementations are
// pure pass/fail: any failure is ErrProofRejected (possibly wrapped).
type Verifier interface {
	Verify(ctx context.Context, proof []byte, input PublicInput) error
}

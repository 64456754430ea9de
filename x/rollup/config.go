package rollup

import "github.com/ethereum/go-ethereum/common"

// Config carries the chain's identity and fixed collaborator addresses.
type Config struct {
	// Self is the chain's own account, used as the caller when it
	// finalizes queue messages.
	Self common.Address

	// Owner is the account allowed through the admin entry points.
	Owner common.Address

	// ChainID is bound into every bundle proof's public input.
	ChainID uint64

	// MaxNumTxInChunk is the initial per-chunk transaction cap.
	MaxNumTxInChunk uint64
}

func (c Config) validate() error {
	if c.MaxNumTxInChunk == 0 {
		return ErrZeroMaxNumTxInChunk
	}
	return nil
}

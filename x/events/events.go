// Package events defines the settlement events consumed by off-chain
// indexers. Downstream tooling reconstructs the full batch and message
// history by replaying these events; sparse on-ledger storage keeps only
// what future operations need.
package events

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// MessageQueued is emitted for every message appended to the queue.
type MessageQueued struct {
	QueueIndex  uint64
	Sender      common.Address
	Target      common.Address
	Value       *uint256.Int
	GasLimit    uint64
	Data        []byte
	TxHash      common.Hash
	RollingHash common.Hash
	Timestamp   uint64
}

// MessagesFinalized is emitted when the finalize cursor advances over a
// range of queued messages.
type MessagesFinalized struct {
	FromIndex uint64 // first newly finalized index
	ToIndex   uint64 // exclusive; equals the new next-unfinalized cursor
}

// BatchCommitted is emitted once per committed batch, including the
// intermediate batches of a multi-batch commit whose hashes are not
// persisted.
type BatchCommitted struct {
	BatchIndex uint64
	BatchHash  common.Hash
	Version    uint8
}

// BatchesReverted is emitted when committed but unfinalized batches are
// discarded. The range is inclusive on both ends.
type BatchesReverted struct {
	StartIndex  uint64
	FinishIndex uint64
}

// BatchFinalized is emitted for the last batch of a finalized bundle.
type BatchFinalized struct {
	BatchIndex   uint64
	BatchHash    common.Hash
	StateRoot    common.Hash
	WithdrawRoot common.Hash
}

// EnforcedModeToggled is emitted when the chain enters or leaves enforced
// batch mode.
type EnforcedModeToggled struct {
	Enabled bool
}

// SequencerUpdated is emitted on sequencer allow-list changes.
type SequencerUpdated struct {
	Account common.Address
	Added   bool
}

// ProverUpdated is emitted on prover allow-list changes.
type ProverUpdated struct {
	Account common.Address
	Added   bool
}

// ParamsUpdated is emitted when the system configuration changes.
type ParamsUpdated struct {
	MaxGasLimit               uint64
	BaseFeeOverhead           *uint256.Int
	BaseFeeScalar             *uint256.Int
	MaxDelayEnterEnforcedMode uint64
	MaxDelayMessageQueue      uint64
}

// GatewayPauseToggled is emitted when the enforced-transaction gateway is
// paused or resumed.
type GatewayPauseToggled struct {
	Paused bool
}

// Envelope carries one event through the feed with its emission time.
type Envelope struct {
	EmittedAt time.Time
	Payload   any
}

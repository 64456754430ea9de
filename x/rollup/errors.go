package rollup

import "errors"

var (
	// ErrPaused is returned by state-changing operations while the chain
	// is paused.
	ErrPaused = errors.New("rollup: chain is paused")

	// ErrUnauthorized is returned when a caller other than the owner
	// attempts an admin operation.
	ErrUnauthorized = errors.New("rollup: caller is not the owner")

	// ErrCallerNotSequencer is returned when a non-sequencer commits.
	ErrCallerNotSequencer = errors.New("rollup: caller is not a sequencer")

	// ErrCallerNotProver is returned when a non-prover finalizes.
	ErrCallerNotProver = errors.New("rollup: caller is not a prover")

	// ErrAccountIsNotEOA is returned when a contract account is added to
	// the sequencer or prover allow-list.
	ErrAccountIsNotEOA = errors.New("rollup: account is not externally owned")

	// ErrGenesisNotImported is returned by operations that need the
	// genesis batch in place.
	ErrGenesisNotImported = errors.New("rollup: genesis batch not imported")

	// ErrGenesisImported is returned on repeated genesis imports.
	ErrGenesisImported = errors.New("rollup: genesis batch already imported")

	// ErrInvalidGenesis is returned for genesis headers that carry a
	// nonzero index, a parent hash, or popped messages.
	ErrInvalidGenesis = errors.New("rollup: invalid genesis batch")

	// ErrInEnforcedBatchMode is returned by the normal commit and finalize
	// entry points while enforced batch mode is active.
	ErrInEnforcedBatchMode = errors.New("rollup: enforced batch mode is active")

	// ErrEnforcedModeNotTriggered is returned when commit-and-finalize is
	// called before either liveness threshold has lapsed.
	ErrEnforcedModeNotTriggered = errors.New("rollup: enforced batch mode not triggered")

	// ErrVersionDowngrade is returned when a commit carries a version
	// lower than the last committed batch.
	ErrVersionDowngrade = errors.New("rollup: batch version downgrade")

	// ErrBatchAlreadyCommitted is returned when the parent header points
	// before the committed chain tip.
	ErrBatchAlreadyCommitted = errors.New("rollup: batch already committed")

	// ErrIncorrectBatchIndex is returned for parent or revert indices that
	// leave a gap in the committed chain.
	ErrIncorrectBatchIndex = errors.New("rollup: incorrect batch index")

	// ErrIncorrectParentHash is returned when the supplied parent header
	// does not hash to the stored chain tip.
	ErrIncorrectParentHash = errors.New("rollup: incorrect parent batch hash")

	// ErrIncorrectBatchHash is returned when a finalize header does not
	// hash to the stored committed batch hash.
	ErrIncorrectBatchHash = errors.New("rollup: incorrect batch hash")

	// ErrEmptyBatch is returned for commits with no chunks or blobs.
	ErrEmptyBatch = errors.New("rollup: empty batch")

	// ErrInvalidChunk is returned for chunk payloads that are malformed or
	// claim more L1 messages than transactions.
	ErrInvalidChunk = errors.New("rollup: invalid chunk")

	// ErrTooManyTxsInChunk is returned when a chunk exceeds the configured
	// per-chunk transaction cap.
	ErrTooManyTxsInChunk = errors.New("rollup: too many transactions in chunk")

	// ErrIncorrectBitmapLength is returned when the skipped L1-message
	// bitmap does not cover exactly the messages the batch pops.
	ErrIncorrectBitmapLength = errors.New("rollup: incorrect skipped bitmap length")

	// ErrNotEnoughQueuedMessages is returned when a batch claims to pop
	// more messages than the queue holds.
	ErrNotEnoughQueuedMessages = errors.New("rollup: not enough queued messages")

	// ErrBatchNotCommitted is returned when finalize targets an index past
	// the committed tip or an index whose hash was not persisted.
	ErrBatchNotCommitted = errors.New("rollup: batch not committed")

	// ErrBatchAlreadyFinalized is returned when finalize targets an index
	// at or before the finalized cursor.
	ErrBatchAlreadyFinalized = errors.New("rollup: batch already finalized")

	// ErrZeroStateRoot is returned for zero state roots at genesis import
	// or finalize.
	ErrZeroStateRoot = errors.New("rollup: zero state root")

	// ErrRevertFinalizedBatch is returned when a revert would erase
	// finalized batches.
	ErrRevertFinalizedBatch = errors.New("rollup: cannot revert finalized batch")

	// ErrProofVerificationFailed is returned when the bundle proof is
	// rejected by the verifier.
	ErrProofVerificationFailed = errors.New("rollup: proof verification failed")

	// ErrBlobVerificationFailed is returned when a blob sidecar fails its
	// KZG binding at commit time.
	ErrBlobVerificationFailed = errors.New("rollup: blob verification failed")

	// ErrZeroMaxNumTxInChunk is returned for a zero per-chunk cap.
	ErrZeroMaxNumTxInChunk = errors.New("rollup: max transactions per chunk is zero")
)

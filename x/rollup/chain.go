// Package rollup implements the batch commit/finalize state machine. The
// chain runs in one of two modes: normal, where an allow-listed sequencer
// commits batches and an allow-listed prover finalizes them in bundles, and
// enforced batch mode, a liveness escape hatch where anyone may commit and
// finalize one batch at a time with a proof. Batch hash storage is sparse:
// a multi-batch commit persists only its last hash, and indexers rebuild
// the rest from events.
package rollup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/zenith-rollup/settlement/x/events"
	"github.com/zenith-rollup/settlement/x/ledger"
	"github.com/zenith-rollup/settlement/x/queue"
	"github.com/zenith-rollup/settlement/x/rollup/codec"
	"github.com/zenith-rollup/settlement/x/rollup/verifier"
	"github.com/zenith-rollup/settlement/x/sysconfig"
)

// FinalizedState is the post-state recorded for the last batch of a
// finalized bundle.
type FinalizedState struct {
	StateRoot    common.Hash
	WithdrawRoot common.Hash
}

// BlobBinder checks a blob sidecar against its KZG commitment and returns
// the versioned hash committed into blob-native batch headers.
type BlobBinder interface {
	VerifySidecar(sc verifier.BlobSidecar) (common.Hash, error)
}

var _ BlobBinder = (*verifier.BlobVerifier)(nil)

// CommitPayload carries the version-specific body of a commit. Legacy
// versions fill Chunks and SkippedBitmap; the blob-native version fills
// Blobs, one batch per blob.
type CommitPayload struct {
	Chunks        [][]byte
	SkippedBitmap []byte
	Blobs         []verifier.BlobSidecar
}

// Chain is the rollup settlement state machine.
type Chain struct {
	mu      sync.Mutex
	log     zerolog.Logger
	cfg     Config
	sys     *sysconfig.SystemConfig
	queue   *queue.MessageQueue
	proofs  verifier.Verifier
	blobs   BlobBinder
	oracle  ledger.CodeOracle
	emitter *events.Emitter
	metrics *Metrics

	genesisImported bool
	paused          bool
	enforcedMode    bool

	lastCommitted    uint64
	lastFinalized    uint64
	lastFinalizeTime uint64
	maxNumTxInChunk  uint64

	batchHashes map[uint64]common.Hash
	finalized   map[uint64]FinalizedState
	sequencers  map[common.Address]struct{}
	provers     map[common.Address]struct{}
}

// New wires the chain to its collaborators. metrics may be nil.
func New(
	log zerolog.Logger,
	cfg Config,
	sys *sysconfig.SystemConfig,
	q *queue.MessageQueue,
	proofs verifier.Verifier,
	blobs BlobBinder,
	oracle ledger.CodeOracle,
	emitter *events.Emitter,
	metrics *Metrics,
) (*Chain, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if oracle == nil {
		oracle = ledger.NoCode
	}
	return &Chain{
		log:             log.With().Str("component", "rollup-chain").Logger(),
		cfg:             cfg,
		sys:             sys,
		queue:           q,
		proofs:          proofs,
		blobs:           blobs,
		oracle:          oracle,
		emitter:         emitter,
		metrics:         metrics,
		maxNumTxInChunk: cfg.MaxNumTxInChunk,
		batchHashes:     make(map[uint64]common.Hash),
		finalized:       make(map[uint64]FinalizedState),
		sequencers:      make(map[common.Address]struct{}),
		provers:         make(map[common.Address]struct{}),
	}, nil
}

// ImportGenesisBatch seeds the chain with batch zero. The genesis header
// must carry index zero, a zero parent hash, and no popped messages; the
// state root anchors the first bundle proof. One-shot.
func (c *Chain) ImportGenesisBatch(call ledger.Call, headerBytes []byte, stateRoot common.Hash) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.genesisImported {
		return ErrGenesisImported
	}
	if stateRoot == (common.Hash{}) {
		return ErrZeroStateRoot
	}
	header, err := codec.DecodeHeader(headerBytes)
	if err != nil {
		return err
	}
	if header.BatchIndex() != 0 ||
		header.ParentBatchHash() != (common.Hash{}) ||
		header.TotalL1MessagesPopped() != 0 {
		return ErrInvalidGenesis
	}

	hash := header.Hash()
	c.genesisImported = true
	c.batchHashes[0] = hash
	c.finalized[0] = FinalizedState{StateRoot: stateRoot}
	c.lastFinalizeTime = call.Time

	c.log.Info().
		Str("batch_hash", hash.Hex()).
		Str("state_root", stateRoot.Hex()).
		Msg("Genesis batch imported")

	if c.emitter != nil {
		c.emitter.Emit(events.BatchCommitted{BatchIndex: 0, BatchHash: hash, Version: header.Version()})
		c.emitter.Emit(events.BatchFinalized{BatchIndex: 0, BatchHash: hash, StateRoot: stateRoot})
	}
	return nil
}

// CommitBatches extends the committed chain. Sequencer only, normal mode
// only. Legacy versions commit one chunked batch; the blob-native version
// commits one batch per attached blob, chained by parent hash, persisting
// only the last hash.
func (c *Chain) CommitBatches(call ledger.Call, version uint8, parentHeaderBytes []byte, payload CommitPayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.paused {
		return ErrPaused
	}
	if _, ok := c.sequencers[call.Caller]; !ok {
		return ErrCallerNotSequencer
	}
	if c.enforcedMode {
		return ErrInEnforcedBatchMode
	}
	parent, err := c.validateParent(parentHeaderBytes, c.lastCommitted)
	if err != nil {
		return err
	}
	// The parent header is hash-verified, so its version byte is the
	// authoritative floor. A revert can lower the tip's version; the
	// next commit is then free to use the parent's own version again.
	if version < parent.Version() {
		return ErrVersionDowngrade
	}

	switch {
	case version >= codec.VersionChunked && version <= codec.VersionChunkedMax:
		return c.commitChunked(version, parent, payload)
	case version == codec.VersionBlob:
		return c.commitBlobs(parent, payload.Blobs)
	default:
		return codec.ErrUnsupportedVersion
	}
}

// commitChunked validates chunk payloads and the skipped L1-message bitmap,
// then commits a single legacy batch. Caller holds the lock.
func (c *Chain) commitChunked(version uint8, parent codec.Header, payload CommitPayload) error {
	if len(payload.Chunks) == 0 {
		return ErrEmptyBatch
	}

	var popped uint64
	chunkHashes := make([]common.Hash, 0, len(payload.Chunks))
	for _, raw := range payload.Chunks {
		chunk, err := codec.DecodeChunk(raw)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
		}
		if chunk.NumTxs == 0 || chunk.NumL1Messages > chunk.NumTxs {
			return ErrInvalidChunk
		}
		if uint64(chunk.NumTxs) > c.maxNumTxInChunk {
			return ErrTooManyTxsInChunk
		}
		popped += uint64(chunk.NumL1Messages)
		chunkHashes = append(chunkHashes, chunk.Hash())
	}
	if uint64(len(payload.SkippedBitmap)) != codec.SkippedBitmapLength(popped) {
		return ErrIncorrectBitmapLength
	}

	total := parent.TotalL1MessagesPopped() + popped
	if total > c.queue.NextQueueIndex() {
		return ErrNotEnoughQueuedMessages
	}

	header := &codec.ChunkedHeader{
		HeaderVersion:        version,
		Index:                parent.BatchIndex() + 1,
		L1MessagePopped:      popped,
		TotalL1MessagePopped: total,
		DataHash:             codec.BatchDataHash(chunkHashes),
		ParentHash:           parent.Hash(),
		SkippedBitmap:        append([]byte(nil), payload.SkippedBitmap...),
	}
	c.storeBatch(header.Index, header.Hash(), version, 1)

	c.log.Info().
		Uint64("batch_index", header.Index).
		Uint8("version", version).
		Int("chunks", len(payload.Chunks)).
		Uint64("l1_messages_popped", popped).
		Str("batch_hash", c.batchHashes[header.Index].Hex()).
		Msg("Batch committed")
	return nil
}

// commitBlobs chains one blob-native batch per sidecar off the parent and
// persists only the final hash. Caller holds the lock.
func (c *Chain) commitBlobs(parent codec.Header, blobs []verifier.BlobSidecar) error {
	if len(blobs) == 0 {
		return ErrEmptyBatch
	}

	headers, err := c.chainBlobHeaders(parent, blobs)
	if err != nil {
		return err
	}

	last := headers[len(headers)-1]
	c.lastCommitted = last.Index
	c.batchHashes[last.Index] = last.Hash()

	for _, h := range headers {
		if c.emitter != nil {
			c.emitter.Emit(events.BatchCommitted{BatchIndex: h.Index, BatchHash: h.Hash(), Version: codec.VersionBlob})
		}
	}
	if c.metrics != nil {
		c.metrics.BatchesCommitted.Add(float64(len(headers)))
		c.metrics.CommittedIndex.Set(float64(c.lastCommitted))
	}

	c.log.Info().
		Uint64("first_batch_index", headers[0].Index).
		Uint64("last_batch_index", last.Index).
		Int("blobs", len(blobs)).
		Str("last_batch_hash", c.batchHashes[last.Index].Hex()).
		Msg("Blob batches committed")
	return nil
}

// chainBlobHeaders verifies every sidecar and builds the header chain
// rooted at the parent. No state is mutated.
func (c *Chain) chainBlobHeaders(parent codec.Header, blobs []verifier.BlobSidecar) ([]*codec.BlobHeader, error) {
	parentHash := parent.Hash()
	index := parent.BatchIndex()

	headers := make([]*codec.BlobHeader, 0, len(blobs))
	for _, sc := range blobs {
		versionedHash, err := c.blobs.VerifySidecar(sc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBlobVerificationFailed, err)
		}
		index++
		header := &codec.BlobHeader{
			HeaderVersion:     codec.VersionBlob,
			Index:             index,
			BlobVersionedHash: versionedHash,
			ParentHash:        parentHash,
		}
		parentHash = header.Hash()
		headers = append(headers, header)
	}
	return headers, nil
}

// FinalizeBundle finalizes every batch from the cursor up to the one the
// header names, against an aggregated proof. Prover only, normal mode only.
// Only the last batch's state is retained.
func (c *Chain) FinalizeBundle(
	ctx context.Context,
	call ledger.Call,
	headerBytes []byte,
	totalPopped uint64,
	postStateRoot common.Hash,
	withdrawRoot common.Hash,
	proof []byte,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.paused {
		return ErrPaused
	}
	if _, ok := c.provers[call.Caller]; !ok {
		return ErrCallerNotProver
	}
	if c.enforcedMode {
		return ErrInEnforcedBatchMode
	}

	header, total, err := c.validateFinalizeTarget(headerBytes, totalPopped, postStateRoot)
	if err != nil {
		return err
	}
	input, err := c.publicInput(header, total, postStateRoot, withdrawRoot)
	if err != nil {
		return err
	}
	if err := c.verifyProof(ctx, proof, input); err != nil {
		return err
	}

	return c.finalize(call, header, total, postStateRoot, withdrawRoot)
}

// RevertBatches discards committed but unfinalized batches above the
// target index. Owner only. The target must hold a persisted hash so the
// chain tip stays verifiable.
func (c *Chain) RevertBatches(call ledger.Call, targetIndex uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if call.Caller != c.cfg.Owner {
		return ErrUnauthorized
	}
	if targetIndex < c.lastFinalized {
		return ErrRevertFinalizedBatch
	}
	if targetIndex > c.lastCommitted {
		return ErrIncorrectBatchIndex
	}
	if _, ok := c.batchHashes[targetIndex]; !ok {
		return ErrIncorrectBatchIndex
	}
	if targetIndex == c.lastCommitted {
		return nil
	}

	start, finish := targetIndex+1, c.lastCommitted
	c.rewindCommitted(targetIndex)

	c.log.Warn().
		Uint64("start_index", start).
		Uint64("finish_index", finish).
		Msg("Committed batches reverted")

	if c.metrics != nil {
		c.metrics.BatchesReverted.Add(float64(finish - start + 1))
	}
	if c.emitter != nil {
		c.emitter.Emit(events.BatchesReverted{StartIndex: start, FinishIndex: finish})
	}
	return nil
}

// CommitAndFinalizeBatch is the permissionless liveness escape hatch: it
// commits exactly one blob-native batch and finalizes it with a proof in
// one atomic step. Outside enforced mode it first checks the liveness
// triggers and, when one has lapsed, enters enforced mode, discarding any
// committed but unfinalized suffix.
func (c *Chain) CommitAndFinalizeBatch(
	ctx context.Context,
	call ledger.Call,
	version uint8,
	parentHeaderBytes []byte,
	blob verifier.BlobSidecar,
	totalPopped uint64,
	postStateRoot common.Hash,
	withdrawRoot common.Hash,
	proof []byte,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.paused {
		return ErrPaused
	}
	if version != codec.VersionBlob {
		return codec.ErrUnsupportedVersion
	}
	if !c.enforcedMode && !c.enforcedModeTriggered(call.Time) {
		return ErrEnforcedModeNotTriggered
	}

	// The committed suffix above the finalized cursor is discarded on
	// entry, so the parent is always the last finalized batch.
	parent, err := c.validateParent(parentHeaderBytes, c.lastFinalized)
	if err != nil {
		return err
	}
	if postStateRoot == (common.Hash{}) {
		return ErrZeroStateRoot
	}
	headers, err := c.chainBlobHeaders(parent, []verifier.BlobSidecar{blob})
	if err != nil {
		return err
	}
	header := headers[0]

	// Pre-validate the queue cursor move so no failure remains once
	// state mutation starts.
	if totalPopped < c.queue.NextUnfinalizedIndex() {
		return queue.ErrFinalizedIndexTooSmall
	}
	if totalPopped > c.queue.NextQueueIndex() {
		return ErrNotEnoughQueuedMessages
	}
	rollingHash, err := c.rollingHashAt(totalPopped)
	if err != nil {
		return err
	}
	input := verifier.PublicInput{
		ChainID:                 c.cfg.ChainID,
		MessageQueueRollingHash: rollingHash,
		NumBatches:              1,
		PrevStateRoot:           c.finalized[c.lastFinalized].StateRoot,
		PrevBatchHash:           c.batchHashes[c.lastFinalized],
		PostStateRoot:           postStateRoot,
		BatchHash:               header.Hash(),
		WithdrawRoot:            withdrawRoot,
	}
	if err := c.verifyProof(ctx, proof, input); err != nil {
		return err
	}

	if !c.enforcedMode {
		c.enterEnforcedMode()
	}

	c.storeBatch(header.Index, header.Hash(), codec.VersionBlob, 1)
	return c.finalize(call, header, totalPopped, postStateRoot, withdrawRoot)
}

// DisableEnforcedMode returns the chain to normal operation. Owner only.
// The finalize timestamp is reset so the liveness timer restarts from the
// moment of the exit. No-op when the mode is off.
func (c *Chain) DisableEnforcedMode(call ledger.Call) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if call.Caller != c.cfg.Owner {
		return ErrUnauthorized
	}
	if !c.enforcedMode {
		return nil
	}

	c.enforcedMode = false
	c.lastFinalizeTime = call.Time

	c.log.Warn().Msg("Enforced batch mode disabled")

	if c.metrics != nil {
		c.metrics.EnforcedMode.Set(0)
	}
	if c.emitter != nil {
		c.emitter.Emit(events.EnforcedModeToggled{Enabled: false})
	}
	return nil
}

// AddSequencer adds an externally-owned account to the sequencer
// allow-list. Owner only.
func (c *Chain) AddSequencer(call ledger.Call, account common.Address) error {
	return c.updateRole(call, account, c.sequencers, true, "sequencer")
}

// RemoveSequencer removes an account from the sequencer allow-list. Owner
// only.
func (c *Chain) RemoveSequencer(call ledger.Call, account common.Address) error {
	return c.updateRole(call, account, c.sequencers, false, "sequencer")
}

// AddProver adds an externally-owned account to the prover allow-list.
// Owner only.
func (c *Chain) AddProver(call ledger.Call, account common.Address) error {
	return c.updateRole(call, account, c.provers, true, "prover")
}

// RemoveProver removes an account from the prover allow-list. Owner only.
func (c *Chain) RemoveProver(call ledger.Call, account common.Address) error {
	return c.updateRole(call, account, c.provers, false, "prover")
}

// SetPause toggles the pause flag on every state-changing entry point.
// Owner only.
func (c *Chain) SetPause(call ledger.Call, paused bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if call.Caller != c.cfg.Owner {
		return ErrUnauthorized
	}
	c.paused = paused
	c.log.Warn().Bool("paused", paused).Msg("Chain pause toggled")
	return nil
}

// UpdateMaxNumTxInChunk changes the per-chunk transaction cap. Owner only.
func (c *Chain) UpdateMaxNumTxInChunk(call ledger.Call, max uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if call.Caller != c.cfg.Owner {
		return ErrUnauthorized
	}
	if max == 0 {
		return ErrZeroMaxNumTxInChunk
	}
	c.maxNumTxInChunk = max
	c.log.Info().Uint64("max_num_tx_in_chunk", max).Msg("Per-chunk transaction cap updated")
	return nil
}

// LastCommittedBatchIndex returns the committed chain tip.
func (c *Chain) LastCommittedBatchIndex() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCommitted
}

// LastFinalizedBatchIndex returns the finalized cursor.
func (c *Chain) LastFinalizedBatchIndex() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFinalized
}

// LastFinalizeTimestamp returns the time of the last finalized bundle, in
// unix seconds.
func (c *Chain) LastFinalizeTimestamp() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFinalizeTime
}

// BatchHash returns the persisted hash at a batch index. The second return
// is false for indices whose hashes were not persisted.
func (c *Chain) BatchHash(index uint64) (common.Hash, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.batchHashes[index]
	return h, ok
}

// FinalizedStateAt returns the recorded post-state at a batch index. Only
// the last batch of each finalized bundle has one.
func (c *Chain) FinalizedStateAt(index uint64) (FinalizedState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.finalized[index]
	return st, ok
}

// IsSequencer reports sequencer allow-list membership.
func (c *Chain) IsSequencer(account common.Address) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sequencers[account]
	return ok
}

// IsProver reports prover allow-list membership.
func (c *Chain) IsProver(account common.Address) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.provers[account]
	return ok
}

// EnforcedModeEnabled reports whether enforced batch mode is active.
func (c *Chain) EnforcedModeEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enforcedMode
}

// Paused reports whether the chain is paused.
func (c *Chain) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// MaxNumTxInChunk returns the current per-chunk transaction cap.
func (c *Chain) MaxNumTxInChunk() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxNumTxInChunk
}

// GenesisImported reports whether batch zero is in place.
func (c *Chain) GenesisImported() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.genesisImported
}

// validateParent decodes the supplied parent header and checks it names
// and hashes to the chain tip at the given index. Caller holds the lock.
func (c *Chain) validateParent(parentHeaderBytes []byte, tip uint64) (codec.Header, error) {
	if !c.genesisImported {
		return nil, ErrGenesisNotImported
	}
	parent, err := codec.DecodeHeader(parentHeaderBytes)
	if err != nil {
		return nil, err
	}
	switch index := parent.BatchIndex(); {
	case index < tip:
		return nil, ErrBatchAlreadyCommitted
	case index > tip:
		return nil, ErrIncorrectBatchIndex
	}
	if parent.Hash() != c.batchHashes[tip] {
		return nil, ErrIncorrectParentHash
	}
	return parent, nil
}

// validateFinalizeTarget checks the finalize preconditions and resolves
// the cumulative popped-message count for the header's version. Caller
// holds the lock.
func (c *Chain) validateFinalizeTarget(headerBytes []byte, totalPopped uint64, postStateRoot common.Hash) (codec.Header, uint64, error) {
	if !c.genesisImported {
		return nil, 0, ErrGenesisNotImported
	}
	if postStateRoot == (common.Hash{}) {
		return nil, 0, ErrZeroStateRoot
	}
	header, err := codec.DecodeHeader(headerBytes)
	if err != nil {
		return nil, 0, err
	}

	index := header.BatchIndex()
	if index <= c.lastFinalized {
		return nil, 0, ErrBatchAlreadyFinalized
	}
	if index > c.lastCommitted {
		return nil, 0, ErrBatchNotCommitted
	}
	stored, ok := c.batchHashes[index]
	if !ok {
		return nil, 0, ErrBatchNotCommitted
	}
	if header.Hash() != stored {
		return nil, 0, ErrIncorrectBatchHash
	}

	// Legacy headers carry the cumulative count themselves; blob-native
	// headers rely on the caller-supplied value checked by the proof.
	total := totalPopped
	if header.Version() != codec.VersionBlob {
		total = header.TotalL1MessagesPopped()
	}
	if total > c.queue.NextQueueIndex() {
		return nil, 0, ErrNotEnoughQueuedMessages
	}
	return header, total, nil
}

// publicInput builds the proof commitment for finalizing up to the given
// header. Caller holds the lock.
func (c *Chain) publicInput(header codec.Header, total uint64, postStateRoot, withdrawRoot common.Hash) (verifier.PublicInput, error) {
	rollingHash, err := c.rollingHashAt(total)
	if err != nil {
		return verifier.PublicInput{}, err
	}
	return verifier.PublicInput{
		ChainID:                 c.cfg.ChainID,
		MessageQueueRollingHash: rollingHash,
		NumBatches:              header.BatchIndex() - c.lastFinalized,
		PrevStateRoot:           c.finalized[c.lastFinalized].StateRoot,
		PrevBatchHash:           c.batchHashes[c.lastFinalized],
		PostStateRoot:           postStateRoot,
		BatchHash:               header.Hash(),
		WithdrawRoot:            withdrawRoot,
	}, nil
}

// rollingHashAt returns the queue rolling hash after total messages have
// been consumed, or the zero hash when none have.
func (c *Chain) rollingHashAt(total uint64) (common.Hash, error) {
	if total == 0 {
		return common.Hash{}, nil
	}
	rollingHash, err := c.queue.MessageRollingHash(total - 1)
	if err != nil {
		return common.Hash{}, ErrNotEnoughQueuedMessages
	}
	return rollingHash, nil
}

func (c *Chain) verifyProof(ctx context.Context, proof []byte, input verifier.PublicInput) error {
	started := time.Now()
	err := c.proofs.Verify(ctx, proof, input)
	if c.metrics != nil {
		c.metrics.ProofVerification.Observe(time.Since(started).Seconds())
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProofVerificationFailed, err)
	}
	return nil
}

// finalize applies a fully validated finalize: the queue cursor moves
// first because it is the only remaining fallible step, then the local
// cursors and records. Caller holds the lock.
func (c *Chain) finalize(call ledger.Call, header codec.Header, total uint64, postStateRoot, withdrawRoot common.Hash) error {
	queueCall := ledger.Call{Caller: c.cfg.Self, Origin: call.Origin, Time: call.Time, Number: call.Number}
	if err := c.queue.FinalizePoppedMessages(queueCall, total); err != nil {
		return err
	}

	index := header.BatchIndex()
	finalizedBatches := index - c.lastFinalized
	c.finalized[index] = FinalizedState{StateRoot: postStateRoot, WithdrawRoot: withdrawRoot}
	c.lastFinalized = index
	c.lastFinalizeTime = call.Time

	c.log.Info().
		Uint64("batch_index", index).
		Uint64("batches_in_bundle", finalizedBatches).
		Uint64("total_l1_messages_popped", total).
		Str("state_root", postStateRoot.Hex()).
		Str("withdraw_root", withdrawRoot.Hex()).
		Msg("Bundle finalized")

	if c.metrics != nil {
		c.metrics.BatchesFinalized.Add(float64(finalizedBatches))
		c.metrics.FinalizedIndex.Set(float64(index))
	}
	if c.emitter != nil {
		c.emitter.Emit(events.BatchFinalized{
			BatchIndex:   index,
			BatchHash:    header.Hash(),
			StateRoot:    postStateRoot,
			WithdrawRoot: withdrawRoot,
		})
	}
	return nil
}

// storeBatch records a committed batch hash and advances the tip. Caller
// holds the lock.
func (c *Chain) storeBatch(index uint64, hash common.Hash, version uint8, committed int) {
	c.batchHashes[index] = hash
	c.lastCommitted = index

	if c.metrics != nil {
		c.metrics.BatchesCommitted.Add(float64(committed))
		c.metrics.CommittedIndex.Set(float64(index))
	}
	if c.emitter != nil {
		c.emitter.Emit(events.BatchCommitted{BatchIndex: index, BatchHash: hash, Version: version})
	}
}

// enforcedModeTriggered checks the two liveness thresholds. Caller holds
// the lock.
func (c *Chain) enforcedModeTriggered(now uint64) bool {
	if !c.genesisImported {
		return false
	}
	maxDelayEnter, maxDelayQueue := c.sys.EnforcedModeDelays()

	if oldest, ok := c.queue.OldestUnfinalizedTimestamp(); ok && now > oldest+maxDelayQueue {
		return true
	}
	return now > c.lastFinalizeTime+maxDelayEnter
}

// enterEnforcedMode rewinds the committed tip to the finalized cursor and
// raises the mode flag. Caller holds the lock.
func (c *Chain) enterEnforcedMode() {
	if c.lastCommitted > c.lastFinalized {
		start, finish := c.lastFinalized+1, c.lastCommitted
		c.rewindCommitted(c.lastFinalized)
		if c.metrics != nil {
			c.metrics.BatchesReverted.Add(float64(finish - start + 1))
		}
		if c.emitter != nil {
			c.emitter.Emit(events.BatchesReverted{StartIndex: start, FinishIndex: finish})
		}
	}
	c.enforcedMode = true

	c.log.Warn().
		Uint64("last_finalized_batch_index", c.lastFinalized).
		Msg("Enforced batch mode entered")

	if c.metrics != nil {
		c.metrics.EnforcedMode.Set(1)
	}
	if c.emitter != nil {
		c.emitter.Emit(events.EnforcedModeToggled{Enabled: true})
	}
}

// rewindCommitted erases the sparse hash tail above the target and moves
// the tip down. Caller holds the lock.
func (c *Chain) rewindCommitted(target uint64) {
	for i := target + 1; i <= c.lastCommitted; i++ {
		delete(c.batchHashes, i)
	}
	c.lastCommitted = target
	if c.metrics != nil {
		c.metrics.CommittedIndex.Set(float64(target))
	}
}

func (c *Chain) updateRole(call ledger.Call, account common.Address, set map[common.Address]struct{}, add bool, role string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if call.Caller != c.cfg.Owner {
		return ErrUnauthorized
	}
	if add {
		if c.oracle.HasCode(account) {
			return ErrAccountIsNotEOA
		}
		set[account] = struct{}{}
	} else {
		delete(set, account)
	}

	c.log.Info().
		Str("account", account.Hex()).
		Str("role", role).
		Bool("added", add).
		Msg("Allow-list updated")

	if c.emitter != nil {
		switch role {
		case "sequencer":
			c.emitter.Emit(events.SequencerUpdated{Account: account, Added: add})
		case "prover":
			c.emitter.Emit(events.ProverUpdated{Account: account, Added: add})
		}
	}
	return nil
}

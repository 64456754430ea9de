// Package queue implements the L1->L2 message queue: an append-only ledger
// of cross-domain messages and enforced transactions with a rolling keccak
// hash chain. The chain makes any reordering or omission of a message
// detectable from the final hash alone, so a whole suffix is verifiable
// with a single comparison instead of a Merkle proof per message.
package queue

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/zenith-rollup/settlement/x/events"
	"github.com/zenith-rollup/settlement/x/ledger"
	"github.com/zenith-rollup/settlement/x/sysconfig"
)

// Entry is the per-index record: the rolling hash up to and including the
// message, and the enqueue timestamp driving the enforced-mode trigger.
type Entry struct {
	RollingHash common.Hash
	Timestamp   uint64
}

// Capabilities names the accounts allowed through each restricted entry
// point.
type Capabilities struct {
	Messenger common.Address
	Gateway   common.Address
	Rollup    common.Address
}

// MessageQueue sequences all L1->L2 messages.
type MessageQueue struct {
	mu      sync.Mutex
	log     zerolog.Logger
	cfg     *sysconfig.SystemConfig
	emitter *events.Emitter
	metrics *Metrics
	caps    Capabilities

	nextIndex       uint64
	nextUnfinalized uint64
	entries         map[uint64]Entry
}

// New returns an empty queue bound to its collaborators. metrics may be nil.
func New(
	log zerolog.Logger,
	cfg *sysconfig.SystemConfig,
	emitter *events.Emitter,
	caps Capabilities,
	metrics *Metrics,
) *MessageQueue {
	return &MessageQueue{
		log:     log.With().Str("component", "message-queue").Logger(),
		cfg:     cfg,
		emitter: emitter,
		metrics: metrics,
		caps:    caps,
		entries: make(map[uint64]Entry),
	}
}

// AppendCrossDomainMessage enqueues a message sent through the messenger.
// The messenger is a contract, so its address is alias-transformed before
// it becomes the L2 sender. Returns the assigned queue index.
func (q *MessageQueue) AppendCrossDomainMessage(
	call ledger.Call,
	target common.Address,
	gasLimit uint64,
	data []byte,
) (uint64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if call.Caller != q.caps.Messenger {
		return 0, ErrCallerNotMessenger
	}
	if err := q.validateGasLimit(gasLimit, data); err != nil {
		return 0, err
	}

	sender := ledger.ApplyL1ToL2Alias(call.Caller)
	return q.enqueue(call, sender, target, uint256.NewInt(0), gasLimit, data), nil
}

// AppendEnforcedTransaction enqueues a transaction forced in through the
// gateway. The sender is used as-is: the gateway has already applied the
// alias transform where one is due.
func (q *MessageQueue) AppendEnforcedTransaction(
	call ledger.Call,
	sender common.Address,
	target common.Address,
	value *uint256.Int,
	gasLimit uint64,
	data []byte,
) (uint64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if call.Caller != q.caps.Gateway {
		return 0, ErrCallerNotGateway
	}
	if err := q.validateGasLimit(gasLimit, data); err != nil {
		return 0, err
	}
	if value == nil {
		value = uint256.NewInt(0)
	}

	return q.enqueue(call, sender, target, value, gasLimit, data), nil
}

// FinalizePoppedMessages advances the finalize cursor to newNextIndex.
// Calling with the current cursor value is an idempotent no-op.
func (q *MessageQueue) FinalizePoppedMessages(call ledger.Call, newNextIndex uint64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if call.Caller != q.caps.Rollup {
		return ErrCallerNotRollup
	}
	if newNextIndex < q.nextUnfinalized {
		return ErrFinalizedIndexTooSmall
	}
	if newNextIndex > q.nextIndex {
		return ErrFinalizedIndexTooLarge
	}
	if newNextIndex == q.nextUnfinalized {
		return nil
	}

	from := q.nextUnfinalized
	q.nextUnfinalized = newNextIndex

	q.log.Info().
		Uint64("from_index", from).
		Uint64("to_index", newNextIndex).
		Msg("Queue messages finalized")

	if q.metrics != nil {
		q.metrics.FinalizedTotal.Add(float64(newNextIndex - from))
		q.metrics.PendingMessages.Set(float64(q.nextIndex - q.nextUnfinalized))
	}
	if q.emitter != nil {
		q.emitter.Emit(events.MessagesFinalized{FromIndex: from, ToIndex: newNextIndex})
	}
	return nil
}

// EstimateCrossDomainMessageFee prices a message: gasLimit times the L2
// base fee derived from the current L1 base fee.
func (q *MessageQueue) EstimateCrossDomainMessageFee(l1BaseFee *uint256.Int, gasLimit uint64) *uint256.Int {
	fee := q.cfg.L2BaseFee(l1BaseFee)
	return fee.Mul(fee, uint256.NewInt(gasLimit))
}

// MessageRollingHash returns the rolling hash stored at a queue index.
func (q *MessageQueue) MessageRollingHash(index uint64) (common.Hash, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.entries[index]
	if !ok {
		return common.Hash{}, ErrUnknownQueueIndex
	}
	return entry.RollingHash, nil
}

// MessageEnqueueTimestamp returns the enqueue timestamp of a queue index.
func (q *MessageQueue) MessageEnqueueTimestamp(index uint64) (uint64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.entries[index]
	if !ok {
		return 0, ErrUnknownQueueIndex
	}
	return entry.Timestamp, nil
}

// NextQueueIndex returns the index the next appended message will take.
func (q *MessageQueue) NextQueueIndex() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.nextIndex
}

// NextUnfinalizedIndex returns the first queue index not yet finalized.
func (q *MessageQueue) NextUnfinalizedIndex() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.nextUnfinalized
}

// PendingCount returns the number of appended but unfinalized messages.
func (q *MessageQueue) PendingCount() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.nextIndex - q.nextUnfinalized
}

// OldestUnfinalizedTimestamp returns the enqueue timestamp of the oldest
// unfinalized message. The second return is false when nothing is pending.
func (q *MessageQueue) OldestUnfinalizedTimestamp() (uint64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.nextUnfinalized == q.nextIndex {
		return 0, false
	}
	entry, ok := q.entries[q.nextUnfinalized]
	if !ok {
		return 0, false
	}
	return entry.Timestamp, true
}

// ValidateGasLimit is the stateless pre-flight form of the append-time gas
// check, for callers that must charge fees before appending.
func (q *MessageQueue) ValidateGasLimit(gasLimit uint64, data []byte) error {
	return q.validateGasLimit(gasLimit, data)
}

func (q *MessageQueue) validateGasLimit(gasLimit uint64, data []byte) error {
	if gasLimit > q.cfg.MaxGasLimit() {
		return ErrGasLimitExceeded
	}
	if gasLimit < IntrinsicGas(data) {
		return ErrGasLimitBelowIntrinsic
	}
	return nil
}

// enqueue appends the message under the lock. Validation has already
// passed; from here the operation cannot fail.
func (q *MessageQueue) enqueue(
	call ledger.Call,
	sender common.Address,
	target common.Address,
	value *uint256.Int,
	gasLimit uint64,
	data []byte,
) uint64 {
	index := q.nextIndex
	txHash := ComputeTransactionHash(sender, index, value, target, gasLimit, data)

	var prev common.Hash
	if index > 0 {
		prev = q.entries[index-1].RollingHash
	}
	rolling := RollingLink(prev, txHash)

	q.entries[index] = Entry{RollingHash: rolling, Timestamp: call.Time}
	q.nextIndex++

	q.log.Info().
		Uint64("queue_index", index).
		Str("sender", sender.Hex()).
		Str("target", target.Hex()).
		Uint64("gas_limit", gasLimit).
		Str("tx_hash", txHash.Hex()).
		Str("rolling_hash", rolling.Hex()).
		Msg("Message enqueued")

	if q.metrics != nil {
		q.metrics.MessagesTotal.Inc()
		q.metrics.PendingMessages.Set(float64(q.nextIndex - q.nextUnfinalized))
	}
	if q.emitter != nil {
		q.emitter.Emit(events.MessageQueued{
			QueueIndex:  index,
			Sender:      sender,
			Target:      target,
			Value:       new(uint256.Int).Set(value),
			GasLimit:    gasLimit,
			Data:        append([]byte(nil), data...),
			TxHash:      txHash,
			RollingHash: rolling,
			Timestamp:   call.Time,
		})
	}
	return index
}

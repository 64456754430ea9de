package queue

import (
	"io"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/zenith-rollup/settlement/x/ledger"
	"github.com/zenith-rollup/settlement/x/sysconfig"
)

var (
	owner     = common.HexToAddress("0x00000000000000000000000000000000000000ee")
	messenger = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	gateway   = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	rollup    = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	target    = common.HexToAddress("0x00000000000000000000000000000000000000dd")
	sender    = common.HexToAddress("0x00000000000000000000000000000000000000aa")
)

func newQueue(t *testing.T) *MessageQueue {
	t.Helper()
	cfg, err := sysconfig.New(zerolog.New(io.Discard), nil, owner, sysconfig.Params{
		MaxGasLimit:               1_000_000,
		BaseFeeOverhead:           uint256.NewInt(100),
		BaseFeeScalar:             uint256.NewInt(2e18),
		MaxDelayEnterEnforcedMode: 3600,
		MaxDelayMessageQueue:      3600,
	})
	require.NoError(t, err)
	return New(zerolog.New(io.Discard), cfg, nil, Capabilities{
		Messenger: messenger,
		Gateway:   gateway,
		Rollup:    rollup,
	}, nil)
}

func messengerCall(at uint64) ledger.Call {
	return ledger.Call{Caller: messenger, Origin: sender, Time: at}
}

func TestAppendCrossDomainMessage(t *testing.T) {
	q := newQueue(t)

	idx, err := q.AppendCrossDomainMessage(messengerCall(1000), target, 50_000, []byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, uint64(0), idx)
	require.Equal(t, uint64(1), q.NextQueueIndex())
	require.Equal(t, uint64(0), q.NextUnfinalizedIndex())

	ts, err := q.MessageEnqueueTimestamp(0)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), ts)

	idx, err = q.AppendCrossDomainMessage(messengerCall(1001), target, 50_000, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(1), idx)
	require.Equal(t, uint64(2), q.PendingCount())
}

func TestAppendRequiresMessenger(t *testing.T) {
	q := newQueue(t)

	_, err := q.AppendCrossDomainMessage(ledger.Call{Caller: sender}, target, 50_000, nil)
	require.ErrorIs(t, err, ErrCallerNotMessenger)

	_, err = q.AppendEnforcedTransaction(ledger.Call{Caller: sender}, sender, target, nil, 50_000, nil)
	require.ErrorIs(t, err, ErrCallerNotGateway)
}

func TestGasValidationBoundaries(t *testing.T) {
	q := newQueue(t)
	data := []byte{0xde, 0xad, 0xbe, 0xef}
	intrinsic := IntrinsicGas(data)
	require.Equal(t, uint64(21000+16*4), intrinsic)

	_, err := q.AppendCrossDomainMessage(messengerCall(1), target, intrinsic-1, data)
	require.ErrorIs(t, err, ErrGasLimitBelowIntrinsic)

	_, err = q.AppendCrossDomainMessage(messengerCall(1), target, 1_000_001, data)
	require.ErrorIs(t, err, ErrGasLimitExceeded)

	// Both boundaries are inclusive.
	_, err = q.AppendCrossDomainMessage(messengerCall(1), target, intrinsic, data)
	require.NoError(t, err)
	_, err = q.AppendCrossDomainMessage(messengerCall(1), target, 1_000_000, data)
	require.NoError(t, err)

	// Failed appends must not have consumed indices.
	require.Equal(t, uint64(2), q.NextQueueIndex())
}

func TestRollingHashDeterminism(t *testing.T) {
	build := func() common.Hash {
		q := newQueue(t)
		_, err := q.AppendCrossDomainMessage(messengerCall(1), target, 30_000, []byte("one"))
		require.NoError(t, err)
		_, err = q.AppendEnforcedTransaction(
			ledger.Call{Caller: gateway, Time: 2}, sender, target, uint256.NewInt(7), 40_000, []byte("two"))
		require.NoError(t, err)
		h, err := q.MessageRollingHash(1)
		require.NoError(t, err)
		return h
	}

	first := build()
	second := build()
	require.Equal(t, first, second)
	require.NotEqual(t, common.Hash{}, first)
}

func TestRollingHashChains(t *testing.T) {
	q := newQueue(t)

	_, err := q.AppendCrossDomainMessage(messengerCall(1), target, 30_000, []byte("a"))
	require.NoError(t, err)
	h0, err := q.MessageRollingHash(0)
	require.NoError(t, err)

	_, err = q.AppendCrossDomainMessage(messengerCall(2), target, 30_000, []byte("a"))
	require.NoError(t, err)
	h1, err := q.MessageRollingHash(1)
	require.NoError(t, err)

	// Same payload at a different index must produce a different link.
	require.NotEqual(t, h0, h1)

	_, err = q.MessageRollingHash(2)
	require.ErrorIs(t, err, ErrUnknownQueueIndex)
}

func TestFinalizePoppedMessages(t *testing.T) {
	q := newQueue(t)
	for i := 0; i < 6; i++ {
		_, err := q.AppendCrossDomainMessage(messengerCall(uint64(i)), target, 30_000, nil)
		require.NoError(t, err)
	}

	require.ErrorIs(t, q.FinalizePoppedMessages(ledger.Call{Caller: sender}, 5), ErrCallerNotRollup)

	rollupCall := ledger.Call{Caller: rollup}
	require.NoError(t, q.FinalizePoppedMessages(rollupCall, 5))
	require.Equal(t, uint64(5), q.NextUnfinalizedIndex())
	require.Equal(t, uint64(1), q.PendingCount())

	// Idempotent second call with the same value.
	require.NoError(t, q.FinalizePoppedMessages(rollupCall, 5))
	require.Equal(t, uint64(5), q.NextUnfinalizedIndex())

	require.ErrorIs(t, q.FinalizePoppedMessages(rollupCall, 4), ErrFinalizedIndexTooSmall)
	require.ErrorIs(t, q.FinalizePoppedMessages(rollupCall, 7), ErrFinalizedIndexTooLarge)
}

func TestOldestUnfinalizedTimestamp(t *testing.T) {
	q := newQueue(t)

	_, ok := q.OldestUnfinalizedTimestamp()
	require.False(t, ok)

	_, err := q.AppendCrossDomainMessage(messengerCall(111), target, 30_000, nil)
	require.NoError(t, err)
	_, err = q.AppendCrossDomainMessage(messengerCall(222), target, 30_000, nil)
	require.NoError(t, err)

	ts, ok := q.OldestUnfinalizedTimestamp()
	require.True(t, ok)
	require.Equal(t, uint64(111), ts)

	require.NoError(t, q.FinalizePoppedMessages(ledger.Call{Caller: rollup}, 1))
	ts, ok = q.OldestUnfinalizedTimestamp()
	require.True(t, ok)
	require.Equal(t, uint64(222), ts)
}

func TestEstimateCrossDomainMessageFee(t *testing.T) {
	q := newQueue(t)

	// l2BaseFee = 10*2 + 100 = 120; fee = 120 * 1000
	fee := q.EstimateCrossDomainMessageFee(uint256.NewInt(10), 1000)
	require.Equal(t, uint256.NewInt(120_000), fee)
}

func TestComputeTransactionHashSensitivity(t *testing.T) {
	base := ComputeTransactionHash(sender, 0, uint256.NewInt(1), target, 30_000, []byte("x"))

	require.NotEqual(t, base, ComputeTransactionHash(sender, 1, uint256.NewInt(1), target, 30_000, []byte("x")))
	require.NotEqual(t, base, ComputeTransactionHash(sender, 0, uint256.NewInt(2), target, 30_000, []byte("x")))
	require.NotEqual(t, base, ComputeTransactionHash(sender, 0, uint256.NewInt(1), target, 30_001, []byte("x")))
	require.NotEqual(t, base, ComputeTransactionHash(sender, 0, uint256.NewInt(1), target, 30_000, []byte("y")))
	require.Equal(t, base, ComputeTransactionHash(sender, 0, uint256.NewInt(1), target, 30_000, []byte("x")))
}

func TestAliasedSender(t *testing.T) {
	q := newQueue(t)

	_, err := q.AppendCrossDomainMessage(messengerCall(1), target, 30_000, nil)
	require.NoError(t, err)

	// The rolling hash must commit to the aliased messenger address, not
	// the raw one.
	aliased := ledger.ApplyL1ToL2Alias(messenger)
	want := ComputeTransactionHash(aliased, 0, uint256.NewInt(0), target, 30_000, nil)
	var zero common.Hash
	got, err := q.MessageRollingHash(0)
	require.NoError(t, err)
	require.Equal(t, RollingLink(zero, want), got)
}

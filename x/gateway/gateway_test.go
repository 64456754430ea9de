package gateway

import (
	"crypto/ecdsa"
	"io"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/zenith-rollup/settlement/x/bank"
	"github.com/zenith-rollup/settlement/x/ledger"
	"github.com/zenith-rollup/settlement/x/queue"
	"github.com/zenith-rollup/settlement/x/sysconfig"
)

var (
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000ee")
	self     = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	feeVault = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	target   = common.HexToAddress("0x00000000000000000000000000000000000000dd")
	caller   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	refundee = common.HexToAddress("0x00000000000000000000000000000000000000ab")
)

type fixture struct {
	gw     *Gateway
	queue  *queue.MessageQueue
	ledger *bank.Memory
}

func newFixture(t *testing.T, code ledger.CodeOracle) *fixture {
	t.Helper()

	cfg, err := sysconfig.New(zerolog.New(io.Discard), nil, owner, sysconfig.Params{
		MaxGasLimit:               1_000_000,
		BaseFeeOverhead:           uint256.NewInt(10),
		BaseFeeScalar:             uint256.NewInt(1e18),
		MaxDelayEnterEnforcedMode: 3600,
		MaxDelayMessageQueue:      3600,
	})
	require.NoError(t, err)

	q := queue.New(zerolog.New(io.Discard), cfg, nil, queue.Capabilities{Gateway: self}, nil)
	l := bank.NewMemory()
	gw := New(zerolog.New(io.Discard), Config{
		Self:     self,
		Owner:    owner,
		FeeVault: feeVault,
		ChainID:  534352,
	}, q, l, code, nil)

	return &fixture{gw: gw, queue: q, ledger: l}
}

// feeFor prices gasLimit at a zero L1 base fee: overhead (10) per gas.
func feeFor(gasLimit uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(10), uint256.NewInt(gasLimit))
}

func TestSendTransaction(t *testing.T) {
	f := newFixture(t, nil)
	fee := feeFor(30_000)
	attached := new(uint256.Int).Add(fee, uint256.NewInt(500))
	f.ledger.Mint(caller, attached)

	idx, err := f.gw.SendTransaction(
		ledger.Call{Caller: caller, Origin: caller, Value: attached, Time: 100},
		target, uint256.NewInt(0), 30_000, nil, refundee,
	)
	require.NoError(t, err)
	require.Equal(t, uint64(0), idx)
	require.Equal(t, uint64(1), f.queue.NextQueueIndex())

	require.Equal(t, fee, f.ledger.BalanceOf(feeVault))
	require.Equal(t, uint256.NewInt(500), f.ledger.BalanceOf(refundee))
	require.True(t, f.ledger.BalanceOf(caller).IsZero())
	require.True(t, f.ledger.BalanceOf(self).IsZero())
}

func TestSendTransactionInsufficientFee(t *testing.T) {
	f := newFixture(t, nil)
	fee := feeFor(30_000)
	short := new(uint256.Int).Sub(fee, uint256.NewInt(1))
	f.ledger.Mint(caller, short)

	_, err := f.gw.SendTransaction(
		ledger.Call{Caller: caller, Origin: caller, Value: short, Time: 100},
		target, nil, 30_000, nil, refundee,
	)
	require.ErrorIs(t, err, ErrInsufficientFee)
	require.Equal(t, uint64(0), f.queue.NextQueueIndex())
	require.Equal(t, short, f.ledger.BalanceOf(caller))
}

func TestSendTransactionUnbackedValue(t *testing.T) {
	f := newFixture(t, nil)
	fee := feeFor(30_000)

	// Claims to attach the fee but holds no balance.
	_, err := f.gw.SendTransaction(
		ledger.Call{Caller: caller, Origin: caller, Value: fee, Time: 100},
		target, nil, 30_000, nil, refundee,
	)
	require.ErrorIs(t, err, ErrInsufficientFee)
	require.Equal(t, uint64(0), f.queue.NextQueueIndex())
}

func TestSendTransactionGasValidationBeforeTransfers(t *testing.T) {
	f := newFixture(t, nil)
	f.ledger.Mint(caller, uint256.NewInt(1e18))

	_, err := f.gw.SendTransaction(
		ledger.Call{Caller: caller, Origin: caller, Value: uint256.NewInt(1e18), Time: 100},
		target, nil, 20_000, nil, refundee,
	)
	require.ErrorIs(t, err, queue.ErrGasLimitBelowIntrinsic)
	require.Equal(t, uint256.NewInt(1e18), f.ledger.BalanceOf(caller))
	require.True(t, f.ledger.BalanceOf(feeVault).IsZero())
}

func TestSendTransactionAliasesContractCaller(t *testing.T) {
	contract := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	oracle := ledger.CodeOracleFunc(func(a common.Address) bool { return a == contract })
	f := newFixture(t, oracle)

	fee := feeFor(30_000)
	f.ledger.Mint(contract, fee)

	_, err := f.gw.SendTransaction(
		ledger.Call{Caller: contract, Origin: caller, Value: fee, Time: 100},
		target, nil, 30_000, nil, refundee,
	)
	require.NoError(t, err)

	// The queued message commits to the aliased sender.
	aliased := ledger.ApplyL1ToL2Alias(contract)
	want := queue.RollingLink(common.Hash{},
		queue.ComputeTransactionHash(aliased, 0, uint256.NewInt(0), target, 30_000, nil))
	got, err := f.queue.MessageRollingHash(0)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestPauseDisablesBothEntryPoints(t *testing.T) {
	f := newFixture(t, nil)
	require.ErrorIs(t, f.gw.SetPause(ledger.Call{Caller: caller}, true), ErrUnauthorized)
	require.NoError(t, f.gw.SetPause(ledger.Call{Caller: owner}, true))
	require.True(t, f.gw.Paused())

	_, err := f.gw.SendTransaction(ledger.Call{Caller: caller}, target, nil, 30_000, nil, refundee)
	require.ErrorIs(t, err, ErrGatewayPaused)

	_, err = f.gw.SendTransactionWithSignature(
		ledger.Call{Caller: caller}, caller, target, nil, 30_000, nil, 10, make([]byte, 65), refundee)
	require.ErrorIs(t, err, ErrGatewayPaused)

	require.NoError(t, f.gw.SetPause(ledger.Call{Caller: owner}, false))
	require.False(t, f.gw.Paused())
}

func signEnforcedTx(
	t *testing.T,
	gw *Gateway,
	key *ecdsa.PrivateKey,
	sender, txTarget common.Address,
	value *uint256.Int,
	gasLimit uint64,
	data []byte,
	nonce, deadline uint64,
) []byte {
	t.Helper()
	digest := enforcedTxDigest(gw.DomainSeparator(), sender, txTarget, value, gasLimit, data, nonce, deadline)
	sig, err := crypto.Sign(digest.Bytes(), key)
	require.NoError(t, err)
	return sig
}

func TestSendTransactionWithSignature(t *testing.T) {
	f := newFixture(t, nil)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sender := crypto.PubkeyToAddress(key.PublicKey)

	fee := feeFor(30_000)
	f.ledger.Mint(caller, fee)

	sig := signEnforcedTx(t, f.gw, key, sender, target, uint256.NewInt(3), 30_000, []byte("fwd"), 0, 1000)

	idx, err := f.gw.SendTransactionWithSignature(
		ledger.Call{Caller: caller, Origin: caller, Value: fee, Time: 999},
		sender, target, uint256.NewInt(3), 30_000, []byte("fwd"), 1000, sig, refundee,
	)
	require.NoError(t, err)
	require.Equal(t, uint64(0), idx)
	require.Equal(t, uint64(1), f.gw.Nonce(sender))

	// Replaying the same signature fails: the nonce it commits to is spent.
	f.ledger.Mint(caller, fee)
	_, err = f.gw.SendTransactionWithSignature(
		ledger.Call{Caller: caller, Origin: caller, Value: fee, Time: 999},
		sender, target, uint256.NewInt(3), 30_000, []byte("fwd"), 1000, sig, refundee,
	)
	require.ErrorIs(t, err, ErrSignerMismatch)
}

func TestSendTransactionWithSignatureExpired(t *testing.T) {
	f := newFixture(t, nil)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sender := crypto.PubkeyToAddress(key.PublicKey)

	fee := feeFor(30_000)
	f.ledger.Mint(caller, new(uint256.Int).Mul(fee, uint256.NewInt(2)))

	sig := signEnforcedTx(t, f.gw, key, sender, target, nil, 30_000, nil, 0, 500)

	_, err = f.gw.SendTransactionWithSignature(
		ledger.Call{Caller: caller, Origin: caller, Value: fee, Time: 501},
		sender, target, nil, 30_000, nil, 500, sig, refundee,
	)
	require.ErrorIs(t, err, ErrSignatureExpired)
	require.Equal(t, uint64(0), f.gw.Nonce(sender))

	// Resubmission with a corrected future deadline and matching signature
	// succeeds.
	sig = signEnforcedTx(t, f.gw, key, sender, target, nil, 30_000, nil, 0, 600)
	_, err = f.gw.SendTransactionWithSignature(
		ledger.Call{Caller: caller, Origin: caller, Value: fee, Time: 501},
		sender, target, nil, 30_000, nil, 600, sig, refundee,
	)
	require.NoError(t, err)
	require.Equal(t, uint64(1), f.gw.Nonce(sender))
}

func TestSendTransactionWithSignatureWrongSigner(t *testing.T) {
	f := newFixture(t, nil)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	sender := crypto.PubkeyToAddress(key.PublicKey)

	fee := feeFor(30_000)
	f.ledger.Mint(caller, fee)

	sig := signEnforcedTx(t, f.gw, otherKey, sender, target, nil, 30_000, nil, 0, 1000)
	_, err = f.gw.SendTransactionWithSignature(
		ledger.Call{Caller: caller, Origin: caller, Value: fee, Time: 100},
		sender, target, nil, 30_000, nil, 1000, sig, refundee,
	)
	require.ErrorIs(t, err, ErrSignerMismatch)

	_, err = f.gw.SendTransactionWithSignature(
		ledger.Call{Caller: caller, Origin: caller, Value: fee, Time: 100},
		sender, target, nil, 30_000, nil, 1000, []byte{1, 2, 3}, refundee,
	)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

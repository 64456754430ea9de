// Package gateway implements the enforced-transaction gateway: the
// fee-gated entry point that lets any account force a transaction into the
// message queue, bypassing the sequencer. It is the rollup's
// censorship-resistance escape hatch.
package gateway

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/zenith-rollup/settlement/x/bank"
	"github.com/zenith-rollup/settlement/x/events"
	"github.com/zenith-rollup/settlement/x/ledger"
	"github.com/zenith-rollup/settlement/x/queue"
)

// Config wires the gateway to its collaborators and identity.
type Config struct {
	// Self is the gateway's own account: the capability address the
	// queue recognizes, the escrow for in-flight value, and the
	// verifying address of the signature domain.
	Self common.Address

	// Owner may pause/unpause the gateway.
	Owner common.Address

	// FeeVault receives enforced-transaction fees.
	FeeVault common.Address

	// ChainID binds delegated signatures to one deployment.
	ChainID uint64
}

// Gateway is the enforced-transaction entry point.
type Gateway struct {
	mu      sync.Mutex
	log     zerolog.Logger
	cfg     Config
	queue   *queue.MessageQueue
	ledger  bank.Ledger
	code    ledger.CodeOracle
	emitter *events.Emitter
	domain  common.Hash

	paused  bool
	entered bool
	nonces  map[common.Address]uint64
}

// New returns a gateway. The code oracle decides which callers are
// contracts and therefore get alias-transformed senders.
func New(
	log zerolog.Logger,
	cfg Config,
	q *queue.MessageQueue,
	l bank.Ledger,
	code ledger.CodeOracle,
	emitter *events.Emitter,
) *Gateway {
	if code == nil {
		code = ledger.NoCode
	}
	return &Gateway{
		log:     log.With().Str("component", "enforced-tx-gateway").Logger(),
		cfg:     cfg,
		queue:   q,
		ledger:  l,
		code:    code,
		emitter: emitter,
		domain:  domainSeparator(cfg.ChainID, cfg.Self),
		nonces:  make(map[common.Address]uint64),
	}
}

// SendTransaction enqueues an enforced transaction on behalf of the caller.
// Contract callers are alias-transformed into the L2 address space;
// externally-owned callers pass through unchanged.
func (g *Gateway) SendTransaction(
	call ledger.Call,
	target common.Address,
	value *uint256.Int,
	gasLimit uint64,
	data []byte,
	refundAddr common.Address,
) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	release, err := g.enter()
	if err != nil {
		return 0, err
	}
	defer release()

	sender := call.Caller
	if g.code.HasCode(call.Caller) {
		sender = ledger.ApplyL1ToL2Alias(call.Caller)
	}

	return g.chargeAndAppend(call, sender, target, value, gasLimit, data, refundAddr)
}

// SendTransactionWithSignature enqueues an enforced transaction on behalf
// of sender, authorized by sender's signature over the domain-separated
// transaction digest. Each signature is single-use: the sender nonce it
// commits to is consumed on success.
func (g *Gateway) SendTransactionWithSignature(
	call ledger.Call,
	sender common.Address,
	target common.Address,
	value *uint256.Int,
	gasLimit uint64,
	data []byte,
	deadline uint64,
	sig []byte,
	refundAddr common.Address,
) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	release, err := g.enter()
	if err != nil {
		return 0, err
	}
	defer release()

	if call.Time > deadline {
		return 0, ErrSignatureExpired
	}

	nonce := g.nonces[sender]
	digest := enforcedTxDigest(g.domain, sender, target, value, gasLimit, data, nonce, deadline)
	signer, err := recoverSigner(digest, sig)
	if err != nil {
		return 0, err
	}
	if signer != sender {
		return 0, ErrSignerMismatch
	}

	index, err := g.chargeAndAppend(call, sender, target, value, gasLimit, data, refundAddr)
	if err != nil {
		return 0, err
	}

	g.nonces[sender] = nonce + 1
	return index, nil
}

// Nonce returns the next unused signature nonce for a sender.
func (g *Gateway) Nonce(sender common.Address) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nonces[sender]
}

// Paused reports whether the gateway is disabled.
func (g *Gateway) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// SetPause toggles the pause switch. Owner only.
func (g *Gateway) SetPause(call ledger.Call, paused bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if call.Caller != g.cfg.Owner {
		return ErrUnauthorized
	}
	if g.paused == paused {
		return nil
	}
	g.paused = paused

	g.log.Info().Bool("paused", paused).Msg("Gateway pause toggled")
	if g.emitter != nil {
		g.emitter.Emit(events.GatewayPauseToggled{Paused: paused})
	}
	return nil
}

// DomainSeparator exposes the signature domain so off-process senders can
// construct digests.
func (g *Gateway) DomainSeparator() common.Hash {
	return g.domain
}

// enter takes the reentrancy guard; the returned release must run on every
// exit path.
func (g *Gateway) enter() (func(), error) {
	if g.entered {
		return nil, ErrReentrantCall
	}
	if g.paused {
		return nil, ErrGatewayPaused
	}
	g.entered = true
	return func() { g.entered = false }, nil
}

// chargeAndAppend runs the shared tail of both entry points: price the
// message, escrow the attached value, forward the fee, enqueue, refund the
// excess. Validation precedes every transfer so a typed failure leaves no
// balance moved.
func (g *Gateway) chargeAndAppend(
	call ledger.Call,
	sender common.Address,
	target common.Address,
	value *uint256.Int,
	gasLimit uint64,
	data []byte,
	refundAddr common.Address,
) (uint64, error) {
	if err := g.queue.ValidateGasLimit(gasLimit, data); err != nil {
		return 0, err
	}

	fee := g.queue.EstimateCrossDomainMessageFee(call.BaseFee(), gasLimit)
	attached := call.AttachedValue()
	if attached.Lt(fee) {
		return 0, ErrInsufficientFee
	}

	// Escrow the attached value before any outbound transfer.
	if err := g.ledger.Transfer(call.Caller, g.cfg.Self, attached); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInsufficientFee, err)
	}
	if err := g.ledger.Transfer(g.cfg.Self, g.cfg.FeeVault, fee); err != nil {
		// Return the escrow; the operation must not hold funds on failure.
		g.mustRefundEscrow(call.Caller, attached)
		return 0, fmt.Errorf("%w: %w", ErrFeeTransferFailed, err)
	}

	index, err := g.queue.AppendEnforcedTransaction(
		ledger.Call{Caller: g.cfg.Self, Origin: call.Origin, Time: call.Time, Number: call.Number},
		sender, target, value, gasLimit, data,
	)
	if err != nil {
		// Unwind: fee back out of the vault, remainder out of escrow.
		_ = g.ledger.Transfer(g.cfg.FeeVault, call.Caller, fee)
		g.mustRefundEscrow(call.Caller, new(uint256.Int).Sub(attached, fee))
		return 0, err
	}

	excess := new(uint256.Int).Sub(attached, fee)
	if !excess.IsZero() {
		if refundAddr == (common.Address{}) {
			refundAddr = call.Caller
		}
		if err := g.ledger.Transfer(g.cfg.Self, refundAddr, excess); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrRefundFailed, err)
		}
	}

	g.log.Info().
		Uint64("queue_index", index).
		Str("sender", sender.Hex()).
		Str("target", target.Hex()).
		Uint64("gas_limit", gasLimit).
		Str("fee", fee.String()).
		Msg("Enforced transaction accepted")

	return index, nil
}

// mustRefundEscrow undoes an escrow movement during failure cleanup. The
// gateway account always holds the funds being returned, so a failure here
// is unreachable.
func (g *Gateway) mustRefundEscrow(to common.Address, amount *uint256.Int) {
	if amount.IsZero() {
		return
	}
	if err := g.ledger.Transfer(g.cfg.Self, to, amount); err != nil && !errors.Is(err, bank.ErrInvalidAmount) {
		g.log.Error().Err(err).Str("to", to.Hex()).Msg("escrow refund failed")
	}
}

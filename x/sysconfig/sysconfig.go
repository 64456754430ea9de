// Package sysconfig holds the mutable protocol parameters read by the
// message queue and the rollup chain. Parameters change only through the
// owner-gated update path; reads return snapshots.
package sysconfig

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/zenith-rollup/settlement/x/events"
	"github.com/zenith-rollup/settlement/x/ledger"
)

var (
	// ErrUnauthorized is returned when a caller other than the owner
	// attempts a parameter update.
	ErrUnauthorized = errors.New("sysconfig: caller is not the owner")

	// ErrInvalidParameter is returned for parameter sets that would wedge
	// the protocol (zero gas cap, zero liveness delays).
	ErrInvalidParameter = errors.New("sysconfig: invalid parameter")
)

// FeePrecision is the fixed-point denominator of the base-fee scalar.
var FeePrecision = uint256.NewInt(1e18)

// Params is the full parameter set.
type Params struct {
	// MaxGasLimit caps the gas of a single enqueued L1->L2 message.
	MaxGasLimit uint64

	// BaseFeeOverhead and BaseFeeScalar define the linear L2 base fee
	// model: l2BaseFee = l1BaseFee*scalar/FeePrecision + overhead.
	BaseFeeOverhead *uint256.Int
	BaseFeeScalar   *uint256.Int

	// MaxDelayEnterEnforcedMode is the longest the chain may go without a
	// finalized bundle before enforced batch mode can be triggered, in
	// seconds.
	MaxDelayEnterEnforcedMode uint64

	// MaxDelayMessageQueue is the longest an unfinalized queue message may
	// wait before enforced batch mode can be triggered, in seconds.
	MaxDelayMessageQueue uint64
}

func (p Params) validate() error {
	if p.MaxGasLimit == 0 {
		return fmt.Errorf("%w: max gas limit is zero", ErrInvalidParameter)
	}
	if p.BaseFeeOverhead == nil || p.BaseFeeScalar == nil {
		return fmt.Errorf("%w: base fee parameters are nil", ErrInvalidParameter)
	}
	if p.MaxDelayEnterEnforcedMode == 0 || p.MaxDelayMessageQueue == 0 {
		return fmt.Errorf("%w: enforced mode delay is zero", ErrInvalidParameter)
	}
	return nil
}

func (p Params) clone() Params {
	p.BaseFeeOverhead = new(uint256.Int).Set(p.BaseFeeOverhead)
	p.BaseFeeScalar = new(uint256.Int).Set(p.BaseFeeScalar)
	return p
}

// SystemConfig is the parameter store.
type SystemConfig struct {
	mu      sync.RWMutex
	log     zerolog.Logger
	emitter *events.Emitter
	owner   common.Address
	params  Params
}

// New validates the initial parameter set and returns the store.
func New(log zerolog.Logger, emitter *events.Emitter, owner common.Address, params Params) (*SystemConfig, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &SystemConfig{
		log:     log.With().Str("component", "sysconfig").Logger(),
		emitter: emitter,
		owner:   owner,
		params:  params.clone(),
	}, nil
}

// Owner returns the account allowed to update parameters.
func (s *SystemConfig) Owner() common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// UpdateParams replaces the full parameter set. Owner only.
func (s *SystemConfig) UpdateParams(call ledger.Call, params Params) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if call.Caller != s.owner {
		return ErrUnauthorized
	}
	if err := params.validate(); err != nil {
		return err
	}

	s.params = params.clone()

	s.log.Info().
		Uint64("max_gas_limit", params.MaxGasLimit).
		Str("base_fee_overhead", params.BaseFeeOverhead.String()).
		Str("base_fee_scalar", params.BaseFeeScalar.String()).
		Uint64("max_delay_enter_enforced_mode", params.MaxDelayEnterEnforcedMode).
		Uint64("max_delay_message_queue", params.MaxDelayMessageQueue).
		Msg("System parameters updated")

	if s.emitter != nil {
		s.emitter.Emit(events.ParamsUpdated{
			MaxGasLimit:               params.MaxGasLimit,
			BaseFeeOverhead:           new(uint256.Int).Set(params.BaseFeeOverhead),
			BaseFeeScalar:             new(uint256.Int).Set(params.BaseFeeScalar),
			MaxDelayEnterEnforcedMode: params.MaxDelayEnterEnforcedMode,
			MaxDelayMessageQueue:      params.MaxDelayMessageQueue,
		})
	}
	return nil
}

// Params returns a snapshot of the current parameter set.
func (s *SystemConfig) Params() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params.clone()
}

// MaxGasLimit returns the current per-message gas cap.
func (s *SystemConfig) MaxGasLimit() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params.MaxGasLimit
}

// L2BaseFee derives the L2 base fee from an L1 base fee using the linear
// fee model.
func (s *SystemConfig) L2BaseFee(l1BaseFee *uint256.Int) *uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fee := new(uint256.Int)
	if l1BaseFee != nil {
		fee.Mul(l1BaseFee, s.params.BaseFeeScalar)
		fee.Div(fee, FeePrecision)
	}
	return fee.Add(fee, s.params.BaseFeeOverhead)
}

// EnforcedModeDelays returns the two liveness thresholds, in seconds.
func (s *SystemConfig) EnforcedModeDelays() (enterEnforcedMode, messageQueue uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params.MaxDelayEnterEnforcedMode, s.params.MaxDelayMessageQueue
}

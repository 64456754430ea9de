// Package bank provides the value ledger the settlement layer moves wei
// through: enforced-transaction fees, vault forwarding and refunds.
package bank

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	// ErrInsufficientBalance is returned when a transfer exceeds the
	// sender's balance.
	ErrInsufficientBalance = errors.New("bank: insufficient balance")

	// ErrInvalidAmount is returned for nil transfer amounts.
	ErrInvalidAmount = errors.New("bank: invalid amount")
)

// Ledger tracks account balances.
type Ledger interface {
	BalanceOf(addr common.Address) *uint256.Int
	Mint(addr common.Address, amount *uint256.Int)
	Transfer(from, to common.Address, amount *uint256.Int) error
}

var _ Ledger = (*Memory)(nil)

// Memory is an in-memory Ledger; suitable for tests and single-instance
// deployments.
type Memory struct {
	mu       sync.RWMutex
	balances map[common.Address]*uint256.Int
}

// NewMemory returns an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{balances: make(map[common.Address]*uint256.Int)}
}

// BalanceOf returns a copy of the account balance.
func (m *Memory) BalanceOf(addr common.Address) *uint256.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if bal, ok := m.balances[addr]; ok {
		return new(uint256.Int).Set(bal)
	}
	return uint256.NewInt(0)
}

// Mint credits an account out of thin air. Used to fund accounts at genesis
// and in tests.
func (m *Memory) Mint(addr common.Address, amount *uint256.Int) {
	if amount == nil || amount.IsZero() {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bal, ok := m.balances[addr]
	if !ok {
		bal = uint256.NewInt(0)
		m.balances[addr] = bal
	}
	bal.Add(bal, amount)
}

// Transfer moves amount from one account to another. A zero amount is a
// no-op; moving more than the sender holds fails without touching state.
func (m *Memory) Transfer(from, to common.Address, amount *uint256.Int) error {
	if amount == nil {
		return ErrInvalidAmount
	}
	if amount.IsZero() {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.balances[from]
	if !ok || src.Lt(amount) {
		return ErrInsufficientBalance
	}

	dst, ok := m.balances[to]
	if !ok {
		dst = uint256.NewInt(0)
		m.balances[to] = dst
	}

	src.Sub(src, amount)
	dst.Add(dst, amount)
	return nil
}

// Package ledger models the execution environment the settlement state
// machines run under: every operation is invoked on behalf of an account,
// carries an attached value, and observes the enclosing block. Operations
// are serialized by their owning component; a failed operation leaves no
// state behind.
package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Call describes a single invocation of a settlement operation.
type Call struct {
	// Caller is the immediate caller of the operation.
	Caller common.Address

	// Origin is the externally-owned account that initiated the
	// transaction. Equal to Caller unless the call went through a
	// contract account.
	Origin common.Address

	// Value is the wei attached to the call. Nil means zero.
	Value *uint256.Int

	// Time is the timestamp of the enclosing block, in unix seconds.
	Time uint64

	// Number is the enclosing block number.
	Number uint64

	// L1BaseFee is the base fee of the enclosing block. Nil means zero.
	L1BaseFee *uint256.Int
}

// AttachedValue returns the attached value, never nil.
func (c Call) AttachedValue() *uint256.Int {
	if c.Value == nil {
		return uint256.NewInt(0)
	}
	return c.Value
}

// BaseFee returns the L1 base fee, never nil.
func (c Call) BaseFee() *uint256.Int {
	if c.L1BaseFee == nil {
		return uint256.NewInt(0)
	}
	return c.L1BaseFee
}

// CodeOracle reports whether an account has contract code. The rollup chain
// uses it to restrict sequencer/prover membership to externally-owned
// accounts, and the gateway uses it to decide whether to alias a sender.
type CodeOracle interface {
	HasCode(addr common.Address) bool
}

// CodeOracleFunc adapts a function to the CodeOracle interface.
type CodeOracleFunc func(addr common.Address) bool

func (f CodeOracleFunc) HasCode(addr common.Address) bool { return f(addr) }

// NoCode is a CodeOracle that treats every account as externally owned.
var NoCode CodeOracle = CodeOracleFunc(func(common.Address) bool { return false })

// aliasOffset is the constant added to a contract address when its messages
// cross from L1 to L2, keeping the two address spaces disjoint. Arithmetic
// wraps modulo 2^160, matching unchecked address math on chain.
var (
	aliasOffset  = new(big.Int).SetBytes(common.HexToAddress("0x1111000000000000000000000000000000001111").Bytes())
	addressSpace = new(big.Int).Lsh(big.NewInt(1), 160)
)

// ApplyL1ToL2Alias shifts an L1 contract address into the L2 alias space.
func ApplyL1ToL2Alias(addr common.Address) common.Address {
	sum := new(big.Int).Add(new(big.Int).SetBytes(addr.Bytes()), aliasOffset)
	return common.BigToAddress(sum.Mod(sum, addressSpace))
}

// UndoL1ToL2Alias recovers the original L1 address from an aliased one.
func UndoL1ToL2Alias(addr common.Address) common.Address {
	diff := new(big.Int).Sub(new(big.Int).SetBytes(addr.Bytes()), aliasOffset)
	diff.Add(diff, addressSpace)
	return common.BigToAddress(diff.Mod(diff, addressSpace))
}

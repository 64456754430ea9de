package bank

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func TestTransfer(t *testing.T) {
	m := NewMemory()
	m.Mint(alice, uint256.NewInt(100))

	require.NoError(t, m.Transfer(alice, bob, uint256.NewInt(60)))
	require.Equal(t, uint256.NewInt(40), m.BalanceOf(alice))
	require.Equal(t, uint256.NewInt(60), m.BalanceOf(bob))
}

func TestTransferInsufficient(t *testing.T) {
	m := NewMemory()
	m.Mint(alice, uint256.NewInt(10))

	err := m.Transfer(alice, bob, uint256.NewInt(11))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.Equal(t, uint256.NewInt(10), m.BalanceOf(alice))
	require.True(t, m.BalanceOf(bob).IsZero())
}

func TestTransferZeroIsNoop(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Transfer(alice, bob, uint256.NewInt(0)))
	require.ErrorIs(t, m.Transfer(alice, bob, nil), ErrInvalidAmount)
}

func TestBalanceOfReturnsCopy(t *testing.T) {
	m := NewMemory()
	m.Mint(alice, uint256.NewInt(5))

	bal := m.BalanceOf(alice)
	bal.SetUint64(999)
	require.Equal(t, uint256.NewInt(5), m.BalanceOf(alice))
}

package queue

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// L1MessageTxType is the type byte of the synthetic transaction the L2
// execution layer derives for every queued message.
const L1MessageTxType = 0x7e

// l1MessageTx is the canonical payload hashed into the rolling hash chain.
// Field order is part of the wire format: the L2 node re-derives the exact
// same encoding when it replays the message, so any change here is a
// consensus break.
type l1MessageTx struct {
	QueueIndex uint64
	Gas        uint64
	To         *common.Address `rlp:"nil"`
	Value      *big.Int
	Data       []byte
	Sender     common.Address
}

// ComputeTransactionHash returns the canonical hash of a queued message,
// keccak256 over the type byte followed by the RLP payload.
func ComputeTransactionHash(
	sender common.Address,
	queueIndex uint64,
	value *uint256.Int,
	target common.Address,
	gasLimit uint64,
	data []byte,
) common.Hash {
	if value == nil {
		value = uint256.NewInt(0)
	}
	payload, err := rlp.EncodeToBytes(&l1MessageTx{
		QueueIndex: queueIndex,
		Gas:        gasLimit,
		To:         &target,
		Value:      value.ToBig(),
		Data:       data,
		Sender:     sender,
	})
	if err != nil {
		// Encoding a fixed-shape struct cannot fail.
		panic(err)
	}
	return crypto.Keccak256Hash(append([]byte{L1MessageTxType}, payload...))
}

// IntrinsicGas is the minimum gas a message needs on L2: the base
// transaction cost plus the calldata cost.
func IntrinsicGas(data []byte) uint64 {
	return 21000 + 16*uint64(len(data))
}

// RollingLink chains the previous rolling hash with the next transaction
// hash: rolling[i] = keccak256(rolling[i-1] || txHash[i]).
func RollingLink(prev, txHash common.Hash) common.Hash {
	return crypto.Keccak256Hash(prev.Bytes(), txHash.Bytes())
}

package gateway

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

var (
	domainTypeHash = crypto.Keccak256Hash(
		[]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	domainNameHash    = crypto.Keccak256Hash([]byte("EnforcedTxGateway"))
	domainVersionHash = crypto.Keccak256Hash([]byte("1"))
	enforcedTxTypeHash = crypto.Keccak256Hash(
		[]byte("EnforcedTransaction(address sender,address target,uint256 value,uint256 gasLimit,bytes32 dataHash,uint256 nonce,uint256 deadline)"))
)

func mustParseType(typeName string) abi.Type {
	typ, err := abi.NewType(typeName, typeName, nil)
	if err != nil {
		panic(fmt.Sprintf("failed to parse ABI type %s: %v", typeName, err))
	}
	return typ
}

var (
	bytes32Type = mustParseType("bytes32")
	addressType = mustParseType("address")
	uint256Type = mustParseType("uint256")
)

var (
	domainArgs = abi.Arguments{
		{Type: bytes32Type}, {Type: bytes32Type}, {Type: bytes32Type},
		{Type: uint256Type}, {Type: addressType},
	}
	enforcedTxArgs = abi.Arguments{
		{Type: bytes32Type}, {Type: addressType}, {Type: addressType},
		{Type: uint256Type}, {Type: uint256Type}, {Type: bytes32Type},
		{Type: uint256Type}, {Type: uint256Type},
	}
)

// domainSeparator binds signatures to this gateway instance and chain.
func domainSeparator(chainID uint64, verifying common.Address) common.Hash {
	packed, err := domainArgs.Pack(
		[32]byte(domainTypeHash),
		[32]byte(domainNameHash),
		[32]byte(domainVersionHash),
		new(big.Int).SetUint64(chainID),
		verifying,
	)
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(packed)
}

// enforcedTxDigest is the domain-separated structured hash a delegated
// sender signs.
func enforcedTxDigest(
	domain common.Hash,
	sender common.Address,
	target common.Address,
	value *uint256.Int,
	gasLimit uint64,
	data []byte,
	nonce uint64,
	deadline uint64,
) common.Hash {
	if value == nil {
		value = uint256.NewInt(0)
	}
	structPacked, err := enforcedTxArgs.Pack(
		[32]byte(enforcedTxTypeHash),
		sender,
		target,
		value.ToBig(),
		new(big.Int).SetUint64(gasLimit),
		[32]byte(crypto.Keccak256Hash(data)),
		new(big.Int).SetUint64(nonce),
		new(big.Int).SetUint64(deadline),
	)
	if err != nil {
		panic(err)
	}
	structHash := crypto.Keccak256(structPacked)
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, domain.Bytes(), structHash)
}

// recoverSigner recovers the signing address from a 65-byte [R || S || V]
// signature over the digest. V may be 0/1 or 27/28.
func recoverSigner(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, ErrInvalidSignature
	}
	normalized := make([]byte, crypto.SignatureLength)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	pub, err := crypto.SigToPub(digest.Bytes(), normalized)
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	return crypto.PubkeyToAddress(*pub), nil
}

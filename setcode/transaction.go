package setcode

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// AccessTuple is an EIP-2930 access list entry.
type AccessTuple struct {
	Address     common.Address
	StorageKeys []common.Hash
}

// SetCodeTx is the unsigned form of an EIP-7702 transaction. Field order
// matches the canonical type-0x04 payload:
// [chainId, nonce, maxPriorityFeePerGas, maxFeePerGas, gasLimit, to, value,
// data, accessList, authorizationList].
type SetCodeTx struct {
	ChainID    uint256.Int
	Nonce      uint64
	GasTipCap  uint256.Int
	GasFeeCap  uint256.Int
	Gas        uint64
	To         *common.Address
	Value      uint256.Int
	Data       []byte
	AccessList []AccessTuple
	AuthList   []Authorization
}

// SignedSetCodeTx is a SetCodeTx extended with the outer transaction
// signature. RLP-encoding this struct yields exactly the signed payload.
type SignedSetCodeTx struct {
	ChainID    uint256.Int
	Nonce      uint64
	GasTipCap  uint256.Int
	GasFeeCap  uint256.Int
	Gas        uint64
	To         *common.Address
	Value      uint256.Int
	Data       []byte
	AccessList []AccessTuple
	AuthList   []Authorization
	V          uint256.Int
	R          uint256.Int
	S          uint256.Int
}

// Validate checks all locally verifiable constraints. It runs before any
// cryptographic work and returns a *ValidationError on the first violation.
func (tx *SetCodeTx) Validate() error {
	if tx.To == nil {
		return &ValidationError{
			Field:  "to",
			Reason: "destination required, contract creation is not allowed for SetCode transactions",
		}
	}
	if len(tx.AuthList) == 0 {
		return &ValidationError{
			Field:  "authorizationList",
			Reason: "must contain at least one authorization",
		}
	}
	if tx.GasFeeCap.Cmp(&tx.GasTipCap) < 0 {
		return &ValidationError{
			Field:  "maxPriorityFeePerGas",
			Reason: fmt.Sprintf("tip cap %s exceeds fee cap %s", tx.GasTipCap.Dec(), tx.GasFeeCap.Dec()),
		}
	}
	if intrinsic := IntrinsicGas(tx); tx.Gas < intrinsic {
		return &ValidationError{
			Field:  "gasLimit",
			Reason: fmt.Sprintf("%d is below the intrinsic cost %d", tx.Gas, intrinsic),
		}
	}
	for i := range tx.AuthList {
		if err := tx.AuthList[i].VerifyAgainstChain(&tx.ChainID); err != nil {
			return err
		}
		if err := checkAuthSignature(&tx.AuthList[i], i); err != nil {
			return err
		}
	}
	return nil
}

// checkAuthSignature enforces the signature value ranges: yParity in {0,1},
// r and s nonzero and below the curve order, s in the EIP-2 low half.
func checkAuthSignature(auth *Authorization, index int) error {
	field := fmt.Sprintf("authorizationList[%d]", index)
	if auth.V > 1 {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("yParity must be 0 or 1, got %d", auth.V)}
	}
	if auth.R.IsZero() || auth.S.IsZero() {
		return &ValidationError{Field: field, Reason: "unsigned authorization"}
	}
	if auth.R.Cmp(Secp256k1N) >= 0 {
		return &ValidationError{Field: field, Reason: "r is not a valid curve scalar"}
	}
	if auth.S.Cmp(Secp256k1HalfN) > 0 {
		return &ValidationError{Field: field, Reason: "s exceeds secp256k1n/2"}
	}
	return nil
}

// SigHash returns the digest the sender signs:
// keccak256(0x04 || rlp(unsigned payload)).
func (tx *SetCodeTx) SigHash() common.Hash {
	return prefixedRlpHash(SetCodeTxType, tx)
}

// SignTx validates tx and attaches the outer signature from signer. A
// validation failure discards all partial state; nothing is signed.
func SignTx(tx *SetCodeTx, signer DigestSigner) (*SignedSetCodeTx, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	sig, err := signer.SignDigest(tx.SigHash())
	if err != nil {
		return nil, &SigningError{Op: "transaction", Err: err}
	}

	signed := &SignedSetCodeTx{
		ChainID:    tx.ChainID,
		Nonce:      tx.Nonce,
		GasTipCap:  tx.GasTipCap,
		GasFeeCap:  tx.GasFeeCap,
		Gas:        tx.Gas,
		To:         tx.To,
		Value:      tx.Value,
		Data:       tx.Data,
		AccessList: tx.AccessList,
		AuthList:   tx.AuthList,
	}
	signed.R.SetBytes(sig[0:32])
	signed.S.SetBytes(sig[32:64])
	signed.V.SetUint64(uint64(sig[64]))
	return signed, nil
}

// Encode serializes the signed transaction as 0x04 || rlp(payload), ready
// for eth_sendRawTransaction. Submission itself is the caller's concern.
func (tx *SignedSetCodeTx) Encode() ([]byte, error) {
	encoded, err := rlp.EncodeToBytes(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}
	return append([]byte{SetCodeTxType}, encoded...), nil
}

// Hash returns the transaction hash: keccak256 of the full typed encoding.
func (tx *SignedSetCodeTx) Hash() (common.Hash, error) {
	raw, err := tx.Encode()
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(raw), nil
}

// Unsigned strips the signature fields.
func (tx *SignedSetCodeTx) Unsigned() *SetCodeTx {
	return &SetCodeTx{
		ChainID:    tx.ChainID,
		Nonce:      tx.Nonce,
		GasTipCap:  tx.GasTipCap,
		GasFeeCap:  tx.GasFeeCap,
		Gas:        tx.Gas,
		To:         tx.To,
		Value:      tx.Value,
		Data:       tx.Data,
		AccessList: tx.AccessList,
		AuthList:   tx.AuthList,
	}
}

// Sender recovers the sending account from the outer signature.
func (tx *SignedSetCodeTx) Sender() (common.Address, error) {
	sig := make([]byte, 65)
	tx.R.WriteToSlice(sig[0:32])
	tx.S.WriteToSlice(sig[32:64])
	if !tx.V.IsUint64() || tx.V.Uint64() > 1 {
		return common.Address{}, &ValidationError{Field: "v", Reason: "yParity must be 0 or 1"}
	}
	sig[64] = byte(tx.V.Uint64())

	pubKey, err := crypto.SigToPub(tx.Unsigned().SigHash().Bytes(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover sender: %w", err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

// DecodeSignedTx parses a raw type-0x04 envelope back into its fields,
// preserving authorization list order exactly.
func DecodeSignedTx(raw []byte) (*SignedSetCodeTx, error) {
	if len(raw) < 2 {
		return nil, &ValidationError{Field: "rawTx", Reason: "truncated envelope"}
	}
	if raw[0] != SetCodeTxType {
		return nil, &ValidationError{
			Field:  "rawTx",
			Reason: fmt.Sprintf("expected type 0x%02x, got 0x%02x", SetCodeTxType, raw[0]),
		}
	}
	tx := new(SignedSetCodeTx)
	if err := rlp.DecodeBytes(raw[1:], tx); err != nil {
		return nil, &ValidationError{Field: "rawTx", Reason: err.Error()}
	}
	return tx, nil
}

// BuildRawTransaction is the one-shot builder: validate, sign with the
// sender's signer, and serialize. The lifecycle is strictly linear; a failure
// at any stage returns the error and discards partial state.
func BuildRawTransaction(tx *SetCodeTx, signer DigestSigner) ([]byte, error) {
	signed, err := SignTx(tx, signer)
	if err != nil {
		return nil, err
	}
	return signed.Encode()
}

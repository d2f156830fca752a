package setcode

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// Authorization is a signed EIP-7702 authorization tuple. ChainID zero is a
// wildcard valid on every chain. Nonce must match the authority's account
// nonce at inclusion time; that check belongs to the network, not this
// package.
type Authorization struct {
	ChainID uint256.Int    `json:"chainId"`
	Address common.Address `json:"address"`
	Nonce   uint64         `json:"nonce"`
	V       uint8          `json:"yParity"`
	R       uint256.Int    `json:"r"`
	S       uint256.Int    `json:"s"`
}

// SigHash returns the digest the authority signs:
// keccak256(0x05 || rlp([chainID, address, nonce])).
func (a *Authorization) SigHash() common.Hash {
	return prefixedRlpHash(AuthorizationSigningPrefix, []interface{}{
		a.ChainID.ToBig(),
		a.Address,
		a.Nonce,
	})
}

// prefixedRlpHash computes keccak256(prefix || rlp(data))
func prefixedRlpHash(prefix byte, data interface{}) common.Hash {
	encoded, _ := rlp.EncodeToBytes(data)
	prefixed := append([]byte{prefix}, encoded...)
	return crypto.Keccak256Hash(prefixed)
}

// IsWildcard reports whether the authorization uses chainID zero and is
// therefore valid on any chain.
func (a *Authorization) IsWildcard() bool {
	return a.ChainID.IsZero()
}

// Authority recovers the signing account from (yParity, r, s).
func (a *Authorization) Authority() (common.Address, error) {
	sig := make([]byte, 65)
	a.R.WriteToSlice(sig[0:32])
	a.S.WriteToSlice(sig[32:64])
	sig[64] = a.V

	pubKey, err := crypto.SigToPub(a.SigHash().Bytes(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover authority: %w", err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

// SignAuthorization builds and signs an authorization tuple for delegating
// the signer's account to target. Validation is purely syntactic; re-signing
// the same (chainID, target, nonce) is always permitted.
func SignAuthorization(signer DigestSigner, chainID *uint256.Int, target common.Address, nonce uint64) (Authorization, error) {
	auth := Authorization{
		Address: target,
		Nonce:   nonce,
	}
	if chainID != nil {
		auth.ChainID = *chainID
	}

	sig, err := signer.SignDigest(auth.SigHash())
	if err != nil {
		return Authorization{}, &SigningError{Op: "authorization", Err: err}
	}

	auth.R.SetBytes(sig[0:32])
	auth.S.SetBytes(sig[32:64])
	auth.V = sig[64]
	return auth, nil
}

// VerifyAgainstChain checks the authorization's chain binding: a concrete
// ChainID must match expected, the zero wildcard matches everything.
func (a *Authorization) VerifyAgainstChain(expected *uint256.Int) error {
	if a.IsWildcard() || expected == nil {
		return nil
	}
	if a.ChainID.Cmp(expected) != 0 {
		return &ValidationError{
			Field:  "authorization.chainId",
			Reason: fmt.Sprintf("bound to chain %s, transaction targets chain %s", a.ChainID.Dec(), expected.Dec()),
		}
	}
	return nil
}

package setcode

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DigestSigner is the signing capability the encoding layer depends on.
// Implementations produce a 65-byte recoverable signature [R || S || V] over
// a 32-byte digest, with V being the y-parity bit (0 or 1, never 27/28).
// Hardware or remote signers can be substituted without touching any
// encoding logic.
type DigestSigner interface {
	SignDigest(digest common.Hash) ([]byte, error)
	Address() common.Address
}

// KeySigner signs with an in-memory secp256k1 private key.
type KeySigner struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewKeySigner parses a hex private key, with or without 0x prefix.
func NewKeySigner(hexkey string) (*KeySigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexkey, "0x"))
	if err != nil {
		return nil, &SigningError{Op: "parse key", Err: err}
	}
	return &KeySigner{
		key:  key,
		addr: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// NewKeySignerFromECDSA wraps an already-parsed private key.
func NewKeySignerFromECDSA(key *ecdsa.PrivateKey) *KeySigner {
	return &KeySigner{
		key:  key,
		addr: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// SignDigest produces a recoverable [R || S || V] signature over digest.
func (s *KeySigner) SignDigest(digest common.Hash) ([]byte, error) {
	return crypto.Sign(digest.Bytes(), s.key)
}

// Address returns the account controlled by the key.
func (s *KeySigner) Address() common.Address {
	return s.addr
}

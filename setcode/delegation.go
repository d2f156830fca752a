package setcode

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
)

// ParseDelegation parses on-chain delegation code (0xef0100 || address) and
// returns the delegated address. Returns false for anything that is not an
// exact 23-byte designator.
func ParseDelegation(code []byte) (common.Address, bool) {
	if len(code) != DelegationCodeLength {
		return common.Address{}, false
	}
	if !bytes.HasPrefix(code, DelegationPrefix) {
		return common.Address{}, false
	}
	return common.BytesToAddress(code[DelegationPrefixLength:]), true
}

// AddressToDelegation builds the 23-byte delegation designator for addr.
func AddressToDelegation(addr common.Address) []byte {
	code := make([]byte, DelegationCodeLength)
	copy(code, DelegationPrefix)
	copy(code[DelegationPrefixLength:], addr.Bytes())
	return code
}

// IsDelegation reports whether code is a valid delegation designator.
func IsDelegation(code []byte) bool {
	_, ok := ParseDelegation(code)
	return ok
}

// probeDelegationCode builds the short delegation form the capability probe
// injects via state override: 0xef01 || address, without the version byte.
func probeDelegationCode(addr common.Address) []byte {
	return append(append([]byte{}, DelegationMagic...), addr.Bytes()...)
}

// Package setcode implements the client side of EIP-7702 (EOA code delegation):
// probing an RPC endpoint for SetCode support, signing authorization tuples,
// and building type-0x04 transaction envelopes for submission.
package setcode

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Transaction types
const (
	// LegacyTxType is the transaction type for legacy transactions (0x00)
	LegacyTxType = 0x00

	// DynamicFeeTxType is the transaction type for EIP-1559 (0x02)
	DynamicFeeTxType = 0x02

	// SetCodeTxType is the transaction type for EIP-7702 (0x04)
	SetCodeTxType = 0x04
)

// EIP-7702 constants
const (
	// AuthorizationSigningPrefix is the domain byte prepended to the RLP of
	// an authorization tuple before hashing (0x05). It separates authorization
	// signing from transaction signing and other typed-data domains.
	AuthorizationSigningPrefix = 0x05

	// DelegationPrefixLength is the length of the delegation prefix (0xef0100)
	DelegationPrefixLength = 3

	// DelegationCodeLength is the total length of on-chain delegation code
	// (prefix + 20-byte address)
	DelegationCodeLength = 23

	// PerEmptyAccountCost is the gas charged per authorization that targets
	// an empty account (25,000)
	PerEmptyAccountCost = 25000

	// PerAuthBaseRefund is the refund per authorization whose authority
	// already exists (12,500)
	PerAuthBaseRefund = 12500
)

// DelegationPrefix is the 3-byte prefix of on-chain delegation code (0xef0100).
var DelegationPrefix = []byte{0xef, 0x01, 0x00}

// DelegationMagic is the 2-byte magic that opens every delegation designator
// (0xef01). The capability probe injects magic || address directly, without
// the version byte, which is the shape accepted by estimate-gas state
// overrides on Prague-capable nodes.
var DelegationMagic = []byte{0xef, 0x01}

// EcrecoverAddress is the address of the ecrecover precompile (0x01), used as
// the delegation target of the capability probe.
var EcrecoverAddress = common.HexToAddress("0x0000000000000000000000000000000000000001")

// ProbeDummyAddress is the non-funded address the capability probe uses as
// both caller and callee. Nothing is ever sent to or from it.
var ProbeDummyAddress = common.HexToAddress("0x7702770277027702770277027702770277027702")

// Secp256k1N is the order of the secp256k1 curve.
var Secp256k1N = uint256.MustFromHex("0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141")

// Secp256k1HalfN is secp256k1n/2, the upper bound on s under the EIP-2
// malleability rule.
var Secp256k1HalfN = uint256.MustFromHex("0x7FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF5D576E7357A4501DDFE92F46681B20A0")

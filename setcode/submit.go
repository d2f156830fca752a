package setcode

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Delegator drives the full delegation flow against a live endpoint: fetch
// the account nonce, sign the authorization, build and submit the SetCode
// transaction. It is a thin orchestration layer over the signing and
// encoding primitives, which never touch the network themselves.
type Delegator struct {
	client  *Client
	signer  DigestSigner
	chainID *uint256.Int
}

// SubmitResult describes a submitted delegation transaction.
type SubmitResult struct {
	TxHash    common.Hash
	Authority common.Address
	Target    common.Address
	TxNonce   uint64
	AuthNonce uint64
	GasLimit  uint64
	RawTx     []byte
}

// NewDelegator connects to the endpoint and pins its chain id.
func NewDelegator(ctx context.Context, rpcURL string, signer DigestSigner) (*Delegator, error) {
	client := NewClient(rpcURL, 0)
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return &Delegator{
		client:  client,
		signer:  signer,
		chainID: uint256.MustFromBig(chainID),
	}, nil
}

// ChainID returns the endpoint's chain id.
func (d *Delegator) ChainID() *big.Int { return d.chainID.ToBig() }

// Client exposes the underlying RPC client.
func (d *Delegator) Client() *Client { return d.client }

// Delegate signs and submits a SetCode transaction delegating the signer's
// account to target. When self-broadcasting, the account nonce increments
// before authorization processing, so the authorization carries nonce+1.
func (d *Delegator) Delegate(ctx context.Context, target common.Address, gasLimit uint64) (*SubmitResult, error) {
	nonce, err := d.client.PendingNonce(ctx, d.signer.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	authNonce := nonce + 1
	auth, err := SignAuthorization(d.signer, d.chainID, target, authNonce)
	if err != nil {
		return nil, err
	}

	authority, err := auth.Authority()
	if err != nil {
		return nil, fmt.Errorf("failed to recover authority: %w", err)
	}
	if authority != d.signer.Address() {
		return nil, fmt.Errorf("authority mismatch: got %s, want %s", authority.Hex(), d.signer.Address().Hex())
	}

	gasPrice, err := d.client.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	gasTipCap, err := d.client.MaxPriorityFee(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tip cap: %w", err)
	}
	gasFeeCap := new(big.Int).Mul(gasPrice, big.NewInt(2))

	to := d.signer.Address()
	tx := &SetCodeTx{
		ChainID:   *d.chainID,
		Nonce:     nonce,
		GasTipCap: *uint256.MustFromBig(gasTipCap),
		GasFeeCap: *uint256.MustFromBig(gasFeeCap),
		Gas:       gasLimit,
		To:        &to,
		AuthList:  []Authorization{auth},
	}

	raw, err := BuildRawTransaction(tx, d.signer)
	if err != nil {
		return nil, err
	}

	txHash, err := d.client.SendRawTransaction(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	return &SubmitResult{
		TxHash:    txHash,
		Authority: authority,
		Target:    target,
		TxNonce:   nonce,
		AuthNonce: authNonce,
		GasLimit:  gasLimit,
		RawTx:     raw,
	}, nil
}

// VerifyDelegation checks that the signer's account now carries a delegation
// designator pointing at expected.
func (d *Delegator) VerifyDelegation(ctx context.Context, expected common.Address) error {
	code, err := d.client.Code(ctx, d.signer.Address())
	if err != nil {
		return err
	}
	target, ok := ParseDelegation(code)
	if !ok {
		return fmt.Errorf("account %s has no valid delegation (code length %d)", d.signer.Address().Hex(), len(code))
	}
	if target != expected {
		return fmt.Errorf("delegation target mismatch: got %s, want %s", target.Hex(), expected.Hex())
	}
	return nil
}

package setcode

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func signedAuth(t *testing.T, signer *KeySigner, chainID *uint256.Int, target common.Address, nonce uint64) Authorization {
	t.Helper()
	auth, err := SignAuthorization(signer, chainID, target, nonce)
	if err != nil {
		t.Fatalf("SignAuthorization() error = %v", err)
	}
	return auth
}

func validTx(t *testing.T, signer *KeySigner) *SetCodeTx {
	t.Helper()
	to := signer.Address()
	return &SetCodeTx{
		ChainID:   *uint256.NewInt(1),
		Nonce:     3,
		GasTipCap: *uint256.NewInt(1000000000),
		GasFeeCap: *uint256.NewInt(2000000000),
		Gas:       100000,
		To:        &to,
		AuthList: []Authorization{
			signedAuth(t, signer, uint256.NewInt(1), addrAAAA, 4),
		},
	}
}

func TestValidate(t *testing.T) {
	signer := testSigner(t)

	testCases := []struct {
		name      string
		mutate    func(tx *SetCodeTx)
		wantField string
	}{
		{
			name:   "valid",
			mutate: func(tx *SetCodeTx) {},
		},
		{
			name:      "missing_destination",
			mutate:    func(tx *SetCodeTx) { tx.To = nil },
			wantField: "to",
		},
		{
			name:      "empty_auth_list",
			mutate:    func(tx *SetCodeTx) { tx.AuthList = nil },
			wantField: "authorizationList",
		},
		{
			name: "tip_above_fee_cap",
			mutate: func(tx *SetCodeTx) {
				tx.GasTipCap = *uint256.NewInt(3000000000)
			},
			wantField: "maxPriorityFeePerGas",
		},
		{
			name:      "gas_below_intrinsic",
			mutate:    func(tx *SetCodeTx) { tx.Gas = 21000 },
			wantField: "gasLimit",
		},
		{
			name: "auth_bound_to_other_chain",
			mutate: func(tx *SetCodeTx) {
				tx.AuthList = []Authorization{
					signedAuth(t, signer, uint256.NewInt(11155111), addrAAAA, 4),
				}
			},
			wantField: "authorization.chainId",
		},
		{
			name: "unsigned_auth",
			mutate: func(tx *SetCodeTx) {
				tx.AuthList = []Authorization{{ChainID: *uint256.NewInt(1), Address: addrAAAA}}
			},
			wantField: "authorizationList[0]",
		},
		{
			name: "bad_y_parity",
			mutate: func(tx *SetCodeTx) {
				tx.AuthList[0].V = 27
			},
			wantField: "authorizationList[0]",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTx(t, signer)
			tc.mutate(tx)

			err := tx.Validate()
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Validate() error = %v (%T), want *ValidationError", err, err)
			}
			if vErr.Field != tc.wantField {
				t.Errorf("Validate() field = %q, want %q", vErr.Field, tc.wantField)
			}
		})
	}
}

func TestValidateAcceptsWildcardAuth(t *testing.T) {
	signer := testSigner(t)
	tx := validTx(t, signer)
	tx.ChainID = *uint256.NewInt(11155111)
	tx.AuthList = []Authorization{
		signedAuth(t, signer, uint256.NewInt(0), addrAAAA, 4),
	}

	if err := tx.Validate(); err != nil {
		t.Errorf("Validate() rejected wildcard authorization: %v", err)
	}
}

func TestSignTxRejectsInvalidBeforeSigning(t *testing.T) {
	signer := testSigner(t)

	// An invalid transaction must be rejected before any signing happens.
	tx := validTx(t, signer)
	tx.AuthList = nil

	signed, err := SignTx(tx, signer)
	if signed != nil {
		t.Error("SignTx() returned partial state on validation failure")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("SignTx() error = %v (%T), want *ValidationError", err, err)
	}
}

func TestSignTxSenderRecovery(t *testing.T) {
	signer := testSigner(t)
	tx := validTx(t, signer)

	signed, err := SignTx(tx, signer)
	if err != nil {
		t.Fatalf("SignTx() error = %v", err)
	}

	if !signed.V.IsUint64() || signed.V.Uint64() > 1 {
		t.Errorf("outer yParity = %s, want 0 or 1", signed.V.Dec())
	}

	sender, err := signed.Sender()
	if err != nil {
		t.Fatalf("Sender() error = %v", err)
	}
	if sender != signer.Address() {
		t.Errorf("Sender() = %s, want %s", sender.Hex(), signer.Address().Hex())
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	signer := testSigner(t)
	other, err := NewKeySigner(otherKeyHex)
	if err != nil {
		t.Fatalf("NewKeySigner() error = %v", err)
	}

	to := common.HexToAddress("0x0000000000000000000000000000000000000042")
	tx := &SetCodeTx{
		ChainID:   *uint256.NewInt(11155111),
		Nonce:     9,
		GasTipCap: *uint256.NewInt(1500000000),
		GasFeeCap: *uint256.NewInt(30000000000),
		Gas:       200000,
		To:        &to,
		Value:     *uint256.NewInt(12345),
		Data:      []byte{0xde, 0xad, 0x00, 0xbe, 0xef},
		AccessList: []AccessTuple{
			{
				Address:     addrAAAA,
				StorageKeys: []common.Hash{common.HexToHash("0x01"), common.HexToHash("0x02")},
			},
		},
		AuthList: []Authorization{
			signedAuth(t, signer, uint256.NewInt(11155111), addrAAAA, 10),
			signedAuth(t, other, uint256.NewInt(0), addrBBBB, 0),
		},
	}

	raw, err := BuildRawTransaction(tx, signer)
	if err != nil {
		t.Fatalf("BuildRawTransaction() error = %v", err)
	}
	if raw[0] != SetCodeTxType {
		t.Fatalf("type byte = 0x%02x, want 0x%02x", raw[0], SetCodeTxType)
	}

	decoded, err := DecodeSignedTx(raw)
	if err != nil {
		t.Fatalf("DecodeSignedTx() error = %v", err)
	}

	if decoded.ChainID.Cmp(&tx.ChainID) != 0 {
		t.Errorf("ChainID = %s, want %s", decoded.ChainID.Dec(), tx.ChainID.Dec())
	}
	if decoded.Nonce != tx.Nonce {
		t.Errorf("Nonce = %d, want %d", decoded.Nonce, tx.Nonce)
	}
	if decoded.GasTipCap.Cmp(&tx.GasTipCap) != 0 {
		t.Errorf("GasTipCap = %s, want %s", decoded.GasTipCap.Dec(), tx.GasTipCap.Dec())
	}
	if decoded.GasFeeCap.Cmp(&tx.GasFeeCap) != 0 {
		t.Errorf("GasFeeCap = %s, want %s", decoded.GasFeeCap.Dec(), tx.GasFeeCap.Dec())
	}
	if decoded.Gas != tx.Gas {
		t.Errorf("Gas = %d, want %d", decoded.Gas, tx.Gas)
	}
	if decoded.To == nil || *decoded.To != to {
		t.Errorf("To = %v, want %s", decoded.To, to.Hex())
	}
	if decoded.Value.Cmp(&tx.Value) != 0 {
		t.Errorf("Value = %s, want %s", decoded.Value.Dec(), tx.Value.Dec())
	}
	if !bytes.Equal(decoded.Data, tx.Data) {
		t.Errorf("Data = %x, want %x", decoded.Data, tx.Data)
	}

	if len(decoded.AccessList) != 1 {
		t.Fatalf("AccessList length = %d, want 1", len(decoded.AccessList))
	}
	if decoded.AccessList[0].Address != addrAAAA {
		t.Errorf("AccessList address = %s, want %s", decoded.AccessList[0].Address.Hex(), addrAAAA.Hex())
	}
	if len(decoded.AccessList[0].StorageKeys) != 2 {
		t.Errorf("StorageKeys length = %d, want 2", len(decoded.AccessList[0].StorageKeys))
	}

	if len(decoded.AuthList) != 2 {
		t.Fatalf("AuthList length = %d, want 2", len(decoded.AuthList))
	}
	for i := range tx.AuthList {
		got, want := decoded.AuthList[i], tx.AuthList[i]
		if got.ChainID.Cmp(&want.ChainID) != 0 || got.Address != want.Address || got.Nonce != want.Nonce {
			t.Errorf("AuthList[%d] tuple = %+v, want %+v", i, got, want)
		}
		if got.V != want.V || got.R.Cmp(&want.R) != 0 || got.S.Cmp(&want.S) != 0 {
			t.Errorf("AuthList[%d] signature mismatch after round trip", i)
		}
	}

	// Order is part of the envelope: authorities must come back in the
	// order they were committed.
	firstAuthority, _ := decoded.AuthList[0].Authority()
	secondAuthority, _ := decoded.AuthList[1].Authority()
	if firstAuthority != signer.Address() || secondAuthority != other.Address() {
		t.Error("authorization list order not preserved")
	}

	// Sender survives the round trip too.
	sender, err := decoded.Sender()
	if err != nil {
		t.Fatalf("Sender() after round trip error = %v", err)
	}
	if sender != signer.Address() {
		t.Errorf("Sender() after round trip = %s, want %s", sender.Hex(), signer.Address().Hex())
	}

	// Re-encoding reproduces the exact bytes.
	reencoded, err := decoded.Encode()
	if err != nil {
		t.Fatalf("Encode() after round trip error = %v", err)
	}
	if !bytes.Equal(reencoded, raw) {
		t.Error("re-encoded bytes differ from the original envelope")
	}
}

func TestDecodeSignedTxRejectsGarbage(t *testing.T) {
	testCases := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"type_byte_only", []byte{SetCodeTxType}},
		{"wrong_type", []byte{DynamicFeeTxType, 0xc0}},
		{"legacy_rlp", []byte{0xc0}},
		{"truncated_payload", []byte{SetCodeTxType, 0xf8, 0xff, 0x01}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeSignedTx(tc.raw)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("DecodeSignedTx() error = %v (%T), want *ValidationError", err, err)
			}
		})
	}
}

func TestTransactionHashIsStable(t *testing.T) {
	signer := testSigner(t)
	signed, err := SignTx(validTx(t, signer), signer)
	if err != nil {
		t.Fatalf("SignTx() error = %v", err)
	}

	h1, err := signed.Hash()
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, _ := signed.Hash()
	if h1 != h2 {
		t.Error("Hash() is not deterministic")
	}
	if h1 == (common.Hash{}) {
		t.Error("Hash() = zero hash")
	}
}

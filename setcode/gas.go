package setcode

// Gas cost constants for type-0x04 transactions.
const (
	txGas                     = 21000
	txDataZeroGas             = 4
	txDataNonZeroGas          = 16
	txAccessListAddressGas    = 2400
	txAccessListStorageKeyGas = 1900
)

// GasBreakdown itemizes the intrinsic cost of a SetCode transaction.
type GasBreakdown struct {
	BaseGas       uint64
	DataGas       uint64
	AccessListGas uint64
	AuthListGas   uint64
	AuthRefund    uint64
	Total         uint64
}

// IntrinsicGas returns the minimum gas the transaction needs before any
// execution, charging every authorization at the empty-account rate. The
// actual charge may be lower when authorities already exist; refunds are a
// node-side concern.
func IntrinsicGas(tx *SetCodeTx) uint64 {
	return ComputeGasBreakdown(tx, nil).Total
}

// ComputeGasBreakdown calculates the intrinsic gas with a per-component
// breakdown. existingAuthorities, when provided, marks which authorization
// authorities already exist on chain and earn the per-auth refund.
func ComputeGasBreakdown(tx *SetCodeTx, existingAuthorities []bool) *GasBreakdown {
	b := &GasBreakdown{BaseGas: txGas}

	for _, by := range tx.Data {
		if by == 0 {
			b.DataGas += txDataZeroGas
		} else {
			b.DataGas += txDataNonZeroGas
		}
	}

	for _, tuple := range tx.AccessList {
		b.AccessListGas += txAccessListAddressGas
		b.AccessListGas += uint64(len(tuple.StorageKeys)) * txAccessListStorageKeyGas
	}

	b.AuthListGas = uint64(len(tx.AuthList)) * PerEmptyAccountCost
	for i := range existingAuthorities {
		if i >= len(tx.AuthList) {
			break
		}
		if existingAuthorities[i] {
			b.AuthRefund += PerAuthBaseRefund
		}
	}

	b.Total = b.BaseGas + b.DataGas + b.AccessListGas + b.AuthListGas - b.AuthRefund
	return b
}

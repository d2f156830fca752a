package setcode

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// FormatProbeResult formats a probe outcome for display.
func FormatProbeResult(rpcURL string, r ProbeResult) string {
	var sb strings.Builder

	sb.WriteString("\n--- EIP-7702 Capability Probe ---\n\n")
	sb.WriteString(fmt.Sprintf("Endpoint: %s\n", rpcURL))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", strings.ToUpper(string(r.Status))))

	switch r.Status {
	case ProbeSupported:
		sb.WriteString(fmt.Sprintf("Estimate: %d gas for the delegated ecrecover call\n", r.GasEstimate))
	case ProbeUnsupported:
		sb.WriteString(fmt.Sprintf("Rejected: %v\n", r.Err))
		sb.WriteString("The node rejected the delegation state override; it does not appear to support SetCode transactions.\n")
	case ProbeIndeterminate:
		if r.Err != nil {
			sb.WriteString(fmt.Sprintf("Cause:    %v\n", r.Err))
		}
		sb.WriteString("Could not confirm either way; do not treat this as a negative.\n")
	}

	if len(r.RawResponse) > 0 {
		sb.WriteString(fmt.Sprintf("Raw:      %s\n", string(r.RawResponse)))
	}
	return sb.String()
}

// FormatSubmitResult formats a submitted delegation for display.
func FormatSubmitResult(r *SubmitResult) string {
	var sb strings.Builder

	sb.WriteString("\n--- SetCode Transaction Submitted ---\n\n")
	sb.WriteString(fmt.Sprintf("TX Hash:    %s\n", r.TxHash.Hex()))
	sb.WriteString(fmt.Sprintf("Authority:  %s\n", r.Authority.Hex()))
	sb.WriteString(fmt.Sprintf("Target:     %s\n", r.Target.Hex()))
	sb.WriteString(fmt.Sprintf("TX Nonce:   %d\n", r.TxNonce))
	sb.WriteString(fmt.Sprintf("Auth Nonce: %d\n", r.AuthNonce))
	sb.WriteString(fmt.Sprintf("Gas Limit:  %d\n", r.GasLimit))
	sb.WriteString(fmt.Sprintf("Raw TX:     %s\n", hexutil.Encode(r.RawTx)))
	return sb.String()
}

// FormatGasBreakdown formats an intrinsic gas breakdown for display.
func FormatGasBreakdown(b *GasBreakdown) string {
	var sb strings.Builder

	sb.WriteString("\n--- Intrinsic Gas Breakdown ---\n\n")
	sb.WriteString(fmt.Sprintf("  Base:        %d\n", b.BaseGas))
	sb.WriteString(fmt.Sprintf("  Calldata:    %d\n", b.DataGas))
	sb.WriteString(fmt.Sprintf("  Access list: %d\n", b.AccessListGas))
	sb.WriteString(fmt.Sprintf("  Auth list:   %d\n", b.AuthListGas))
	if b.AuthRefund > 0 {
		sb.WriteString(fmt.Sprintf("  Auth refund: -%d\n", b.AuthRefund))
	}
	sb.WriteString(fmt.Sprintf("  Total:       %d\n", b.Total))
	return sb.String()
}

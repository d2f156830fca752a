package setcode

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ProbeStatus is the tri-state outcome of a capability probe.
type ProbeStatus string

const (
	// ProbeSupported means the node returned a gas estimate for the
	// delegated call: it understands SetCode delegation semantics.
	ProbeSupported ProbeStatus = "supported"

	// ProbeUnsupported means the node answered with a protocol-level
	// rejection of the probe: a confirmed negative.
	ProbeUnsupported ProbeStatus = "unsupported"

	// ProbeIndeterminate means the probe could not be classified: the
	// endpoint was unreachable, timed out, answered garbage, or rejected
	// the request before validating its content. Never treat this as
	// proof of non-support.
	ProbeIndeterminate ProbeStatus = "indeterminate"
)

// ProbeResult is the outcome of a single capability probe. It is built per
// call and never persisted.
type ProbeResult struct {
	Status      ProbeStatus
	GasEstimate uint64
	RawResponse json.RawMessage
	Err         error
}

// Supported reports a confirmed positive.
func (r ProbeResult) Supported() bool { return r.Status == ProbeSupported }

// Prober checks whether an RPC endpoint understands EIP-7702 delegation. The
// probe costs nothing and mutates no state: it estimates a call against a
// dummy address whose code is overridden with a delegation designator
// pointing at the ecrecover precompile.
type Prober struct {
	client *Client
}

// NewProber creates a prober for the given endpoint. timeout bounds the
// single HTTP round trip the probe makes.
func NewProber(rpcURL string, timeout time.Duration) *Prober {
	return &Prober{client: NewClient(rpcURL, timeout)}
}

// NewProberWithClient wraps an existing client.
func NewProberWithClient(client *Client) *Prober {
	return &Prober{client: client}
}

// probeCallData builds a 96-byte ecrecover-shaped input: 32 zero bytes (r),
// 32 bytes ending in 0x01 (s), 32 zero bytes (v). Under the override the
// dummy address delegates to ecrecover, so a supporting node executes the
// precompile and prices the call.
func probeCallData() []byte {
	data := make([]byte, 96)
	data[63] = 0x01
	return data
}

// Probe classifies the endpoint's EIP-7702 support. A numeric estimate means
// supported; a protocol rejection of the probe's semantics means unsupported;
// transport failures, timeouts and pre-validation rejections are
// indeterminate, never a confirmed negative.
func (p *Prober) Probe(ctx context.Context) ProbeResult {
	args := CallArgs{
		From: ProbeDummyAddress,
		To:   ProbeDummyAddress,
		Data: probeCallData(),
	}
	override := StateOverride{
		ProbeDummyAddress: {Code: probeDelegationCode(EcrecoverAddress)},
	}

	gas, err := p.client.EstimateGas(ctx, args, override)
	if err == nil {
		raw, _ := json.Marshal(hexutil.EncodeUint64(gas))
		return ProbeResult{
			Status:      ProbeSupported,
			GasEstimate: gas,
			RawResponse: raw,
		}
	}

	var rejection *ProtocolRejection
	if errors.As(err, &rejection) {
		status := ProbeUnsupported
		if rejection.PreValidation() {
			status = ProbeIndeterminate
		}
		raw, _ := json.Marshal(rejection)
		return ProbeResult{Status: status, RawResponse: raw, Err: err}
	}

	// Transport-level failure: unreachable endpoint, timeout, malformed
	// response. Cannot distinguish "no support" from "no answer".
	return ProbeResult{Status: ProbeIndeterminate, Err: err}
}

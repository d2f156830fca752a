package setcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DefaultRPCTimeout bounds a single JSON-RPC round trip when the caller's
// context carries no deadline of its own.
const DefaultRPCTimeout = 30 * time.Second

// Client is a minimal JSON-RPC client over HTTP. It is stateless and safe
// for concurrent use.
type Client struct {
	url        string
	httpClient *http.Client
}

// jsonrpcRequest is the JSON-RPC 2.0 request envelope.
type jsonrpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// jsonrpcResponse is the JSON-RPC 2.0 response envelope.
type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *jsonrpcError   `json:"error"`
}

type jsonrpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewClient creates a client for the given endpoint URL. A non-positive
// timeout falls back to DefaultRPCTimeout.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultRPCTimeout
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// URL returns the endpoint this client talks to.
func (c *Client) URL() string { return c.url }

// Call performs a single JSON-RPC request. Failures map onto the error
// taxonomy: *TransportError when no well-formed response arrived,
// *ProtocolRejection when the node answered with an error object.
func (c *Client) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	if params == nil {
		params = []interface{}{}
	}
	reqBody, err := json.Marshal(jsonrpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, &TransportError{Op: method, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: method, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: method, Err: err}
	}

	var rpcResp jsonrpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, &TransportError{Op: method, Err: fmt.Errorf("malformed JSON-RPC response: %w", err)}
	}

	if rpcResp.Error != nil {
		return nil, &ProtocolRejection{
			Code:    rpcResp.Error.Code,
			Message: rpcResp.Error.Message,
			Data:    strings.Trim(string(rpcResp.Error.Data), `"`),
		}
	}
	return rpcResp.Result, nil
}

// callQuantity performs a call whose result is a hex quantity string.
func (c *Client) callQuantity(ctx context.Context, method string, params []interface{}) (*big.Int, error) {
	result, err := c.Call(ctx, method, params)
	if err != nil {
		return nil, err
	}
	var quantityHex string
	if err := json.Unmarshal(result, &quantityHex); err != nil {
		return nil, &TransportError{Op: method, Err: fmt.Errorf("non-string result: %w", err)}
	}
	quantity, err := hexutil.DecodeBig(quantityHex)
	if err != nil {
		return nil, &TransportError{Op: method, Err: fmt.Errorf("invalid quantity %q: %w", quantityHex, err)}
	}
	return quantity, nil
}

// ChainID fetches the endpoint's chain id.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return c.callQuantity(ctx, "eth_chainId", nil)
}

// PendingNonce fetches the account nonce including pending transactions.
func (c *Client) PendingNonce(ctx context.Context, addr common.Address) (uint64, error) {
	nonce, err := c.callQuantity(ctx, "eth_getTransactionCount", []interface{}{addr.Hex(), "pending"})
	if err != nil {
		return 0, err
	}
	return nonce.Uint64(), nil
}

// Balance fetches the latest balance of addr in wei.
func (c *Client) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return c.callQuantity(ctx, "eth_getBalance", []interface{}{addr.Hex(), "latest"})
}

// GasPrice fetches the current gas price.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	return c.callQuantity(ctx, "eth_gasPrice", nil)
}

// MaxPriorityFee fetches the suggested tip cap, falling back to 1 gwei on
// endpoints that reject eth_maxPriorityFeePerGas.
func (c *Client) MaxPriorityFee(ctx context.Context) (*big.Int, error) {
	fee, err := c.callQuantity(ctx, "eth_maxPriorityFeePerGas", nil)
	if err != nil {
		var rejection *ProtocolRejection
		if errors.As(err, &rejection) {
			return big.NewInt(1000000000), nil
		}
		return nil, err
	}
	return fee, nil
}

// Code fetches the latest code stored at addr.
func (c *Client) Code(ctx context.Context, addr common.Address) ([]byte, error) {
	result, err := c.Call(ctx, "eth_getCode", []interface{}{addr.Hex(), "latest"})
	if err != nil {
		return nil, err
	}
	var codeHex string
	if err := json.Unmarshal(result, &codeHex); err != nil {
		return nil, &TransportError{Op: "eth_getCode", Err: err}
	}
	return hexutil.Decode(codeHex)
}

// CallArgs are the transaction-shaped arguments of eth_call/eth_estimateGas.
type CallArgs struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Value hexutil.Big    `json:"value"`
	Data  hexutil.Bytes  `json:"data"`
}

// OverrideAccount describes hypothetical account state for an estimate call.
type OverrideAccount struct {
	Code hexutil.Bytes `json:"code"`
}

// StateOverride maps addresses to their hypothetical state.
type StateOverride map[common.Address]OverrideAccount

// EstimateGas submits the 3-argument form of eth_estimateGas with a state
// override and returns the node's gas estimate.
func (c *Client) EstimateGas(ctx context.Context, args CallArgs, override StateOverride) (uint64, error) {
	gas, err := c.callQuantity(ctx, "eth_estimateGas", []interface{}{args, "latest", override})
	if err != nil {
		return 0, err
	}
	return gas.Uint64(), nil
}

// SendRawTransaction submits a serialized transaction and returns its hash.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	result, err := c.Call(ctx, "eth_sendRawTransaction", []interface{}{hexutil.Encode(raw)})
	if err != nil {
		return common.Hash{}, err
	}
	var txHash string
	if err := json.Unmarshal(result, &txHash); err != nil {
		return common.Hash{}, &TransportError{Op: "eth_sendRawTransaction", Err: err}
	}
	return common.HexToHash(txHash), nil
}

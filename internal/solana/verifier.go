package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Verifier answers whether a transaction signature refers to a confirmed,
// non-failed transaction. The payment service depends only on this interface;
// on-chain semantics stay outside the core.
type Verifier interface {
	VerifyTransaction(ctx context.Context, signature string) (bool, error)
}

// RPCVerifier checks transactions against a Solana JSON-RPC endpoint.
type RPCVerifier struct {
	rpcURL string
	client *http.Client
}

func NewRPCVerifier(rpcURL string) *RPCVerifier {
	return &RPCVerifier{
		rpcURL: rpcURL,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result *struct {
		Meta *struct {
			Err json.RawMessage `json:"err"`
		} `json:"meta"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// VerifyTransaction returns true when the transaction exists at confirmed
// commitment and did not fail. An unknown signature is reported as invalid,
// not as an error.
func (v *RPCVerifier) VerifyTransaction(ctx context.Context, signature string) (bool, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "getTransaction",
		Params: []any{signature, map[string]any{
			"commitment":                     "confirmed",
			"maxSupportedTransactionVersion": 0,
		}},
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.rpcURL, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("solana rpc: %w", err)
	}
	defer resp.Body.Close()

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decoding solana rpc response: %w", err)
	}
	if out.Error != nil {
		return false, fmt.Errorf("solana rpc: %s", out.Error.Message)
	}
	if out.Result == nil {
		return false, nil
	}
	if out.Result.Meta != nil && string(out.Result.Meta.Err) != "null" && len(out.Result.Meta.Err) > 0 {
		return false, nil
	}
	return true, nil
}

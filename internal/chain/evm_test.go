package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// rpcMock creates a test HTTP server that serves a fixed JSON-RPC response
// per method. Pass method→result pairs; any unknown method returns an RPC error.
func rpcMock(t *testing.T, responses map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int    `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if result, ok := responses[req.Method]; ok {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"result":  result,
			})
		} else {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
			})
		}
	}))
}

// rpcBadJSON creates a server that returns malformed JSON.
func rpcBadJSON(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{not valid json`)) //nolint:errcheck
	}))
}

// ---------------------------------------------------------------------------
// parseBigHex
// ---------------------------------------------------------------------------

func TestParseBigHex(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"0x64", 100, true},
		{"64", 100, true},
		{"0x0", 0, true},
		{"0xFF", 255, true},
		{"xyz", 0, false},
		{"", 0, false},
		{"0x", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			n, ok := parseBigHex(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, n.Int64())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// EVMClient: scalar reads
// ---------------------------------------------------------------------------

func TestScalarReads(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_blockNumber":         "0x10",
		"eth_chainId":             "0x3",
		"eth_gasPrice":            "0x3b9aca00",
		"eth_getTransactionCount": "0x7",
		"eth_estimateGas":         "0x3d090",
	})
	defer srv.Close()
	c := NewEVMClient(srv.URL)
	ctx := context.Background()

	bn, err := c.BlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), bn)

	id, err := c.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id.Int64())

	gp, err := c.GasPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000_000), gp)

	nonce, err := c.PendingNonce(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), nonce)

	gas, err := c.EstimateGas(ctx, "0xabc", "0xdef", []byte{0x01}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(250_000), gas)
}

func TestRPCErrorIsReturned(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{})
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).ChainID(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method not found")
}

func TestBadJSONIsReturned(t *testing.T) {
	srv := rpcBadJSON(t)
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).GasPrice(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing response")
}

func TestConnectionRefused(t *testing.T) {
	_, _, err := NewEVMClient("http://127.0.0.1:19991").Ping(context.Background())
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// EVMClient: CallContract
// ---------------------------------------------------------------------------

func TestCallContractSendsFromAndDecodes(t *testing.T) {
	var gotParams []json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Params []json.RawMessage `json:"params"`
			ID     int               `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		gotParams = req.Params
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0", "id": req.ID, "result": "0x00ff",
		})
	}))
	defer srv.Close()

	out, err := NewEVMClient(srv.URL).CallContract(context.Background(), "0xfrom", "0xto", []byte{0xab, 0xcd})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff}, out)

	require.Len(t, gotParams, 2)
	var call map[string]string
	require.NoError(t, json.Unmarshal(gotParams[0], &call))
	assert.Equal(t, "0xfrom", call["from"])
	assert.Equal(t, "0xto", call["to"])
	assert.Equal(t, "0xabcd", call["data"])
}

func TestCallContractEmptyResult(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_call": "0x"})
	defer srv.Close()

	out, err := NewEVMClient(srv.URL).CallContract(context.Background(), "", "0xto", nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

// ---------------------------------------------------------------------------
// EVMClient: code
// ---------------------------------------------------------------------------

func TestHasCode(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getCode": "0x6080604052"})
	defer srv.Close()
	ok, err := NewEVMClient(srv.URL).HasCode(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.True(t, ok)

	eoa := rpcMock(t, map[string]interface{}{"eth_getCode": "0x"})
	defer eoa.Close()
	ok, err = NewEVMClient(eoa.URL).HasCode(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.False(t, ok)
}

// ---------------------------------------------------------------------------
// EVMClient: receipts
// ---------------------------------------------------------------------------

func TestGetTransactionReceiptSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":          "0x1",
			"blockNumber":     "0x100",
			"gasUsed":         "0x5208",
			"contractAddress": "",
		},
	})
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).GetTransactionReceipt(context.Background(), "0xtxhash")
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.True(t, receipt.Succeeded())
	assert.Equal(t, uint64(256), receipt.BlockNumber)
	assert.Equal(t, uint64(21000), receipt.GasUsed)
	assert.Equal(t, "0xtxhash", receipt.Hash)
}

func TestGetTransactionReceiptPending(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).GetTransactionReceipt(context.Background(), "0xtxhash")
	require.NoError(t, err)
	assert.Nil(t, receipt)
}

func TestWaitForReceiptRevertIsNotAnError(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":      "0x0",
			"blockNumber": "0x200",
			"gasUsed":     "0x7530",
		},
	})
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).WaitForReceipt(context.Background(), "0xdead")
	require.NoError(t, err)
	assert.False(t, receipt.Succeeded())
	assert.Equal(t, uint64(30000), receipt.GasUsed)
}

func TestWaitForReceiptPollsUntilMined(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct{ ID int `json:"id"` }
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		var result interface{}
		if calls.Add(1) >= 3 {
			result = map[string]interface{}{"status": "0x1", "blockNumber": "0x1", "gasUsed": "0x1"}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": result}) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewEVMClient(srv.URL)
	c.SetPollInterval(5 * time.Millisecond)
	receipt, err := c.WaitForReceipt(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.True(t, receipt.Succeeded())
	assert.Equal(t, int32(3), calls.Load())
}

func TestWaitForReceiptHonoursContext(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	defer srv.Close()

	c := NewEVMClient(srv.URL)
	c.SetPollInterval(5 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := c.WaitForReceipt(ctx, "0xabc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not mined")
}

// ---------------------------------------------------------------------------
// EVMClient: Ping
// ---------------------------------------------------------------------------

func TestPingSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_blockNumber": "0x1312D00"})
	defer srv.Close()

	latency, block, err := NewEVMClient(srv.URL).Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(20_000_000), block)
	assert.Greater(t, latency, time.Duration(0))
}

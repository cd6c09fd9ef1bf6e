package integration_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Mohsinsiddi/mdtlockup/internal/chain"
	"github.com/Mohsinsiddi/mdtlockup/internal/config"
	"github.com/Mohsinsiddi/mdtlockup/internal/contract"
	"github.com/Mohsinsiddi/mdtlockup/internal/deploy"
	"github.com/Mohsinsiddi/mdtlockup/internal/lockup"
	csync "github.com/Mohsinsiddi/mdtlockup/internal/sync"
	"github.com/Mohsinsiddi/mdtlockup/internal/wallet"
	"github.com/Mohsinsiddi/mdtlockup/test/fixtures"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const holder = "0x70997970C51812dc3A010C7d01b50e20d17dc79C"

var (
	tokenAddr  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	lockupAddr = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// ---------------------------------------------------------------------------
// lockupNode: a JSON-RPC node answering eth_call from the fixture ABIs
// ---------------------------------------------------------------------------

type record struct {
	value     *big.Int
	period    uint8
	end       int64
	withdrawn bool
}

type lockupNode struct {
	token, lockup abi.ABI
	balance       *big.Int
	history       *big.Int
	ended         bool
	records       map[bool]record // keyed by isPrivateSale
	canWithdraw   map[bool]bool
}

func newLockupNode(t *testing.T) *lockupNode {
	t.Helper()
	load := func(name string) abi.ABI {
		entries, err := contract.LoadFromFile(fixtures.ArtifactPath(name))
		require.NoError(t, err)
		parsed, err := contract.ParseABI(entries)
		require.NoError(t, err)
		return parsed
	}
	return &lockupNode{
		token:       load("MDToken"),
		lockup:      load("MDTokenLockup"),
		balance:     new(big.Int),
		history:     new(big.Int),
		records:     map[bool]record{},
		canWithdraw: map[bool]bool{},
	}
}

func (n *lockupNode) call(to string, data []byte) ([]byte, error) {
	contractABI := n.lockup
	if common.HexToAddress(to) == tokenAddr {
		contractABI = n.token
	}
	method, err := contractABI.MethodById(data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "balanceOf":
		return method.Outputs.Pack(n.balance)
	case "token":
		return method.Outputs.Pack(tokenAddr)
	case "hasEnded":
		return method.Outputs.Pack(n.ended)
	case "earlyLateBirdParticipantsHistory":
		return method.Outputs.Pack(n.history)
	case "getLockupRecord":
		r, ok := n.records[args[0].(bool)]
		if !ok {
			r = record{value: new(big.Int)}
		}
		return method.Outputs.Pack(r.value, r.period, big.NewInt(r.end), r.withdrawn, big.NewInt(0))
	case "canWithdrawTokens":
		return method.Outputs.Pack(n.canWithdraw[args[0].(bool)])
	}
	return method.Outputs.Pack()
}

func (n *lockupNode) serve(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     int               `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		switch req.Method {
		case "eth_chainId":
			resp["result"] = "0x3"
		case "eth_blockNumber":
			resp["result"] = "0x10"
		case "eth_getCode":
			resp["result"] = "0x6080"
		case "eth_call":
			var p struct {
				To   string `json:"to"`
				Data string `json:"data"`
			}
			json.Unmarshal(req.Params[0], &p) //nolint:errcheck
			data, _ := hex.DecodeString(strings.TrimPrefix(p.Data, "0x"))
			out, err := n.call(p.To, data)
			if err != nil {
				resp["error"] = map[string]interface{}{"code": -32000, "message": err.Error()}
			} else {
				resp["result"] = "0x" + hex.EncodeToString(out)
			}
		default:
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

func options(t *testing.T, url string) lockup.Options {
	t.Helper()
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	require.NoError(t, mgr.Add("me", &wallet.Wallet{Address: holder}))

	return lockup.Options{
		Network: &chain.Network{
			Name:          "ropsten",
			ChainID:       3,
			RPCTemplates:  []string{url},
			LegacyTx:      true,
			TokenAddress:  tokenAddr.Hex(),
			LockupAddress: lockupAddr.Hex(),
		},
		Config:    cfg,
		Wallets:   mgr,
		TokenABI:  fixtures.ArtifactPath("MDToken"),
		LockupABI: fixtures.ArtifactPath("MDTokenLockup"),
	}
}

// ---------------------------------------------------------------------------
// status flow: Connect → LoadState → Assess
// ---------------------------------------------------------------------------

func TestStatusDuringSale(t *testing.T) {
	n := newLockupNode(t)
	n.balance = tokens(1000)
	n.history = tokens(800)
	n.records[true] = record{value: tokens(5000), period: 2, end: time.Date(2019, 2, 13, 0, 0, 0, 0, time.UTC).Unix()}

	s, err := lockup.Connect(context.Background(), options(t, n.serve(t).URL))
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(holder), s.Account)

	state, err := s.Client.LoadState(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(state.TokenBalance))
	assert.True(t, decimal.NewFromInt(800).Equal(state.AvailableLockupAmount()))
	assert.True(t, state.CanLockTokens())
	assert.False(t, state.CanWithdrawPrivateSale)

	v := lockup.Assess(state, false)
	assert.Equal(t, lockup.NoticeEligible, v.Notice)
	assert.True(t, v.LockEnabled)
	require.Len(t, v.Records, 1)
	assert.Equal(t, lockup.PrivateSale, v.Records[0].Sale)
	assert.Equal(t, 12, v.Records[0].Months)
	assert.True(t, decimal.NewFromInt(8300).Equal(v.Records[0].Final), "got %s", v.Records[0].Final)
	assert.False(t, v.Records[0].WithdrawEnabled)
}

func TestStatusAfterSaleEnded(t *testing.T) {
	n := newLockupNode(t)
	n.ended = true
	n.balance = tokens(10)
	n.records[false] = record{value: tokens(1000), period: 0, end: 1526000000}
	n.canWithdraw[false] = true

	s, err := lockup.Connect(context.Background(), options(t, n.serve(t).URL))
	require.NoError(t, err)

	state, err := s.Client.LoadState(context.Background())
	require.NoError(t, err)
	assert.True(t, state.EventEnded)
	assert.True(t, state.CanWithdraw(lockup.EarlyLateBird))
	assert.False(t, state.CanWithdraw(lockup.PrivateSale))

	v := lockup.Assess(state, false)
	assert.True(t, v.Closed)
	assert.False(t, v.LockEnabled)
	require.Len(t, v.Records, 1)
	assert.True(t, v.Records[0].WithdrawEnabled)
	assert.True(t, decimal.NewFromInt(1100).Equal(v.Records[0].Final))
}

func TestStatusNoPurchaseRecord(t *testing.T) {
	n := newLockupNode(t)
	n.balance = tokens(1000)

	s, err := lockup.Connect(context.Background(), options(t, n.serve(t).URL))
	require.NoError(t, err)
	state, err := s.Client.LoadState(context.Background())
	require.NoError(t, err)

	v := lockup.Assess(state, false)
	assert.Equal(t, lockup.NoticeNoRecord, v.Notice)
	assert.True(t, v.TokensNotLocked)
}

// ---------------------------------------------------------------------------
// sync flow: Truffle artifacts → registry → Connect
// ---------------------------------------------------------------------------

func TestArtifactsSyncFeedsSession(t *testing.T) {
	n := newLockupNode(t)
	n.balance = tokens(700)
	n.history = tokens(700)

	opts := options(t, n.serve(t).URL)
	opts.Network.TokenAddress = ""
	opts.Network.LockupAddress = ""
	opts.TokenABI = ""
	opts.LockupABI = ""

	reg := contract.NewRegistry(filepath.Join(t.TempDir(), "contracts.json"))
	imported, err := csync.New(reg, csync.WithRoles(deploy.Roles())).ImportArtifacts(fixtures.ArtifactsDir(), opts.Network)
	require.NoError(t, err)
	assert.Len(t, imported, 2)
	opts.Contracts = reg

	s, err := lockup.Connect(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, tokenAddr, s.Token.Address())
	assert.Equal(t, lockupAddr, s.Lockup.Address())

	state, err := s.Client.LoadState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lockup.NoticeEligible, lockup.Assess(state, false).Notice)
}

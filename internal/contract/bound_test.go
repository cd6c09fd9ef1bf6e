package contract

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hardhat account #0
const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var lockupAddr = common.HexToAddress("0x3c9dd8fac2b908de52363e654fbefe833184a9a0")

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type fakeBackend struct {
	callOut  []byte
	callErr  error
	callFrom string
	callData []byte
	estimate uint64
	estErr   error
	sentRaw  string
	chainID  int64
	nonce    uint64
	gasPrice int64
}

func (f *fakeBackend) CallContract(_ context.Context, from, _ string, data []byte) ([]byte, error) {
	f.callFrom, f.callData = from, data
	return f.callOut, f.callErr
}

func (f *fakeBackend) EstimateGas(context.Context, string, string, []byte, *big.Int) (uint64, error) {
	return f.estimate, f.estErr
}

func (f *fakeBackend) GasPrice(context.Context) (*big.Int, error) { return big.NewInt(f.gasPrice), nil }

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) { return big.NewInt(f.chainID), nil }

func (f *fakeBackend) PendingNonce(context.Context, string) (uint64, error) { return f.nonce, nil }

func (f *fakeBackend) SendRawTransaction(_ context.Context, raw string) (string, error) {
	f.sentRaw = raw
	return "0xhash", nil
}

func (f *fakeBackend) sentTx(t *testing.T) *types.Transaction {
	t.Helper()
	raw, err := hex.DecodeString(strings.TrimPrefix(f.sentRaw, "0x"))
	require.NoError(t, err)
	tx := new(types.Transaction)
	require.NoError(t, tx.UnmarshalBinary(raw))
	return tx
}

type keySigner struct{ key *ecdsa.PrivateKey }

func newKeySigner(t *testing.T) keySigner {
	t.Helper()
	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)
	return keySigner{key: key}
}

func (s keySigner) Address() common.Address { return crypto.PubkeyToAddress(s.key.PublicKey) }

func (s keySigner) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), s.key)
	if err != nil {
		return nil, err
	}
	return signed.MarshalBinary()
}

func bindLockup(t *testing.T, backend Backend) *Bound {
	t.Helper()
	b, err := Bind(lockupAddr, GetBuiltinABI(BuiltinLockup), backend)
	require.NoError(t, err)
	return b
}

// ---------------------------------------------------------------------------
// Call
// ---------------------------------------------------------------------------

func TestCallDecodesRecordAndSendsFrom(t *testing.T) {
	parsed, err := ParseABI(GetBuiltinABI(BuiltinLockup))
	require.NoError(t, err)
	out, err := parsed.Methods["getLockupRecord"].Outputs.Pack(
		big.NewInt(1000), uint8(2), big.NewInt(1600000000), true, big.NewInt(1610000000))
	require.NoError(t, err)

	backend := &fakeBackend{callOut: out}
	account := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	values, err := bindLockup(t, backend).WithCaller(account).Call(context.Background(), "getLockupRecord", true)
	require.NoError(t, err)

	require.Len(t, values, 5)
	assert.Equal(t, big.NewInt(1000), values[0])
	assert.Equal(t, uint8(2), values[1])
	assert.Equal(t, true, values[3])
	assert.Equal(t, account.Hex(), backend.callFrom)
	assert.Equal(t, parsed.Methods["getLockupRecord"].ID, backend.callData[:4])
}

func TestCallWithoutCallerOmitsFrom(t *testing.T) {
	parsed, _ := ParseABI(GetBuiltinABI(BuiltinLockup))
	out, _ := parsed.Methods["hasEnded"].Outputs.Pack(true)
	backend := &fakeBackend{callOut: out}

	values, err := bindLockup(t, backend).Call(context.Background(), "hasEnded")
	require.NoError(t, err)
	assert.Equal(t, true, values[0])
	assert.Empty(t, backend.callFrom)
}

func TestCallErrors(t *testing.T) {
	_, err := bindLockup(t, &fakeBackend{}).Call(context.Background(), "noSuchMethod")
	assert.Error(t, err)

	_, err = bindLockup(t, &fakeBackend{callErr: errors.New("boom")}).Call(context.Background(), "hasEnded")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	_, err = bindLockup(t, &fakeBackend{callOut: nil}).Call(context.Background(), "hasEnded")
	assert.Error(t, err, "empty output is a decoding error")
}

// ---------------------------------------------------------------------------
// Transact
// ---------------------------------------------------------------------------

func TestTransactWithoutSigner(t *testing.T) {
	_, err := bindLockup(t, &fakeBackend{}).Transact(context.Background(), nil, "withdrawTokens", true)
	assert.ErrorIs(t, err, ErrNoSigner)
}

func TestTransactDynamicFee(t *testing.T) {
	backend := &fakeBackend{chainID: 1, nonce: 9, gasPrice: 100}
	signer := newKeySigner(t)

	hash, err := bindLockup(t, backend).WithSigner(signer).
		Transact(context.Background(), &TransactOpts{GasLimit: 200_000}, "withdrawTokens", false)
	require.NoError(t, err)
	assert.Equal(t, "0xhash", hash)

	tx := backend.sentTx(t)
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, uint64(200_000), tx.Gas())
	assert.Equal(t, uint64(9), tx.Nonce())
	assert.Equal(t, big.NewInt(200), tx.GasFeeCap())
	assert.Equal(t, lockupAddr, *tx.To())

	from, err := types.Sender(types.NewLondonSigner(big.NewInt(1)), tx)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), from)
}

func TestTransactLegacyEstimatesGas(t *testing.T) {
	backend := &fakeBackend{chainID: 3, gasPrice: 20, estimate: 54_321}

	_, err := bindLockup(t, backend).WithSigner(newKeySigner(t)).
		Transact(context.Background(), &TransactOpts{Legacy: true}, "withdrawTokens", true)
	require.NoError(t, err)

	tx := backend.sentTx(t)
	assert.Equal(t, uint8(types.LegacyTxType), tx.Type())
	assert.Equal(t, uint64(54_321), tx.Gas())
	assert.Equal(t, big.NewInt(20), tx.GasPrice())
	assert.Equal(t, int64(3), tx.ChainId().Int64())
}

func TestTransactFallsBackWhenEstimateFails(t *testing.T) {
	backend := &fakeBackend{chainID: 1, gasPrice: 1, estErr: errors.New("execution reverted")}

	_, err := bindLockup(t, backend).WithSigner(newKeySigner(t)).
		Transact(context.Background(), nil, "withdrawTokens", true)
	require.NoError(t, err)
	assert.Equal(t, uint64(200_000), backend.sentTx(t).Gas())
}

// ---------------------------------------------------------------------------
// Deploy
// ---------------------------------------------------------------------------

func TestDeployAppendsConstructorArgs(t *testing.T) {
	backend := &fakeBackend{chainID: 1337, gasPrice: 1}
	art := &Artifact{
		ContractName: "MDTokenLockup",
		ABI:          GetBuiltinABI(BuiltinLockup),
		Bytecode:     []byte{0x60, 0x80},
	}

	_, err := Deploy(context.Background(), backend, newKeySigner(t), &TransactOpts{GasLimit: 3_712_388, Legacy: true},
		art, common.HexToAddress("0x814e0908b12A99FeCf5BC101bB5d0b8B5cDf7d26"), big.NewInt(42))
	require.NoError(t, err)

	tx := backend.sentTx(t)
	assert.Nil(t, tx.To(), "creation tx has no recipient")
	assert.Equal(t, uint64(3_712_388), tx.Gas())
	require.Len(t, tx.Data(), 2+64)
	assert.Equal(t, []byte{0x60, 0x80}, tx.Data()[:2])
	assert.Equal(t, int64(42), new(big.Int).SetBytes(tx.Data()[2+32:]).Int64())
}

func TestDeployRejectsWrongArgCount(t *testing.T) {
	art := &Artifact{ContractName: "MDTokenLockup", ABI: GetBuiltinABI(BuiltinLockup), Bytecode: []byte{0x60}}
	_, err := Deploy(context.Background(), &fakeBackend{}, newKeySigner(t), nil, art)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MDTokenLockup")
}

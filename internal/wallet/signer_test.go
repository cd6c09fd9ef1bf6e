package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hardhat/Anvil test account #0; never fund on mainnet.
const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func signingWallet(t *testing.T, keys KeyBackend) *Wallet {
	t.Helper()
	ref, err := keys.Store("signer", testPrivKeyHex)
	require.NoError(t, err)
	return &Wallet{Name: "signer", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}
}

// ---------------------------------------------------------------------------
// Signer.Address / Unlock
// ---------------------------------------------------------------------------

func TestSignerAddress(t *testing.T) {
	s := NewSigner(&Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning}, NewInMemoryKeystore())
	assert.Equal(t, common.HexToAddress(testSignerAddr), s.Address())
	assert.Equal(t, "w", s.Name())
}

func TestSignerUnlock(t *testing.T) {
	keys := NewInMemoryKeystore()
	w := signingWallet(t, keys)
	require.NoError(t, NewSigner(w, keys).Unlock())

	mismatched := *w
	mismatched.Address = "0x0000000000000000000000000000000000000001"
	err := NewSigner(&mismatched, keys).Unlock()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "belongs to")
}

func TestSignerUnlockMissingKey(t *testing.T) {
	w := &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning, KeyRef: "mdtlockup.w"}
	err := NewSigner(w, NewInMemoryKeystore()).Unlock()
	assert.ErrorIs(t, err, ErrKeyUnavailable)
}

// ---------------------------------------------------------------------------
// Signer.SignTx
// ---------------------------------------------------------------------------

func TestSignTxWatchOnlyError(t *testing.T) {
	w := &Wallet{Name: "watcher", Address: testSignerAddr, Type: TypeWatchOnly}
	tx := types.NewTransaction(0, common.Address{1}, big.NewInt(0), 21000, big.NewInt(1), nil)

	_, err := NewSigner(w, NewInMemoryKeystore()).SignTx(tx, big.NewInt(1))
	assert.ErrorIs(t, err, ErrWatchOnly)
}

func TestSignTxCorruptKey(t *testing.T) {
	keys := NewInMemoryKeystore()
	ref, _ := keys.Store("bad", "zz")
	w := &Wallet{Name: "bad", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}
	tx := types.NewTransaction(0, common.Address{1}, big.NewInt(0), 21000, big.NewInt(1), nil)

	_, err := NewSigner(w, keys).SignTx(tx, big.NewInt(1))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestSignTxRecoversSender(t *testing.T) {
	keys := NewInMemoryKeystore()
	s := NewSigner(signingWallet(t, keys), keys)

	cases := []int64{1, 3, 1337}
	for _, id := range cases {
		chainID := big.NewInt(id)
		tx := types.NewTransaction(7, common.Address{1}, big.NewInt(0), 250_000, big.NewInt(1e9), []byte{0x01})

		raw, err := s.SignTx(tx, chainID)
		require.NoError(t, err)

		decoded := new(types.Transaction)
		require.NoError(t, decoded.UnmarshalBinary(raw))
		from, err := types.Sender(types.NewLondonSigner(chainID), decoded)
		require.NoError(t, err)
		assert.Equal(t, s.Address(), from, "chain %d", id)
		assert.Equal(t, id, decoded.ChainId().Int64())
	}
}

func TestSignTxFileKeystore(t *testing.T) {
	ks := testKeystore(t, nil)
	s := NewSigner(signingWallet(t, ks), ks)

	tx := types.NewTransaction(0, common.Address{1}, big.NewInt(1e18), 21000, big.NewInt(1e9), nil)
	raw, err := s.SignTx(tx, big.NewInt(1))
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestKeySigner(t *testing.T) {
	key, err := crypto.HexToECDSA(testPrivKeyHex)
	require.NoError(t, err)

	s := NewKeySigner("deployer", key)
	assert.Equal(t, common.HexToAddress(testSignerAddr), s.Address())
	require.NoError(t, s.Unlock())
}

package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs EVM transactions for a signing wallet.
type Signer struct {
	name    string
	address common.Address
	load    func() (*ecdsa.PrivateKey, error)
}

// NewSigner creates a signer that fetches the wallet's key from keys on demand.
func NewSigner(w *Wallet, keys KeyBackend) *Signer {
	return &Signer{
		name:    w.Name,
		address: common.HexToAddress(w.Address),
		load: func() (*ecdsa.PrivateKey, error) {
			if w.Type != TypeSigning {
				return nil, fmt.Errorf("wallet %q: %w", w.Name, ErrWatchOnly)
			}
			hexKey, err := keys.Retrieve(w.KeyRef)
			if err != nil {
				return nil, fmt.Errorf("wallet %q: %w", w.Name, err)
			}
			key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
			if err != nil {
				return nil, fmt.Errorf("wallet %q: %w: %v", w.Name, ErrInvalidKey, err)
			}
			return key, nil
		},
	}
}

// NewKeySigner wraps an in-memory key, e.g. one derived from a mnemonic.
func NewKeySigner(name string, key *ecdsa.PrivateKey) *Signer {
	return &Signer{
		name:    name,
		address: crypto.PubkeyToAddress(key.PublicKey),
		load:    func() (*ecdsa.PrivateKey, error) { return key, nil },
	}
}

// Name returns the wallet name the signer was built from.
func (s *Signer) Name() string { return s.name }

// Address returns the signing account.
func (s *Signer) Address() common.Address { return s.address }

// Unlock checks that the private key is reachable and matches the address.
func (s *Signer) Unlock() error {
	key, err := s.load()
	if err != nil {
		return err
	}
	if got := crypto.PubkeyToAddress(key.PublicKey); got != s.address {
		return fmt.Errorf("wallet %q: stored key belongs to %s", s.name, got.Hex())
	}
	return nil
}

// SignTx signs an EVM transaction and returns the raw signed bytes.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	key, err := s.load()
	if err != nil {
		return nil, err
	}

	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshaling signed tx: %w", err)
	}
	return raw, nil
}

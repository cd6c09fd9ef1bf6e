package contract

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/mdtlockup/internal/config"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrNoSigner is returned when a write is attempted on a read-only binding.
var ErrNoSigner = errors.New("contract binding has no signer")

// Backend is the node access a binding needs. *chain.EVMClient satisfies it.
type Backend interface {
	CallContract(ctx context.Context, from, to string, data []byte) ([]byte, error)
	EstimateGas(ctx context.Context, from, to string, data []byte, value *big.Int) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonce(ctx context.Context, address string) (uint64, error)
	SendRawTransaction(ctx context.Context, rawTx string) (string, error)
}

// TxSigner signs transactions for one account. *wallet.Signer satisfies it.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error)
}

// TransactOpts tunes a write. A zero GasLimit means estimate.
type TransactOpts struct {
	GasLimit uint64
	Legacy   bool
	Value    *big.Int
}

// Bound is a contract interface bound to an address and a session.
type Bound struct {
	address common.Address
	entries []ABIEntry
	abi     abi.ABI
	backend Backend
	from    common.Address
	signer  TxSigner
}

// Bind parses entries and binds them to address.
func Bind(address common.Address, entries []ABIEntry, backend Backend) (*Bound, error) {
	parsed, err := ParseABI(entries)
	if err != nil {
		return nil, err
	}
	return &Bound{address: address, entries: entries, abi: parsed, backend: backend}, nil
}

// WithSigner enables writes and makes the signer's account the caller of reads.
func (b *Bound) WithSigner(s TxSigner) *Bound {
	b.signer = s
	b.from = s.Address()
	return b
}

// WithCaller sets the from address used for reads without enabling writes.
func (b *Bound) WithCaller(from common.Address) *Bound {
	b.from = from
	return b
}

// Address returns the bound contract address.
func (b *Bound) Address() common.Address { return b.address }

// Entries returns the interface the binding was built from.
func (b *Bound) Entries() []ABIEntry { return b.entries }

// Call runs a read-only method and returns its decoded outputs.
func (b *Bound) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}
	var from string
	if b.from != (common.Address{}) {
		from = b.from.Hex()
	}
	out, err := b.backend.CallContract(ctx, from, b.address.Hex(), data)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}
	values, err := b.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", method, err)
	}
	return values, nil
}

// Transact signs and broadcasts a call to method. Returns the transaction hash.
func (b *Bound) Transact(ctx context.Context, opts *TransactOpts, method string, args ...interface{}) (string, error) {
	if b.signer == nil {
		return "", ErrNoSigner
	}
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", method, err)
	}
	to := b.address
	return sendTx(ctx, b.backend, b.signer, opts, &to, data)
}

// Deploy sends a creation transaction for art with constructor args.
// Returns the transaction hash.
func Deploy(ctx context.Context, backend Backend, signer TxSigner, opts *TransactOpts, art *Artifact, args ...interface{}) (string, error) {
	encoded, err := EncodeConstructorArgs(art.ABI, args...)
	if err != nil {
		return "", fmt.Errorf("%s: %w", art.ContractName, err)
	}
	data := append(append([]byte{}, art.Bytecode...), encoded...)
	return sendTx(ctx, backend, signer, opts, nil, data)
}

func sendTx(ctx context.Context, backend Backend, signer TxSigner, opts *TransactOpts, to *common.Address, data []byte) (string, error) {
	if opts == nil {
		opts = &TransactOpts{}
	}
	value := opts.Value
	if value == nil {
		value = big.NewInt(0)
	}
	from := signer.Address()

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("getting chain id: %w", err)
	}
	gasPrice, err := backend.GasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("getting gas price: %w", err)
	}
	nonce, err := backend.PendingNonce(ctx, from.Hex())
	if err != nil {
		return "", fmt.Errorf("getting nonce: %w", err)
	}

	gas := opts.GasLimit
	if gas == 0 {
		var toHex string
		if to != nil {
			toHex = to.Hex()
		}
		gas, err = backend.EstimateGas(ctx, from.Hex(), toHex, data, value)
		if err != nil {
			gas = config.GasLimitContractCall
		}
	}

	var tx *types.Transaction
	if opts.Legacy {
		tx = types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gas,
			To:       to,
			Value:    value,
			Data:     data,
		})
	} else {
		tx = types.NewTx(&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: gasPrice,
			GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
			Gas:       gas,
			To:        to,
			Value:     value,
			Data:      data,
		})
	}

	raw, err := signer.SignTx(tx, chainID)
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}
	hash, err := backend.SendRawTransaction(ctx, "0x"+hex.EncodeToString(raw))
	if err != nil {
		return "", fmt.Errorf("broadcasting transaction: %w", err)
	}
	return hash, nil
}

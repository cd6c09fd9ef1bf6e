// Package ens resolves .eth names to addresses through the mainnet ENS registry.
package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// RegistryAddress is the ENS registry on Ethereum mainnet.
const RegistryAddress = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

var (
	// resolver(bytes32)
	selectorResolver = []byte{0x01, 0x78, 0xb8, 0xbf}
	// addr(bytes32)
	selectorAddr = []byte{0x3b, 0x3b, 0x57, 0xde}
)

// ErrNotFound is returned when a name has no resolver or no address record.
var ErrNotFound = errors.New("ens name not found")

// Caller runs eth_call. chain.EVMClient satisfies it.
type Caller interface {
	CallContract(ctx context.Context, from, to string, data []byte) ([]byte, error)
}

// IsName reports whether s looks like an ENS name rather than a hex address.
func IsName(s string) bool {
	return strings.HasSuffix(strings.ToLower(s), ".eth") && !common.IsHexAddress(s)
}

// Resolve looks up the resolver of name in the registry, then asks it for addr(node).
func Resolve(ctx context.Context, c Caller, name string) (common.Address, error) {
	node := Namehash(strings.ToLower(name))

	out, err := c.CallContract(ctx, "", RegistryAddress, append(selectorResolver, node[:]...))
	if err != nil {
		return common.Address{}, fmt.Errorf("querying ENS registry: %w", err)
	}
	resolver, ok := wordToAddress(out)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: no resolver for %q", ErrNotFound, name)
	}

	out, err = c.CallContract(ctx, "", resolver.Hex(), append(selectorAddr, node[:]...))
	if err != nil {
		return common.Address{}, fmt.Errorf("querying ENS resolver: %w", err)
	}
	addr, ok := wordToAddress(out)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: no address record for %q", ErrNotFound, name)
	}
	return addr, nil
}

// Namehash implements the EIP-137 namehash.
func Namehash(name string) [32]byte {
	var node [32]byte
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		label := keccak256([]byte(labels[i]))
		copy(node[:], keccak256(node[:], label))
	}
	return node
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// wordToAddress reads the address in the first 32-byte word; the zero address is absent.
func wordToAddress(word []byte) (common.Address, bool) {
	if len(word) < 32 {
		return common.Address{}, false
	}
	addr := common.BytesToAddress(word[12:32])
	return addr, addr != (common.Address{})
}

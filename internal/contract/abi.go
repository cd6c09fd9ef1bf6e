package contract

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"golang.org/x/crypto/sha3"
)

// ABIEntry is one ABI entry (function, event, constructor, fallback).
type ABIEntry struct {
	Name            string     `json:"name,omitempty"`
	Type            string     `json:"type"`
	Inputs          []ABIParam `json:"inputs"`
	Outputs         []ABIParam `json:"outputs,omitempty"`
	StateMutability string     `json:"stateMutability,omitempty"`
	Constant        bool       `json:"constant,omitempty"` // solc < 0.5 artifacts
	Payable         bool       `json:"payable,omitempty"`
	Anonymous       bool       `json:"anonymous,omitempty"`
}

// ABIParam is a parameter in an ABI entry.
type ABIParam struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Indexed    bool       `json:"indexed,omitempty"`
	Components []ABIParam `json:"components,omitempty"`
}

// IsReadFunction returns true if the function is read-only (view/pure).
func (e ABIEntry) IsReadFunction() bool {
	if e.Type != "function" {
		return false
	}
	if e.StateMutability == "" {
		return e.Constant
	}
	return e.StateMutability == "view" || e.StateMutability == "pure"
}

// IsWriteFunction returns true if the function modifies state.
func (e ABIEntry) IsWriteFunction() bool {
	return e.Type == "function" && !e.IsReadFunction()
}

// Signature returns the canonical signature, e.g. "transferAndCall(address,uint256,bytes)".
func (e ABIEntry) Signature() string {
	types := make([]string, len(e.Inputs))
	for i, in := range e.Inputs {
		types[i] = in.canonicalType()
	}
	return e.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector returns the 4-byte function selector as 0x-prefixed hex.
func (e ABIEntry) Selector() string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(e.Signature()))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

func (p ABIParam) canonicalType() string {
	if !strings.HasPrefix(p.Type, "tuple") {
		return p.Type
	}
	inner := make([]string, len(p.Components))
	for i, c := range p.Components {
		inner[i] = c.canonicalType()
	}
	return "(" + strings.Join(inner, ",") + ")" + strings.TrimPrefix(p.Type, "tuple")
}

// FindFunction returns the named function entry, or nil.
func FindFunction(entries []ABIEntry, name string) *ABIEntry {
	for i := range entries {
		if entries[i].Type == "function" && entries[i].Name == name {
			return &entries[i]
		}
	}
	return nil
}

// Functions returns the function entries split into reads and writes.
func Functions(entries []ABIEntry) (reads, writes []ABIEntry) {
	for _, e := range entries {
		switch {
		case e.IsReadFunction():
			reads = append(reads, e)
		case e.IsWriteFunction():
			writes = append(writes, e)
		}
	}
	return reads, writes
}

// ParseABI converts entries into a go-ethereum ABI for packing and unpacking.
func ParseABI(entries []ABIEntry) (abi.ABI, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return abi.ABI{}, err
	}
	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("invalid ABI: %w", err)
	}
	return parsed, nil
}

// EncodeConstructorArgs ABI-encodes constructor arguments, ready to append to bytecode.
func EncodeConstructorArgs(entries []ABIEntry, args ...interface{}) ([]byte, error) {
	parsed, err := ParseABI(entries)
	if err != nil {
		return nil, err
	}
	if len(parsed.Constructor.Inputs) != len(args) {
		return nil, fmt.Errorf("constructor takes %d arguments, got %d", len(parsed.Constructor.Inputs), len(args))
	}
	encoded, err := parsed.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("encoding constructor arguments: %w", err)
	}
	return encoded, nil
}

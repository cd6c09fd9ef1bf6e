package contract

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Fetcher retrieves contract interface descriptors from URLs or files.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a new descriptor fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: 15 * time.Second}}
}

// Fetch loads a descriptor from source: http(s) URLs are fetched, anything
// else is read as a local path.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]ABIEntry, error) {
	if IsURL(source) {
		return f.FetchFromURL(ctx, source)
	}
	return LoadFromFile(source)
}

// FetchFromURL fetches a descriptor (raw ABI array or build artifact) from a URL.
func (f *Fetcher) FetchFromURL(ctx context.Context, url string) ([]ABIEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching ABI from URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching ABI from %s: HTTP %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading ABI response: %w", err)
	}
	entries, err := ParseDescriptor(body)
	if err != nil {
		return nil, err
	}
	return entries, validateABI(entries, url)
}

// LoadFromFile loads a descriptor (raw ABI array or build artifact) from disk.
func LoadFromFile(path string) ([]ABIEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ABI file %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("ABI file is empty: %s", path)
	}
	entries, err := ParseDescriptor(data)
	if err != nil {
		return nil, err
	}
	return entries, validateABI(entries, path)
}

// ParseDescriptor accepts either a raw ABI array or an object with an "abi" key
// (Truffle, Hardhat and Foundry artifacts).
func ParseDescriptor(data []byte) ([]ABIEntry, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			ABI json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("invalid artifact JSON: %w", err)
		}
		if len(wrapped.ABI) < 2 || wrapped.ABI[0] != '[' {
			return nil, fmt.Errorf("descriptor is a JSON object without an \"abi\" array")
		}
		data = wrapped.ABI
	}
	return parseABI(data)
}

func parseABI(data []byte) ([]ABIEntry, error) {
	var entries []ABIEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid ABI JSON: expected an array of function/event definitions: %w", err)
	}
	return entries, nil
}

// Artifact is a compiled contract: interface, creation bytecode and, for
// Truffle builds, the addresses it was migrated to.
type Artifact struct {
	ContractName string
	ABI          []ABIEntry
	Bytecode     []byte
	Networks     map[string]ArtifactNetwork // keyed by network id
}

// ArtifactNetwork is one entry of a Truffle artifact's "networks" map.
type ArtifactNetwork struct {
	Address         string `json:"address"`
	TransactionHash string `json:"transactionHash,omitempty"`
}

// AddressFor returns the address recorded for a network id.
func (a *Artifact) AddressFor(networkID int64) (string, bool) {
	n, ok := a.Networks[strconv.FormatInt(networkID, 10)]
	if !ok || n.Address == "" {
		return "", false
	}
	return n.Address, true
}

// LoadArtifact reads a deployable artifact. Bytecode is mandatory.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read artifact file: %w", err)
	}

	var raw struct {
		ContractName string                     `json:"contractName"`
		ABI          json.RawMessage            `json:"abi"`
		Bytecode     json.RawMessage            `json:"bytecode"`
		Networks     map[string]ArtifactNetwork `json:"networks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid artifact JSON: %w", err)
	}
	if len(raw.ABI) < 2 || raw.ABI[0] != '[' {
		return nil, fmt.Errorf("artifact has no \"abi\" array: %s", path)
	}
	entries, err := parseABI(raw.ABI)
	if err != nil {
		return nil, fmt.Errorf("parsing artifact ABI: %w", err)
	}
	if err := validateABI(entries, path); err != nil {
		return nil, err
	}

	bcHex, err := extractBytecodeHex(raw.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("extracting bytecode from artifact: %w", err)
	}
	bcHex = strings.TrimPrefix(bcHex, "0x")
	if bcHex == "" {
		return nil, fmt.Errorf("artifact bytecode is empty, cannot deploy an interface or abstract contract: %s", path)
	}
	if strings.Contains(bcHex, "__") {
		return nil, fmt.Errorf("artifact bytecode has unlinked libraries: %s", path)
	}
	bytecode, err := hex.DecodeString(bcHex)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode hex in artifact: %w", err)
	}

	name := raw.ContractName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &Artifact{ContractName: name, ABI: entries, Bytecode: bytecode, Networks: raw.Networks}, nil
}

// extractBytecodeHex handles the common artifact formats:
//   - Truffle/Hardhat: "bytecode": "0x608060..."
//   - Foundry:         "bytecode": {"object": "0x608060..."}
func extractBytecodeHex(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("no bytecode field")
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strings.TrimSpace(str), nil
	}
	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Object != "" {
		return strings.TrimSpace(obj.Object), nil
	}
	return "", fmt.Errorf("bytecode field is neither a hex string nor a {\"object\":\"0x...\"} object")
}

// validateABI checks that the parsed ABI has at least one function, event or constructor.
func validateABI(entries []ABIEntry, source string) error {
	for _, e := range entries {
		if e.Type == "function" || e.Type == "event" || e.Type == "constructor" {
			return nil
		}
	}
	return fmt.Errorf("ABI has no functions or events: %s", source)
}

// IsURL reports whether source should be fetched over HTTP.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

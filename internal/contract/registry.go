package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ErrContractNotFound is returned when a contract is not found.
var ErrContractNotFound = errors.New("contract not found")

// Roles the lockup client resolves contracts by.
const (
	RoleToken  = "token"
	RoleLockup = "lockup"
)

// Entry is a stored contract.
type Entry struct {
	Name       string     `json:"name"`
	Network    string     `json:"network"`
	Address    string     `json:"address"`
	Role       string     `json:"role,omitempty"`
	BuiltinID  string     `json:"builtin,omitempty"`
	ABI        []ABIEntry `json:"abi,omitempty"`
	ABIURL     string     `json:"abi_url,omitempty"`
	Deployer   string     `json:"deployer,omitempty"`
	TxHash     string     `json:"tx_hash,omitempty"`
	DeployedAt string     `json:"deployed_at,omitempty"`
}

// Interface returns the entry's ABI from, in order, its inline ABI or its built-in.
// Entries carrying only an ABIURL return nil; the caller fetches those.
func (e *Entry) Interface() []ABIEntry {
	if len(e.ABI) > 0 {
		return e.ABI
	}
	if e.BuiltinID != "" {
		return GetBuiltinABI(e.BuiltinID)
	}
	return nil
}

// Registry stores and retrieves contract entries in a JSON file.
type Registry struct {
	path      string
	contracts map[string]*Entry // key: "name@network"
}

// NewRegistry creates a Registry backed by a JSON file.
func NewRegistry(path string) *Registry {
	return &Registry{
		path:      path,
		contracts: make(map[string]*Entry),
	}
}

// Load reads stored contracts from disk. A missing file is an empty registry.
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing %s: %w", r.path, err)
	}
	for i := range entries {
		e := &entries[i]
		r.contracts[key(e.Name, e.Network)] = e
	}
	return nil
}

// Save writes all contracts to disk.
func (r *Registry) Save() error {
	all := r.All()
	entries := make([]Entry, len(all))
	for i, e := range all {
		entries[i] = *e
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o600)
}

// Add adds or updates a contract entry. A new entry holding a role takes the
// role away from any other entry on the same network.
func (r *Registry) Add(e *Entry) {
	if e.Role != "" {
		for _, other := range r.contracts {
			if other.Role == e.Role && strings.EqualFold(other.Network, e.Network) {
				other.Role = ""
			}
		}
	}
	r.contracts[key(e.Name, e.Network)] = e
}

// Get returns a contract by name and network.
func (r *Registry) Get(name, network string) (*Entry, error) {
	e, ok := r.contracts[key(name, network)]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, network)
	}
	return e, nil
}

// GetByRole returns the contract filling role on network.
func (r *Registry) GetByRole(role, network string) (*Entry, error) {
	for _, e := range r.contracts {
		if e.Role == role && strings.EqualFold(e.Network, network) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: no %s contract on %s", ErrContractNotFound, role, network)
}

// All returns all registered contracts ordered by network then name.
func (r *Registry) All() []*Entry {
	out := make([]*Entry, 0, len(r.contracts))
	for _, e := range r.contracts {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Network != out[j].Network {
			return out[i].Network < out[j].Network
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Remove deletes a contract entry.
func (r *Registry) Remove(name, network string) error {
	k := key(name, network)
	if _, ok := r.contracts[k]; !ok {
		return fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, network)
	}
	delete(r.contracts, k)
	return nil
}

func key(name, network string) string {
	return strings.ToLower(name + "@" + network)
}

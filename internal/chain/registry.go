package chain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNetworkNotFound is returned when a network is not in the registry.
var ErrNetworkNotFound = errors.New("network not found")

// ErrMissingInfuraToken is returned when an Infura network is used without a token.
var ErrMissingInfuraToken = errors.New("infura token not set (export MDT_INFURA_TOKEN or add it to .env)")

// Network holds everything needed to talk to one deployment target.
type Network struct {
	Name         string   `json:"name"`
	DisplayName  string   `json:"display_name"`
	ChainID      int64    `json:"chain_id"` // 0 = accept whatever the node reports
	RPCTemplates []string `json:"rpcs"`     // "%s" is replaced by the Infura token
	Explorer     string   `json:"explorer"`
	GasLimit     uint64   `json:"gas_limit"`     // default gas for deployments without an explicit limit
	LegacyTx     bool     `json:"legacy_tx"`     // pre-London nodes
	AccountIndex uint32   `json:"account_index"` // HD derivation index used by deploy

	// Known deployment of the lockup dapp, if any.
	TokenAddress  string `json:"token_address,omitempty"`
	LockupAddress string `json:"lockup_address,omitempty"`
	TokenABIURL   string `json:"token_abi_url,omitempty"`
	LockupABIURL  string `json:"lockup_abi_url,omitempty"`
}

// Registry is the network registry.
type Registry struct {
	networks []Network
	byName   map[string]*Network
}

// NewRegistry returns the registry of the networks the contracts ship to.
func NewRegistry() *Registry {
	networks := allNetworks()
	r := &Registry{
		networks: networks,
		byName:   make(map[string]*Network, len(networks)),
	}
	for i := range r.networks {
		n := &r.networks[i]
		r.byName[strings.ToLower(n.Name)] = n
	}
	return r
}

// All returns every network in the registry.
func (r *Registry) All() []Network {
	return r.networks
}

// Names lists network names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.networks))
	for i, n := range r.networks {
		names[i] = n.Name
	}
	return names
}

// GetByName finds a network by name, case-insensitively.
func (r *Registry) GetByName(name string) (*Network, error) {
	n, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNetworkNotFound, name)
	}
	return n, nil
}

// NeedsInfura reports whether the network's RPCs require a token.
func (n *Network) NeedsInfura() bool {
	for _, t := range n.RPCTemplates {
		if strings.Contains(t, "%s") {
			return true
		}
	}
	return false
}

// RPCs expands the RPC templates with the Infura token.
func (n *Network) RPCs(infuraToken string) ([]string, error) {
	if n.NeedsInfura() && infuraToken == "" {
		return nil, ErrMissingInfuraToken
	}
	out := make([]string, 0, len(n.RPCTemplates))
	for _, t := range n.RPCTemplates {
		if strings.Contains(t, "%s") {
			t = fmt.Sprintf(t, infuraToken)
		}
		out = append(out, t)
	}
	return out, nil
}

// AcceptsChainID reports whether a node reporting id may serve this network.
func (n *Network) AcceptsChainID(id int64) bool {
	return n.ChainID == 0 || n.ChainID == id
}

// TxURL returns an explorer link for a transaction, or "" when there is no explorer.
func (n *Network) TxURL(hash string) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/tx/" + hash
}

// AddressURL returns an explorer link for an address.
func (n *Network) AddressURL(addr string) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/address/" + addr
}

func allNetworks() []Network {
	return []Network{
		{
			Name:         "development",
			DisplayName:  "Local development node",
			ChainID:      0,
			RPCTemplates: []string{"http://localhost:8545"},
			GasLimit:     4_712_388,
			LegacyTx:     true,
		},
		{
			Name:         "ropsten",
			DisplayName:  "Ropsten (local node)",
			ChainID:      3,
			RPCTemplates: []string{"http://localhost:8546"},
			Explorer:     "https://ropsten.etherscan.io",
			GasLimit:     4_712_388,
			LegacyTx:     true,
		},
		{
			Name:         "ropstenInfura",
			DisplayName:  "Ropsten (Infura)",
			ChainID:      3,
			RPCTemplates: []string{"https://ropsten.infura.io/v3/%s"},
			Explorer:     "https://ropsten.etherscan.io",
			GasLimit:     712_388,
			LegacyTx:     true,
			TokenAddress: "0xe3e692009828a9d44112ffac9aa62d882be3acbe",
		},
		{
			Name:          "mainnetInfura",
			DisplayName:   "Ethereum Mainnet (Infura)",
			ChainID:       1,
			RPCTemplates:  []string{"https://mainnet.infura.io/v3/%s"},
			Explorer:      "https://etherscan.io",
			GasLimit:      712_388,
			AccountIndex:  4,
			TokenAddress:  "0x814e0908b12A99FeCf5BC101bB5d0b8B5cDf7d26",
			LockupAddress: "0x3c9dd8fac2b908de52363e654fbefe833184a9a0",
			TokenABIURL:   "MDToken.json",
			LockupABIURL:  "MDTokenLockup.json",
		},
	}
}

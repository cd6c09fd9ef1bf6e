// Package sync imports known deployments into the contract registry, either
// from a shared deployments manifest or from the "networks" map of a Truffle
// build directory.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Mohsinsiddi/mdtlockup/internal/chain"
	"github.com/Mohsinsiddi/mdtlockup/internal/contract"
	"github.com/sirupsen/logrus"
)

// ErrNothingImported is returned when a source holds no deployment for the network.
var ErrNothingImported = errors.New("no deployments found")

// Manifest is the structure of a deployments.json manifest.
type Manifest struct {
	Contracts map[string]map[string]ManifestEntry `json:"contracts"`
}

// ManifestEntry is a single contract deployment entry.
type ManifestEntry struct {
	Address string `json:"address"`
	ABIURL  string `json:"abi_url,omitempty"`
	Role    string `json:"role,omitempty"`
}

// Syncer writes imported deployments into a contract registry.
type Syncer struct {
	reg     *contract.Registry
	fetcher *contract.Fetcher
	client  *http.Client
	log     logrus.FieldLogger
	roles   map[string]string
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets the logger used for skipped entries.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Syncer) { s.log = l }
}

// WithRoles maps contract names to registry roles for artifact imports.
func WithRoles(roles map[string]string) Option {
	return func(s *Syncer) { s.roles = roles }
}

// New creates a new Syncer.
func New(reg *contract.Registry, opts ...Option) *Syncer {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	s := &Syncer{
		reg:     reg,
		fetcher: contract.NewFetcher(),
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     discard,
		roles:   map[string]string{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run imports every entry of the manifest at source (URL or file) that
// belongs to network, and saves the registry. It returns the imported entries.
func (s *Syncer) Run(ctx context.Context, source string, network *chain.Network) ([]*contract.Entry, error) {
	manifest, err := s.fetchManifest(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest: %w", err)
	}

	var imported []*contract.Entry
	for _, name := range sortedKeys(manifest.Contracts) {
		for netName, me := range manifest.Contracts[name] {
			if !sameNetwork(netName, network.Name) {
				continue
			}
			e := &contract.Entry{
				Name:    name,
				Network: network.Name,
				Address: me.Address,
				Role:    me.Role,
				ABIURL:  me.ABIURL,
			}
			if me.ABIURL != "" {
				abi, err := s.fetcher.FetchFromURL(ctx, me.ABIURL)
				if err != nil {
					// Kept without an inline ABI; the session retries the URL.
					s.log.WithError(err).WithField("contract", name).Warn("could not fetch ABI")
				} else {
					e.ABI = abi
				}
			}
			s.reg.Add(e)
			imported = append(imported, e)
		}
	}
	return imported, s.save(imported, source)
}

// ImportArtifacts reads every artifact in dir and registers the ones that
// record an address for the network's chain id.
func (s *Syncer) ImportArtifacts(dir string, network *chain.Network) ([]*contract.Entry, error) {
	if network.ChainID == 0 {
		return nil, fmt.Errorf("network %s has no fixed chain id to look up in artifacts", network.Name)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var imported []*contract.Entry
	for _, p := range paths {
		art, err := contract.LoadArtifact(p)
		if err != nil {
			s.log.WithError(err).WithField("file", filepath.Base(p)).Debug("skipping artifact")
			continue
		}
		addr, ok := art.AddressFor(network.ChainID)
		if !ok {
			continue
		}
		e := &contract.Entry{
			Name:    art.ContractName,
			Network: network.Name,
			Address: addr,
			Role:    s.roles[art.ContractName],
			ABI:     art.ABI,
		}
		if n := art.Networks[fmt.Sprintf("%d", network.ChainID)]; n.TransactionHash != "" {
			e.TxHash = n.TransactionHash
		}
		s.reg.Add(e)
		imported = append(imported, e)
	}
	return imported, s.save(imported, dir)
}

func (s *Syncer) save(imported []*contract.Entry, source string) error {
	if len(imported) == 0 {
		return fmt.Errorf("%w in %s", ErrNothingImported, source)
	}
	if err := s.reg.Save(); err != nil {
		return fmt.Errorf("saving contracts: %w", err)
	}
	return nil
}

func (s *Syncer) fetchManifest(ctx context.Context, source string) (*Manifest, error) {
	var body []byte
	if contract.IsURL(source) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
		}
		if body, err = io.ReadAll(resp.Body); err != nil {
			return nil, err
		}
	} else {
		var err error
		if body, err = os.ReadFile(source); err != nil {
			return nil, err
		}
	}

	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

func sameNetwork(a, b string) bool {
	n, err := chain.NewRegistry().GetByName(a)
	return err == nil && n.Name == b
}

func sortedKeys(m map[string]map[string]ManifestEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package deploy

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Mohsinsiddi/mdtlockup/internal/chain"
	"github.com/Mohsinsiddi/mdtlockup/internal/config"
	"github.com/Mohsinsiddi/mdtlockup/internal/contract"
	"github.com/Mohsinsiddi/mdtlockup/internal/logging"
	"github.com/Mohsinsiddi/mdtlockup/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// ErrDeployFailed is returned when a creation transaction reverts or yields no address.
var ErrDeployFailed = errors.New("deployment failed")

// Backend is the node access a deployment needs. *chain.EVMClient satisfies it.
type Backend interface {
	contract.Backend
	WaitForReceipt(ctx context.Context, hash string) (*chain.TxReceipt, error)
}

// Deployed describes one contract created by a run.
type Deployed struct {
	Migration int
	Contract  string
	Role      string
	Address   common.Address
	TxHash    string
	GasUsed   uint64
}

// Deployer runs migrations against one network.
type Deployer struct {
	network   *chain.Network
	backend   Backend
	signer    contract.TxSigner
	artifacts string
	registry  *contract.Registry
	log       *logrus.Entry
	now       func() time.Time
	timeout   time.Duration
}

// Option configures a Deployer.
type Option func(*Deployer)

// WithLogger sets the log entry.
func WithLogger(l *logrus.Entry) Option {
	return func(d *Deployer) { d.log = l }
}

// WithClock overrides time.Now. The ropsten lockup end time is computed from it.
func WithClock(now func() time.Time) Option {
	return func(d *Deployer) { d.now = now }
}

// WithRegistry records deployed contracts in r. The registry is saved after
// every successful contract.
func WithRegistry(r *contract.Registry) Option {
	return func(d *Deployer) { d.registry = r }
}

// WithReceiptTimeout bounds the wait for each creation receipt.
func WithReceiptTimeout(t time.Duration) Option {
	return func(d *Deployer) { d.timeout = t }
}

// NewDeployer prepares a run on network. artifacts is a Truffle build
// directory holding <Contract>.json files.
func NewDeployer(network *chain.Network, backend Backend, signer contract.TxSigner, artifacts string, opts ...Option) *Deployer {
	d := &Deployer{
		network:   network,
		backend:   backend,
		signer:    signer,
		artifacts: artifacts,
		log:       logging.Discard(),
		now:       time.Now,
		timeout:   config.TxDeployTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Plan lists the steps Run would execute, in order.
func (d *Deployer) Plan(migrations []Migration) []Step {
	now := d.now()
	var steps []Step
	for _, m := range migrations {
		steps = append(steps, m.Steps(d.network.Name, now)...)
	}
	return steps
}

// Run executes migrations in order and stops at the first failure. Contracts
// deployed before the failure are returned along with the error.
func (d *Deployer) Run(ctx context.Context, migrations []Migration) ([]Deployed, error) {
	now := d.now()
	addresses := make(map[string]common.Address)
	var out []Deployed

	for _, m := range migrations {
		steps := m.Steps(d.network.Name, now)
		log := d.log.WithFields(logrus.Fields{"migration": m.Number, "network": d.network.Name})
		if len(steps) == 0 {
			log.Infof("migration %s has nothing to deploy", m.Name)
			continue
		}
		for _, step := range steps {
			res, err := d.deploy(ctx, step, addresses, log)
			if err != nil {
				return out, fmt.Errorf("migration %d (%s): %w", m.Number, m.Name, err)
			}
			res.Migration = m.Number
			addresses[step.Contract] = res.Address
			out = append(out, res)

			if err := d.record(res, now); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}

func (d *Deployer) deploy(ctx context.Context, step Step, addresses map[string]common.Address, log *logrus.Entry) (Deployed, error) {
	art, err := contract.LoadArtifact(filepath.Join(d.artifacts, step.Contract+".json"))
	if err != nil {
		return Deployed{}, fmt.Errorf("%s: %w", step.Contract, err)
	}
	args, err := d.constructorArgs(art, step, addresses)
	if err != nil {
		return Deployed{}, fmt.Errorf("%s: %w", step.Contract, err)
	}

	gas := step.Gas
	if gas == 0 {
		gas = d.network.GasLimit
	}
	opts := &contract.TransactOpts{GasLimit: gas, Legacy: d.network.LegacyTx}

	log.WithFields(logrus.Fields{"contract": step.Contract, "gas": gas}).Debug("sending creation transaction")
	hash, err := contract.Deploy(ctx, d.backend, d.signer, opts, art, args...)
	if err != nil {
		return Deployed{}, fmt.Errorf("%s: %w", step.Contract, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	receipt, err := d.backend.WaitForReceipt(waitCtx, hash)
	if err != nil {
		return Deployed{}, fmt.Errorf("%s: %w", step.Contract, err)
	}
	if !receipt.Succeeded() || receipt.ContractAddress == "" {
		return Deployed{}, fmt.Errorf("%w: %s reverted in tx %s", ErrDeployFailed, step.Contract, hash)
	}

	addr := common.HexToAddress(receipt.ContractAddress)
	log.WithField("tx", hash).Infof("Deployed %s address is %s", step.Contract, addr.Hex())
	return Deployed{
		Contract: step.Contract,
		Role:     step.Role,
		Address:  addr,
		TxHash:   hash,
		GasUsed:  receipt.GasUsed,
	}, nil
}

func (d *Deployer) constructorArgs(art *contract.Artifact, step Step, addresses map[string]common.Address) ([]interface{}, error) {
	var raw []string
	if step.Args != nil {
		var err error
		if raw, err = step.Args(addresses); err != nil {
			return nil, err
		}
	}
	parsed, err := contract.ParseABI(art.ABI)
	if err != nil {
		return nil, err
	}
	return contract.ParseArgs(parsed.Constructor.Inputs, raw)
}

func (d *Deployer) record(res Deployed, at time.Time) error {
	if d.registry == nil {
		return nil
	}
	art, err := contract.LoadArtifact(filepath.Join(d.artifacts, res.Contract+".json"))
	if err != nil {
		return err
	}
	d.registry.Add(&contract.Entry{
		Name:       res.Contract,
		Network:    d.network.Name,
		Address:    res.Address.Hex(),
		Role:       res.Role,
		ABI:        art.ABI,
		Deployer:   d.signer.Address().Hex(),
		TxHash:     res.TxHash,
		DeployedAt: at.UTC().Format(time.RFC3339),
	})
	if err := d.registry.Save(); err != nil {
		return fmt.Errorf("saving contract registry: %w", err)
	}
	return nil
}

// MnemonicSigner derives the deployer account the network expects from an HD
// mnemonic. Mainnet deploys from account index 4, everything else from 0.
func MnemonicSigner(mnemonic string, network *chain.Network) (*wallet.Signer, error) {
	if strings.TrimSpace(mnemonic) == "" {
		return nil, errors.New("deployer mnemonic not set (export MDT_DEPLOYER_MNEMONIC or add it to .env)")
	}
	key, err := wallet.DeriveKey(mnemonic, network.AccountIndex)
	if err != nil {
		return nil, err
	}
	return wallet.NewKeySigner(fmt.Sprintf("%s/%d", network.Name, network.AccountIndex), key), nil
}

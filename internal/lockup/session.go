package lockup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Mohsinsiddi/mdtlockup/internal/chain"
	"github.com/Mohsinsiddi/mdtlockup/internal/config"
	"github.com/Mohsinsiddi/mdtlockup/internal/contract"
	"github.com/Mohsinsiddi/mdtlockup/internal/logging"
	"github.com/Mohsinsiddi/mdtlockup/internal/rpc"
	"github.com/Mohsinsiddi/mdtlockup/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Options configures Connect.
type Options struct {
	Network    *chain.Network
	Config     *config.Config
	Wallets    *wallet.Manager
	WalletName string // empty selects the configured default

	// Contracts overrides the network's built-in addresses. Optional.
	Contracts *contract.Registry
	Fetcher   *contract.Fetcher

	// Descriptor sources (URL or path). Empty falls back to the registry,
	// then the network's descriptor paths under ABIBase, then the built-ins.
	TokenABI  string
	LockupABI string
	ABIBase   string

	// RequireSigner fails with a wallet-locked error unless the wallet's
	// key can sign. Read-only sessions accept watch-only wallets.
	RequireSigner bool

	Logger *logrus.Entry
}

// Session is a connected account with both contracts bound.
type Session struct {
	Account  common.Address
	Wallet   *wallet.Wallet
	Provider *chain.EVMClient
	Network  *chain.Network
	Token    *contract.Bound
	Lockup   *contract.Bound
	Client   *Client
}

// Connect opens the wallet, selects an RPC endpoint, loads both contract
// interfaces and returns a session whose client is ready for LoadState.
// Failures carry the AppError kind of the panel that reports them and are
// logged before they are returned.
func Connect(ctx context.Context, opts Options) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	s, err := connect(ctx, opts, log)
	if err != nil {
		f := logrus.Fields{"kind": KindOf(err).String()}
		if opts.Network != nil {
			f["network"] = opts.Network.Name
		}
		log.WithError(err).WithFields(f).Error("connect failed")
		return nil, err
	}
	return s, nil
}

func connect(ctx context.Context, opts Options, log *logrus.Entry) (*Session, error) {
	if opts.Network == nil || opts.Config == nil || opts.Wallets == nil {
		return nil, errors.New("connect: network, config and wallets are required")
	}
	net := opts.Network

	// 1. Wallet.
	w, err := opts.Wallets.Resolve(opts.WalletName)
	if err != nil {
		return nil, newError(KindWalletMissing, "wallet not available", err)
	}
	var signer *wallet.Signer
	if opts.RequireSigner {
		if signer, err = opts.Wallets.Signer(w.Name); err != nil {
			return nil, newError(KindWalletLocked, "account cannot sign", err)
		}
		if err := signer.Unlock(); err != nil {
			return nil, newError(KindWalletLocked, "account not found, please unlock your wallet", err)
		}
	}
	account := common.HexToAddress(w.Address)
	log = log.WithFields(logrus.Fields{"network": net.Name, "account": account.Hex()})

	// 2. Provider.
	provider, err := Dial(ctx, net, opts.Config)
	if err != nil {
		return nil, err
	}
	log.WithField("rpc", provider.URL()).Debug("rpc selected")

	// 3. Contracts.
	lockupEntry := roleEntry(opts.Contracts, contract.RoleLockup, net.Name)
	tokenEntry := roleEntry(opts.Contracts, contract.RoleToken, net.Name)

	lockupAddr, err := pickAddress(lockupEntry, net.LockupAddress)
	if err != nil {
		return nil, newError(KindContractLoad, "no lockup contract known on "+net.Name, err)
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = contract.NewFetcher()
	}

	lockupABI, err := descriptor(ctx, fetcher, opts.LockupABI, lockupEntry, opts.ABIBase, net.LockupABIURL, contract.BuiltinLockup)
	if err != nil {
		return nil, newError(KindContractLoad, "failed loading token lockup contract", err)
	}
	lockup, err := bindChecked(ctx, provider, lockupAddr, lockupABI)
	if err != nil {
		return nil, newError(KindContractLoad, "error in accessing token lockup contract", err)
	}
	log.Debug("lockup contract loaded")

	tokenAddr, err := pickAddress(tokenEntry, net.TokenAddress)
	if err != nil {
		// Ask the lockup contract which token it accepts.
		out, callErr := lockup.Call(ctx, "token")
		a, ok := first(out).(common.Address)
		if callErr != nil || !ok {
			return nil, newError(KindContractLoad, "no token contract known on "+net.Name, errors.Join(err, callErr))
		}
		tokenAddr = a
	}
	tokenABI, err := descriptor(ctx, fetcher, opts.TokenABI, tokenEntry, opts.ABIBase, net.TokenABIURL, contract.BuiltinMDToken)
	if err != nil {
		return nil, newError(KindContractLoad, "failed loading token contract", err)
	}
	token, err := bindChecked(ctx, provider, tokenAddr, tokenABI)
	if err != nil {
		return nil, newError(KindContractLoad, "error in accessing token contract", err)
	}
	log.Debug("token contract loaded")

	if signer != nil {
		lockup.WithSigner(signer)
		token.WithSigner(signer)
	} else {
		lockup.WithCaller(account)
		token.WithCaller(account)
	}

	client := NewClient(account, token, lockup, provider,
		WithLogger(log.WithField("component", "lockup")),
		WithLegacyTx(net.LegacyTx),
	)
	return &Session{
		Account:  account,
		Wallet:   w,
		Provider: provider,
		Network:  net,
		Token:    token,
		Lockup:   lockup,
		Client:   client,
	}, nil
}

// Dial picks the best RPC among the network's and the user's endpoints and
// checks that it serves the expected chain.
func Dial(ctx context.Context, net *chain.Network, cfg *config.Config) (*chain.EVMClient, error) {
	urls, err := net.RPCs(cfg.InfuraToken)
	custom := cfg.GetRPCs(net.Name)
	if err != nil && len(custom) == 0 {
		return nil, newError(KindSystem, "no RPC endpoint for "+net.Name, err)
	}
	urls = append(append([]string{}, custom...), urls...)

	sctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	url, err := rpc.BestEVM(sctx, urls, rpc.ParseAlgorithm(cfg.RPCAlgorithm))
	if err != nil {
		return nil, newError(KindSystem, "no healthy RPC endpoint for "+net.Name, err)
	}

	client := chain.NewEVMClient(url)
	client.SetPollInterval(config.ReceiptPoll)
	id, err := client.ChainID(ctx)
	if err != nil {
		return nil, newError(KindSystem, "reading chain id", err)
	}
	if !net.AcceptsChainID(id.Int64()) {
		return nil, newError(KindSystem,
			fmt.Sprintf("node at %s reports chain %d, %s is chain %d", url, id.Int64(), net.Name, net.ChainID), nil)
	}
	return client, nil
}

func roleEntry(reg *contract.Registry, role, network string) *contract.Entry {
	if reg == nil {
		return nil
	}
	e, err := reg.GetByRole(role, network)
	if err != nil {
		return nil
	}
	return e
}

func pickAddress(entry *contract.Entry, fallback string) (common.Address, error) {
	addr := fallback
	if entry != nil && entry.Address != "" {
		addr = entry.Address
	}
	if addr == "" {
		return common.Address{}, contract.ErrContractNotFound
	}
	if !common.IsHexAddress(addr) {
		return common.Address{}, fmt.Errorf("invalid contract address %q", addr)
	}
	return common.HexToAddress(addr), nil
}

// descriptor resolves a contract interface: explicit source, registry entry,
// the network's descriptor path under base, then the built-in. A network
// descriptor missing from a local base falls through to the built-in.
func descriptor(ctx context.Context, f *contract.Fetcher, override string, entry *contract.Entry, base, netPath, builtin string) ([]contract.ABIEntry, error) {
	switch {
	case override != "":
		return f.Fetch(ctx, override)
	case entry != nil && entry.Interface() != nil:
		return entry.Interface(), nil
	case entry != nil && entry.ABIURL != "":
		return f.Fetch(ctx, entry.ABIURL)
	case base != "" && netPath != "":
		entries, err := f.Fetch(ctx, joinSource(base, netPath))
		if !errors.Is(err, fs.ErrNotExist) {
			return entries, err
		}
	}
	if entries := contract.GetBuiltinABI(builtin); entries != nil {
		return entries, nil
	}
	return nil, fmt.Errorf("no interface descriptor for %s", builtin)
}

func joinSource(base, path string) string {
	if contract.IsURL(path) || filepath.IsAbs(path) {
		return path
	}
	if contract.IsURL(base) {
		return strings.TrimRight(base, "/") + "/" + path
	}
	return filepath.Join(base, path)
}

func bindChecked(ctx context.Context, provider *chain.EVMClient, addr common.Address, entries []contract.ABIEntry) (*contract.Bound, error) {
	ok, err := provider.HasCode(ctx, addr.Hex())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no contract code at %s", addr.Hex())
	}
	return contract.Bind(addr, entries, provider)
}

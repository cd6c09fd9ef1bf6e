package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"github.com/Mohsinsiddi/mdtlockup/internal/chain"
	"github.com/Mohsinsiddi/mdtlockup/internal/contract"
	"github.com/Mohsinsiddi/mdtlockup/internal/lockup"
	"github.com/Mohsinsiddi/mdtlockup/internal/logging"
	"github.com/Mohsinsiddi/mdtlockup/internal/ui"
	"github.com/Mohsinsiddi/mdtlockup/internal/wallet"
	"github.com/shopspring/decimal"
)

// errReported marks a failure whose message was already printed.
var errReported = errors.New("already reported")

// timeNow is swapped in tests.
var timeNow = time.Now

// keyringPasswordEnv unlocks the encrypted file keystore without a prompt.
const keyringPasswordEnv = "MDT_KEYRING_PASSWORD"

// ── package helpers ───────────────────────────────────────────────────────────

func currentNetwork() (*chain.Network, error) {
	name := networkFlag
	if name == "" {
		name = cfg.DefaultNetwork
	}
	n, err := chain.NewRegistry().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("unknown network %q, run `mdtlockup network list` to see all networks", name)
	}
	return n, nil
}

func openKeystore() (*wallet.Keystore, error) {
	password := keyring.TerminalPrompt
	if pw := os.Getenv(keyringPasswordEnv); pw != "" {
		password = keyring.FixedStringPrompt(pw)
	}
	return wallet.OpenKeystore(wallet.KeystoreConfig{
		Dir:      filepath.Join(cfg.Dir(), "keys"),
		Password: password,
		Session:  wallet.NewSession(wallet.DefaultSessionPath()),
	})
}

func newWalletManager() (*wallet.Manager, error) {
	ks, err := openKeystore()
	if err != nil {
		return nil, err
	}
	store := wallet.NewJSONStore(cfg.Path("wallets.json"))
	return wallet.NewManager(wallet.WithStore(store), wallet.WithKeystore(ks)), nil
}

func newContractRegistry() (*contract.Registry, error) {
	reg := contract.NewRegistry(cfg.Path("contracts.json"))
	if err := reg.Load(); err != nil {
		return nil, err
	}
	return reg, nil
}

func currentLang() ui.Lang { return ui.ParseLang(langFlag) }

// connect opens a lockup session on the selected network and wallet.
// Signing sessions require the wallet key to be reachable.
func connect(ctx context.Context, requireSigner bool) (*lockup.Session, error) {
	net, err := currentNetwork()
	if err != nil {
		return nil, err
	}
	mgr, err := newWalletManager()
	if err != nil {
		return nil, &lockup.AppError{Kind: lockup.KindWalletLocked, Msg: "opening keystore", Err: err}
	}
	reg, err := newContractRegistry()
	if err != nil {
		return nil, systemError("loading contract registry", err)
	}

	name := walletFlag
	if name == "" {
		name = cfg.DefaultWallet
	}
	return lockup.Connect(ctx, lockup.Options{
		Network:       net,
		Config:        cfg,
		Wallets:       mgr,
		WalletName:    name,
		Contracts:     reg,
		Fetcher:       contract.NewFetcher(),
		ABIBase:       cfg.Path("abi"),
		RequireSigner: requireSigner,
		Logger:        logging.Component(logger, "session"),
	})
}

// errorText renders a command error: lockup errors get their alert panel.
func errorText(err error) string {
	var appErr *lockup.AppError
	if errors.As(err, &appErr) {
		return ui.RenderPanel(lockup.PanelFor(err))
	}
	return ui.Err(err.Error())
}

// systemError tags an untagged session or load failure so errorText shows it
// in the generic system panel. Tagged errors pass through unchanged.
func systemError(msg string, err error) error {
	var appErr *lockup.AppError
	if err == nil || errors.As(err, &appErr) {
		return err
	}
	return &lockup.AppError{Kind: lockup.KindSystem, Msg: msg, Err: err}
}

// parseLockAmount accepts a token amount or "all" for the available amount.
func parseLockAmount(raw string, available decimal.Decimal) (decimal.Decimal, error) {
	if strings.EqualFold(strings.TrimSpace(raw), "all") {
		return available, nil
	}
	return lockup.ParseAmount(raw)
}

// check-lockups: reads the lockup state of a set of accounts on every network
// with a known lockup contract, in parallel, and prints a summary table.
//
// Accounts come from the command line, or from the configured wallets when
// none are given. Run from the module root:
//
//	go run ./scripts/check-lockups 0x3c9d… 0x814e…
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/mdtlockup/internal/chain"
	"github.com/Mohsinsiddi/mdtlockup/internal/config"
	"github.com/Mohsinsiddi/mdtlockup/internal/contract"
	"github.com/Mohsinsiddi/mdtlockup/internal/lockup"
	"github.com/Mohsinsiddi/mdtlockup/internal/ui"
	"github.com/Mohsinsiddi/mdtlockup/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
)

const rpcTimeout = 20 * time.Second

type result struct {
	network string
	account string
	balance string
	bird    string
	private string
	note    string
}

func main() {
	cfg, err := config.Load(os.Getenv("MDT_CONFIG_DIR"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	accounts := os.Args[1:]
	if len(accounts) == 0 {
		for _, w := range wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(cfg.Path("wallets.json")))).List() {
			accounts = append(accounts, w.Address)
		}
	}
	if len(accounts) == 0 {
		fmt.Fprintln(os.Stderr, "usage: check-lockups <address>...")
		os.Exit(2)
	}

	reg := contract.NewRegistry(cfg.Path("contracts.json"))
	if err := reg.Load(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)

	for _, n := range chain.NewRegistry().All() {
		if n.LockupAddress == "" {
			if _, err := reg.GetByRole(contract.RoleLockup, n.Name); err != nil {
				continue
			}
		}
		for _, account := range accounts {
			wg.Add(1)
			go func(n chain.Network, account string) {
				defer wg.Done()
				r := check(cfg, reg, &n, account)
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}(n, account)
		}
	}
	wg.Wait()

	printTable(results)
}

func check(cfg *config.Config, reg *contract.Registry, n *chain.Network, account string) result {
	r := result{network: n.Name, account: ui.TruncateAddr(account), balance: "-", bird: "-", private: "-"}
	if !common.IsHexAddress(account) {
		r.note = "not an address"
		return r
	}

	mgr := wallet.NewManager(wallet.WithInMemoryStore())
	if err := mgr.Add("check", &wallet.Wallet{Address: account}); err != nil {
		r.note = shortErr(err)
		return r
	}

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	s, err := lockup.Connect(ctx, lockup.Options{Network: n, Config: cfg, Wallets: mgr, Contracts: reg})
	if err != nil {
		r.note = shortErr(err)
		return r
	}
	state, err := s.Client.LoadState(ctx)
	if err != nil {
		r.note = shortErr(err)
		return r
	}

	r.balance = ui.FormatTokens(state.TokenBalance)
	r.bird = describe(state, lockup.EarlyLateBird)
	r.private = describe(state, lockup.PrivateSale)
	if state.EventEnded {
		r.note = "sale ended"
	}
	return r
}

func describe(s *lockup.State, sale lockup.SaleType) string {
	rec := s.Record(sale)
	if !rec.HasTokens() {
		return "-"
	}
	out := ui.FormatTokens(rec.Value) + " / " + rec.Period.String()
	switch {
	case rec.Withdrawn:
		out += " (withdrawn)"
	case s.CanWithdraw(sale):
		out += " (withdrawable)"
	}
	return out
}

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.network != b.network {
			return a.network < b.network
		}
		return a.account < b.account
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NETWORK\tACCOUNT\tBALANCE\tEARLY/LATE BIRD\tPRIVATE SALE\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 12)+"\t"+
		strings.Repeat("-", 24)+"\t"+
		strings.Repeat("-", 24)+"\t"+
		strings.Repeat("-", 12))

	last := ""
	for _, r := range results {
		if r.network != last {
			if last != "" {
				fmt.Fprintln(w, "\t\t\t\t\t")
			}
			last = r.network
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.network, r.account, r.balance, r.bird, r.private, r.note)
	}
	w.Flush()
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 40 {
		return s[:40] + "…"
	}
	return s
}

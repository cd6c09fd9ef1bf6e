// Package deploy pushes the MDT contracts to a network. Each migration picks
// its constructor arguments by network name, the way the contracts were first
// shipped with Truffle.
package deploy

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Mohsinsiddi/mdtlockup/internal/config"
	"github.com/Mohsinsiddi/mdtlockup/internal/contract"
	"github.com/ethereum/go-ethereum/common"
)

// ErrUnknownMigration is returned by Select for a name or number that does not exist.
var ErrUnknownMigration = errors.New("unknown migration")

// Artifact names.
const (
	MDToken           = "MDToken"
	MDTokenBank       = "MDTokenBank"
	MDTokenLockup     = "MDTokenLockup"
	MDTokenLockupTest = "MDTokenLockupTest"
)

// RoleBank tags the ERC677 receiver deployed next to test tokens.
const RoleBank = "bank"

// Roles maps each artifact to the registry role it fills once deployed.
func Roles() map[string]string {
	return map[string]string{
		MDToken:           contract.RoleToken,
		MDTokenBank:       RoleBank,
		MDTokenLockup:     contract.RoleLockup,
		MDTokenLockupTest: contract.RoleLockup,
	}
}

// 150 000 000 tokens with 18 decimals.
const allocation150M = "150000000000000000000000000"

// mainnetSaleStart is when the mainnet lockup window opened.
var mainnetSaleStart = time.Date(2018, time.February, 6, 7, 0, 0, 0, time.UTC)

// lockupWindow is how long lockups stay open after the start time.
const lockupWindow = 7 * 24 * time.Hour

// Step deploys one contract. Args returns constructor arguments as strings; they
// are converted against the artifact's constructor inputs. deployed holds the
// addresses of contracts created earlier in the same run, keyed by artifact name.
type Step struct {
	Contract string
	Role     string
	Gas      uint64
	Args     func(deployed map[string]common.Address) ([]string, error)
}

// Migration is a numbered deployment script.
type Migration struct {
	Number int
	Name   string
	plan   func(network string, now time.Time) []Step
}

// Steps returns what the migration deploys on network. An empty result means
// the migration has nothing to do there.
func (m Migration) Steps(network string, now time.Time) []Step {
	return m.plan(network, now)
}

// Migrations returns every migration in run order.
func Migrations() []Migration {
	return []Migration{
		{Number: 2, Name: "token", plan: tokenPlan},
		{Number: 3, Name: "lockup", plan: lockupPlan},
	}
}

// Select picks migrations by name or number. No names selects all of them.
// The result is always in run order.
func Select(names []string) ([]Migration, error) {
	all := Migrations()
	if len(names) == 0 {
		return all, nil
	}
	picked := make(map[int]Migration)
	for _, raw := range names {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			m, ok := find(all, name)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownMigration, name)
			}
			picked[m.Number] = m
		}
	}
	out := make([]Migration, 0, len(picked))
	for _, m := range picked {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func find(all []Migration, name string) (Migration, bool) {
	for _, m := range all {
		if strings.EqualFold(m.Name, name) || strconv.Itoa(m.Number) == name {
			return m, true
		}
	}
	return Migration{}, false
}

// tokenHolders are the addresses MDToken distributes its allocations to.
type tokenHolders struct {
	tokenSale, team, userGrowth, investors, foundation string
}

var (
	mainnetHolders = tokenHolders{
		tokenSale:  "0x4b9B85bfEC31F8bD5b183339Cb155f3D8DE114F1",
		team:       "0x135338c6033cba64ddff14a06e74c9a15e9f93f5",
		userGrowth: "0x446c3c34baf72d1f016e52263d16a45f13b9b128",
		investors:  "0xeb9821605641389c4c29da5a6b9d94d108c47941",
		foundation: "0x818cf9a5a26c5164800016c77c90a70c3d6ac71a",
	}
	testHolders = tokenHolders{
		tokenSale:  "0x12d514f358485B3Cc3e955703C0761e44d23cB99",
		team:       "0xbe976f845557cda5589732c49b3c806e95f1ffcc",
		userGrowth: "0xC1fAfa96eB7FDb9135dBB988551eE25f154e8E6a",
		investors:  "0x8680eb5c6f998b3C9A13225CbDC52A034CD2ab44",
		foundation: "0xfcC5b2c0b3d0a97fa26309AD5e2262bd8aF20a5D",
	}
)

func (h tokenHolders) args() []string {
	return []string{h.tokenSale, h.team, h.userGrowth, h.investors, h.foundation, allocation150M, allocation150M}
}

func fixed(args ...string) func(map[string]common.Address) ([]string, error) {
	return func(map[string]common.Address) ([]string, error) { return args, nil }
}

func tokenPlan(network string, _ time.Time) []Step {
	if network == "mainnetInfura" {
		return []Step{{
			Contract: MDToken,
			Role:     contract.RoleToken,
			Gas:      config.GasLimitTokenDeploy,
			Args:     fixed(mainnetHolders.args()...),
		}}
	}
	return []Step{
		{
			Contract: MDToken,
			Role:     contract.RoleToken,
			Gas:      config.GasLimitTokenDeploy,
			Args:     fixed(testHolders.args()...),
		},
		{
			Contract: MDTokenBank,
			Role:     RoleBank,
			Gas:      config.GasLimitBankDeploy,
			Args: func(deployed map[string]common.Address) ([]string, error) {
				token, ok := deployed[MDToken]
				if !ok {
					return nil, fmt.Errorf("%s must be deployed before %s", MDToken, MDTokenBank)
				}
				return []string{token.Hex(), "97"}, nil
			},
		},
	}
}

func lockupPlan(network string, now time.Time) []Step {
	switch network {
	case "mainnetInfura":
		end := mainnetSaleStart.Add(lockupWindow).Unix()
		return []Step{{
			Contract: MDTokenLockup,
			Role:     contract.RoleLockup,
			Gas:      config.GasLimitTokenDeploy,
			Args:     fixed("0x814e0908b12a99fecf5bc101bb5d0b8b5cdf7d26", strconv.FormatInt(end, 10)),
		}}
	case "ropstenInfura":
		end := now.Add(lockupWindow).Unix()
		return []Step{{
			Contract: MDTokenLockupTest,
			Role:     contract.RoleLockup,
			Gas:      config.GasLimitTokenDeploy,
			Args:     fixed("0xe3e692009828a9d44112ffac9aa62d882be3acbe", strconv.FormatInt(end, 10), "true"),
		}}
	}
	return nil
}

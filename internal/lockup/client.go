package lockup

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/Mohsinsiddi/mdtlockup/internal/chain"
	"github.com/Mohsinsiddi/mdtlockup/internal/config"
	"github.com/Mohsinsiddi/mdtlockup/internal/contract"
	"github.com/Mohsinsiddi/mdtlockup/internal/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Contract is a bound contract proxy. *contract.Bound satisfies it.
type Contract interface {
	Address() common.Address
	Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error)
	Transact(ctx context.Context, opts *contract.TransactOpts, method string, args ...interface{}) (string, error)
}

// ReceiptWaiter blocks until a transaction is mined. *chain.EVMClient satisfies it.
type ReceiptWaiter interface {
	WaitForReceipt(ctx context.Context, hash string) (*chain.TxReceipt, error)
}

// TxResult is the outcome of a mined write.
type TxResult struct {
	Hash    string
	Receipt *chain.TxReceipt
	Success bool
}

// Client reads and writes lockup state for one account.
type Client struct {
	account  common.Address
	token    Contract
	lockup   Contract
	receipts ReceiptWaiter
	legacy   bool
	log      *logrus.Entry
	now      func() time.Time

	mu    sync.RWMutex
	state *State
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the log entry.
func WithLogger(l *logrus.Entry) ClientOption {
	return func(c *Client) { c.log = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// WithLegacyTx sends pre-London transactions.
func WithLegacyTx(legacy bool) ClientOption {
	return func(c *Client) { c.legacy = legacy }
}

// NewClient binds a client to account and the two contracts.
func NewClient(account common.Address, token, lockup Contract, receipts ReceiptWaiter, opts ...ClientOption) *Client {
	c := &Client{
		account:  account,
		token:    token,
		lockup:   lockup,
		receipts: receipts,
		log:      logging.Discard(),
		now:      time.Now,
		state:    &State{Account: account},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Account returns the account the client acts for.
func (c *Client) Account() common.Address { return c.account }

// State returns a copy of the last loaded state.
func (c *Client) State() *State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// LoadState reads the token balance, then the sale status, both records and
// the purchase history in parallel. Once the sale has ended it also asks
// whether each unwithdrawn record can be withdrawn.
func (c *Client) LoadState(ctx context.Context) (*State, error) {
	s := &State{Account: c.account}

	balance, err := c.callBig(ctx, c.token, "balanceOf", c.account)
	if err != nil {
		return nil, c.fail("reading token balance", err)
	}
	s.TokenBalance = chain.FromWei(balance)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ended, err := c.callBool(gctx, c.lockup, "hasEnded")
		s.EventEnded = ended
		return err
	})
	for _, sale := range []SaleType{PrivateSale, EarlyLateBird} {
		sale := sale
		g.Go(func() error {
			r, err := c.record(gctx, sale)
			s.setRecord(sale, r)
			return err
		})
	}
	g.Go(func() error {
		maxAmount, err := c.callBig(gctx, c.lockup, "earlyLateBirdParticipantsHistory", c.account)
		s.MaxLockupAmount = chain.FromWei(maxAmount)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, c.fail("loading lockup state", err)
	}

	if s.EventEnded {
		g, gctx := errgroup.WithContext(ctx)
		for _, sale := range []SaleType{PrivateSale, EarlyLateBird} {
			sale := sale
			r := s.Record(sale)
			if !r.HasTokens() || r.Withdrawn {
				continue
			}
			g.Go(func() error {
				ok, err := c.callBool(gctx, c.lockup, "canWithdrawTokens", sale.IsPrivateSale())
				s.setCanWithdraw(sale, ok)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, c.fail("checking withdrawal eligibility", err)
		}
	}

	c.mu.Lock()
	c.state = s
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"balance": s.TokenBalance.String(),
		"max":     s.MaxLockupAmount.String(),
		"ended":   s.EventEnded,
		"bird":    s.EarlyLateBird.HasTokens(),
		"private": s.PrivateSale.HasTokens(),
	}).Debug("lockup state loaded")
	return s.Clone(), nil
}

// Lock sends amount tokens to the lockup contract with transferAndCall, the
// period code as data. On success the early/late-bird record is updated
// locally with the expected end time.
func (c *Client) Lock(ctx context.Context, amount decimal.Decimal, p Period) (*TxResult, error) {
	if !p.Valid() {
		return nil, ErrNoPeriod
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	wei := chain.ToWei(amount)

	opts := &contract.TransactOpts{GasLimit: config.GasLimitLockup, Legacy: c.legacy}
	res, err := c.send(ctx, c.token, opts, "transferAndCall", c.lockup.Address(), wei, p.Code())
	if err != nil {
		return nil, c.fail("locking tokens", err)
	}
	if !res.Success {
		c.log.WithField("tx", res.Hash).Warn("lock transaction reverted")
		return res, nil
	}

	now := c.now()
	c.mu.Lock()
	c.state.EarlyLateBird = &Record{
		Value:   amount,
		Wei:     wei,
		Period:  p,
		EndTime: p.UnlockTime(now).Truncate(time.Second),
	}
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"tx": res.Hash, "amount": amount.String(), "period": p.String()}).Info("tokens locked")
	return res, nil
}

// Withdraw calls withdrawTokens for sale. On success the local record is
// marked withdrawn now and its can-withdraw flag cleared.
func (c *Client) Withdraw(ctx context.Context, sale SaleType) (*TxResult, error) {
	opts := &contract.TransactOpts{GasLimit: config.GasLimitWithdraw, Legacy: c.legacy}
	res, err := c.send(ctx, c.lockup, opts, "withdrawTokens", sale.IsPrivateSale())
	if err != nil {
		return nil, c.fail("withdrawing tokens", err)
	}
	if !res.Success {
		c.log.WithFields(logrus.Fields{"tx": res.Hash, "sale": sale.String()}).Warn("withdraw transaction reverted")
		return res, nil
	}

	now := c.now()
	c.mu.Lock()
	c.state.setCanWithdraw(sale, false)
	if r := c.state.Record(sale); r != nil {
		r.Withdrawn = true
		r.WithdrawnTime = now.Truncate(time.Second)
	}
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"tx": res.Hash, "sale": sale.String()}).Info("tokens withdrawn")
	return res, nil
}

// TokenAddress reads the token the lockup contract accepts.
func (c *Client) TokenAddress(ctx context.Context) (common.Address, error) {
	out, err := c.lockup.Call(ctx, "token")
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := first(out).(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("token(): unexpected %T", first(out))
	}
	return addr, nil
}

// EndTime reads when the lockup window closes.
func (c *Client) EndTime(ctx context.Context) (time.Time, error) {
	end, err := c.callBig(ctx, c.lockup, "endTime")
	if err != nil {
		return time.Time{}, err
	}
	return unixOrZero(end), nil
}

// --- internal ---

func (c *Client) record(ctx context.Context, sale SaleType) (*Record, error) {
	out, err := c.lockup.Call(ctx, "getLockupRecord", sale.IsPrivateSale())
	if err != nil {
		return nil, fmt.Errorf("getLockupRecord(%t): %w", sale.IsPrivateSale(), err)
	}
	return RecordFromOutputs(out)
}

func (c *Client) send(ctx context.Context, target Contract, opts *contract.TransactOpts, method string, args ...interface{}) (*TxResult, error) {
	hash, err := target.Transact(ctx, opts, method, args...)
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{"tx": hash, "method": method}).Debug("transaction sent")

	receipt, err := c.receipts.WaitForReceipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, hash, err)
	}
	return &TxResult{Hash: hash, Receipt: receipt, Success: receipt.Succeeded()}, nil
}

func (c *Client) callBig(ctx context.Context, target Contract, method string, args ...interface{}) (*big.Int, error) {
	out, err := target.Call(ctx, method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	v, ok := first(out).(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected %T", method, first(out))
	}
	return v, nil
}

func (c *Client) callBool(ctx context.Context, target Contract, method string, args ...interface{}) (bool, error) {
	out, err := target.Call(ctx, method, args...)
	if err != nil {
		return false, fmt.Errorf("%s: %w", method, err)
	}
	v, ok := first(out).(bool)
	if !ok {
		return false, fmt.Errorf("%s: unexpected %T", method, first(out))
	}
	return v, nil
}

func (c *Client) fail(what string, err error) error {
	c.log.WithError(err).Error(what + " failed")
	var ae *AppError
	if errors.As(err, &ae) {
		return err
	}
	return fmt.Errorf("%s: %w", what, err)
}

func first(out []interface{}) interface{} {
	if len(out) == 0 {
		return nil
	}
	return out[0]
}

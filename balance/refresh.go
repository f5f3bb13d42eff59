package balance

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/airchains-network/wallet-viewer/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultQueryTimeout = 10 * time.Second
	DefaultConcurrency  = 4
)

// Reader reads an account balance at a block. A nil blockNumber means latest.
// *eth.Client satisfies it.
type Reader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Options tunes a refresh
type Options struct {
	QueryTimeout time.Duration // per balance query
	Concurrency  int           // max queries in flight
}

func (o Options) withDefaults() Options {
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = DefaultQueryTimeout
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// Report summarizes one refresh. Errors is indexed like the refreshed set.
// Cancelled is set only when the caller's context stopped at least one query.
type Report struct {
	Total     int
	Updated   int
	Errors    []error
	Cancelled bool
	Duration  time.Duration
}

// Failed returns the number of accounts that could not be refreshed
func (r Report) Failed() int {
	return r.Total - r.Updated
}

// Err combines all per-account errors, nil if every query succeeded.
func (r Report) Err() error {
	return multierr.Combine(r.Errors...)
}

// Refresh queries the latest balance of every account and writes it back in
// place. A failing query leaves that account's balance untouched, records the
// error on the account and does not stop the others. Each goroutine only
// writes its own index.
func Refresh(ctx context.Context, reader Reader, accounts wallet.Set, opts Options, log *logrus.Logger) Report {
	opts = opts.withDefaults()
	start := time.Now()
	errs := make([]error, len(accounts))

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i := range accounts {
		g.Go(func() error {
			errs[i] = refreshOne(ctx, reader, &accounts[i], opts.QueryTimeout)
			return nil
		})
	}
	g.Wait()

	report := Report{
		Total:    len(accounts),
		Errors:   errs,
		Duration: time.Since(start),
	}
	for i, err := range errs {
		if err == nil {
			report.Updated++
			continue
		}
		// only queries stopped by ctx make the refresh cancelled
		if cause := ctx.Err(); cause != nil && errors.Is(err, cause) {
			report.Cancelled = true
		}
		log.Warnf("Balance query for account %d (%s) failed: %v", i, accounts[i].Address.Hex(), err)
	}
	log.Infof("Refreshed %d/%d balances in %s", report.Updated, report.Total, report.Duration)
	return report
}

func refreshOne(ctx context.Context, reader Reader, acc *wallet.Account, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		acc.Err = err
		return err
	}

	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	bal, err := reader.BalanceAt(qctx, acc.Address, nil)
	if err != nil {
		err = fmt.Errorf("failed to get balance of %s: %w", acc.Address.Hex(), err)
		acc.Err = err
		return err
	}

	acc.Balance = Truncate(bal)
	acc.Err = nil
	acc.UpdatedAt = time.Now()
	return nil
}

// Truncate keeps the lower 64 bits of a wei amount. Balances above 2^64-1 wei
// wrap; good enough for display, not for accounting.
func Truncate(v *big.Int) uint64 {
	if v == nil || v.Sign() < 0 {
		return 0
	}
	u, _ := uint256.FromBig(v)
	return u.Uint64()
}

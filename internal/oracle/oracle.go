// Package oracle supplies point-in-time asset prices to the lifecycle engine.
// Reads are single-shot: a stale or failing read surfaces as an error and is
// never silently defaulted or retried here.
package oracle

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteDecimals is the fixed scale quotes are normalized to, matching the
// 8-decimal convention of USD price feeds.
const QuoteDecimals int32 = 8

// Quote is one timestamped price read.
type Quote struct {
	Value     decimal.Decimal
	Decimals  int32
	UpdatedAt time.Time
}

type PriceOracle interface {
	LatestPrice(ctx context.Context) (Quote, error)
}

// StaticOracle serves a settable fixed quote. Used in tests and in dev mode
// where no market connectivity is wanted.
type StaticOracle struct {
	mu    sync.Mutex
	value decimal.Decimal
	err   error
}

func NewStatic(value decimal.Decimal) *StaticOracle {
	return &StaticOracle{value: value}
}

func (o *StaticOracle) SetPrice(value decimal.Decimal) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.value = value
	o.err = nil
}

// Fail makes every subsequent read return err until the next SetPrice.
func (o *StaticOracle) Fail(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}

func (o *StaticOracle) LatestPrice(_ context.Context) (Quote, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return Quote{}, o.err
	}
	return Quote{
		Value:     o.value.Round(QuoteDecimals),
		Decimals:  QuoteDecimals,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

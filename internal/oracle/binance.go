package oracle

import (
	"context"
	"fmt"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

// BinanceOracle reads the spot ticker for one symbol. Public endpoint, no
// credentials needed.
type BinanceOracle struct {
	client *binance.Client
	symbol string
}

func NewBinance(symbol string) *BinanceOracle {
	return &BinanceOracle{
		client: binance.NewClient("", ""),
		symbol: symbol,
	}
}

func (o *BinanceOracle) LatestPrice(ctx context.Context) (Quote, error) {
	prices, err := o.client.NewListPricesService().Symbol(o.symbol).Do(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("binance ticker %s: %w", o.symbol, err)
	}
	if len(prices) == 0 {
		return Quote{}, fmt.Errorf("binance ticker %s: empty response", o.symbol)
	}
	value, err := decimal.NewFromString(prices[0].Price)
	if err != nil {
		return Quote{}, fmt.Errorf("binance ticker %s: bad price %q: %w", o.symbol, prices[0].Price, err)
	}
	if value.Sign() <= 0 {
		return Quote{}, fmt.Errorf("binance ticker %s: non-positive price %s", o.symbol, value)
	}
	return Quote{
		Value:     value.Round(QuoteDecimals),
		Decimals:  QuoteDecimals,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

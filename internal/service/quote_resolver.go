package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/przhevallsky/transferboss/internal/custom_err"
	"github.com/przhevallsky/transferboss/internal/models"
)

// QuoteResolver prices a transfer. Real pricing lives outside this service.
type QuoteResolver interface {
	Resolve(ctx context.Context, req models.QuoteRequest) (*models.Quote, error)
}

// StaticQuoteResolver prices from a fixed rate table keyed "USD_PHP".
// Pairs missing from the table are rejected.
type StaticQuoteResolver struct {
	rates    map[string]decimal.Decimal
	flatFee  decimal.Decimal
	validity time.Duration
	now      func() time.Time
}

func NewStaticQuoteResolver(rates map[string]decimal.Decimal, flatFee decimal.Decimal, validity time.Duration) *StaticQuoteResolver {
	return &StaticQuoteResolver{
		rates:    rates,
		flatFee:  flatFee,
		validity: validity,
		now:      time.Now,
	}
}

func (r *StaticQuoteResolver) Resolve(_ context.Context, req models.QuoteRequest) (*models.Quote, error) {
	rate, ok := r.rates[req.Send.Currency+"_"+req.ReceiveCurrency]
	if !ok {
		return nil, &custom_err.UnsupportedCurrencyPairError{
			SendCurrency:    req.Send.Currency,
			ReceiveCurrency: req.ReceiveCurrency,
		}
	}

	return &models.Quote{
		ID:           req.QuoteID,
		Receive:      models.Money{Amount: req.Send.Amount.Mul(rate).Round(models.AmountScale), Currency: req.ReceiveCurrency},
		ExchangeRate: rate.Round(models.RateScale),
		Fee:          models.Money{Amount: r.flatFee.Round(models.AmountScale), Currency: req.Send.Currency},
		ExpiresAt:    r.now().Add(r.validity),
	}, nil
}

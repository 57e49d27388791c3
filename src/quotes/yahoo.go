package quotes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"

	"portfoliotracker/src/model"
)

const userAgent = "portfoliotracker/1.0"

// PriceSource returns the latest price for a symbol. It may be slow or fail;
// callers must surface failures instead of substituting a sentinel price.
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
}

// YahooClient fetches quotes from the Yahoo Finance v8 chart endpoint.
// Lookups are one-shot: there is deliberately no retry here, a failed fetch is
// reported once to the caller.
type YahooClient struct {
	http *resty.Client
}

func NewYahooClient(config Config) *YahooClient {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(config.BaseURL, "/")).
		SetTimeout(time.Duration(config.TimeoutSeconds) * time.Second).
		SetHeader("User-Agent", userAgent)

	return &YahooClient{http: httpClient}
}

// Prices decode as pointers: a missing quote is nil, never conflated with a
// legitimate zero price, and Yahoo pads close series with nulls for minutes
// without trades.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// GetPrice resolves the current price for symbol. All failure modes come back
// as *model.QuoteLookupError.
func (c *YahooClient) GetPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return 0, &model.QuoteLookupError{Symbol: symbol, Err: fmt.Errorf("symbol is empty")}
	}

	var out chartResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"interval": "1m",
			"range":    "1d",
		}).
		SetResult(&out).
		Get("/v8/finance/chart/" + symbol)

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"connector": "YahooClient",
			"symbol":    symbol,
		}).WithError(err).Error("Quote request failed")

		return 0, &model.QuoteLookupError{Symbol: symbol, Err: err}
	}

	if resp.StatusCode() != 200 {
		return 0, &model.QuoteLookupError{
			Symbol: symbol,
			Err:    fmt.Errorf("quote endpoint returned HTTP %d", resp.StatusCode()),
		}
	}

	if len(out.Chart.Result) == 0 {
		return 0, &model.QuoteLookupError{Symbol: symbol, Err: fmt.Errorf("no result for symbol")}
	}

	result := out.Chart.Result[0]

	var price float64
	havePrice := false
	if result.Meta.RegularMarketPrice != nil && *result.Meta.RegularMarketPrice >= 0 {
		price = *result.Meta.RegularMarketPrice
		havePrice = true
	}

	// Fallback: last present close when the meta price is missing.
	if !havePrice && len(result.Indicators.Quote) > 0 {
		closes := result.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i] != nil && *closes[i] >= 0 {
				price = *closes[i]
				havePrice = true
				break
			}
		}
	}

	if !havePrice {
		return 0, &model.QuoteLookupError{Symbol: symbol, Err: fmt.Errorf("no price in response")}
	}

	logger.WithFields(map[string]interface{}{
		"connector": "YahooClient",
		"symbol":    symbol,
		"price":     price,
	}).Debug("Quote fetched")

	return price, nil
}

package quotes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"portfoliotracker/src/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *YahooClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewYahooClient(Config{BaseURL: server.URL, TimeoutSeconds: 2})
}

func TestGetPriceFromMeta(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("range"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"regularMarketPrice":150.25}}]}}`)
	})

	price, err := client.GetPrice(context.Background(), "aapl")
	require.NoError(t, err)
	assert.InDelta(t, 150.25, price, 1e-9)
}

func TestGetPriceFallsBackToLastClose(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{},
			"timestamp":[1,2,3],
			"indicators":{"quote":[{"close":[10.5,11.25,null]}]}}]}}`)
	})

	price, err := client.GetPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 11.25, price, 1e-9)
}

func TestGetPriceAcceptsZeroQuote(t *testing.T) {
	// A quoted price of zero is a valid price, not a missing one.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"regularMarketPrice":0}}]}}`)
	})

	price, err := client.GetPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 0.0, price)
}

func TestGetPriceMissingEverywhere(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{},
			"indicators":{"quote":[{"close":[null,null]}]}}]}}`)
	})

	_, err := client.GetPrice(context.Background(), "AAPL")

	var lookupErr *model.QuoteLookupError
	require.True(t, errors.As(err, &lookupErr))
}

func TestGetPriceHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.GetPrice(context.Background(), "AAPL")

	var lookupErr *model.QuoteLookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "AAPL", lookupErr.Symbol)
}

func TestGetPriceNoResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"chart":{"result":[],"error":{"code":"Not Found"}}}`)
	})

	_, err := client.GetPrice(context.Background(), "NOPE")

	var lookupErr *model.QuoteLookupError
	require.True(t, errors.As(err, &lookupErr))
}

func TestGetPriceEmptySymbol(t *testing.T) {
	client := NewYahooClient(Config{BaseURL: "http://127.0.0.1:0", TimeoutSeconds: 1})

	_, err := client.GetPrice(context.Background(), "   ")

	var lookupErr *model.QuoteLookupError
	require.True(t, errors.As(err, &lookupErr))
}

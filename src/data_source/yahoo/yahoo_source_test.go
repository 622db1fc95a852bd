package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"secmaster/src/helpers"
	"secmaster/src/logger"
	"secmaster/src/models"
	"secmaster/src/network"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(srv *httptest.Server) *YahooProfileSource {
	cfg := &models.MConfig{Network: models.MNetworkConfig{RequestTimeout: 5, RetryDelay: time.Millisecond}}
	return NewYahooProfileSource(models.MEnrichmentConfig{BaseURL: srv.URL + "/"},
		network.NewNetworkManager(cfg, logger.Discard()), logger.Discard())
}

func TestFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/finance/quoteSummary/BRK-B", r.URL.Path)
		assert.Equal(t, "assetProfile,quoteType", r.URL.Query().Get("modules"))
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":[{
			"assetProfile":{"sector":"Financial Services","industry":"Insurance - Diversified"},
			"quoteType":{"symbol":"BRK-B","shortName":"Berkshire Hathaway Inc. New","quoteType":"EQUITY"}}],"error":null}}`))
	}))
	defer srv.Close()

	p, err := newTestSource(srv).FetchProfile(context.Background(), "BRK/B")
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, models.MProfile{
		Symbol:    "BRK-B",
		ShortName: "Berkshire Hathaway Inc. New",
		Sector:    "Financial Services",
		Industry:  "Insurance - Diversified",
		QuoteType: "EQUITY",
	}, *p)
}

func TestFetchProfileETFWithoutAssetProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":[{"quoteType":{"symbol":"SPY","shortName":"SPDR S&P 500","quoteType":"ETF"}}]}}`))
	}))
	defer srv.Close()

	p, err := newTestSource(srv).FetchProfile(context.Background(), "SPY")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "ETF", p.QuoteType)
	assert.Empty(t, p.Sector)
}

func TestFetchProfileUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v10/finance/quoteSummary/GONE":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found"}}}`))
		case "/v10/finance/quoteSummary/NONAME":
			_, _ = w.Write([]byte(`{"quoteSummary":{"result":[{"quoteType":{"symbol":"NONAME","quoteType":"EQUITY"}}]}}`))
		default:
			_, _ = w.Write([]byte(`{"quoteSummary":{"result":[]}}`))
		}
	}))
	defer srv.Close()

	src := newTestSource(srv)
	for _, sym := range []string{"GONE", "NONAME", "EMPTY"} {
		p, err := src.FetchProfile(context.Background(), sym)
		require.NoError(t, err, sym)
		assert.Nil(t, p, sym)
	}
}

func TestFetchProfileMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := newTestSource(srv).FetchProfile(context.Background(), "AAPL")
	assert.Equal(t, "validation", helpers.Kind(err))
}

func TestSanitizeSymbol(t *testing.T) {
	assert.Equal(t, "BRK-B", SanitizeSymbol("BRK/B"))
	assert.Equal(t, "AAPL", SanitizeSymbol("AAPL"))
}

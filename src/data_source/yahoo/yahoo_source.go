package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"secmaster/src/helpers"
	"secmaster/src/interfaces"
	"secmaster/src/logger"
	"secmaster/src/models"
)

// profileModules are the quote summary modules holding classification data.
const profileModules = "assetProfile,quoteType"

// YahooProfileSource reads symbol classification from the Yahoo Finance
// quote summary endpoint.
type YahooProfileSource struct {
	BaseURL string
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewYahooProfileSource(cfg models.MEnrichmentConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *YahooProfileSource {
	return &YahooProfileSource{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		Network: netMgr,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			QuoteType *struct {
				Symbol    string `json:"symbol"`
				ShortName string `json:"shortName"`
				QuoteType string `json:"quoteType"`
			} `json:"quoteType"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// -----------------------------------------------------------------------------

// SanitizeSymbol maps a catalog symbol to its Yahoo spelling.
func SanitizeSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "-")
}

// -----------------------------------------------------------------------------

// FetchProfile returns the profile of symbol, or nil when Yahoo does not know
// it or the answer lacks a short name or symbol.
func (s *YahooProfileSource) FetchProfile(ctx context.Context, symbol string) (*models.MProfile, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s", s.BaseURL, url.PathEscape(SanitizeSymbol(symbol)))

	body, err := s.Network.Get(ctx, endpoint, map[string]string{"modules": profileModules}, nil)
	if err != nil {
		var statusErr *helpers.UpstreamStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			s.Logger.Debug("%s: not known to Yahoo", symbol)
			return nil, nil
		}
		return nil, err
	}

	return s.parseProfile(symbol, body)
}

// -----------------------------------------------------------------------------

func (s *YahooProfileSource) parseProfile(symbol string, data []byte) (*models.MProfile, error) {
	var resp quoteSummaryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, helpers.NewValidationError("malformed quote summary for "+symbol, err)
	}

	if e := resp.QuoteSummary.Error; e != nil {
		s.Logger.Debug("%s: yahoo api error: %s - %s", symbol, e.Code, e.Description)
		return nil, nil
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, nil
	}

	result := resp.QuoteSummary.Result[0]
	qt := result.QuoteType
	if qt == nil || qt.ShortName == "" || qt.Symbol == "" {
		return nil, nil
	}

	p := &models.MProfile{
		Symbol:    qt.Symbol,
		ShortName: qt.ShortName,
		QuoteType: qt.QuoteType,
	}
	if result.AssetProfile != nil {
		p.Sector = result.AssetProfile.Sector
		p.Industry = result.AssetProfile.Industry
	}
	return p, nil
}

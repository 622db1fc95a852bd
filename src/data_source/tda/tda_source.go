package tda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"secmaster/src/interfaces"
	"secmaster/src/logger"
	"secmaster/src/models"
)

// TDASource fetches daily price history from the brokerage market data API.
type TDASource struct {
	Config  models.MUpstreamConfig
	Network interfaces.INetworkManager
	Token   *Token
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

// NewTDASource loads the access token and returns a ready client.
func NewTDASource(cfg models.MUpstreamConfig, netMgr interfaces.INetworkManager, log *logger.Logger) (*TDASource, error) {
	tok, err := LoadToken(cfg.TokenPath)
	if err != nil {
		return nil, err
	}

	return &TDASource{
		Config:  cfg,
		Network: netMgr,
		Token:   tok,
		Logger:  log,
	}, nil
}

// -----------------------------------------------------------------------------

// GetPriceHistory issues one daily price history request.
func (s *TDASource) GetPriceHistory(ctx context.Context, req models.MPriceHistoryRequest) (*models.MPriceHistory, error) {
	endpoint := fmt.Sprintf("%s/marketdata/%s/pricehistory",
		strings.TrimRight(s.Config.BaseURL, "/"), url.PathEscape(req.Symbol))

	params := s.params(req)
	headers := map[string]string{"Authorization": "Bearer " + s.Token.AccessToken}

	body, err := s.Network.Get(ctx, endpoint, params, headers)
	if err != nil {
		return nil, err
	}

	// A body that does not decode carries nothing to ingest.
	var resp models.MPriceHistory
	if err := json.Unmarshal(body, &resp); err != nil {
		s.Logger.Warning("%s: malformed price history, treated as empty: %v", req.Symbol, err)
		return &models.MPriceHistory{Symbol: req.Symbol, Empty: true}, nil
	}
	if resp.Symbol == "" {
		resp.Symbol = req.Symbol
	}

	s.Logger.Debug("%s: %d candles (empty=%t)", req.Symbol, len(resp.Candles), resp.Empty)
	return &resp, nil
}

// -----------------------------------------------------------------------------

func (s *TDASource) params(req models.MPriceHistoryRequest) map[string]string {
	params := map[string]string{
		"periodType":            "year",
		"frequencyType":         "daily",
		"frequency":             "1",
		"needExtendedHoursData": "false",
	}
	if s.Config.APIKey != "" {
		params["apikey"] = s.Config.APIKey
	}

	if req.Full {
		years := req.Years
		if years < 1 {
			years = s.Config.HistoryYears
		}
		params["period"] = strconv.Itoa(years)
		return params
	}

	params["startDate"] = strconv.FormatInt(req.Start.UnixMilli(), 10)
	params["endDate"] = strconv.FormatInt(req.End.UnixMilli(), 10)
	return params
}

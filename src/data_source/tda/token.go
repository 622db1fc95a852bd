package tda

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"secmaster/src/helpers"
)

// Token is the OAuth access token of the brokerage account.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// tokenFile accepts both a bare token object and the wrapped layout
// written by the official login flow ({"creation_timestamp": ..., "token": {...}}).
type tokenFile struct {
	Token
	Wrapped *Token `json:"token"`
}

// -----------------------------------------------------------------------------

// LoadToken reads the token file. A missing file means the interactive login
// has never been run; it is reported as a configuration error.
func LoadToken(path string) (*Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, helpers.NewConfigurationError("token file "+path+" not found: interactive login required", err)
	}
	if err != nil {
		return nil, helpers.NewConfigurationError("cannot read token file "+path, err)
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, helpers.NewConfigurationError("malformed token file "+path, err)
	}

	tok := tf.Token
	if tf.Wrapped != nil {
		tok = *tf.Wrapped
	}
	if tok.AccessToken == "" {
		return nil, helpers.NewConfigurationError("token file "+path+" has no access_token", nil)
	}
	return &tok, nil
}

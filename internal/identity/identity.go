// Package identity verifies access tokens issued by the Pi Network platform
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"piclips/video-api/config"

	"github.com/spf13/viper"
	"github.com/zeebo/errs"
)

// Error is returned when the platform rejects an access token
var Error = errs.Class("identity")

// Identity is the account the platform says an access token belongs to
type Identity struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
}

type Verifier interface {
	Verify(ctx context.Context, accessToken string) (*Identity, error)
}

// PlatformVerifier asks GET {base}/v2/me who an access token belongs to
type PlatformVerifier struct {
	base   string
	client *http.Client
}

func NewPlatformVerifier(base string, timeout time.Duration) *PlatformVerifier {
	return &PlatformVerifier{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// NewFromConfig builds a verifier from identity.platform_api_url and identity.timeout
func NewFromConfig() *PlatformVerifier {
	return NewPlatformVerifier(
		viper.GetString("identity.platform_api_url"),
		config.Duration("identity.timeout"),
	)
}

func (p *PlatformVerifier) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	if accessToken == "" {
		return nil, Error.New("no access token provided")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base+"/v2/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build identity request, %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, Error.Wrap(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, Error.New("platform responded with status %d", resp.StatusCode)
	}

	var id Identity
	if err := json.Unmarshal(body, &id); err != nil {
		return nil, Error.Wrap(err)
	}

	if id.UID == "" {
		return nil, Error.Wrap(errors.New("platform response carries no uid"))
	}

	return &id, nil
}

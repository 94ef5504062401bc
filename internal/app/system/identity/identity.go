// Package identity exchanges a Google OAuth2 access token for the profile of
// the account it was issued to.
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

	"github.com/dalemusser/newsgeo/internal/app/system/metrics"
	"github.com/dalemusser/newsgeo/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultUserInfoURL is Google's OAuth2 v2 userinfo endpoint.
const DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

const gatewayName = "identity"

// ErrInvalidToken is returned when the provider rejects the token or the
// profile carries no email.
var ErrInvalidToken = errors.New("invalid access token")

// Profile is the subset of the Google userinfo response we use.
type Profile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Provider resolves an access token to a Profile.
type Provider interface {
	UserInfo(ctx context.Context, accessToken string) (*Profile, error)
}

// Config configures a Google provider.
type Config struct {
	UserInfoURL string        // defaults to DefaultUserInfoURL
	Timeout     time.Duration // defaults to timeouts.Identity()
	HTTPClient  *http.Client  // base transport for the oauth2 client
}

// Google is a Provider backed by the Google userinfo endpoint.
type Google struct {
	userInfoURL string
	timeout     time.Duration
	base        *http.Client
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewGoogle creates a Google identity provider. m may be nil.
func NewGoogle(cfg Config, m *metrics.Metrics, logger *zap.Logger) *Google {
	u := cfg.UserInfoURL
	if u == "" {
		u = DefaultUserInfoURL
	}
	return &Google{
		userInfoURL: u,
		timeout:     cfg.Timeout,
		base:        cfg.HTTPClient,
		metrics:     m,
		logger:      logger,
	}
}

// UserInfo fetches the profile for accessToken, sent as a bearer token.
func (g *Google) UserInfo(ctx context.Context, accessToken string) (*Profile, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, ErrInvalidToken
	}

	timeout := g.timeout
	if timeout <= 0 {
		timeout = timeouts.Identity()
	}
	ctx, cancel := timeouts.WithTimeout(ctx, timeout, g.logger, "identity.userinfo")
	defer cancel()

	start := time.Now()
	p, err := g.userInfo(ctx, accessToken)
	if err != nil {
		g.metrics.ObserveGateway(gatewayName, metrics.OutcomeError, time.Since(start))
		return nil, err
	}
	g.metrics.ObserveGateway(gatewayName, metrics.OutcomeOK, time.Since(start))
	return p, nil
}

func (g *Google) userInfo(ctx context.Context, accessToken string) (*Profile, error) {
	clientCtx := ctx
	if g.base != nil {
		clientCtx = context.WithValue(ctx, oauth2.HTTPClient, g.base)
	}
	client := oauth2.NewClient(clientCtx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: http %d", ErrInvalidToken, resp.StatusCode)
	case resp.StatusCode >= 300:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if strings.TrimSpace(p.Email) == "" {
		return nil, fmt.Errorf("%w: profile has no email", ErrInvalidToken)
	}
	return &p, nil
}

package dataservice

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/bioarchive/dsclient/pkg/errors"
)

// ClockSkewMax is how long before a token's reported expiration we treat it
// as already expired. The server's clock and ours may disagree, and a token
// that dies mid-upload wastes the whole file.
const ClockSkewMax = 5 * time.Minute

const missingSetupMsg = "Missing initial setup.\n" +
	"You need to add agent_key and user_key to " + configHint + ".\n" +
	"Run `dsclient setup` to configure them."

const agentNotFoundMsg = "Your software agent was not found on the server.\n" +
	"Perhaps you have the wrong URL. You can change it via the 'url' " +
	"setting in " + configHint + "."

const configHint = "~/.dsclient.yaml"

// TokenSource owns the current API token and refreshes it when it nears
// expiration. There are two modes: a legacy statically-configured token with
// an unknown expiration that is returned as-is forever, and a managed token
// claimed by exchanging the agent and user keys, which is re-claimed whenever
// it gets within ClockSkewMax of expiring.
type TokenSource struct {
	baseURL  string
	agentKey string
	userKey  string

	client *resty.Client
	clock  clockwork.Clock

	mu      sync.Mutex
	token   string
	expires int64
}

// NewTokenSource creates a TokenSource that exchanges agentKey and userKey
// for tokens against the API at baseURL.
func NewTokenSource(baseURL, agentKey, userKey string, timeout time.Duration) *TokenSource {
	return &TokenSource{
		baseURL:  baseURL,
		agentKey: agentKey,
		userKey:  userKey,
		client:   resty.New().SetTimeout(timeout),
		clock:    clockwork.NewRealClock(),
	}
}

// NewLegacyTokenSource creates a TokenSource around a statically configured
// token. The token is assumed valid forever and never refreshed.
func NewLegacyTokenSource(token string) *TokenSource {
	return &TokenSource{
		token: token,
		clock: clockwork.NewRealClock(),
	}
}

// Token returns a token valid for immediate use as an Authorization header
// value, claiming a fresh one first if the cached token is missing or about
// to expire. Concurrent callers that observe an expired token are serialized
// so only one refresh request is issued.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.legacy() {
		return ts.token, nil
	}
	if !ts.expired() {
		return ts.token, nil
	}
	if err := ts.refresh(ctx); err != nil {
		return "", err
	}
	return ts.token, nil
}

// State exports the token and its expiration so a caller can persist them
// across invocations. The TokenSource itself never touches disk.
func (ts *TokenSource) State() (token string, expires int64) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.token, ts.expires
}

// SetState restores a token pair previously returned by State.
func (ts *TokenSource) SetState(token string, expires int64) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.token = token
	ts.expires = expires
}

// legacy reports whether the user configured a single static token with an
// unknown expiration. We never try to refresh those.
func (ts *TokenSource) legacy() bool {
	return ts.token != "" && ts.expires == 0
}

// expired compares the token's expiration against the current time padded by
// ClockSkewMax. Holding no token counts as expired.
func (ts *TokenSource) expired() bool {
	if ts.token != "" && ts.expires != 0 {
		nowWithSkew := ts.clock.Now().Add(ClockSkewMax).Unix()
		return nowWithSkew >= ts.expires
	}
	return true
}

type tokenResponse struct {
	APIToken  string `json:"api_token"`
	ExpiresOn int64  `json:"expires_on"`
}

// refresh claims a new token by exchanging the agent and user keys. This
// request is deliberately unauthenticated: it's how we get the credential
// that every other request carries. Must be called with ts.mu held.
func (ts *TokenSource) refresh(ctx context.Context) error {
	log.Debug("Claiming a new API token")

	resp, err := ts.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentTypeJSON).
		SetBody(map[string]string{
			"agent_key": ts.agentKey,
			"user_key":  ts.userKey,
		}).
		Post(ts.baseURL + "/software_agents/api_token")
	if err != nil {
		return errors.WithContext(err, "claim api token")
	}

	if resp.StatusCode() == 404 {
		if ts.agentKey == "" {
			return errors.NewFriendlyError(missingSetupMsg)
		}
		return errors.NewFriendlyError(agentNotFoundMsg)
	}
	if resp.StatusCode() != 201 {
		return errors.NewFriendlyError(
			"Failed to create auth token status:%d\n%s",
			resp.StatusCode(), resp.String())
	}

	var parsed tokenResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return errors.WithContext(err, "parse api token response")
	}

	ts.token = parsed.APIToken
	ts.expires = parsed.ExpiresOn
	return nil
}

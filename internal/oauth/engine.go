// Package oauth drives the authorization-code and refresh-token grants and
// decides whether a cached credential is still usable.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ticktui/ticktui/internal/config"
	qerrors "github.com/ticktui/ticktui/internal/errors"
	"github.com/ticktui/ticktui/internal/logging"
	"github.com/ticktui/ticktui/internal/metrics"
	"github.com/ticktui/ticktui/internal/models"
	"github.com/ticktui/ticktui/internal/store"
	"github.com/ticktui/ticktui/internal/transport"
)

const (
	grantAuthorizationCode = "authorization_code"
	grantRefreshToken      = "refresh_token"
)

// Acquisition paths, used as log fields and metric labels.
const (
	PathCached      = "cached"
	PathRefresh     = "refresh"
	PathInteractive = "interactive"
)

// RedirectAwaiter hands the authorization URL to the human and blocks until
// the provider's redirect (the full URL, including its query) comes back.
type RedirectAwaiter interface {
	AwaitRedirect(ctx context.Context, authURL string) (string, error)
}

// AwaiterFunc adapts a function to RedirectAwaiter.
type AwaiterFunc func(ctx context.Context, authURL string) (string, error)

func (f AwaiterFunc) AwaitRedirect(ctx context.Context, authURL string) (string, error) {
	return f(ctx, authURL)
}

// Engine acquires access tokens. It is not safe for concurrent use; the
// process is expected to call GetAccessToken from one goroutine.
type Engine struct {
	cfg      config.OAuthConfig
	store    store.Store
	awaiter  RedirectAwaiter
	client   transport.Doer
	logger   *logging.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	newState func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithHTTPClient overrides the token endpoint client.
func WithHTTPClient(c transport.Doer) Option {
	return func(e *Engine) {
		e.client = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithStateGenerator overrides the random state source.
func WithStateGenerator(gen func() string) Option {
	return func(e *Engine) {
		e.newState = gen
	}
}

// NewEngine creates an Engine. cfg must already be validated.
func NewEngine(cfg config.OAuthConfig, st store.Store, awaiter RedirectAwaiter, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		store:    st,
		awaiter:  awaiter,
		client:   transport.NewClient(transport.Options{Timeout: 15 * time.Second}),
		logger:   logging.Discard(),
		now:      time.Now,
		newState: randomState,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "oauth")
	if e.cfg.Scope == "" {
		e.cfg.Scope = config.DefaultScope
	}
	return e
}

func randomState() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsValid reports whether obtained_at + expires_in lies after now.
// A record missing either field is expired, never permanently valid.
func IsValid(cred *models.Credential, now time.Time) bool {
	if cred == nil || cred.AccessToken == "" {
		return false
	}
	expiresAt, ok := cred.ExpiresAt()
	if !ok {
		return false
	}
	return expiresAt.After(now)
}

// GetAccessToken returns a usable access token, refreshing or running the
// interactive authorization as needed. Token exchange and authorization
// failures are returned as-is and nothing is persisted for them.
func (e *Engine) GetAccessToken(ctx context.Context) (string, error) {
	ctx = logging.EnsureCorrelationID(ctx)

	cached, ok := e.store.Load(ctx)
	if ok && IsValid(cached, e.now()) {
		e.record(ctx, PathCached, logging.TokenFromCache, nil)
		return cached.AccessToken, nil
	}

	if ok && cached.HasRefreshToken() {
		e.logger.InfoWithContext(ctx, "access token expired, refreshing")
		fresh, err := e.Refresh(ctx, cached.RefreshToken)
		if err != nil {
			e.record(ctx, PathRefresh, logging.TokenRejected, err)
			return "", err
		}
		if err := e.store.Save(ctx, fresh); err != nil {
			e.record(ctx, PathRefresh, logging.TokenRejected, err)
			return "", err
		}
		e.record(ctx, PathRefresh, logging.TokenRefreshed, nil)
		return fresh.AccessToken, nil
	}

	cred, err := e.authorize(ctx)
	if err != nil {
		return "", err
	}
	return cred.AccessToken, nil
}

// Login runs the interactive authorization regardless of the cached record
// and persists the result.
func (e *Engine) Login(ctx context.Context) (*models.Credential, error) {
	return e.authorize(logging.EnsureCorrelationID(ctx))
}

// CompleteRedirect finishes an authorization whose URL was handed out
// earlier, e.g. by AuthURL. state is the value that URL carried; with
// StrictState on it is required and must match the redirect.
func (e *Engine) CompleteRedirect(ctx context.Context, redirect, state string) (*models.Credential, error) {
	ctx = logging.EnsureCorrelationID(ctx)
	return e.issue(ctx, func(ctx context.Context) (*models.Credential, error) {
		if state == "" && e.cfg.StrictState {
			return nil, &qerrors.ErrAuthorization{Reason: "state of the authorization URL is required while strict_state is on"}
		}
		return e.redeem(ctx, redirect, state)
	})
}

func (e *Engine) authorize(ctx context.Context) (*models.Credential, error) {
	return e.issue(ctx, e.interactive)
}

// issue runs obtain and persists its credential, recording the outcome.
func (e *Engine) issue(ctx context.Context, obtain func(context.Context) (*models.Credential, error)) (*models.Credential, error) {
	cred, err := obtain(ctx)
	if err != nil {
		e.record(ctx, PathInteractive, logging.TokenRejected, err)
		return nil, err
	}
	if err := e.store.Save(ctx, cred); err != nil {
		e.record(ctx, PathInteractive, logging.TokenRejected, err)
		return nil, err
	}
	e.record(ctx, PathInteractive, logging.TokenIssued, nil)
	return cred, nil
}

func (e *Engine) interactive(ctx context.Context) (*models.Credential, error) {
	if e.awaiter == nil {
		return nil, &qerrors.ErrAuthorization{Reason: "no redirect awaiter configured"}
	}

	state := e.newState()
	authURL := e.AuthURL(state)
	e.logger.Audit(ctx, logging.NewAuditEvent(logging.AuthorizationSent, logging.StatusSuccess).
		WithDetail("redirect_uri", e.cfg.RedirectURL))

	redirect, err := e.awaiter.AwaitRedirect(ctx, authURL)
	if err != nil {
		return nil, &qerrors.ErrAuthorization{Reason: fmt.Sprintf("waiting for redirect: %v", err)}
	}
	return e.redeem(ctx, redirect, state)
}

// redeem parses the redirect, checks its state against sent and exchanges
// the code.
func (e *Engine) redeem(ctx context.Context, redirect, sent string) (*models.Credential, error) {
	code, returnedState, err := ParseRedirect(redirect)
	if err != nil {
		return nil, err
	}
	if err := e.checkState(ctx, sent, returnedState); err != nil {
		return nil, err
	}
	return e.ExchangeCode(ctx, code)
}

// checkState compares the returned state with the one sent. With
// StrictState off a mismatch is only logged.
func (e *Engine) checkState(ctx context.Context, sent, returned string) error {
	if returned == sent {
		return nil
	}
	if e.cfg.StrictState {
		return &qerrors.ErrAuthorization{Reason: "state mismatch in redirect"}
	}
	e.logger.WarnWithContext(ctx, "redirect state does not match, continuing because strict_state is off",
		"returned_state_present", returned != "")
	return nil
}

// AuthURL builds the authorization URL for state.
func (e *Engine) AuthURL(state string) string {
	params := url.Values{}
	params.Set("client_id", e.cfg.ClientID)
	params.Set("scope", e.cfg.Scope)
	params.Set("state", state)
	params.Set("redirect_uri", e.cfg.RedirectURL)
	params.Set("response_type", "code")

	sep := "?"
	if strings.Contains(e.cfg.AuthURL, "?") {
		sep = "&"
	}
	return e.cfg.AuthURL + sep + params.Encode()
}

// ParseRedirect extracts code and state from the redirected URL. A bare
// query string is accepted as well.
func ParseRedirect(raw string) (code, state string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", &qerrors.ErrAuthorization{Reason: "empty redirect URL"}
	}

	var query url.Values
	if u, perr := url.Parse(raw); perr == nil && (u.Scheme != "" || u.RawQuery != "") {
		query = u.Query()
	} else if q, qerr := url.ParseQuery(strings.TrimPrefix(raw, "?")); qerr == nil {
		query = q
	} else {
		return "", "", &qerrors.ErrAuthorization{Reason: "redirect URL is not parsable"}
	}

	if providerErr := query.Get("error"); providerErr != "" {
		reason := "provider returned " + providerErr
		if desc := query.Get("error_description"); desc != "" {
			reason += ": " + desc
		}
		return "", "", &qerrors.ErrAuthorization{Reason: reason}
	}

	code = query.Get("code")
	if code == "" {
		return "", "", &qerrors.ErrAuthorization{Reason: "authorization code not found in redirect"}
	}
	return code, query.Get("state"), nil
}

// ExchangeCode trades an authorization code for a stamped credential.
func (e *Engine) ExchangeCode(ctx context.Context, code string) (*models.Credential, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("grant_type", grantAuthorizationCode)
	form.Set("scope", e.cfg.Scope)
	form.Set("redirect_uri", e.cfg.RedirectURL)
	return e.exchange(ctx, grantAuthorizationCode, form)
}

// Refresh trades a refresh token for a stamped credential. If the provider
// does not rotate the refresh token, the old one is carried forward.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*models.Credential, error) {
	form := url.Values{}
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", grantRefreshToken)
	form.Set("scope", e.cfg.Scope)
	form.Set("redirect_uri", e.cfg.RedirectURL)

	cred, err := e.exchange(ctx, grantRefreshToken, form)
	if err != nil {
		return nil, err
	}
	if cred.RefreshToken == "" {
		cred.RefreshToken = refreshToken
	}
	return cred, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    *int64 `json:"expires_in"`
	Scope        string `json:"scope"`
}

func (e *Engine) exchange(ctx context.Context, grant string, form url.Values) (*models.Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &qerrors.ErrTokenExchange{GrantType: grant, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(e.cfg.ClientID, e.cfg.ClientSecret)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &qerrors.ErrTokenExchange{
			GrantType:  grant,
			StatusCode: resp.StatusCode,
			Body:       transport.ReadSnippet(resp.Body, 512),
		}
	}

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &qerrors.ErrTokenExchange{GrantType: grant, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if parsed.AccessToken == "" {
		return nil, &qerrors.ErrTokenExchange{GrantType: grant, StatusCode: resp.StatusCode, Err: fmt.Errorf("response missing access_token")}
	}
	if parsed.ExpiresIn == nil {
		return nil, &qerrors.ErrTokenExchange{GrantType: grant, StatusCode: resp.StatusCode, Err: fmt.Errorf("response missing expires_in")}
	}

	cred := &models.Credential{
		AccessToken:  parsed.AccessToken,
		RefreshToken: parsed.RefreshToken,
		TokenType:    parsed.TokenType,
		ExpiresIn:    parsed.ExpiresIn,
		Scope:        parsed.Scope,
	}
	cred.Stamp(e.now())
	return cred, nil
}

func (e *Engine) record(ctx context.Context, path string, event logging.AuditEventType, err error) {
	outcome := "success"
	status := logging.StatusSuccess
	if err != nil {
		outcome = qerrors.Kind(err)
		status = logging.StatusFailure
	}
	e.metrics.RecordTokenAcquisition(path, outcome)
	e.logger.Audit(ctx, logging.NewAuditEvent(event, status).WithDetail("path", path).WithError(err))
}

// Status describes the cached credential without touching the network.
type Status struct {
	Present         bool      `json:"present"`
	Valid           bool      `json:"valid"`
	ExpiresAt       time.Time `json:"expires_at,omitempty"`
	HasRefreshToken bool      `json:"has_refresh_token"`
	Scope           string    `json:"scope,omitempty"`
}

// Status reports what GetAccessToken would start from.
func (e *Engine) Status(ctx context.Context) Status {
	cred, ok := e.store.Load(ctx)
	if !ok {
		return Status{}
	}
	st := Status{
		Present:         true,
		Valid:           IsValid(cred, e.now()),
		HasRefreshToken: cred.HasRefreshToken(),
		Scope:           cred.Scope,
	}
	if at, ok := cred.ExpiresAt(); ok {
		st.ExpiresAt = at.UTC()
	}
	return st
}

// Logout removes the cached credential.
func (e *Engine) Logout(ctx context.Context) error {
	ctx = logging.EnsureCorrelationID(ctx)
	err := e.store.Clear(ctx)
	status := logging.StatusSuccess
	if err != nil {
		status = logging.StatusFailure
	}
	e.logger.Audit(ctx, logging.NewAuditEvent(logging.CredentialCleared, status).WithError(err))
	return err
}

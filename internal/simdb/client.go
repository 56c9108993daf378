// Package simdb is the client for the SimDB scenario database REST API.
// It handles F5 cookie authentication with an on-disk cookie cache, detects
// the newest supported API version, and maps JSON responses through the
// typed models in internal/model.
package simdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/Simon-McIntosh/nucleai/internal/config"
	"github.com/Simon-McIntosh/nucleai/internal/errs"
	"github.com/Simon-McIntosh/nucleai/internal/model"
)

// fallbackAPIVersion is used when version discovery fails.
const fallbackAPIVersion = "v1.2"

// Client talks to one SimDB remote. It is safe for concurrent use; session
// establishment is serialized behind a mutex.
type Client struct {
	cfg  *config.Config
	http *resty.Client
	log  zerolog.Logger

	mu         sync.Mutex
	apiVersion string
	session    bool
	cookies    cookieStore
}

// Option customizes a Client.
type Option func(*Client)

// WithCookieStore overrides where session cookies are cached. Tests use this
// to point the cache at a temp directory.
func WithCookieStore(store cookieStore) Option {
	return func(c *Client) { c.cookies = store }
}

// New constructs a Client for the configured SimDB remote.
func New(cfg *config.Config, log zerolog.Logger, opts ...Option) *Client {
	hc := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.SimDBRemoteURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second)

	c := &Client{cfg: cfg, http: hc, log: log}
	for _, opt := range opts {
		opt(c)
	}
	if c.cookies == nil {
		c.cookies = defaultCookieStore{}
	}
	return c
}

// Query fetches simulations matching the given constraints. Malformed
// result elements are skipped with a warning rather than failing the whole
// query, since metadata completeness varies widely between codes.
func (c *Client) Query(ctx context.Context, constraints []model.QueryConstraint, limit int) ([]model.SimulationSummary, error) {
	version, err := c.ensureSession(ctx)
	if err != nil {
		queriesFailedTotal.WithLabelValues("query").Inc()
		return nil, err
	}

	params := make(url.Values, 2)
	for _, con := range constraints {
		params["filter"] = append(params["filter"], con.String())
	}
	if limit > 0 {
		params["limit"] = []string{strconv.Itoa(limit)}
	}

	var body struct {
		Results []map[string]any `json:"results"`
	}
	if err := c.getJSON(ctx, "/"+version+"/simulations", params, &body); err != nil {
		queriesFailedTotal.WithLabelValues("query").Inc()
		return nil, err
	}

	out := make([]model.SimulationSummary, 0, len(body.Results))
	for _, raw := range body.Results {
		summary, err := model.SummaryFromAPI(raw)
		if err != nil {
			c.log.Warn().Err(err).Msg("skipping malformed simulation record")
			continue
		}
		out = append(out, *summary)
	}
	queriesTotal.WithLabelValues("query").Inc()
	return out, nil
}

// QueryMap is a convenience wrapper accepting the map constraint form, with
// operators embedded as value prefixes ("code.name": "in:METIS").
func (c *Client) QueryMap(ctx context.Context, constraints map[string]string, limit int) ([]model.SimulationSummary, error) {
	return c.Query(ctx, model.ConstraintsFromMap(constraints), limit)
}

// FetchSimulation retrieves one simulation with its inputs and outputs.
func (c *Client) FetchSimulation(ctx context.Context, id string) (*model.Simulation, error) {
	version, err := c.ensureSession(ctx)
	if err != nil {
		queriesFailedTotal.WithLabelValues("fetch").Inc()
		return nil, err
	}

	var raw map[string]any
	if err := c.getJSON(ctx, "/"+version+"/simulations/"+id, nil, &raw); err != nil {
		queriesFailedTotal.WithLabelValues("fetch").Inc()
		return nil, err
	}
	sim, err := model.SimulationFromAPI(raw)
	if err != nil {
		queriesFailedTotal.WithLabelValues("fetch").Inc()
		return nil, err
	}
	queriesTotal.WithLabelValues("fetch").Inc()
	return sim, nil
}

// ListSimulations returns the most recent simulations.
func (c *Client) ListSimulations(ctx context.Context, limit int) ([]model.SimulationSummary, error) {
	return c.Query(ctx, nil, limit)
}

// DiscoverAvailableFields lists the metadata field names the remote can
// filter on.
func (c *Client) DiscoverAvailableFields(ctx context.Context) ([]string, error) {
	version, err := c.ensureSession(ctx)
	if err != nil {
		return nil, err
	}
	var body struct {
		Fields []string `json:"fields"`
	}
	if err := c.getJSON(ctx, "/"+version+"/fields", nil, &body); err != nil {
		return nil, err
	}
	return body.Fields, nil
}

// getJSON issues an authenticated GET and decodes the JSON response,
// retrying transient failures with exponential backoff.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	operation := func() error {
		req := c.http.R().SetContext(ctx)
		if params != nil {
			req.SetQueryParamsFromValues(params)
		}
		resp, err := req.Get(path)
		if err != nil {
			return errs.Wrap(errs.KindConnectivity, err,
				fmt.Sprintf("simdb request %s failed", path),
				"check network connection and NUCLEAI_SIMDB_REMOTE_URL")
		}
		if resp.StatusCode() == http.StatusNotFound {
			return backoff.Permanent(errs.Connectivityf(
				"check the simulation id exists; list recent simulations to verify",
				"simdb resource not found: %s", path))
		}
		if resp.IsError() {
			err := errs.New(errs.FromStatus(resp.StatusCode()),
				fmt.Sprintf("simdb request %s returned status %d", path, resp.StatusCode()),
				"check credentials and service status; re-authentication may be required")
			if !errs.Retryable(resp.StatusCode()) {
				return backoff.Permanent(err)
			}
			return err
		}
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return backoff.Permanent(errs.Wrap(errs.KindValidation, err,
				"simdb response is not valid JSON",
				"the API may have changed shape; check the remote URL points at the REST API"))
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.cfg.MaxRetries)), ctx)
	return backoff.Retry(operation, policy)
}

// ensureSession makes sure the client holds valid session cookies and a
// detected API version. Cached cookies are validated with a probe request
// before use; a failed probe falls through to fresh authentication.
func (c *Client) ensureSession(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session {
		return c.apiVersion, nil
	}

	if cookies, err := c.cookies.Load(); err == nil && len(cookies) > 0 {
		c.http.SetCookies(cookies)
		if version, err := c.detectAPIVersion(ctx); err == nil {
			c.apiVersion = version
			c.session = true
			c.log.Debug().Str("api_version", version).Msg("reusing cached simdb session")
			return version, nil
		}
		// Stale cache; drop the cookies and authenticate from scratch.
		c.http.Cookies = nil
	}

	cookies, err := c.authenticate(ctx)
	if err != nil {
		return "", err
	}
	c.http.SetCookies(cookies)
	if err := c.cookies.Save(cookies); err != nil {
		c.log.Warn().Err(err).Msg("could not cache simdb session cookies")
	}

	version, err := c.detectAPIVersion(ctx)
	if err != nil {
		c.log.Warn().Err(err).Str("fallback", fallbackAPIVersion).Msg("api version discovery failed")
		version = fallbackAPIVersion
	}
	c.apiVersion = version
	c.session = true
	c.log.Info().Str("api_version", version).Msg("simdb session established")
	return version, nil
}

// detectAPIVersion asks the API root for its endpoint list and picks the
// highest advertised version.
func (c *Client) detectAPIVersion(ctx context.Context) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get("")
	if err != nil {
		return "", errs.Wrap(errs.KindConnectivity, err,
			"simdb root endpoint unreachable",
			"check network connection and NUCLEAI_SIMDB_REMOTE_URL")
	}
	if resp.IsError() {
		return "", errs.New(errs.FromStatus(resp.StatusCode()),
			fmt.Sprintf("simdb root endpoint returned status %d", resp.StatusCode()),
			"check credentials; the session cookie may have expired")
	}
	var body struct {
		Endpoints []string `json:"endpoints"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", errs.Wrap(errs.KindValidation, err,
			"simdb root endpoint returned invalid JSON",
			"the session may be redirected to a login page; re-authenticate")
	}

	best := ""
	bestMajor, bestMinor := -1, -1
	for _, endpoint := range body.Endpoints {
		segments := strings.Split(strings.TrimSuffix(endpoint, "/"), "/")
		candidate := segments[len(segments)-1]
		major, minor, ok := parseVersion(candidate)
		if !ok {
			continue
		}
		if major > bestMajor || (major == bestMajor && minor > bestMinor) {
			best, bestMajor, bestMinor = candidate, major, minor
		}
	}
	if best == "" {
		return fallbackAPIVersion, nil
	}
	return best, nil
}

// parseVersion splits a "v1.2" tag into numeric components.
func parseVersion(tag string) (major, minor int, ok bool) {
	if !strings.HasPrefix(tag, "v") {
		return 0, 0, false
	}
	parts := strings.SplitN(tag[1:], ".", 2)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	if len(parts) == 2 {
		minor, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, false
		}
	}
	return major, minor, true
}

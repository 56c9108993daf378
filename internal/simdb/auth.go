package simdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/Simon-McIntosh/nucleai/internal/errs"
	"github.com/Simon-McIntosh/nucleai/internal/localstate"
)

// authenticate performs the F5 firewall login: a form POST to /my.policy at
// the service host. SimDB itself has no login endpoint; the firewall issues
// the session cookies used by every subsequent request.
func (c *Client) authenticate(ctx context.Context) ([]*http.Cookie, error) {
	if !c.cfg.HasSimDBCredentials() {
		return nil, errs.Authf(
			"set NUCLEAI_SIMDB_USERNAME and NUCLEAI_SIMDB_PASSWORD",
			"simdb credentials not found")
	}

	policyURL, err := policyEndpoint(c.cfg.SimDBRemoteURL)
	if err != nil {
		return nil, errs.Wrap(errs.KindValidation, err,
			"cannot derive authentication endpoint",
			"check NUCLEAI_SIMDB_REMOTE_URL is a valid URL")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"username": c.cfg.SimDBUsername,
			"password": c.cfg.SimDBPassword,
		}).
		Post(policyURL)
	if err != nil {
		return nil, errs.Wrap(errs.KindConnectivity, err,
			"simdb authentication endpoint unreachable",
			"check network connection and NUCLEAI_SIMDB_REMOTE_URL")
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, errs.Authf(
			"verify NUCLEAI_SIMDB_USERNAME and NUCLEAI_SIMDB_PASSWORD are valid",
			"failed to authenticate with simdb (status %d)", resp.StatusCode())
	}

	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return nil, errs.Authf(
			"the firewall accepted the request but issued no session; verify credentials",
			"simdb authentication returned no session cookies")
	}
	return cookies, nil
}

// policyEndpoint resolves the firewall login URL at the root of the API
// host.
func policyEndpoint(remoteURL string) (string, error) {
	parsed, err := url.Parse(remoteURL)
	if err != nil {
		return "", err
	}
	return parsed.Scheme + "://" + parsed.Host + "/my.policy", nil
}

// cookieStore persists session cookies between processes.
type cookieStore interface {
	Load() ([]*http.Cookie, error)
	Save(cookies []*http.Cookie) error
}

// defaultCookieStore keeps cookies as JSON under the local state dir.
type defaultCookieStore struct{}

type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Domain  string    `json:"domain,omitempty"`
	Path    string    `json:"path,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
}

func (defaultCookieStore) Load() ([]*http.Cookie, error) {
	path, err := localstate.CookiePath()
	if err != nil {
		return nil, err
	}
	return LoadCookieFile(path)
}

func (defaultCookieStore) Save(cookies []*http.Cookie) error {
	path, err := localstate.CookiePath()
	if err != nil {
		return err
	}
	return SaveCookieFile(path, cookies)
}

// FileCookieStore caches cookies at a fixed path.
type FileCookieStore struct{ Path string }

func (s FileCookieStore) Load() ([]*http.Cookie, error) { return LoadCookieFile(s.Path) }

func (s FileCookieStore) Save(cookies []*http.Cookie) error {
	return SaveCookieFile(s.Path, cookies)
}

// LoadCookieFile reads cached cookies, dropping any that have expired.
func LoadCookieFile(path string) ([]*http.Cookie, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var stored []storedCookie
	if err := json.Unmarshal(buf, &stored); err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		if !sc.Expires.IsZero() && sc.Expires.Before(now) {
			continue
		}
		out = append(out, &http.Cookie{
			Name:    sc.Name,
			Value:   sc.Value,
			Domain:  sc.Domain,
			Path:    sc.Path,
			Expires: sc.Expires,
		})
	}
	return out, nil
}

// SaveCookieFile writes cookies with owner-only permissions; they are
// session credentials.
func SaveCookieFile(path string, cookies []*http.Cookie) error {
	stored := make([]storedCookie, 0, len(cookies))
	for _, ck := range cookies {
		stored = append(stored, storedCookie{
			Name:    ck.Name,
			Value:   ck.Value,
			Domain:  ck.Domain,
			Path:    ck.Path,
			Expires: ck.Expires,
		})
	}
	buf, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o600)
}

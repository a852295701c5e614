package reddit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	perr "shamewizard/internal/platform/errors"
)

// tokens are refreshed this long before Reddit says they expire
const tokenSkew = 60 * time.Second

type tokenResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresIn   float64 `json:"expires_in"`
	Scope       string  `json:"scope"`
	Error       string  `json:"error"`
}

// session holds a password-grant access token for a script app
type session struct {
	http *http.Client
	opts Options
	now  func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newSession(hc *http.Client, o Options, now func() time.Time) *session {
	return &session{http: hc, opts: o, now: now}
}

// Token returns a cached token or fetches a fresh one
func (s *session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiry.Add(-tokenSkew)) {
		return s.token, nil
	}
	tr, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}
	s.token = tr.AccessToken
	s.expiry = s.now().Add(time.Duration(tr.ExpiresIn * float64(time.Second)))
	return s.token, nil
}

// Invalidate drops the cached token so the next call re-authenticates
func (s *session) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.expiry = time.Time{}
	s.mu.Unlock()
}

func (s *session) fetch(ctx context.Context) (tokenResponse, error) {
	form := url.Values{
		"grant_type": {"password"},
		"username":   {s.opts.Username},
		"password":   {s.opts.Password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return tokenResponse{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "reddit auth request failed")
	}
	req.SetBasicAuth(s.opts.AppID, s.opts.AppSecret)
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return tokenResponse{}, ctx.Err()
		}
		return tokenResponse{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "reddit auth unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return tokenResponse{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "reddit auth read failed")
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return tokenResponse{}, perr.TooManyRequestsf("reddit auth rate limited")
	case resp.StatusCode >= 500:
		return tokenResponse{}, perr.Unavailablef("reddit auth server error %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return tokenResponse{}, perr.Unauthorizedf("reddit auth status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(b, &tr); err != nil {
		return tokenResponse{}, perr.Wrap(err, perr.ErrorCodeJSON, "reddit auth decode failed")
	}
	if tr.Error != "" {
		return tokenResponse{}, perr.Unauthorizedf("reddit auth: %s", tr.Error)
	}
	if tr.AccessToken == "" {
		return tokenResponse{}, perr.Unauthorizedf("reddit auth returned no token")
	}
	return tr, nil
}

// Package reddit provides a resilient Reddit OAuth API client and a polling comment stream
package reddit

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	perr "shamewizard/internal/platform/errors"
	"shamewizard/internal/platform/logger"
)

const (
	authURLDefault   = "https://www.reddit.com/api/v1/access_token"
	baseURLDefault   = "https://oauth.reddit.com"
	defaultTimeout   = 10 * time.Second
	defaultUA        = "shamewizard"
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
	defaultRPS       = 1.0
	defaultBurst     = 5
	maxBackoff       = 30 * time.Second
)

// Options configures the Client
type Options struct {
	AuthURL   string
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// script app credentials for the password grant
	AppID     string
	AppSecret string
	Username  string
	Password  string

	// client side pacing
	RPS   float64
	Burst int

	// Retry config for transient and rate limited responses
	MaxRetries int
	RetryBase  time.Duration
}

// Client is a minimal Reddit OAuth client with pacing, retries, and header-driven rate limiting
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	sess    *session
	log     logger.Logger
	now     func() time.Time
	sleep   func(context.Context, time.Duration) error

	mu        sync.Mutex
	holdUntil time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.AuthURL == "" {
		o.AuthURL = authURLDefault
	}
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.RPS <= 0 {
		o.RPS = defaultRPS
	}
	if o.Burst <= 0 {
		o.Burst = defaultBurst
	}
	hc := &http.Client{Timeout: o.Timeout}
	c := &Client{
		http:    hc,
		opts:    o,
		limiter: rate.NewLimiter(rate.Limit(o.RPS), o.Burst),
		log:     *logger.Named("reddit"),
		now:     time.Now,
		sleep:   sleepCtx,
	}
	c.sess = newSession(hc, o, func() time.Time { return c.now() })
	return c
}

// CallOption tunes a single Do call
type CallOption func(*callOpts)

type callOpts struct {
	noReplay bool
}

// NoReplay stops Do from resending a request after a transport error or a
// 5xx, where the platform may already have applied it. 401 and 429 are
// still retried since those requests were refused
func NoReplay() CallOption {
	return func(o *callOpts) { o.noReplay = true }
}

// Do issues an authenticated request with pacing, retries, and rate limit handling.
// form, when non-nil, is sent as an urlencoded body
func (c *Client) Do(ctx context.Context, method, path string, form url.Values, opts ...CallOption) (*http.Response, error) {
	var co callOpts
	for _, o := range opts {
		o(&co)
	}
	target := c.opts.BaseURL + path
	attempts := 0
	reauthed := false
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.waitHold(ctx); err != nil {
			return nil, err
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		tok, err := c.sess.Token(ctx)
		if err != nil {
			return nil, err
		}

		var body io.Reader
		if form != nil {
			body = strings.NewReader(form.Encode())
		}
		req, err := http.NewRequestWithContext(ctx, method, target, body)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "reddit new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Authorization", "bearer "+tok)
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if co.noReplay || !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "reddit do failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Err(err).Dur("retry_in", back).Int("attempt", attempts).Msg("reddit transport error retrying")
			if err := c.sleep(ctx, back); err != nil {
				return nil, err
			}
			attempts++
			continue
		}

		rl := parseRateHeaders(resp.Header)
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Float64("rate_remaining", rl.remaining).
			Dur("rate_reset", rl.reset).
			Msg("reddit http response")
		if rl.known && rl.remaining < 1 && rl.reset > 0 {
			c.hold(rl.reset)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		case resp.StatusCode == http.StatusUnauthorized:
			_ = drainAndClose(resp.Body)
			if reauthed {
				return nil, perr.Unauthorizedf("reddit rejected fresh access token")
			}
			c.log.Info().Msg("reddit access token rejected refreshing session")
			c.sess.Invalidate()
			reauthed = true
			continue
		case resp.StatusCode == http.StatusTooManyRequests:
			_ = drainAndClose(resp.Body)
			wait := rl.waitFor()
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			if !c.shouldRetry(attempts) {
				return nil, perr.TooManyRequestsf("reddit rate limited")
			}
			c.log.Warn().Dur("sleep", wait).Msg("reddit rate limited backing off")
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
			attempts++
			continue
		case resp.StatusCode >= 500:
			_ = drainAndClose(resp.Body)
			if co.noReplay || !c.shouldRetry(attempts) {
				return nil, perr.Unavailablef("reddit transient server error %d", resp.StatusCode)
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Int("status", resp.StatusCode).Msg("reddit transient error retrying")
			if err := c.sleep(ctx, back); err != nil {
				return nil, err
			}
			attempts++
			continue
		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, &StatusError{Status: resp.StatusCode, Body: string(b), Err: statusErr(resp.StatusCode, b)}
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

// hold blocks further requests until the platform's window resets
func (c *Client) hold(d time.Duration) {
	c.mu.Lock()
	if until := c.now().Add(d); until.After(c.holdUntil) {
		c.holdUntil = until
	}
	c.mu.Unlock()
}

func (c *Client) waitHold(ctx context.Context) error {
	c.mu.Lock()
	wait := c.holdUntil.Sub(c.now())
	c.mu.Unlock()
	if wait <= 0 {
		return nil
	}
	c.log.Warn().Dur("sleep", wait).Msg("reddit quota exhausted waiting for reset")
	return c.sleep(ctx, wait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	perr "shamewizard/internal/platform/errors"
)

const maxBody = 4 << 20

// NewComments fetches the newest comments in subreddit, newest first
func (c *Client) NewComments(ctx context.Context, subreddit string, limit int) ([]Comment, error) {
	if subreddit == "" {
		subreddit = "all"
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	path := fmt.Sprintf("/r/%s/comments?limit=%d&raw_json=1", url.PathEscape(subreddit), limit)

	var out listing[Comment]
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	cs := make([]Comment, 0, len(out.Data.Children))
	for _, ch := range out.Data.Children {
		if ch.Kind != "" && ch.Kind != "t1" {
			continue
		}
		cs = append(cs, ch.Data)
	}
	return cs, nil
}

// Reply posts text as a reply to thing (a t1_ or t3_ fullname).
// A failed post is not resent here; the caller decides when to try again
func (c *Client) Reply(ctx context.Context, thing, text string) (Comment, error) {
	if thing == "" {
		return Comment{}, perr.InvalidArgf("reddit reply: empty thing id")
	}
	form := url.Values{
		"api_type": {"json"},
		"thing_id": {thing},
		"text":     {text},
	}
	resp, err := c.Do(ctx, http.MethodPost, "/api/comment", form, NoReplay())
	if err != nil {
		return Comment{}, err
	}
	defer c.closeBody(resp, "/api/comment")

	var env replyEnvelope
	if err := decode(resp.Body, &env); err != nil {
		return Comment{}, err
	}
	if errs := env.JSON.Errors; len(errs) > 0 {
		return Comment{}, replyErr(errs)
	}
	if th := env.JSON.Data.Things; len(th) > 0 {
		return th[0].Data, nil
	}
	return Comment{}, nil
}

// Me returns the authenticated account
func (c *Client) Me(ctx context.Context) (Account, error) {
	var a Account
	if err := c.getJSON(ctx, "/api/v1/me?raw_json=1", &a); err != nil {
		return Account{}, err
	}
	return a, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer c.closeBody(resp, path)
	return decode(resp.Body, out)
}

func (c *Client) closeBody(resp *http.Response, path string) {
	if cerr := resp.Body.Close(); cerr != nil {
		c.log.Error().Err(cerr).Str("path", path).Msg("reddit close body failed")
	}
}

func decode(r io.Reader, out any) error {
	b, err := io.ReadAll(io.LimitReader(r, maxBody))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "reddit read body failed")
	}
	if err := json.Unmarshal(b, out); err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "reddit decode failed")
	}
	return nil
}

// replyErr turns the api errors list into a perr error; RATELIMIT maps to TooManyRequests
func replyErr(errs [][]any) error {
	parts := make([]string, 0, len(errs))
	limited := false
	for _, e := range errs {
		strs := make([]string, 0, len(e))
		for _, v := range e {
			if s, ok := v.(string); ok && s != "" {
				strs = append(strs, s)
			}
		}
		if len(strs) > 0 && strs[0] == "RATELIMIT" {
			limited = true
		}
		parts = append(parts, strings.Join(strs, ": "))
	}
	msg := strings.Join(parts, "; ")
	if limited {
		return perr.TooManyRequestsf("reddit reply refused: %s", msg)
	}
	return perr.Rejectedf("reddit reply refused: %s", msg)
}

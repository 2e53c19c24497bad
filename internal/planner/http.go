package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// InfeasibleMarker is the text the planner puts in an error body when its
// solver could not produce a tour for the edit.
const InfeasibleMarker = "did not find a solution"

// StatusError is a non-2xx planner response with its textual body.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("planner returned HTTP %d", e.Code)
	}
	return fmt.Sprintf("planner returned HTTP %d: %s", e.Code, e.Body)
}

// IsInfeasible reports whether err carries the solver's no-solution marker.
func IsInfeasible(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return strings.Contains(strings.ToLower(se.Body), InfeasibleMarker)
}

// Detail returns the planner's error body when there is one, else err.Error().
func Detail(err error) string {
	var se *StatusError
	if errors.As(err, &se) && se.Body != "" {
		return se.Body
	}
	return err.Error()
}

func (c *Client) newRequest(ctx context.Context, method, path string, params url.Values) (*http.Request, error) {
	u := c.baseURL + path
	var body io.Reader
	if method == http.MethodGet {
		if len(params) > 0 {
			u += "?" + params.Encode()
		}
	} else if params != nil {
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

// do sends the request and converts non-2xx responses into *StatusError.
// The caller owns the returned body.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.session.Do(req)
	dur := time.Since(start)
	if err != nil {
		c.observe(req, 0, dur)
		c.log.Debug().Err(err).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Dur("duration", dur).
			Msg("planner call failed")
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	c.observe(req, resp.StatusCode, dur)
	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", dur).
		Msg("planner call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

func (c *Client) observe(req *http.Request, status int, dur time.Duration) {
	if c.observer != nil {
		c.observer.ObservePlannerCall(req.Method, req.URL.Path, status, dur)
	}
}

package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxAttempts = 5
	DefaultBackoff     = 2 * time.Second
	DefaultTimeout     = 15 * time.Second

	userAgent = "ai-blogger-bot/1.0 (+https://github.com/hasibx0/ai-blogger-bot)"
)

// Request describes one outbound call. Body is resent on every attempt.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is a fully read HTTP 200 response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// StatusError reports a non-200 answer. It counts as one failed attempt.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// Fetcher performs HTTP calls with a bounded number of attempts.
type Fetcher struct {
	client *http.Client
	policy Policy
}

// New creates a Fetcher. A nil client gets one with DefaultTimeout.
func New(client *http.Client, policy Policy) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Fetcher{client: client, policy: policy}
}

// Get is Do with a GET request.
func (f *Fetcher) Get(ctx context.Context, url string, header http.Header) (*Response, bool) {
	return f.Do(ctx, Request{Method: http.MethodGet, URL: url, Header: header})
}

// Do sends req until it gets a 200 or the attempts run out. The boolean is
// false when no attempt succeeded; callers substitute their own fallback.
func (f *Fetcher) Do(ctx context.Context, req Request) (*Response, bool) {
	return f.DoCheck(ctx, req, nil)
}

// DoCheck is Do with check applied to every 200 response. A check error
// counts as a failed attempt, the same as a bad status.
func (f *Fetcher) DoCheck(ctx context.Context, req Request, check func(*Response) error) (*Response, bool) {
	var resp *Response
	err := f.policy.Run(ctx, req.URL, func(ctx context.Context) error {
		r, err := f.send(ctx, req)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(r); err != nil {
				return err
			}
		}
		resp = r
		return nil
	})
	if err != nil {
		f.policy.logger().Warn("giving up on request", "url", req.URL, "error", err)
		return nil, false
	}
	return resp, true
}

func (f *Fetcher) send(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", userAgent)
	}

	httpResp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: httpResp.StatusCode, Body: snippet(data, 200)}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

func snippet(data []byte, n int) string {
	s := string(bytes.TrimSpace(data))
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

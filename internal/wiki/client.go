package wiki

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/Ken-Miles/farm-computer/pkg/circuitbreaker"
)

// Response captures what the resolution chain needs from one fetch: the
// final status, the post-redirect URL, and whether a redirect happened on
// the way there.
type Response struct {
	StatusCode     int
	FinalURL       string
	Redirected     bool
	RedirectStatus int
	Body           []byte
}

// Client is the shared HTTP client for all wiki fetches. Every call goes
// through a circuit breaker so a dead wiki reads as a transient failure
// instead of a pile of hung requests.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	breaker   *circuitbreaker.CircuitBreaker
}

func NewClient(baseURL, userAgent string, timeout time.Duration, logger *zap.Logger) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		breaker: circuitbreaker.New("wiki", circuitbreaker.Config{
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
			Logger:           logger,
		}),
	}
	c.http = &http.Client{
		Timeout: timeout,
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveRef turns a wiki-relative href into an absolute URL. Absolute
// hrefs pass through unchanged.
func (c *Client) ResolveRef(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return c.baseURL + href
}

func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	var out *Response
	err := c.breaker.Execute(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		redirectStatus := 0
		client := *c.http
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if req.Response != nil && redirectStatus == 0 {
				redirectStatus = req.Response.StatusCode
			}
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			return nil
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", url, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		out = &Response{
			StatusCode:     resp.StatusCode,
			FinalURL:       resp.Request.URL.String(),
			Redirected:     redirectStatus != 0,
			RedirectStatus: redirectStatus,
			Body:           body,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Document fetches a URL and parses its body. Non-2xx responses still parse;
// callers decide what a status means.
func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, *Response, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, resp, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}
	return doc, resp, nil
}

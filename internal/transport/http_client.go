// Package transport provides the outbound HTTP client shared by the OAuth
// engine and the API client.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	utls "github.com/refraction-networking/utls"
	qerrors "github.com/ticktui/ticktui/internal/errors"
)

// Doer is the subset of *http.Client the rest of the module depends on.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures NewClient.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// UTLS dials TLS with a Chrome ClientHello. Some corporate proxies and
	// regional edges reject the Go fingerprint.
	UTLS bool
}

// Client applies default headers and a bounded timeout to every request and
// reports network failures as *errors.ErrTransport.
type Client struct {
	client    *http.Client
	userAgent string
}

// NewClient builds a Client. A zero timeout falls back to 15s.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		client: &http.Client{
			Timeout:   timeout,
			Transport: newTransport(opts.UTLS),
		},
		userAgent: opts.UserAgent,
	}
}

// Do sends req. Transport-level failures, including timeouts, are wrapped in
// *errors.ErrTransport; HTTP status codes are left to the caller.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	c.applyHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &qerrors.ErrTransport{
			Operation: fmt.Sprintf("%s %s", req.Method, req.URL.Path),
			Err:       err,
		}
	}
	return resp, nil
}

func (c *Client) applyHeaders(req *http.Request) {
	if req.Header.Get("User-Agent") == "" && c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
}

// ReadSnippet reads at most limit bytes of the body for error messages.
func ReadSnippet(r io.Reader, limit int64) string {
	if r == nil {
		return ""
	}
	data, _ := io.ReadAll(io.LimitReader(r, limit))
	return strings.TrimSpace(string(data))
}

func newTransport(useUTLS bool) http.RoundTripper {
	if !useUTLS {
		return &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
		}
	}

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			rawConn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host := addr
			if strings.Contains(addr, ":") {
				host, _, _ = net.SplitHostPort(addr)
			}
			// HTTP/1.1 only: net/http cannot speak h2 over a custom TLS conn.
			config := &utls.Config{
				ServerName: host,
				NextProtos: []string{"http/1.1"},
			}
			uconn := utls.UClient(rawConn, config, utls.HelloChrome_120)
			if err := uconn.Handshake(); err != nil {
				_ = rawConn.Close()
				return nil, err
			}
			return uconn, nil
		},
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
	}
}

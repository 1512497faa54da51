package callback

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ticktui/ticktui/internal/logging"
	"github.com/ticktui/ticktui/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

// ListenerAwaiter serves the redirect URI on the local machine and returns
// the first request that reaches its path.
type ListenerAwaiter struct {
	RedirectURL string
	Timeout     time.Duration
	Out         io.Writer
	Logger      *logging.Logger
	Metrics     *metrics.Metrics
	// OnListening, when set, receives the bound address once the listener is up.
	OnListening func(addr string)
}

// AwaitRedirect implements oauth.RedirectAwaiter.
func (l *ListenerAwaiter) AwaitRedirect(ctx context.Context, authURL string) (string, error) {
	target, err := url.Parse(l.RedirectURL)
	if err != nil {
		return "", fmt.Errorf("parse redirect url: %w", err)
	}
	if target.Scheme != "http" {
		return "", fmt.Errorf("listener mode needs an http redirect url, got %q", target.Scheme)
	}
	path := target.Path
	if path == "" {
		path = "/"
	}

	logger := l.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	addr := ListenAddr(target)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen on %s: %w", addr, err)
	}

	received := make(chan string, 1)
	var once sync.Once
	handler := func(c *gin.Context) {
		redirect := "http://" + c.Request.Host + c.Request.URL.RequestURI()
		once.Do(func() { received <- redirect })

		if c.Query("code") == "" {
			c.String(http.StatusBadRequest, "Authorization failed. Return to the terminal for details.")
			return
		}
		c.String(http.StatusOK, "Authorization received. You can close this window.")
	}

	srv := newServer(newRouter(path, handler, l.Metrics, logger))
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("redirect listener stopped", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if l.OnListening != nil {
		l.OnListening(ln.Addr().String())
	}
	if l.Out != nil {
		fmt.Fprintln(l.Out, "Open the following URL in your browser and authorize the application:")
		fmt.Fprintln(l.Out)
		fmt.Fprintln(l.Out, "  "+authURL)
		fmt.Fprintln(l.Out)
		fmt.Fprintf(l.Out, "Waiting for the redirect on %s%s ...\n", target.Host, path)
	}
	logger.InfoWithContext(ctx, "waiting for authorization redirect", "addr", ln.Addr().String(), "path", path)

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("no redirect received: %w", ctx.Err())
	case redirect := <-received:
		return redirect, nil
	}
}

func newRouter(path string, handler gin.HandlerFunc, m *metrics.Metrics, logger *logging.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.Middleware(m, logger))
	r.GET(path, handler)
	return r
}

func newServer(handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ListenAddr is the host:port a redirect URL is served on. A URL without a
// port uses the scheme default.
func ListenAddr(u *url.URL) string {
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return net.JoinHostPort(u.Hostname(), port)
}

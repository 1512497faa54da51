// Package callback captures the provider's authorization redirect, either by
// asking the user to paste it or by serving the redirect URI locally.
package callback

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// PromptAwaiter prints the authorization URL and reads the redirected URL
// back from In, one line.
type PromptAwaiter struct {
	In  io.Reader
	Out io.Writer
	// Open is called with the authorization URL when set, e.g. to launch a
	// browser. Its error is reported but not fatal.
	Open func(url string) error
}

// AwaitRedirect implements oauth.RedirectAwaiter.
func (p *PromptAwaiter) AwaitRedirect(ctx context.Context, authURL string) (string, error) {
	fmt.Fprintln(p.Out, "Open the following URL in your browser and authorize the application:")
	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, "  "+authURL)
	fmt.Fprintln(p.Out)
	if p.Open != nil {
		if err := p.Open(authURL); err != nil {
			fmt.Fprintf(p.Out, "Could not open a browser (%v); copy the URL manually.\n", err)
		}
	}
	fmt.Fprint(p.Out, "Paste the full URL you were redirected to: ")

	type result struct {
		line string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		done <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		line := strings.TrimSpace(r.line)
		if r.err != nil && (r.err != io.EOF || line == "") {
			return "", fmt.Errorf("read redirect URL: %w", r.err)
		}
		return line, nil
	}
}
